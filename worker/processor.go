package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/metrics"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/repository"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/sender"
)

// Processor drains the notification queue. Each pass claims a batch of due
// entries, attempts every channel still pending on each notification, and
// either closes the entry or reschedules it with exponential backoff.
type Processor struct {
	notifications repository.NotificationRepository
	email         sender.EmailSender
	sms           sender.SMSSender
	push          sender.PushSender
	logger        *zap.Logger
	batchSize     int
}

func NewProcessor(
	notifications repository.NotificationRepository,
	email sender.EmailSender,
	sms sender.SMSSender,
	push sender.PushSender,
	batchSize int,
	logger *zap.Logger,
) *Processor {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Processor{
		notifications: notifications,
		email:         email,
		sms:           sms,
		push:          push,
		logger:        logger,
		batchSize:     batchSize,
	}
}

// Run polls the queue until ctx is cancelled. A pass runs immediately on
// start so restarts don't wait a full interval to resume delivery.
func (p *Processor) Run(ctx context.Context, interval time.Duration) {
	p.logger.Info("queue processor started",
		zap.Duration("interval", interval),
		zap.Int("batch_size", p.batchSize))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.ProcessDue(ctx); err != nil {
			p.logger.Error("queue pass failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			p.logger.Info("queue processor stopped")
			return
		case <-ticker.C:
		}
	}
}

// ProcessDue claims and delivers one batch of due entries. It returns how
// many entries were handled this pass.
func (p *Processor) ProcessDue(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	if pending, err := p.notifications.PendingEntries(ctx, now); err == nil {
		metrics.QueueDepth.Set(float64(pending))
	}

	entries, err := p.notifications.ClaimDue(ctx, now, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("claim due entries: %w", err)
	}

	for i := range entries {
		p.deliver(ctx, &entries[i])
	}
	return len(entries), nil
}

// deliver runs one delivery round for a claimed entry. Channels already sent
// in earlier rounds are skipped, so a retry only repeats what failed.
func (p *Processor) deliver(ctx context.Context, entry *models.QueueEntry) {
	notif := &entry.Notification
	attempt := entry.Attempts + 1

	var failures []string
	for _, channel := range notif.PendingChannels() {
		timer := prometheus.NewTimer(metrics.NotificationSendDuration.WithLabelValues(channel))
		recipient, result, err := p.send(ctx, channel, notif)
		timer.ObserveDuration()

		logRow := &models.DeliveryLog{
			NotificationID: notif.ID,
			Channel:        channel,
			Recipient:      recipient,
			Attempt:        attempt,
			Success:        err == nil,
		}
		if err != nil {
			logRow.Error = err.Error()
			failures = append(failures, channel+": "+err.Error())
			metrics.NotificationsAttemptedTotal.WithLabelValues(channel, "failure").Inc()
			p.logger.Warn("channel delivery failed",
				zap.String("notification_id", notif.ID.String()),
				zap.String("channel", channel),
				zap.Int("attempt", attempt),
				zap.Error(err))
		} else {
			logRow.ProviderID = result.MessageID
			notif.MarkChannelSent(channel)
			metrics.NotificationsAttemptedTotal.WithLabelValues(channel, "success").Inc()
		}
		if logErr := p.notifications.CreateLog(ctx, logRow); logErr != nil {
			p.logger.Error("failed to write delivery log",
				zap.String("notification_id", notif.ID.String()),
				zap.Error(logErr))
		}
	}

	now := time.Now().UTC()
	if notif.Delivered() {
		entry.MarkDelivered()
		notif.SentAt = &now
	} else {
		entry.IncrementAttempts(now, strings.Join(failures, "; "))
		if entry.Exhausted() {
			metrics.QueueExhaustedTotal.Inc()
			p.logger.Error("notification abandoned after final attempt",
				zap.String("notification_id", notif.ID.String()),
				zap.Int("attempts", entry.Attempts),
				zap.String("last_error", entry.LastError))
		} else {
			for _, channel := range notif.PendingChannels() {
				metrics.NotificationRetriesTotal.WithLabelValues(channel).Inc()
			}
			p.logger.Info("notification rescheduled",
				zap.String("notification_id", notif.ID.String()),
				zap.Int("attempts", entry.Attempts),
				zap.Time("next_attempt_at", entry.NextAttemptAt))
		}
	}

	if err := p.notifications.Update(ctx, notif); err != nil {
		p.logger.Error("failed to update notification",
			zap.String("notification_id", notif.ID.String()),
			zap.Error(err))
	}
	if err := p.notifications.UpdateEntry(ctx, entry); err != nil {
		p.logger.Error("failed to update queue entry",
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err))
	}
}

func (p *Processor) send(ctx context.Context, channel string, n *models.Notification) (string, sender.SendResult, error) {
	switch channel {
	case models.ChannelEmail:
		res, err := p.email.SendEmail(ctx, n.User.Email, n.Title, n.Message)
		return n.User.Email, res, err
	case models.ChannelSMS:
		res, err := p.sms.SendSMS(ctx, n.User.Phone, n.Message)
		return n.User.Phone, res, err
	case models.ChannelPush:
		res, err := p.push.SendPush(ctx, n.User.PushToken, n.Title, n.Message)
		return n.User.PushToken, res, err
	default:
		return "", sender.SendResult{}, fmt.Errorf("unknown channel %q", channel)
	}
}
