package services_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
)

func testLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

// ---- mock user repository ----

type mockUserRepo struct {
	user       *models.User
	users      map[uuid.UUID]*models.User
	findErr    error
	byEmail    *models.User
	byEmailErr error
	createErr  error
	created    *models.User
	updateErr  error
	updated    *models.User

	savedToken     *models.RefreshToken
	saveTokenErr   error
	storedToken    *models.RefreshToken
	storedTokenErr error
	revoked        []string
	revokeErr      error
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = uuid.New()
	m.created = user
	return nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, _ string) (*models.User, error) {
	return m.byEmail, m.byEmailErr
}

func (m *mockUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if m.users != nil {
		if u, ok := m.users[id]; ok {
			return u, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	return m.user, m.findErr
}

func (m *mockUserRepo) Update(_ context.Context, user *models.User) error {
	m.updated = user
	return m.updateErr
}

func (m *mockUserRepo) SaveRefreshToken(_ context.Context, token *models.RefreshToken) error {
	m.savedToken = token
	return m.saveTokenErr
}

func (m *mockUserRepo) FindRefreshToken(_ context.Context, _ string) (*models.RefreshToken, error) {
	return m.storedToken, m.storedTokenErr
}

func (m *mockUserRepo) RevokeRefreshToken(_ context.Context, tokenID string) error {
	if m.revokeErr != nil {
		return m.revokeErr
	}
	m.revoked = append(m.revoked, tokenID)
	return nil
}

func (m *mockUserRepo) RevokeUserTokens(_ context.Context, _ uuid.UUID) error { return nil }

// ---- mock doctor repository ----

type mockDoctorRepo struct {
	doctor     *models.Doctor
	findErr    error
	byUser     *models.Doctor
	byUserErr  error
	doctors    []models.DoctorWithRating
	total      int64
	listErr    error
	lastFilter models.DoctorFilter
	createErr  error
	updateErr  error
	updated    *models.Doctor
	summary    *models.RatingSummary
	summaryErr error
}

func (m *mockDoctorRepo) Create(_ context.Context, d *models.Doctor) error {
	if m.createErr != nil {
		return m.createErr
	}
	d.ID = uuid.New()
	return nil
}

func (m *mockDoctorRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Doctor, error) {
	return m.doctor, m.findErr
}

func (m *mockDoctorRepo) FindByUserID(_ context.Context, _ uuid.UUID) (*models.Doctor, error) {
	return m.byUser, m.byUserErr
}

func (m *mockDoctorRepo) FindAll(_ context.Context, filter models.DoctorFilter) ([]models.DoctorWithRating, int64, error) {
	m.lastFilter = filter
	return m.doctors, m.total, m.listErr
}

func (m *mockDoctorRepo) Update(_ context.Context, d *models.Doctor) error {
	m.updated = d
	return m.updateErr
}

func (m *mockDoctorRepo) RatingSummary(_ context.Context, _ uuid.UUID) (*models.RatingSummary, error) {
	return m.summary, m.summaryErr
}

// ---- mock appointment repository ----

type mockAppointmentRepo struct {
	insertErr  error
	inserted   *models.Appointment
	appt       *models.Appointment
	findErr    error
	appts      []models.Appointment
	total      int64
	listErr    error
	lastFilter models.AppointmentFilter
	updateErr  error
	updated    *models.Appointment
	booked     []string
	bookedErr  error
	due        []models.Appointment
	dueErr     error
	reminded   []uuid.UUID
	remindErr  error
}

func (m *mockAppointmentRepo) CreateInSlot(_ context.Context, appt *models.Appointment) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	appt.ID = uuid.New()
	m.inserted = appt
	return nil
}

func (m *mockAppointmentRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Appointment, error) {
	return m.appt, m.findErr
}

func (m *mockAppointmentRepo) FindAll(_ context.Context, filter models.AppointmentFilter) ([]models.Appointment, int64, error) {
	m.lastFilter = filter
	return m.appts, m.total, m.listErr
}

func (m *mockAppointmentRepo) Update(_ context.Context, appt *models.Appointment) error {
	m.updated = appt
	return m.updateErr
}

func (m *mockAppointmentRepo) BookedTimes(_ context.Context, _ uuid.UUID, _ string) ([]string, error) {
	return m.booked, m.bookedErr
}

func (m *mockAppointmentRepo) FindDueReminders(_ context.Context, _ string) ([]models.Appointment, error) {
	return m.due, m.dueErr
}

func (m *mockAppointmentRepo) MarkReminderSent(_ context.Context, id uuid.UUID) error {
	if m.remindErr != nil {
		return m.remindErr
	}
	m.reminded = append(m.reminded, id)
	return nil
}

// ---- mock review repository ----

type mockReviewRepo struct {
	createErr error
	created   *models.Review
	review    *models.Review
	findErr   error
	byAppt    *models.Review
	byApptErr error
	reviews   []models.Review
	total     int64
	listErr   error
	updateErr error
	updated   *models.Review
	deleteErr error
	deleted   []uuid.UUID
}

func (m *mockReviewRepo) Create(_ context.Context, review *models.Review) error {
	if m.createErr != nil {
		return m.createErr
	}
	review.ID = uuid.New()
	m.created = review
	return nil
}

func (m *mockReviewRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Review, error) {
	return m.review, m.findErr
}

func (m *mockReviewRepo) FindByAppointmentID(_ context.Context, _ uuid.UUID) (*models.Review, error) {
	return m.byAppt, m.byApptErr
}

func (m *mockReviewRepo) FindByDoctorID(_ context.Context, _ uuid.UUID, _, _ int) ([]models.Review, int64, error) {
	return m.reviews, m.total, m.listErr
}

func (m *mockReviewRepo) Update(_ context.Context, review *models.Review) error {
	m.updated = review
	return m.updateErr
}

func (m *mockReviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

// ---- mock payment repository ----

type mockPaymentRepo struct {
	createErr   error
	created     *models.Payment
	payment     *models.Payment
	findErr     error
	byAppt      *models.Payment
	byApptErr   error
	byIntent    *models.Payment
	byIntentErr error
	payments    []models.Payment
	total       int64
	listErr     error
	lastFilter  models.PaymentFilter
	updateErr   error
	updated     *models.Payment
}

func (m *mockPaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	if m.createErr != nil {
		return m.createErr
	}
	payment.ID = uuid.New()
	m.created = payment
	return nil
}

func (m *mockPaymentRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Payment, error) {
	return m.payment, m.findErr
}

func (m *mockPaymentRepo) FindByAppointmentID(_ context.Context, _ uuid.UUID) (*models.Payment, error) {
	return m.byAppt, m.byApptErr
}

func (m *mockPaymentRepo) FindByIntentID(_ context.Context, _ string) (*models.Payment, error) {
	return m.byIntent, m.byIntentErr
}

func (m *mockPaymentRepo) FindAll(_ context.Context, filter models.PaymentFilter) ([]models.Payment, int64, error) {
	m.lastFilter = filter
	return m.payments, m.total, m.listErr
}

func (m *mockPaymentRepo) Update(_ context.Context, payment *models.Payment) error {
	m.updated = payment
	return m.updateErr
}

// ---- mock notification repository ----

type mockNotificationRepo struct {
	enqueueErr   error
	enqueued     []*models.Notification
	entries      []*models.QueueEntry
	notification *models.Notification
	findErr      error
	list         []models.Notification
	total        int64
	listErr      error
	lastFilter   models.NotificationFilter
	unread       int64
	unreadErr    error
	markAffected int64
	markErr      error
	updateErr    error
	updated      *models.Notification

	claimable  []models.QueueEntry
	claimErr   error
	savedEntry *models.QueueEntry
	entryErr   error
	pending    int64
	pendingErr error

	entryList       []models.QueueEntry
	entryTotal      int64
	entryListErr    error
	lastEntryFilter models.QueueEntryFilter

	logRows       []models.DeliveryLog
	logErr        error
	logList       []models.DeliveryLog
	logTotal      int64
	logListErr    error
	lastLogFilter models.DeliveryLogFilter
}

func (m *mockNotificationRepo) CreateWithEntry(_ context.Context, n *models.Notification, entry *models.QueueEntry) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	n.ID = uuid.New()
	entry.NotificationID = n.ID
	m.enqueued = append(m.enqueued, n)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockNotificationRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Notification, error) {
	return m.notification, m.findErr
}

func (m *mockNotificationRepo) FindByUser(_ context.Context, filter models.NotificationFilter) ([]models.Notification, int64, error) {
	m.lastFilter = filter
	return m.list, m.total, m.listErr
}

func (m *mockNotificationRepo) UnreadCount(_ context.Context, _ uuid.UUID) (int64, error) {
	return m.unread, m.unreadErr
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, _, _ uuid.UUID) (int64, error) {
	return m.markAffected, m.markErr
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, _ uuid.UUID) (int64, error) {
	return m.markAffected, m.markErr
}

func (m *mockNotificationRepo) Update(_ context.Context, n *models.Notification) error {
	m.updated = n
	return m.updateErr
}

func (m *mockNotificationRepo) ClaimDue(_ context.Context, _ time.Time, _ int) ([]models.QueueEntry, error) {
	claimed := m.claimable
	m.claimable = nil
	return claimed, m.claimErr
}

func (m *mockNotificationRepo) UpdateEntry(_ context.Context, entry *models.QueueEntry) error {
	m.savedEntry = entry
	return m.entryErr
}

func (m *mockNotificationRepo) PendingEntries(_ context.Context, _ time.Time) (int64, error) {
	return m.pending, m.pendingErr
}

func (m *mockNotificationRepo) ListEntries(_ context.Context, _ time.Time, filter models.QueueEntryFilter) ([]models.QueueEntry, int64, error) {
	m.lastEntryFilter = filter
	return m.entryList, m.entryTotal, m.entryListErr
}

func (m *mockNotificationRepo) CreateLog(_ context.Context, log *models.DeliveryLog) error {
	if m.logErr != nil {
		return m.logErr
	}
	m.logRows = append(m.logRows, *log)
	return nil
}

func (m *mockNotificationRepo) FindLogs(_ context.Context, filter models.DeliveryLogFilter) ([]models.DeliveryLog, int64, error) {
	m.lastLogFilter = filter
	return m.logList, m.logTotal, m.logListErr
}

// ---- mock analytics repository ----

type mockAnalyticsRepo struct {
	overview    *models.OverviewStats
	overviewErr error
	byStatus    []models.StatusCount
	byStatusErr error
	perDay      []models.DailyCount
	perDayErr   error
	top         []models.TopDoctor
	topErr      error
	channels    []models.ChannelStats
	channelsErr error
	queue       *models.QueueStats
	queueErr    error
	export      []models.AppointmentExportRow
	exportErr   error
}

func (m *mockAnalyticsRepo) Overview(_ context.Context) (*models.OverviewStats, error) {
	return m.overview, m.overviewErr
}

func (m *mockAnalyticsRepo) AppointmentsByStatus(_ context.Context, _, _ string) ([]models.StatusCount, error) {
	return m.byStatus, m.byStatusErr
}

func (m *mockAnalyticsRepo) AppointmentsPerDay(_ context.Context, _, _ string) ([]models.DailyCount, error) {
	return m.perDay, m.perDayErr
}

func (m *mockAnalyticsRepo) TopDoctors(_ context.Context, _ int) ([]models.TopDoctor, error) {
	return m.top, m.topErr
}

func (m *mockAnalyticsRepo) ChannelStats(_ context.Context) ([]models.ChannelStats, error) {
	return m.channels, m.channelsErr
}

func (m *mockAnalyticsRepo) QueueStats(_ context.Context, _ time.Time) (*models.QueueStats, error) {
	return m.queue, m.queueErr
}

func (m *mockAnalyticsRepo) ExportAppointments(_ context.Context, _, _ string) ([]models.AppointmentExportRow, error) {
	return m.export, m.exportErr
}

// ---- fake Stripe client ----

type fakeStripeClient struct {
	intent    *stripe.PaymentIntent
	intentErr error
	fetched   *stripe.PaymentIntent
	fetchErr  error
	refund    *stripe.Refund
	refundErr error
	event     stripe.Event
	verifyErr error

	createdAmount   int64
	createdCurrency string
	refundedIntent  string
}

func (f *fakeStripeClient) CreateIntent(amount int64, currency string, _ map[string]string) (*stripe.PaymentIntent, error) {
	f.createdAmount = amount
	f.createdCurrency = currency
	return f.intent, f.intentErr
}

func (f *fakeStripeClient) GetIntent(_ string) (*stripe.PaymentIntent, error) {
	return f.fetched, f.fetchErr
}

func (f *fakeStripeClient) CreateRefund(paymentIntentID, _ string) (*stripe.Refund, error) {
	f.refundedIntent = paymentIntentID
	return f.refund, f.refundErr
}

func (f *fakeStripeClient) VerifyWebhook(_ []byte, _ string) (stripe.Event, error) {
	return f.event, f.verifyErr
}
