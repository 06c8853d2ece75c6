package services

import (
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/refund"
	"github.com/stripe/stripe-go/v80/webhook"
)

// StripeClient abstracts the Stripe calls the payment service makes, so
// tests can swap in a fake.
type StripeClient interface {
	CreateIntent(amount int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error)
	GetIntent(id string) (*stripe.PaymentIntent, error)
	CreateRefund(paymentIntentID, note string) (*stripe.Refund, error)
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

type stripeClientImpl struct {
	webhookKey string
}

func NewStripeClient(secretKey, webhookKey string) StripeClient {
	stripe.Key = secretKey
	return &stripeClientImpl{webhookKey: webhookKey}
}

func (c *stripeClientImpl) CreateIntent(amount int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return paymentintent.New(params)
}

func (c *stripeClientImpl) GetIntent(id string) (*stripe.PaymentIntent, error) {
	return paymentintent.Get(id, nil)
}

// CreateRefund refunds the full intent. Stripe only accepts its enum for
// Reason, so the operator's free-text note travels in metadata.
func (c *stripeClientImpl) CreateRefund(paymentIntentID, note string) (*stripe.Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	if note != "" {
		params.AddMetadata("note", note)
	}
	return refund.New(params)
}

func (c *stripeClientImpl) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, c.webhookKey)
}
