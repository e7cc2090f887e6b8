package stripe

import (
	"context"
	"encoding/json"
	"fmt"

	stripego "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/mkravets/denial-appeals/internal/core/domain"
)

// Gateway wraps the Stripe API behind the payment port. It holds its own
// client.API instead of setting the package-global key, so tests and worker
// processes can carry separate credentials.
type Gateway struct {
	api           *client.API
	webhookSecret string
	priceID       string
}

func New(secretKey, webhookSecret, priceID string) *Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Gateway{
		api:           api,
		webhookSecret: webhookSecret,
		priceID:       priceID,
	}
}

func (g *Gateway) RetrieveSession(ctx context.Context, sessionID string) (domain.PaymentEvent, error) {
	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return domain.PaymentEvent{}, fmt.Errorf("retrieve checkout session: %w", err)
	}
	return eventFromSession(session, "checkout.session.retrieved"), nil
}

// VerifyWebhook validates the Stripe signature and extracts the payment event.
// Event types other than checkout.session.completed come back with an empty
// letter ID and Paid=false; the caller ignores them.
func (g *Gateway) VerifyWebhook(payload []byte, signature string) (domain.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return domain.PaymentEvent{}, domain.WrapError(domain.ErrInvalidInput, "verify webhook", err)
	}

	if event.Type != "checkout.session.completed" {
		return domain.PaymentEvent{Type: string(event.Type)}, nil
	}

	var session stripego.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return domain.PaymentEvent{}, domain.WrapError(domain.ErrInvalidInput, "verify webhook", fmt.Errorf("unmarshal session: %w", err))
	}
	return eventFromSession(&session, string(event.Type)), nil
}

func eventFromSession(session *stripego.CheckoutSession, eventType string) domain.PaymentEvent {
	letterID := session.ClientReferenceID
	if letterID == "" {
		letterID = session.Metadata["letter_id"]
	}
	return domain.PaymentEvent{
		Type:      eventType,
		LetterID:  letterID,
		SessionID: session.ID,
		Paid:      session.PaymentStatus == stripego.CheckoutSessionPaymentStatusPaid,
	}
}

// Probe verifies the API key by fetching the configured price.
type Probe struct {
	gateway *Gateway
}

func NewProbe(gateway *Gateway) *Probe {
	return &Probe{gateway: gateway}
}

func (p *Probe) Name() string { return "stripe" }

func (p *Probe) Check(ctx context.Context) error {
	params := &stripego.PriceParams{}
	params.Context = ctx

	if _, err := p.gateway.api.Prices.Get(p.gateway.priceID, params); err != nil {
		return fmt.Errorf("stripe price lookup: %w", err)
	}
	return nil
}
