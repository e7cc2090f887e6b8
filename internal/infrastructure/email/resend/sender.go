package resend

import (
	"context"
	"fmt"

	resendgo "github.com/resend/resend-go/v2"

	"github.com/mkravets/denial-appeals/internal/core/ports"
)

// Sender delivers transactional mail through the Resend API.
type Sender struct {
	client *resendgo.Client
	from   string
}

func New(apiKey, from string) *Sender {
	return &Sender{
		client: resendgo.NewClient(apiKey),
		from:   from,
	}
}

func (s *Sender) Send(ctx context.Context, msg ports.OutboundEmail) error {
	params := &resendgo.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Body,
	}
	if msg.Attachment != nil {
		params.Attachments = []*resendgo.Attachment{
			{
				Filename: msg.Attachment.Filename,
				Content:  msg.Attachment.Content,
			},
		}
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}

// Probe verifies the API key without sending mail.
type Probe struct {
	sender *Sender
}

func NewProbe(sender *Sender) *Probe {
	return &Probe{sender: sender}
}

func (p *Probe) Name() string { return "resend" }

func (p *Probe) Check(ctx context.Context) error {
	if _, err := p.sender.client.ApiKeys.ListWithContext(ctx); err != nil {
		return fmt.Errorf("resend api key check: %w", err)
	}
	return nil
}
