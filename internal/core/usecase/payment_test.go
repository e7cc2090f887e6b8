package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/mkravets/denial-appeals/internal/core/domain"
)

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishLetterPaid(_ context.Context, letterID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, letterID)
	return nil
}

func (f *queueFake) SubscribeLetterPaid(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func TestConfirmPaymentMarksPaidAndPublishes(t *testing.T) {
	repo := &letterRepoFake{letter: uploadedLetter()}
	queue := &queueFake{}
	uc := NewConfirmPaymentUseCase(repo, queue)

	event := domain.PaymentEvent{LetterID: "ltr-1", SessionID: "cs_123", Paid: true}
	if err := uc.Confirm(context.Background(), event); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if repo.letter.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("expected payment status paid, got %s", repo.letter.PaymentStatus)
	}
	if repo.letter.PaymentSessionID != "cs_123" {
		t.Fatalf("expected session id persisted, got %q", repo.letter.PaymentSessionID)
	}
	if len(queue.published) != 1 || queue.published[0] != "ltr-1" {
		t.Fatalf("expected one letter-paid event, got %v", queue.published)
	}
}

func TestConfirmPaymentIgnoresUnpaidEvents(t *testing.T) {
	repo := &letterRepoFake{letter: uploadedLetter()}
	queue := &queueFake{}
	uc := NewConfirmPaymentUseCase(repo, queue)

	if err := uc.Confirm(context.Background(), domain.PaymentEvent{LetterID: "ltr-1", Paid: false}); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if len(repo.payments) != 0 {
		t.Fatalf("unpaid event must not touch the record, got %v", repo.payments)
	}
	if len(queue.published) != 0 {
		t.Fatalf("unpaid event must not publish, got %v", queue.published)
	}
}

func TestConfirmPaymentRequiresLetterID(t *testing.T) {
	uc := NewConfirmPaymentUseCase(&letterRepoFake{letter: uploadedLetter()}, &queueFake{})
	err := uc.Confirm(context.Background(), domain.PaymentEvent{Paid: true})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
