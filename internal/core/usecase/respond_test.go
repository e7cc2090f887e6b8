package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/mkravets/denial-appeals/internal/core/domain"
)

func analyzedLetter() *domain.LetterRecord {
	return &domain.LetterRecord{
		ID:        "ltr-1",
		UserEmail: "user@example.com",
		Summary:   "Claim 123 was denied because the filing deadline passed.",
		Status:    domain.StatusAnalyzed,
		Version:   2,
	}
}

func TestRespondSuccess(t *testing.T) {
	repo := &letterRepoFake{letter: analyzedLetter()}
	gen := &generatorFake{appeal: "Dear Claims Department,\n\n...\n\nSincerely,"}
	uc := NewGenerateAppealUseCase(repo, gen)

	letter, err := uc.Respond(context.Background(), "ltr-1", domain.StyleOptions{Tone: domain.ToneAssertive})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if letter.Status != domain.StatusResponded {
		t.Fatalf("expected status responded, got %s", letter.Status)
	}
	if letter.AIResponse == "" {
		t.Fatalf("expected non-empty appeal text")
	}
	if len(repo.savedResponses) != 1 {
		t.Fatalf("expected one response write, got %d", len(repo.savedResponses))
	}
}

func TestRespondRejectsEmptySummary(t *testing.T) {
	letter := analyzedLetter()
	letter.Summary = ""
	repo := &letterRepoFake{letter: letter}
	gen := &generatorFake{appeal: "text"}
	uc := NewGenerateAppealUseCase(repo, gen)

	_, err := uc.Respond(context.Background(), "ltr-1", domain.StyleOptions{})
	if !domain.IsKind(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if repo.letter.Status != domain.StatusAnalyzed {
		t.Fatalf("status must be unchanged, got %s", repo.letter.Status)
	}
	if gen.appealCalls != 0 {
		t.Fatalf("generator must not be invoked, got %d calls", gen.appealCalls)
	}
}

func TestRespondFailureLeavesStatusUnchanged(t *testing.T) {
	repo := &letterRepoFake{letter: analyzedLetter()}
	gen := &generatorFake{appealErr: errors.New("rate limited")}
	uc := NewGenerateAppealUseCase(repo, gen)

	_, err := uc.Respond(context.Background(), "ltr-1", domain.StyleOptions{})
	if !domain.IsKind(err, domain.ErrAdapterFailure) {
		t.Fatalf("expected ErrAdapterFailure, got %v", err)
	}
	if repo.letter.Status != domain.StatusAnalyzed {
		t.Fatalf("failed generation must not touch status, got %s", repo.letter.Status)
	}
	if len(repo.markedErrors) != 0 {
		t.Fatalf("failed generation must not write error status, got %v", repo.markedErrors)
	}
}

func TestRespondNormalizesUnrecognizedStyleOptions(t *testing.T) {
	repo := &letterRepoFake{letter: analyzedLetter()}
	gen := &generatorFake{appeal: "appeal text"}
	uc := NewGenerateAppealUseCase(repo, gen)

	_, err := uc.Respond(context.Background(), "ltr-1", domain.StyleOptions{
		Tone:     "sarcastic",
		Approach: "cooperative",
		Style:    "HAIKU",
	})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(gen.appealPrompts) != 1 {
		t.Fatalf("expected one generator call, got %d", len(gen.appealPrompts))
	}
	got := gen.appealPrompts[0]
	if got.Tone != domain.ToneProfessional {
		t.Fatalf("unrecognized tone must fail closed to professional, got %q", got.Tone)
	}
	if got.Approach != domain.ApproachCooperative {
		t.Fatalf("recognized approach must pass through, got %q", got.Approach)
	}
	if got.Style != domain.StyleDetailed {
		t.Fatalf("unrecognized style must fail closed to detailed, got %q", got.Style)
	}
}

func TestRespondRegenerationOverwritesPriorAppeal(t *testing.T) {
	letter := analyzedLetter()
	letter.Status = domain.StatusResponded
	letter.AIResponse = "old appeal"
	letter.Version = 3
	repo := &letterRepoFake{letter: letter}
	gen := &generatorFake{appeal: "new appeal"}
	uc := NewGenerateAppealUseCase(repo, gen)

	result, err := uc.Respond(context.Background(), "ltr-1", domain.StyleOptions{})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if result.AIResponse != "new appeal" {
		t.Fatalf("expected regenerated appeal, got %q", result.AIResponse)
	}
}
