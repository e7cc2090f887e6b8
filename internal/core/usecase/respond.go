package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkravets/denial-appeals/internal/core/domain"
	"github.com/mkravets/denial-appeals/internal/core/ports"
)

// GenerateAppealUseCase drives the analyzed -> responded transition. A failed
// generation leaves the record untouched: nothing is persisted until the
// appeal text exists, so the operation is freely re-runnable.
type GenerateAppealUseCase struct {
	repo      ports.LetterRepository
	generator ports.AppealGenerator
}

func NewGenerateAppealUseCase(repo ports.LetterRepository, generator ports.AppealGenerator) *GenerateAppealUseCase {
	return &GenerateAppealUseCase{repo: repo, generator: generator}
}

func (uc *GenerateAppealUseCase) Respond(ctx context.Context, letterID string, opts domain.StyleOptions) (*domain.LetterRecord, error) {
	letter, err := uc.repo.GetByID(ctx, letterID)
	if err != nil {
		return nil, fmt.Errorf("fetch letter by id: %w", err)
	}
	if strings.TrimSpace(letter.Summary) == "" {
		return nil, domain.WrapError(domain.ErrInvalidTransition, "generate appeal", errors.New("letter has no summary; analyze it first"))
	}

	opts = opts.Normalize()

	appeal, err := uc.generator.GenerateAppeal(ctx, letter.Summary, opts)
	if err != nil {
		return nil, domain.WrapError(domain.ErrAdapterFailure, "generate appeal", err)
	}
	if strings.TrimSpace(appeal) == "" {
		return nil, domain.WrapError(domain.ErrAdapterFailure, "generate appeal", errors.New("generator returned empty appeal"))
	}

	if err := uc.repo.SaveResponse(ctx, letter.ID, letter.Version, appeal); err != nil {
		if domain.IsKind(err, domain.ErrConflict) {
			fresh, readErr := uc.repo.GetByID(ctx, letterID)
			if readErr == nil && fresh.Status == domain.StatusResponded {
				return fresh, nil
			}
		}
		return nil, fmt.Errorf("save appeal response: %w", err)
	}

	letter.AIResponse = appeal
	letter.Status = domain.StatusResponded
	letter.Version++
	return letter, nil
}
