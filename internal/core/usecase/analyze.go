package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkravets/denial-appeals/internal/core/domain"
	"github.com/mkravets/denial-appeals/internal/core/ports"
)

// AnalyzeLetterUseCase drives the uploaded -> analyzed transition. Analysis
// content and status land in one version-guarded write, so a reader can never
// observe status=analyzed without analysis and summary.
type AnalyzeLetterUseCase struct {
	repo      ports.LetterRepository
	extractor ports.LetterTextExtractor
	generator ports.AppealGenerator
}

func NewAnalyzeLetterUseCase(
	repo ports.LetterRepository,
	extractor ports.LetterTextExtractor,
	generator ports.AppealGenerator,
) *AnalyzeLetterUseCase {
	return &AnalyzeLetterUseCase{
		repo:      repo,
		extractor: extractor,
		generator: generator,
	}
}

func (uc *AnalyzeLetterUseCase) Analyze(ctx context.Context, letterID string) (*domain.LetterRecord, error) {
	letter, err := uc.repo.GetByID(ctx, letterID)
	if err != nil {
		return nil, fmt.Errorf("fetch letter by id: %w", err)
	}

	// Already past this transition: observing the newer state is a no-op
	// success, never a regression.
	if letter.Status == domain.StatusAnalyzed || letter.Status == domain.StatusResponded {
		return letter, nil
	}

	text, err := uc.letterText(ctx, letter)
	if err != nil {
		return nil, err
	}

	analysis, summary, err := uc.generator.AnalyzeLetter(ctx, text)
	if err != nil {
		return nil, uc.recordFailure(ctx, letter, err)
	}
	if strings.TrimSpace(summary) == "" {
		err := domain.WrapError(domain.ErrAdapterFailure, "analyze letter", errors.New("generator returned empty summary"))
		return nil, uc.recordFailure(ctx, letter, err)
	}

	if err := uc.repo.SaveAnalysis(ctx, letter.ID, letter.Version, analysis, summary); err != nil {
		return uc.resolveSaveConflict(ctx, letter.ID, err)
	}

	letter.Analysis = &analysis
	letter.Summary = summary
	letter.Status = domain.StatusAnalyzed
	letter.ErrorDetail = ""
	letter.Version++
	return letter, nil
}

func (uc *AnalyzeLetterUseCase) letterText(ctx context.Context, letter *domain.LetterRecord) (string, error) {
	if strings.TrimSpace(letter.LetterText) != "" {
		return letter.LetterText, nil
	}
	if letter.StorageKey == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "analyze letter", errors.New("record has neither letter text nor a stored upload"))
	}
	text, err := uc.extractor.Extract(ctx, letter)
	if err != nil {
		return "", fmt.Errorf("extract letter text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "analyze letter", errors.New("stored upload yielded no text"))
	}
	return text, nil
}

// recordFailure writes status=error without touching analysis or summary.
// A concurrent winner takes precedence: if the error write loses the version
// race, the adapter failure is still what the caller sees.
func (uc *AnalyzeLetterUseCase) recordFailure(ctx context.Context, letter *domain.LetterRecord, cause error) error {
	failure := domain.WrapError(domain.ErrAdapterFailure, "analyze letter", cause)
	if markErr := uc.repo.MarkError(ctx, letter.ID, letter.Version, cause.Error()); markErr != nil {
		if domain.IsKind(markErr, domain.ErrConflict) {
			return failure
		}
		return fmt.Errorf("%w; mark error status: %v", failure, markErr)
	}
	return failure
}

func (uc *AnalyzeLetterUseCase) resolveSaveConflict(ctx context.Context, letterID string, saveErr error) (*domain.LetterRecord, error) {
	if !domain.IsKind(saveErr, domain.ErrConflict) {
		return nil, fmt.Errorf("save analysis: %w", saveErr)
	}

	fresh, err := uc.repo.GetByID(ctx, letterID)
	if err != nil {
		return nil, fmt.Errorf("re-read after conflict: %w", err)
	}
	if fresh.Status == domain.StatusAnalyzed || fresh.Status == domain.StatusResponded {
		return fresh, nil
	}
	return nil, saveErr
}
