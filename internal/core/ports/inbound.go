package ports

import (
	"context"
	"io"

	"github.com/mkravets/denial-appeals/internal/core/domain"
)

// LetterUploader is the inbound contract for the upload path.
type LetterUploader interface {
	Upload(ctx context.Context, req UploadRequest) (*domain.LetterRecord, error)
}

// UploadRequest carries either raw letter text or a PDF stream to be stored
// and extracted during analysis.
type UploadRequest struct {
	UserEmail  string
	PriceID    string
	LetterText string
	Filename   string
	File       io.Reader
}

// LetterAnalyzer drives the uploaded -> analyzed transition.
type LetterAnalyzer interface {
	Analyze(ctx context.Context, letterID string) (*domain.LetterRecord, error)
}

// AppealResponder drives the analyzed -> responded transition.
type AppealResponder interface {
	Respond(ctx context.Context, letterID string, opts domain.StyleOptions) (*domain.LetterRecord, error)
}

// AppealDeliverer renders the finished appeal and emails it. Does not mutate
// lifecycle status; resends are allowed.
type AppealDeliverer interface {
	Deliver(ctx context.Context, letterID, destination string) error
}

// PaymentConfirmer applies a verified payment event to the record and
// triggers downstream analysis.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, event domain.PaymentEvent) error
}

// LetterReader is the inbound read model for letter state.
type LetterReader interface {
	GetByID(ctx context.Context, id string) (*domain.LetterRecord, error)
}

// ReadinessChecker reports whether every external dependency is usable.
type ReadinessChecker interface {
	CheckAll(ctx context.Context) domain.ReadinessReport
}
