package ports

import (
	"context"
	"io"

	"github.com/mkravets/denial-appeals/internal/core/domain"
)

// LetterRepository persists letter state. The Save* methods are conditional
// writes guarded by the record version: content and status land in a single
// statement, and a stale version yields domain.ErrConflict.
type LetterRepository interface {
	Create(ctx context.Context, letter *domain.LetterRecord) error
	GetByID(ctx context.Context, id string) (*domain.LetterRecord, error)
	SaveAnalysis(ctx context.Context, id string, version int64, analysis domain.Analysis, summary string) error
	SaveResponse(ctx context.Context, id string, version int64, aiResponse string) error
	MarkError(ctx context.Context, id string, version int64, detail string) error
	UpdatePayment(ctx context.Context, id, sessionID string, status domain.PaymentStatus) error
	Ping(ctx context.Context) error
}

// AppealGenerator is the generative-text boundary.
type AppealGenerator interface {
	AnalyzeLetter(ctx context.Context, letterText string) (domain.Analysis, string, error)
	GenerateAppeal(ctx context.Context, summary string, opts domain.StyleOptions) (string, error)
}

// PaymentGateway wraps the payment processor, read-only from the core's
// perspective.
type PaymentGateway interface {
	RetrieveSession(ctx context.Context, sessionID string) (domain.PaymentEvent, error)
	VerifyWebhook(payload []byte, signature string) (domain.PaymentEvent, error)
}

// OutboundEmail is a single transactional message with an optional attachment.
type OutboundEmail struct {
	To         string
	Subject    string
	Body       string
	Attachment *EmailAttachment
}

type EmailAttachment struct {
	Filename string
	Content  []byte
}

// EmailSender submits one transactional message.
type EmailSender interface {
	Send(ctx context.Context, msg OutboundEmail) error
}

// ObjectStorage stores uploaded letters and rendered appeal documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// DocumentRenderer turns appeal text into a binary document.
type DocumentRenderer interface {
	Render(ctx context.Context, letter *domain.LetterRecord) ([]byte, error)
}

// LetterTextExtractor recovers raw text from a stored letter upload.
type LetterTextExtractor interface {
	Extract(ctx context.Context, letter *domain.LetterRecord) (string, error)
}

// MessageQueue publishes/consumes payment-confirmed events.
type MessageQueue interface {
	PublishLetterPaid(ctx context.Context, letterID string) error
	SubscribeLetterPaid(ctx context.Context, handler func(context.Context, string) error) error
}

// DependencyProbe verifies one external dependency is reachable and
// credentialed. Implementations must return quickly once ctx is done.
type DependencyProbe interface {
	Name() string
	Check(ctx context.Context) error
}
