package domain

import "time"

type LetterStatus string

const (
	StatusUploaded  LetterStatus = "uploaded"
	StatusAnalyzed  LetterStatus = "analyzed"
	StatusResponded LetterStatus = "responded"
	StatusError     LetterStatus = "error"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// LetterRecord is the single persistent entity of the pipeline. Status and the
// content fields it guards are mutated only through version-checked writes.
type LetterRecord struct {
	ID               string        `json:"id"`
	UserEmail        string        `json:"user_email"`
	PaymentSessionID string        `json:"payment_session_id,omitempty"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	PriceID          string        `json:"price_id,omitempty"`
	LetterText       string        `json:"letter_text,omitempty"`
	StorageKey       string        `json:"storage_key,omitempty"`
	Analysis         *Analysis     `json:"analysis,omitempty"`
	Summary          string        `json:"summary,omitempty"`
	AIResponse       string        `json:"ai_response,omitempty"`
	ErrorDetail      string        `json:"error_detail,omitempty"`
	Status           LetterStatus  `json:"status"`
	Version          int64         `json:"version"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Analysis is the structured extraction produced from the denial letter.
type Analysis struct {
	Insurer          string   `json:"insurer"`
	ClaimNumber      string   `json:"claim_number"`
	DenialReason     string   `json:"denial_reason"`
	Deadlines        []string `json:"deadlines"`
	PolicyReferences []string `json:"policy_references"`
}

const (
	ToneProfessional   = "professional"
	ToneConversational = "conversational"
	ToneAssertive      = "assertive"
	ToneDiplomatic     = "diplomatic"

	ApproachDefensive   = "defensive"
	ApproachCooperative = "cooperative"
	ApproachChallenging = "challenging"
	ApproachExplanatory = "explanatory"

	StyleDetailed  = "detailed"
	StyleConcise   = "concise"
	StyleTechnical = "technical"
	StylePersonal  = "personal"
)

// StyleOptions selects among fixed appeal instruction templates.
type StyleOptions struct {
	Tone     string `json:"tone"`
	Approach string `json:"approach"`
	Style    string `json:"style"`
}

var (
	recognizedTones = map[string]bool{
		ToneProfessional: true, ToneConversational: true, ToneAssertive: true, ToneDiplomatic: true,
	}
	recognizedApproaches = map[string]bool{
		ApproachDefensive: true, ApproachCooperative: true, ApproachChallenging: true, ApproachExplanatory: true,
	}
	recognizedStyles = map[string]bool{
		StyleDetailed: true, StyleConcise: true, StyleTechnical: true, StylePersonal: true,
	}
)

// Normalize fails closed: any unrecognized value becomes the documented default.
func (o StyleOptions) Normalize() StyleOptions {
	out := o
	if !recognizedTones[out.Tone] {
		out.Tone = ToneProfessional
	}
	if !recognizedApproaches[out.Approach] {
		out.Approach = ApproachCooperative
	}
	if !recognizedStyles[out.Style] {
		out.Style = StyleDetailed
	}
	return out
}

// PaymentEvent is a verified inbound event from the payment processor.
type PaymentEvent struct {
	Type      string `json:"type"`
	LetterID  string `json:"letter_id"`
	SessionID string `json:"session_id"`
	Paid      bool   `json:"paid"`
}
