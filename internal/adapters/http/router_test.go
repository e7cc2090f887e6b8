package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkravets/denial-appeals/internal/core/domain"
	"github.com/mkravets/denial-appeals/internal/core/ports"
)

type uploaderFake struct {
	letter *domain.LetterRecord
	err    error
}

func (f *uploaderFake) Upload(_ context.Context, req ports.UploadRequest) (*domain.LetterRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	letter := *f.letter
	letter.UserEmail = req.UserEmail
	return &letter, nil
}

type analyzerFake struct {
	letter *domain.LetterRecord
	err    error
}

func (f *analyzerFake) Analyze(context.Context, string) (*domain.LetterRecord, error) {
	return f.letter, f.err
}

type responderFake struct {
	letter   *domain.LetterRecord
	err      error
	gotOpts  domain.StyleOptions
	gotCalls int
}

func (f *responderFake) Respond(_ context.Context, _ string, opts domain.StyleOptions) (*domain.LetterRecord, error) {
	f.gotOpts = opts
	f.gotCalls++
	return f.letter, f.err
}

type delivererFake struct {
	err            error
	gotDestination string
}

func (f *delivererFake) Deliver(_ context.Context, _, destination string) error {
	f.gotDestination = destination
	return f.err
}

type confirmerFake struct {
	err      error
	gotEvent domain.PaymentEvent
}

func (f *confirmerFake) Confirm(_ context.Context, event domain.PaymentEvent) error {
	f.gotEvent = event
	return f.err
}

type readerFake struct {
	letter *domain.LetterRecord
	err    error
}

func (f *readerFake) GetByID(context.Context, string) (*domain.LetterRecord, error) {
	return f.letter, f.err
}

type readinessFake struct {
	report domain.ReadinessReport
}

func (f *readinessFake) CheckAll(context.Context) domain.ReadinessReport {
	return f.report
}

type gatewayFake struct {
	event domain.PaymentEvent
	err   error
}

func (f *gatewayFake) RetrieveSession(context.Context, string) (domain.PaymentEvent, error) {
	return f.event, f.err
}

func (f *gatewayFake) VerifyWebhook([]byte, string) (domain.PaymentEvent, error) {
	return f.event, f.err
}

func sampleLetter(status domain.LetterStatus) *domain.LetterRecord {
	return &domain.LetterRecord{
		ID:        "ltr-1",
		UserEmail: "member@example.com",
		Status:    status,
		Version:   1,
	}
}

func newTestRouter(opts RouterOptions) http.Handler {
	if opts.Service == "" {
		opts.Service = "api-test"
	}
	return NewRouter(opts).Handler()
}

func TestUploadLetterJSON(t *testing.T) {
	handler := newTestRouter(RouterOptions{
		Uploader: &uploaderFake{letter: sampleLetter(domain.StatusUploaded)},
	})

	body := strings.NewReader(`{"user_email":"member@example.com","letter_text":"denied"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/letters", body)
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", res.Code)
	}
	var letter domain.LetterRecord
	if err := json.NewDecoder(res.Body).Decode(&letter); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if letter.Status != domain.StatusUploaded {
		t.Fatalf("letter status = %q", letter.Status)
	}
	if res.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestUploadLetterInvalidInputReturns400(t *testing.T) {
	handler := newTestRouter(RouterOptions{
		Uploader: &uploaderFake{err: domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("email required"))},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/letters", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
}

func TestGetLetterByID(t *testing.T) {
	handler := newTestRouter(RouterOptions{
		Reader: &readerFake{letter: sampleLetter(domain.StatusAnalyzed)},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/letters/ltr-1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
}

func TestGetLetterNotFoundReturns404(t *testing.T) {
	handler := newTestRouter(RouterOptions{
		Reader: &readerFake{err: domain.WrapError(domain.ErrLetterNotFound, "get letter", errors.New("id ghost"))},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/letters/ghost", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", res.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	handler := newTestRouter(RouterOptions{
		Analyzer: &analyzerFake{letter: sampleLetter(domain.StatusAnalyzed)},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/letters/ltr-1/analyze", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
}

func TestAnalyzeConflictReturns409(t *testing.T) {
	handler := newTestRouter(RouterOptions{
		Analyzer: &analyzerFake{err: domain.WrapError(domain.ErrConflict, "save analysis", errors.New("stale version"))},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/letters/ltr-1/analyze", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", res.Code)
	}
}

func TestAnalyzeTemporaryFailureReturns503(t *testing.T) {
	handler := newTestRouter(RouterOptions{
		Analyzer: &analyzerFake{err: domain.WrapError(domain.ErrTemporary, "openai.analyze", errors.New("circuit open"))},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/letters/ltr-1/analyze", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", res.Code)
	}
}

func TestRespondEndpointPassesStyleOptions(t *testing.T) {
	responder := &responderFake{letter: sampleLetter(domain.StatusResponded)}
	handler := newTestRouter(RouterOptions{Responder: responder})

	body := strings.NewReader(`{"tone":"assertive","approach":"challenging","style":"concise"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/letters/ltr-1/respond", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	if responder.gotOpts.Tone != domain.ToneAssertive {
		t.Fatalf("tone = %q", responder.gotOpts.Tone)
	}
}

func TestRespondEndpointEmptyBody(t *testing.T) {
	responder := &responderFake{letter: sampleLetter(domain.StatusResponded)}
	handler := newTestRouter(RouterOptions{Responder: responder})

	req := httptest.NewRequest(http.MethodPost, "/v1/letters/ltr-1/respond", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	if responder.gotCalls != 1 {
		t.Fatalf("respond calls = %d", responder.gotCalls)
	}
}

func TestRespondBeforeAnalyzeReturns409(t *testing.T) {
	handler := newTestRouter(RouterOptions{
		Responder: &responderFake{err: domain.WrapError(domain.ErrInvalidTransition, "generate appeal", errors.New("no summary"))},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/letters/ltr-1/respond", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", res.Code)
	}
}

func TestDeliverDefaultsToUploaderEmail(t *testing.T) {
	deliverer := &delivererFake{}
	handler := newTestRouter(RouterOptions{
		Deliverer: deliverer,
		Reader:    &readerFake{letter: sampleLetter(domain.StatusResponded)},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/letters/ltr-1/deliver", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	if deliverer.gotDestination != "member@example.com" {
		t.Fatalf("destination = %q", deliverer.gotDestination)
	}
}

func TestDeliverExplicitDestination(t *testing.T) {
	deliverer := &delivererFake{}
	handler := newTestRouter(RouterOptions{Deliverer: deliverer})

	body := strings.NewReader(`{"destination":"other@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/letters/ltr-1/deliver", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	if deliverer.gotDestination != "other@example.com" {
		t.Fatalf("destination = %q", deliverer.gotDestination)
	}
}

func TestPaymentWebhookConfirms(t *testing.T) {
	confirmer := &confirmerFake{}
	handler := newTestRouter(RouterOptions{
		Confirmer: confirmer,
		Payments: &gatewayFake{event: domain.PaymentEvent{
			Type:      "checkout.session.completed",
			LetterID:  "ltr-1",
			SessionID: "cs_123",
			Paid:      true,
		}},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/payment", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
	if confirmer.gotEvent.LetterID != "ltr-1" || !confirmer.gotEvent.Paid {
		t.Fatalf("unexpected event: %+v", confirmer.gotEvent)
	}
}

func TestPaymentWebhookBadSignatureReturns400(t *testing.T) {
	handler := newTestRouter(RouterOptions{
		Confirmer: &confirmerFake{},
		Payments:  &gatewayFake{err: domain.WrapError(domain.ErrInvalidInput, "verify webhook", errors.New("bad signature"))},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/payment", strings.NewReader(`{}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Code)
	}
}

func TestReadyzReports503WhenProbeFails(t *testing.T) {
	handler := newTestRouter(RouterOptions{
		Readiness: &readinessFake{report: domain.ReadinessReport{
			AllPassed: false,
			Probes: []domain.ProbeResult{
				{Name: "postgres", OK: true, ElapsedMS: 3},
				{Name: "stripe", OK: false, ElapsedMS: 12, Detail: "invalid api key"},
			},
		}},
	})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", res.Code)
	}
	var report domain.ReadinessReport
	if err := json.NewDecoder(res.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Probes) != 2 {
		t.Fatalf("probes = %d, want 2", len(report.Probes))
	}
}

func TestReadyzReports200WhenAllPass(t *testing.T) {
	handler := newTestRouter(RouterOptions{
		Readiness: &readinessFake{report: domain.ReadinessReport{
			AllPassed: true,
			Probes:    []domain.ProbeResult{{Name: "postgres", OK: true}},
		}},
	})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.Code)
	}
}
