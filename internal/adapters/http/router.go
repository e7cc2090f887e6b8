package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkravets/denial-appeals/internal/core/domain"
	"github.com/mkravets/denial-appeals/internal/core/ports"
	"github.com/mkravets/denial-appeals/internal/observability/metrics"
)

const webhookBodyLimit = int64(65536)

type Router struct {
	service string

	uploader  ports.LetterUploader
	analyzer  ports.LetterAnalyzer
	responder ports.AppealResponder
	deliverer ports.AppealDeliverer
	confirmer ports.PaymentConfirmer
	reader    ports.LetterReader
	readiness ports.ReadinessChecker
	payments  ports.PaymentGateway

	serverMetrics *metrics.HTTPServerMetrics

	rateLimitRPS     float64
	rateLimitBurst   int
	maxInFlight      int
	backpressureWait time.Duration
}

type RouterOptions struct {
	Service string

	Uploader  ports.LetterUploader
	Analyzer  ports.LetterAnalyzer
	Responder ports.AppealResponder
	Deliverer ports.AppealDeliverer
	Confirmer ports.PaymentConfirmer
	Reader    ports.LetterReader
	Readiness ports.ReadinessChecker
	Payments  ports.PaymentGateway

	ServerMetrics *metrics.HTTPServerMetrics

	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
}

func NewRouter(options RouterOptions) *Router {
	service := options.Service
	if service == "" {
		service = "api"
	}
	return &Router{
		service:          service,
		uploader:         options.Uploader,
		analyzer:         options.Analyzer,
		responder:        options.Responder,
		deliverer:        options.Deliverer,
		confirmer:        options.Confirmer,
		reader:           options.Reader,
		readiness:        options.Readiness,
		payments:         options.Payments,
		serverMetrics:    options.ServerMetrics,
		rateLimitRPS:     options.RateLimitRPS,
		rateLimitBurst:   options.RateLimitBurst,
		maxInFlight:      options.MaxInFlight,
		backpressureWait: options.BackpressureWait,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/readyz", rt.readyz)
	mux.HandleFunc("/v1/letters", rt.uploadLetter)
	mux.HandleFunc("/v1/letters/", rt.letterByID)
	mux.HandleFunc("/v1/webhooks/payment", rt.paymentWebhook)
	if rt.serverMetrics != nil {
		mux.Handle("/metrics", rt.serverMetrics.Handler())
	}

	var handler http.Handler = mux
	if rt.maxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.maxInFlight, rt.backpressureWait)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	if rt.serverMetrics != nil {
		handler = rt.serverMetrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz runs every dependency probe and reports per-dependency detail. The
// report is always written in full; only the status code flips.
func (rt *Router) readyz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	report := rt.readiness.CheckAll(r.Context())
	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordReadiness(rt.service, report.AllPassed)
	}

	status := http.StatusOK
	if !report.AllPassed {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (rt *Router) uploadLetter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var uploadReq ports.UploadRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
			return
		}
		defer file.Close()
		uploadReq = ports.UploadRequest{
			UserEmail: r.FormValue("user_email"),
			PriceID:   r.FormValue("price_id"),
			Filename:  fileHeader.Filename,
			File:      file,
		}
	} else {
		var req struct {
			UserEmail  string `json:"user_email"`
			PriceID    string `json:"price_id"`
			LetterText string `json:"letter_text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		uploadReq = ports.UploadRequest{
			UserEmail:  req.UserEmail,
			PriceID:    req.PriceID,
			LetterText: req.LetterText,
		}
	}

	letter, err := rt.uploader.Upload(r.Context(), uploadReq)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, letter)
}

// letterByID serves GET /v1/letters/{id} and the POST transition endpoints
// /v1/letters/{id}/{analyze|respond|deliver}.
func (rt *Router) letterByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/letters/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "letter id is required"})
		return
	}

	switch action {
	case "":
		rt.getLetter(w, r, id)
	case "analyze":
		rt.analyzeLetter(w, r, id)
	case "respond":
		rt.respondLetter(w, r, id)
	case "deliver":
		rt.deliverLetter(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (rt *Router) getLetter(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	letter, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, letter)
}

func (rt *Router) analyzeLetter(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	start := time.Now()
	letter, err := rt.analyzer.Analyze(r.Context(), id)
	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordTransition(rt.service, "analyze", time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, letter)
}

func (rt *Router) respondLetter(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var opts domain.StyleOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	letter, err := rt.responder.Respond(r.Context(), id, opts)
	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordTransition(rt.service, "respond", time.Since(start), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, letter)
}

func (rt *Router) deliverLetter(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Destination string `json:"destination"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	// Default destination is the uploader's address on record.
	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		letter, err := rt.reader.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		destination = letter.UserEmail
	}

	err := rt.deliverer.Deliver(r.Context(), id, destination)
	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordDelivery(rt.service, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "delivered", "destination": destination})
}

func (rt *Router) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	event, err := rt.payments.VerifyWebhook(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := rt.confirmer.Confirm(r.Context(), event); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
