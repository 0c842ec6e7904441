package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/glvault/glvault/pkg/audit"
	"github.com/glvault/glvault/pkg/auth"
	"github.com/glvault/glvault/pkg/log"
	"github.com/glvault/glvault/pkg/metrics"
	"github.com/glvault/glvault/pkg/types"
	"github.com/glvault/glvault/pkg/vault"
	"github.com/glvault/glvault/pkg/vaulterr"
)

// baseHeaders are merged under any caller-supplied headers on every
// upstream dispatch.
var baseHeaders = map[string]string{
	"User-Agent": "glvault-relay/1",
	"Accept":     "application/json",
}

// Handler implements POST /proxy as the VERIFY → RATE → DECRYPT →
// DISPATCH → SANITIZE → AUDIT state machine.
type Handler struct {
	verifier       *auth.Verifier
	store          *vault.Store
	auditLog       *audit.Log
	paramTable     map[string]string
	upstreamClient *http.Client
}

// NewHandler builds a relay Handler. paramTable may be nil, in which
// case the fixed default table is used; a non-nil table is used
// as-is, so operators who want to extend it should start from a copy
// of DefaultHostParamTable().
func NewHandler(verifier *auth.Verifier, store *vault.Store, auditLog *audit.Log, paramTable map[string]string, upstreamTimeout time.Duration) *Handler {
	if paramTable == nil {
		paramTable = defaultHostParamTable
	}
	if upstreamTimeout <= 0 {
		upstreamTimeout = 10 * time.Second
	}
	return &Handler{
		verifier:       verifier,
		store:          store,
		auditLog:       auditLog,
		paramTable:     paramTable,
		upstreamClient: &http.Client{Timeout: upstreamTimeout},
	}
}

// DefaultHostParamTable returns a copy of the fixed host-suffix table,
// for operators building an extended table.
func DefaultHostParamTable() map[string]string {
	out := make(map[string]string, len(defaultHostParamTable))
	for k, v := range defaultHostParamTable {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.ErrorResponse{Error: message})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	timer := metrics.NewTimer()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req types.RelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	// VERIFY
	sigHeader := r.Header.Get("Authorization")
	const sigPrefix = "Signature "
	if !strings.HasPrefix(sigHeader, sigPrefix) {
		writeError(w, http.StatusUnauthorized, "missing or malformed Authorization header")
		return
	}
	providedSig := strings.TrimPrefix(sigHeader, sigPrefix)

	fields := auth.RelayRequestFields{
		Alias:     req.Alias,
		Method:    strings.ToUpper(req.Method),
		Path:      req.Path,
		Timestamp: req.Timestamp,
		Nonce:     req.Nonce,
	}
	if reason := h.verifier.VerifyRelayRequest(fields, providedSig, auth.NowMS()); reason != "" {
		// VERIFY failures are attributable only to the signer and are
		// never audited.
		writeError(w, http.StatusUnauthorized, reason)
		return
	}

	caller := r.Header.Get("X-Caller-Id")

	// RATE
	incr, err := h.store.IncrementUsage(req.Alias)
	if err != nil {
		if re, ok := vaulterr.As(err); ok && re.Kind == vaulterr.KindNotFound {
			h.audit(req, caller, http.StatusNotFound, timer.Duration(), "Unknown alias")
			writeError(w, http.StatusNotFound, "unknown alias")
			return
		}
		log.WithAlias(req.Alias).Error().Err(err).Msg("relay: incrementUsage failed")
		h.audit(req, caller, http.StatusInternalServerError, timer.Duration(), "Internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !incr.Allowed {
		h.audit(req, caller, http.StatusTooManyRequests, timer.Duration(), "Rate limit exceeded")
		metrics.RecordQuotaRejected()
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":           "rate limit exceeded",
			"remaining_quota": 0,
			"retry_after_ms":  h.store.WindowMS(),
		})
		return
	}

	// DECRYPT
	record, err := h.store.GetRecord(req.Alias)
	if err != nil {
		if re, ok := vaulterr.As(err); ok && re.Kind == vaulterr.KindNotFound {
			h.audit(req, caller, http.StatusNotFound, timer.Duration(), "Unknown alias")
			writeError(w, http.StatusNotFound, "unknown alias")
			return
		}
		log.WithAlias(req.Alias).Error().Err(err).Msg("relay: getRecord failed")
		h.audit(req, caller, http.StatusInternalServerError, timer.Duration(), "Internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	credential, err := h.store.GetPlaintext(req.Alias)
	if err != nil {
		re, _ := vaulterr.As(err)
		h.audit(req, caller, http.StatusInternalServerError, timer.Duration(), "Integrity check failed")
		if re != nil && re.Kind == vaulterr.KindIntegrityFail {
			writeError(w, http.StatusInternalServerError, "credential integrity check failed")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// DISPATCH
	upstreamURL, err := buildUpstreamURL(h.paramTable, record.BaseURL, req.Path, credential)
	if err != nil {
		h.audit(req, caller, http.StatusBadGateway, timer.Duration(), "Invalid upstream URL")
		writeError(w, http.StatusBadGateway, "upstream dispatch failed")
		return
	}

	status, data, dispatchErr := h.dispatch(r.Context(), fields.Method, upstreamURL, req.Body, req.Headers)
	latency := timer.Duration()

	if dispatchErr != nil {
		h.audit(req, caller, http.StatusBadGateway, latency, dispatchErr.Error())
		metrics.RecordRelay(http.StatusBadGateway, timer)
		writeJSON(w, http.StatusBadGateway, types.RelayResponse{
			Status:         http.StatusBadGateway,
			Data:           nil,
			Cached:         false,
			LatencyMS:      latency.Milliseconds(),
			RemainingQuota: incr.Remaining,
		})
		return
	}

	// SANITIZE + AUDIT
	h.audit(req, caller, status, latency, "")
	metrics.RecordRelay(status, timer)

	writeJSON(w, http.StatusOK, types.RelayResponse{
		Status:         status,
		Data:           data,
		Cached:         false,
		LatencyMS:      latency.Milliseconds(),
		RemainingQuota: incr.Remaining,
	})
}

// dispatch forwards the caller's intent to the upstream API and
// returns its status code and parsed body.
func (h *Handler) dispatch(ctx context.Context, method, upstreamURL string, body interface{}, headers map[string]string) (int, interface{}, error) {
	var bodyReader io.Reader
	if method != http.MethodGet && body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, upstreamURL, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("building upstream request: %w", err)
	}

	for k, v := range baseHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.upstreamClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading upstream response: %w", err)
	}

	var data interface{}
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &data); err != nil {
			data = string(raw)
		}
	} else {
		data = string(raw)
	}

	return resp.StatusCode, data, nil
}

func (h *Handler) audit(req types.RelayRequest, caller string, status int, latency time.Duration, errMsg string) {
	entry := &types.AuditEntry{
		Alias:     req.Alias,
		Caller:    caller,
		Path:      req.Path,
		Method:    strings.ToUpper(req.Method),
		Status:    status,
		LatencyMS: latency.Milliseconds(),
		Error:     errMsg,
	}
	// Best-effort: audit failures must never fail the response the
	// caller has already begun to receive.
	if err := h.auditLog.Append(entry); err != nil {
		log.WithAlias(req.Alias).Error().Err(err).Str("caller", caller).Msg("relay: audit append failed")
		return
	}
	log.WithRequestID(entry.ID).Debug().Int("status", status).Msg("relay: audit entry recorded")
	metrics.RecordAuditEntry()
}
