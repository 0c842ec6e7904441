package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/glvault/glvault/pkg/audit"
	"github.com/glvault/glvault/pkg/metrics"
	"github.com/glvault/glvault/pkg/types"
	"github.com/glvault/glvault/pkg/vault"
	"github.com/glvault/glvault/pkg/vaulterr"
)

// handleRegister implements POST /keys/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeAdminResult(w, "register", http.StatusMethodNotAllowed, types.ErrorResponse{Error: "method not allowed"})
		return
	}

	var req types.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeAdminResult(w, "register", http.StatusBadRequest, types.ErrorResponse{Error: "malformed request body"})
		return
	}

	quotaLimit := vault.DefaultQuotaLimit
	if req.QuotaLimit != nil {
		quotaLimit = *req.QuotaLimit
	}

	record, err := s.store.Register(req.Alias, req.APIKey, req.BaseURL, quotaLimit, req.Owner)
	if err != nil {
		s.writeStoreError(w, "register", err)
		return
	}

	metrics.CredentialsRegisteredTotal.Inc()
	s.writeAdminResult(w, "register", http.StatusCreated, record.ToMetadata())
}

// handleList implements GET /keys/list.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeAdminResult(w, "list", http.StatusMethodNotAllowed, types.ErrorResponse{Error: "method not allowed"})
		return
	}

	keys, err := s.store.List()
	if err != nil {
		s.writeStoreError(w, "list", err)
		return
	}

	s.writeAdminResult(w, "list", http.StatusOK, types.ListKeysResponse{Count: len(keys), Keys: keys})
}

// handleRotate implements POST /keys/rotate.
func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeAdminResult(w, "rotate", http.StatusMethodNotAllowed, types.ErrorResponse{Error: "method not allowed"})
		return
	}

	var req types.RotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeAdminResult(w, "rotate", http.StatusBadRequest, types.ErrorResponse{Error: "malformed request body"})
		return
	}

	record, err := s.store.Rotate(req.Alias, req.NewAPIKey)
	if err != nil {
		s.writeStoreError(w, "rotate", err)
		return
	}

	metrics.CredentialsRotatedTotal.Inc()
	s.writeAdminResult(w, "rotate", http.StatusOK, types.RotateResponse{Alias: record.Alias, RotatedAt: record.RotatedAt})
}

// handleAudit implements GET /keys/audit?alias=X&since=ms&limit=N.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeAdminResult(w, "audit", http.StatusMethodNotAllowed, types.ErrorResponse{Error: "method not allowed"})
		return
	}

	alias := r.URL.Query().Get("alias")
	if alias == "" {
		s.writeAdminResult(w, "audit", http.StatusBadRequest, types.ErrorResponse{Error: "alias is required"})
		return
	}

	opts := audit.QueryOptions{Limit: audit.DefaultQueryLimit}
	if v := r.URL.Query().Get("since"); v != "" {
		since, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.writeAdminResult(w, "audit", http.StatusBadRequest, types.ErrorResponse{Error: "since must be an integer"})
			return
		}
		opts.Since = since
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			s.writeAdminResult(w, "audit", http.StatusBadRequest, types.ErrorResponse{Error: "limit must be an integer"})
			return
		}
		opts.Limit = limit
	}

	entries, err := s.auditLog.Query(alias, opts)
	if err != nil {
		s.writeStoreError(w, "audit", err)
		return
	}
	stats, err := s.auditLog.Stats(alias, opts.Since)
	if err != nil {
		s.writeStoreError(w, "audit", err)
		return
	}

	s.writeAdminResult(w, "audit", http.StatusOK, types.AuditQueryResponse{Alias: alias, Stats: stats, Entries: entries})
}

// handleHealth implements GET /health: probes the backend with the
// store's List and degrades to 503 on backend failure. This route is intentionally
// not behind the admin middleware so orchestrators can probe liveness
// without a token.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, types.ErrorResponse{Error: "method not allowed"})
		return
	}

	keys, err := s.store.List()
	status := "ok"
	storageStatus := "connected"
	code := http.StatusOK
	keysRegistered := 0

	if err != nil {
		status = "degraded"
		storageStatus = "disconnected"
		code = http.StatusServiceUnavailable
	} else {
		keysRegistered = len(keys)
	}

	writeJSON(w, code, types.HealthResponse{
		Status:         status,
		Version:        s.version,
		UptimeMS:       time.Since(s.startedAt).Milliseconds(),
		Storage:        storageStatus,
		KeysRegistered: keysRegistered,
	})
}

// writeAdminResult writes the response and records the admin-request
// metric in one place so every handler above stays terse.
func (s *Server) writeAdminResult(w http.ResponseWriter, route string, status int, body interface{}) {
	metrics.RecordAdminRequest(route, status)
	writeJSON(w, status, body)
}

// writeStoreError maps a vaulterr.RelayError from the vault/audit
// layer onto the admin API's response shape.
func (s *Server) writeStoreError(w http.ResponseWriter, route string, err error) {
	re, ok := vaulterr.As(err)
	if !ok {
		s.writeAdminResult(w, route, http.StatusInternalServerError, types.ErrorResponse{Error: "internal error"})
		return
	}
	s.writeAdminResult(w, route, re.HTTPStatus(), types.ErrorResponse{Error: re.Message})
}
