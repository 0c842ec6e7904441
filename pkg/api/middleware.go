package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/glvault/glvault/pkg/metrics"
	"github.com/glvault/glvault/pkg/types"
)

// adminOnly wraps an admin handler with the bearer-token check (spec
// §4.D, §8 scenario 6). Unlike the relay handler's single generic
// rejection reason, the admin surface's caller-visible message
// distinguishes the three ways a request can fail this check; the
// constant-time comparison itself still happens inside
// auth.Verifier.VerifyAdmin, so no new timing signal is introduced by
// telling these three cases apart before that call.
func (s *Server) adminOnly(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		if header == "" {
			s.writeAdminError(w, route, "Missing")
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			s.writeAdminError(w, route, "Invalid Authorization format")
			return
		}
		if reason := s.verifier.VerifyAdmin(header); reason != "" {
			s.writeAdminError(w, route, "Invalid admin token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeAdminError(w http.ResponseWriter, route, message string) {
	metrics.RecordAdminRequest(route, http.StatusUnauthorized)
	writeJSON(w, http.StatusUnauthorized, types.ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
