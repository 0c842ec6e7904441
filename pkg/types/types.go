package types

// CredentialRecord is the stored unit for a single registered alias.
// ciphertext/iv/auth_tag are the output of AES-256-GCM encryption of the
// raw credential under the master key; the plaintext credential itself is
// never part of this struct.
type CredentialRecord struct {
	Alias             string `json:"alias"`
	Ciphertext        []byte `json:"ciphertext"`
	IV                []byte `json:"iv"`
	AuthTag           []byte `json:"auth_tag"`
	BaseURL           string `json:"base_url"`
	QuotaLimit        int64  `json:"quota_limit"`
	QuotaUsed         int64  `json:"quota_used"`
	QuotaWindowStart  int64  `json:"quota_window_start"` // unix-ms
	CreatedAt         int64  `json:"created_at"`         // unix-ms
	RotatedAt         int64  `json:"rotated_at"`         // unix-ms, 0 if never rotated
	Owner             string `json:"owner"`
}

// RecordMetadata is a CredentialRecord projected to omit all encrypted
// material. This is the only shape ever returned by admin list/register/
// rotate responses.
type RecordMetadata struct {
	Alias            string `json:"alias"`
	BaseURL          string `json:"base_url"`
	QuotaLimit       int64  `json:"quota_limit"`
	QuotaUsed        int64  `json:"quota_used"`
	QuotaWindowStart int64  `json:"quota_window_start"`
	CreatedAt        int64  `json:"created_at"`
	RotatedAt        int64  `json:"rotated_at"`
	Owner            string `json:"owner"`
}

// ToMetadata strips the encrypted fields from a record, never returning
// decrypted or encrypted credential material.
func (r *CredentialRecord) ToMetadata() *RecordMetadata {
	return &RecordMetadata{
		Alias:            r.Alias,
		BaseURL:          r.BaseURL,
		QuotaLimit:       r.QuotaLimit,
		QuotaUsed:        r.QuotaUsed,
		QuotaWindowStart: r.QuotaWindowStart,
		CreatedAt:        r.CreatedAt,
		RotatedAt:        r.RotatedAt,
		Owner:            r.Owner,
	}
}

// AuditEntry records one attempted relay, successful, rejected, or
// upstream-failed. Entries are append-only: nothing ever updates an
// AuditEntry after creation.
type AuditEntry struct {
	ID        string `json:"id"`
	Alias     string `json:"alias"`
	Caller    string `json:"caller"`
	Path      string `json:"path"`
	Method    string `json:"method"`
	Status    int    `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Timestamp int64  `json:"timestamp"` // unix-ms
	Error     string `json:"error,omitempty"`
}

// AuditIndexEntry is one element of the per-alias, insertion-ordered audit
// index, bounded to the last N entries (see pkg/audit).
type AuditIndexEntry struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// AuditStats summarizes AuditEntry records for an alias over a window.
type AuditStats struct {
	TotalRequests int64 `json:"total_requests"`
	ErrorCount    int64 `json:"error_count"`
	AvgLatencyMS  int64 `json:"avg_latency_ms"`
	LastAccessed  int64 `json:"last_accessed,omitempty"` // unix-ms, 0 if unset
}

// RelayRequest is the decoded body of POST /proxy.
type RelayRequest struct {
	Alias     string            `json:"alias"`
	Path      string            `json:"path"`
	Method    string            `json:"method"`
	Body      interface{}       `json:"body,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Timestamp int64             `json:"timestamp"`
	Nonce     string            `json:"nonce"`
}

// RelayResponse is returned to the caller on a relay that reached DISPATCH.
// The credential never appears in any field here.
type RelayResponse struct {
	Status         int         `json:"status"`
	Data           interface{} `json:"data"`
	Cached         bool        `json:"cached"`
	LatencyMS      int64       `json:"latency_ms"`
	RemainingQuota int64       `json:"remaining_quota"`
}

// RegisterRequest is the body of POST /keys/register.
type RegisterRequest struct {
	Alias      string `json:"alias"`
	APIKey     string `json:"api_key"`
	BaseURL    string `json:"base_url"`
	QuotaLimit *int64 `json:"quota_limit,omitempty"`
	Owner      string `json:"owner,omitempty"`
}

// RotateRequest is the body of POST /keys/rotate.
type RotateRequest struct {
	Alias     string `json:"alias"`
	NewAPIKey string `json:"new_api_key"`
}

// RotateResponse is the body returned by POST /keys/rotate.
type RotateResponse struct {
	Alias     string `json:"alias"`
	RotatedAt int64  `json:"rotated_at"`
}

// ListKeysResponse is the body returned by GET /keys/list.
type ListKeysResponse struct {
	Count int               `json:"count"`
	Keys  []*RecordMetadata `json:"keys"`
}

// AuditQueryResponse is the body returned by GET /keys/audit.
type AuditQueryResponse struct {
	Alias   string        `json:"alias"`
	Stats   *AuditStats   `json:"stats"`
	Entries []*AuditEntry `json:"entries"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status        string `json:"status"` // "ok" or "degraded"
	Version       string `json:"version"`
	UptimeMS      int64  `json:"uptime_ms"`
	Storage       string `json:"storage"` // "connected" or "disconnected"
	KeysRegistered int   `json:"keys_registered"`
}

// ErrorResponse is the body returned on any non-2xx response.
type ErrorResponse struct {
	Error         string `json:"error"`
	RemainingQuota *int64 `json:"remaining_quota,omitempty"`
	RetryAfterMS   *int64 `json:"retry_after_ms,omitempty"`
}
