package vault

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/glvault/glvault/pkg/crypto"
	"github.com/glvault/glvault/pkg/storage"
	"github.com/glvault/glvault/pkg/types"
	"github.com/glvault/glvault/pkg/vaulterr"
)

// aliasPattern is the alias validity regex.
var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

const (
	// DefaultQuotaLimit is used when register() omits quota_limit.
	DefaultQuotaLimit = 1000

	// DefaultOwner is used when register() omits owner.
	DefaultOwner = "admin"

	// DefaultWindowMS is the fixed-window duration for quota accounting,
	// overridable per Store via New's windowMS argument.
	DefaultWindowMS = 60_000
)

// IncrementResult is the outcome of an incrementUsage call.
type IncrementResult struct {
	Allowed   bool
	Remaining int64
}

// Store is the credential store: typed operations over
// encrypted CredentialRecords, the alias index, and the fixed-window
// quota counter. It holds the only reference to the master-key cipher
// in the process; no other component decrypts a credential directly.
type Store struct {
	backend  storage.Backend
	cipher   *crypto.Cipher
	windowMS int64

	// mu serializes register/rotate/remove/incrementUsage against the
	// alias index so two concurrent registrations can't both observe
	// an absent alias and both win (tolerated for quota/rotation, but
	// ALREADY_EXISTS must still be reliable).
	mu sync.Mutex
}

// New builds a Store over backend, encrypting/decrypting with cipher.
// windowMS is the quota window duration; pass 0 to use DefaultWindowMS.
func New(backend storage.Backend, cipher *crypto.Cipher, windowMS int64) *Store {
	if windowMS <= 0 {
		windowMS = DefaultWindowMS
	}
	return &Store{backend: backend, cipher: cipher, windowMS: windowMS}
}

// ValidateAlias reports whether alias satisfies the alias regex.
func ValidateAlias(alias string) bool {
	return aliasPattern.MatchString(alias)
}

func nowMS() int64 {
	return time.Now().UnixMilli()
}

// loadIndex reads the alias index, defaulting to an empty slice if the
// index key has never been written.
func (s *Store) loadIndex() ([]string, error) {
	raw, err := s.backend.Get(storage.IndexKey)
	if err == storage.ErrNotFound {
		return []string{}, nil
	}
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindBackendFail, "failed to load alias index", err)
	}
	var aliases []string
	if err := json.Unmarshal(raw, &aliases); err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindBackendFail, "corrupt alias index", err)
	}
	return aliases, nil
}

func (s *Store) saveIndex(aliases []string) error {
	raw, err := json.Marshal(aliases)
	if err != nil {
		return vaulterr.Wrap(vaulterr.KindBackendFail, "failed to serialize alias index", err)
	}
	if err := s.backend.Set(storage.IndexKey, raw); err != nil {
		return vaulterr.Wrap(vaulterr.KindBackendFail, "failed to persist alias index", err)
	}
	return nil
}

func (s *Store) loadRecord(alias string) (*types.CredentialRecord, error) {
	raw, err := s.backend.Get(storage.CredentialKey(alias))
	if err == storage.ErrNotFound {
		return nil, vaulterr.New(vaulterr.KindNotFound, fmt.Sprintf("unknown alias %q", alias))
	}
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindBackendFail, "failed to load credential record", err)
	}
	var rec types.CredentialRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindBackendFail, "corrupt credential record", err)
	}
	return &rec, nil
}

func (s *Store) saveRecord(rec *types.CredentialRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return vaulterr.Wrap(vaulterr.KindBackendFail, "failed to serialize credential record", err)
	}
	if err := s.backend.Set(storage.CredentialKey(rec.Alias), raw); err != nil {
		return vaulterr.Wrap(vaulterr.KindBackendFail, "failed to persist credential record", err)
	}
	return nil
}

// Register validates alias, encrypts plaintextCredential under the
// master key, and persists a new CredentialRecord. quotaLimit of 0
// means "use the default"; pass a positive value to set it explicitly.
func (s *Store) Register(alias, plaintextCredential, baseURL string, quotaLimit int64, owner string) (*types.CredentialRecord, error) {
	if !ValidateAlias(alias) {
		return nil, vaulterr.New(vaulterr.KindInvalidInput, fmt.Sprintf("invalid alias %q", alias))
	}
	if baseURL == "" {
		return nil, vaulterr.New(vaulterr.KindInvalidInput, "base_url is required")
	}
	if quotaLimit <= 0 {
		quotaLimit = DefaultQuotaLimit
	}
	if owner == "" {
		owner = DefaultOwner
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.backend.Get(storage.CredentialKey(alias)); err == nil {
		return nil, vaulterr.New(vaulterr.KindAlreadyExists, fmt.Sprintf("alias %q already registered", alias))
	} else if err != storage.ErrNotFound {
		return nil, vaulterr.Wrap(vaulterr.KindBackendFail, "failed to probe alias", err)
	}

	sealed, err := s.cipher.Encrypt([]byte(plaintextCredential))
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindBackendFail, "failed to encrypt credential", err)
	}

	now := nowMS()
	rec := &types.CredentialRecord{
		Alias:            alias,
		Ciphertext:       sealed.Ciphertext,
		IV:               sealed.IV,
		AuthTag:          sealed.AuthTag,
		BaseURL:          baseURL,
		QuotaLimit:       quotaLimit,
		QuotaUsed:        0,
		QuotaWindowStart: now,
		CreatedAt:        now,
		RotatedAt:        0,
		Owner:            owner,
	}

	if err := s.saveRecord(rec); err != nil {
		return nil, err
	}

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	index = append(index, alias)
	if err := s.saveIndex(index); err != nil {
		return nil, err
	}

	return rec, nil
}

// GetPlaintext decrypts and returns the credential stored for alias.
func (s *Store) GetPlaintext(alias string) (string, error) {
	rec, err := s.loadRecord(alias)
	if err != nil {
		return "", err
	}
	plaintext, err := s.cipher.Decrypt(&crypto.Sealed{
		Ciphertext: rec.Ciphertext,
		IV:         rec.IV,
		AuthTag:    rec.AuthTag,
	})
	if err != nil {
		return "", vaulterr.Wrap(vaulterr.KindIntegrityFail, "credential failed integrity check", err)
	}
	return string(plaintext), nil
}

// GetRecord returns the record for alias without decrypting it. Used
// by the relay handler to read base_url.
func (s *Store) GetRecord(alias string) (*types.CredentialRecord, error) {
	return s.loadRecord(alias)
}

// Rotate re-encrypts alias under a fresh IV, preserving quota and
// provenance fields.
func (s *Store) Rotate(alias, newPlaintextCredential string) (*types.CredentialRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.loadRecord(alias)
	if err != nil {
		return nil, err
	}

	sealed, err := s.cipher.Encrypt([]byte(newPlaintextCredential))
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindBackendFail, "failed to encrypt credential", err)
	}

	rec.Ciphertext = sealed.Ciphertext
	rec.IV = sealed.IV
	rec.AuthTag = sealed.AuthTag
	rec.RotatedAt = nowMS()

	if err := s.saveRecord(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Remove deletes alias's record and index entry. Returns false if the
// alias was absent; a delete of an absent alias is not an error.
func (s *Store) Remove(alias string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.backend.Get(storage.CredentialKey(alias))
	if err == storage.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, vaulterr.Wrap(vaulterr.KindBackendFail, "failed to probe alias", err)
	}

	if err := s.backend.Delete(storage.CredentialKey(alias)); err != nil {
		return false, vaulterr.Wrap(vaulterr.KindBackendFail, "failed to delete credential record", err)
	}

	index, err := s.loadIndex()
	if err != nil {
		return false, err
	}
	remaining := index[:0]
	for _, a := range index {
		if a != alias {
			remaining = append(remaining, a)
		}
	}
	if err := s.saveIndex(remaining); err != nil {
		return false, err
	}
	return true, nil
}

// List returns every registered record projected to RecordMetadata,
// never exposing ciphertext, iv, or auth_tag.
func (s *Store) List() ([]*types.RecordMetadata, error) {
	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	out := make([]*types.RecordMetadata, 0, len(index))
	for _, alias := range index {
		rec, err := s.loadRecord(alias)
		if err != nil {
			// The index and the record store can drift under a
			// tolerated race; skip an alias whose record vanished
			// rather than fail the whole listing.
			if re, ok := vaulterr.As(err); ok && re.Kind == vaulterr.KindNotFound {
				continue
			}
			return nil, err
		}
		out = append(out, rec.ToMetadata())
	}
	return out, nil
}

// IncrementUsage applies the fixed-window quota counter for alias: it
// resets the window if expired, then either admits and increments or
// rejects without mutation.
func (s *Store) IncrementUsage(alias string) (*IncrementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.loadRecord(alias)
	if err != nil {
		return nil, err
	}

	now := nowMS()
	if now-rec.QuotaWindowStart > s.windowMS {
		rec.QuotaUsed = 0
		rec.QuotaWindowStart = now
	}

	if rec.QuotaUsed >= rec.QuotaLimit {
		// A window reset above still must be persisted even on
		// rejection, or a stalled alias would never roll forward.
		if err := s.saveRecord(rec); err != nil {
			return nil, err
		}
		return &IncrementResult{Allowed: false, Remaining: 0}, nil
	}

	rec.QuotaUsed++
	if err := s.saveRecord(rec); err != nil {
		return nil, err
	}
	return &IncrementResult{Allowed: true, Remaining: rec.QuotaLimit - rec.QuotaUsed}, nil
}

// WindowMS returns the configured quota window duration, for callers
// (the relay handler) that need it to populate retry_after_ms.
func (s *Store) WindowMS() int64 {
	return s.windowMS
}
