package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Backend selects the storage implementation the vault process should
// use. The core treats both identically.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBolt   Backend = "bolt"
)

// Config is the vault process's startup configuration, loaded once
// and shared read-only thereafter.
type Config struct {
	MasterEncryptionKey []byte
	HMACSecret          []byte
	AdminToken          string
	RateLimitWindowMS   int64
	MaxRequestAgeMS     int64
	LogLevel            string
	LogJSON             bool

	StorageBackend Backend
	DataDir        string

	ListenAddr string

	// CredentialParamOverlay extends the fixed host-suffix → param-name
	// table so operators can add hosts without a code change. Populated
	// only when GLVAULT_PARAM_TABLE_FILE points at a readable YAML file.
	CredentialParamOverlay map[string]string
}

const (
	envMasterKey       = "MASTER_ENCRYPTION_KEY"
	envHMACSecret      = "HMAC_SECRET"
	envAdminToken      = "ADMIN_TOKEN"
	envRateWindowMS    = "RATE_LIMIT_WINDOW_MS"
	envMaxRequestAgeMS = "MAX_REQUEST_AGE_MS"
	envLogLevel        = "LOG_LEVEL"
	envLogJSON         = "LOG_JSON"
	envStorageBackend  = "STORAGE_BACKEND"
	envDataDir         = "DATA_DIR"
	envListenAddr      = "LISTEN_ADDR"
	envParamTableFile  = "GLVAULT_PARAM_TABLE_FILE"

	defaultRateWindowMS    = 60_000
	defaultMaxRequestAgeMS = 30_000
	defaultListenAddr      = ":8443"
	defaultDataDir         = "./data"
)

// Load reads and validates the configuration from the environment. It
// returns an error rather than exiting so callers (and tests) control
// the fail-loudly behavior; cmd/glvaultd treats any error here as fatal.
func Load() (*Config, error) {
	cfg := &Config{
		RateLimitWindowMS: defaultRateWindowMS,
		MaxRequestAgeMS:   defaultMaxRequestAgeMS,
		LogLevel:          "info",
		StorageBackend:    BackendMemory,
		DataDir:           defaultDataDir,
		ListenAddr:        defaultListenAddr,
	}

	masterKeyHex := os.Getenv(envMasterKey)
	if masterKeyHex == "" {
		return nil, fmt.Errorf("%s is required", envMasterKey)
	}
	if len(masterKeyHex) != 64 {
		return nil, fmt.Errorf("%s must be exactly 64 hex characters, got %d", envMasterKey, len(masterKeyHex))
	}
	masterKey, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid hex: %w", envMasterKey, err)
	}
	cfg.MasterEncryptionKey = masterKey

	hmacSecret := os.Getenv(envHMACSecret)
	if hmacSecret == "" {
		return nil, fmt.Errorf("%s is required", envHMACSecret)
	}
	cfg.HMACSecret = []byte(hmacSecret)

	adminToken := os.Getenv(envAdminToken)
	if adminToken == "" {
		return nil, fmt.Errorf("%s is required", envAdminToken)
	}
	cfg.AdminToken = adminToken

	if v := os.Getenv(envRateWindowMS); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer, got %q", envRateWindowMS, v)
		}
		cfg.RateLimitWindowMS = n
	}

	if v := os.Getenv(envMaxRequestAgeMS); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer, got %q", envMaxRequestAgeMS, v)
		}
		cfg.MaxRequestAgeMS = n
	}

	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	cfg.LogJSON = os.Getenv(envLogJSON) == "true"

	if v := os.Getenv(envStorageBackend); v != "" {
		switch Backend(v) {
		case BackendMemory, BackendBolt:
			cfg.StorageBackend = Backend(v)
		default:
			return nil, fmt.Errorf("%s must be %q or %q, got %q", envStorageBackend, BackendMemory, BackendBolt, v)
		}
	}

	if v := os.Getenv(envDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}

	if path := os.Getenv(envParamTableFile); path != "" {
		overlay, err := loadParamTableOverlay(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", envParamTableFile, err)
		}
		cfg.CredentialParamOverlay = overlay
	}

	return cfg, nil
}

// loadParamTableOverlay reads a YAML file of the form:
//
//	hostSuffix: paramName
//	example.com: api_key
func loadParamTableOverlay(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	overlay := make(map[string]string)
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return overlay, nil
}
