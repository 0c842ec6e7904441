package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glvault/glvault/internal/config"
	"github.com/glvault/glvault/pkg/api"
	"github.com/glvault/glvault/pkg/audit"
	"github.com/glvault/glvault/pkg/auth"
	"github.com/glvault/glvault/pkg/crypto"
	"github.com/glvault/glvault/pkg/log"
	"github.com/glvault/glvault/pkg/relay"
	"github.com/glvault/glvault/pkg/storage"
	"github.com/glvault/glvault/pkg/vault"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "glvaultd",
	Short: "glvault - authenticated API-key vault and relay proxy",
	Long: `glvault stores third-party API credentials encrypted at rest and
relays signed, rate-limited requests on a caller's behalf so the
credential itself is never exposed outside the vault process.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"glvaultd version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the vault and relay HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})

	backend, err := newBackend(cfg)
	if err != nil {
		return fmt.Errorf("initializing storage backend: %w", err)
	}
	defer backend.Close()

	cipher, err := crypto.NewCipher(cfg.MasterEncryptionKey)
	if err != nil {
		return fmt.Errorf("initializing cipher: %w", err)
	}

	store := vault.New(backend, cipher, cfg.RateLimitWindowMS)
	auditLog := audit.New(backend)
	verifier := auth.NewVerifier(cfg.HMACSecret, cfg.AdminToken, cfg.MaxRequestAgeMS)

	paramTable := relay.DefaultHostParamTable()
	for suffix, param := range cfg.CredentialParamOverlay {
		paramTable[suffix] = param
	}
	relayHandler := relay.NewHandler(verifier, store, auditLog, paramTable, 10*time.Second)

	server := api.NewServer(verifier, store, auditLog, relayHandler, Version)

	logger := log.WithComponent("glvaultd")
	logger.Info().Str("addr", cfg.ListenAddr).Str("storage", string(cfg.StorageBackend)).Msg("listening")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info().Msg("shutting down")
		cancel()
	}()

	return server.Start(ctx, cfg.ListenAddr)
}

func newBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.StorageBackend {
	case config.BackendBolt:
		return storage.NewBoltBackend(cfg.DataDir)
	default:
		return storage.NewMemoryBackend(), nil
	}
}
