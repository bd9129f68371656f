package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"coeating/internal/database"
	"coeating/internal/llm/client"
	"coeating/internal/navigation"
	"coeating/internal/services"
	"coeating/internal/utils"
)

// App wires the database, services and router together for the command
// surface.
type App struct {
	ctx context.Context
	log zerolog.Logger

	Scans       *services.ScanService
	Preferences services.PreferenceService
	Keys        *services.KeyringService
	Router      *navigation.Router

	dbClose func() error
}

func NewApp() *App {
	return &App{
		log: zerolog.New(os.Stderr).With().Timestamp().Str("component", "app").Logger(),
	}
}

// Startup opens the database and constructs the services. The AI client is
// wired separately (ConfigureAnalyzer) because most commands never reach the
// model.
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx

	if err := utils.LoadEnv(); err != nil {
		a.log.Debug().Err(err).Msg("no .env loaded")
	}

	db, err := database.Init(database.Config{})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.dbClose = sqlDB.Close
	}

	svc := services.NewDbServices(db)
	a.Preferences = svc.Preferences
	a.Scans = services.NewScanService(ctx, svc.ScanRecords, nil)
	a.Router = navigation.NewRouter()

	keys, err := services.NewKeyringService()
	if err != nil {
		// Keys can still come from the environment; the keyring is optional.
		a.log.Warn().Err(err).Msg("keyring unavailable")
	} else {
		a.Keys = keys
	}

	return nil
}

// Shutdown releases the database connection pool.
func (a *App) Shutdown(ctx context.Context) {
	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			a.log.Error().Err(err).Msg("close database")
		}
		a.dbClose = nil
	}
}

// ConfigureAnalyzer resolves the provider, model and API key and installs
// the AI client on the scan service. Provider and model come from
// COEATING_PROVIDER / COEATING_MODEL; the key from the keyring, falling back
// to <PROVIDER>_API_KEY.
func (a *App) ConfigureAnalyzer(ctx context.Context) error {
	provider := strings.TrimSpace(os.Getenv("COEATING_PROVIDER"))
	if provider == "" {
		provider = "gemini"
	}
	modelName := strings.TrimSpace(os.Getenv("COEATING_MODEL"))

	apiKey, err := a.resolveAPIKey(provider)
	if err != nil {
		return err
	}

	llmClient, err := client.NewClient(ctx, provider, apiKey, modelName)
	if err != nil {
		return fmt.Errorf("create %s client: %w", provider, err)
	}

	a.Scans.SetAnalyzer(llmClient)
	a.log.Info().Str("provider", llmClient.Provider()).Str("model", llmClient.ModelName()).Msg("analyzer configured")
	return nil
}

func (a *App) resolveAPIKey(provider string) (string, error) {
	if a.Keys != nil {
		key, err := a.Keys.GetApiKey(provider)
		if err != nil {
			a.log.Warn().Err(err).Str("provider", provider).Msg("keyring lookup failed")
		} else if key != "" {
			return key, nil
		}
	}

	envVar := strings.ToUpper(provider) + "_API_KEY"
	if key := strings.TrimSpace(os.Getenv(envVar)); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("no API key for %s: store one with 'coeating keys set %s' or set %s", provider, provider, envVar)
}

// StoreCapturedImage copies the captured photo into the app data directory
// so history entries keep a stable image reference after the original file
// moves. Returns the stored path.
func (a *App) StoreCapturedImage(srcPath string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(filepath.Dir(database.GetDefaultDBPath()), "scans")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	dstPath := filepath.Join(dir, uuid.NewString()+filepath.Ext(srcPath))
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create stored image: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("copy image: %w", err)
	}
	return dstPath, nil
}
