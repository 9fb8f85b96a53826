package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"github.com/dskvich/networker-bot/pkg/api"
	"github.com/dskvich/networker-bot/pkg/database"
	"github.com/dskvich/networker-bot/pkg/deepgram"
	"github.com/dskvich/networker-bot/pkg/gemini"
	"github.com/dskvich/networker-bot/pkg/ledger"
	"github.com/dskvich/networker-bot/pkg/logger"
	"github.com/dskvich/networker-bot/pkg/openai"
	"github.com/dskvich/networker-bot/pkg/repository"
	"github.com/dskvich/networker-bot/pkg/services"
	"github.com/dskvich/networker-bot/pkg/sheets"
	"github.com/dskvich/networker-bot/pkg/telegram"
	"github.com/dskvich/networker-bot/pkg/workers"
)

const (
	providerDeepgram = "deepgram"
	providerOpenAI   = "openai"
	providerGemini   = "gemini"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required,notEmpty"`

	TranscriptionProvider string `env:"TRANSCRIPTION_PROVIDER" envDefault:"deepgram"`
	DeepgramAPIKey        string `env:"DEEPGRAM_API_KEY"`

	ExtractionProvider string `env:"EXTRACTION_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey       string `env:"GEMINI_API_KEY"`
	GeminiModel        string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	OpenAIModel        string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	SheetsID              string `env:"GOOGLE_SHEETS_ID,required,notEmpty"`
	SheetsRange           string `env:"GOOGLE_SHEETS_RANGE" envDefault:"A1"`
	GoogleCredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE" envDefault:"credentials.json"`
	GoogleCredentialsJSON string `env:"GOOGLE_CREDENTIALS_JSON"`

	EventName       string        `env:"EVENT_NAME" envDefault:"Hackaton Release Before Ready"`
	Organizer       string        `env:"ORGANIZER" envDefault:"opino.tech"`
	VoiceTempDir    string        `env:"VOICE_TEMP_DIR" envDefault:"temp"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"60s"`

	PgURL    string `env:"DATABASE_URL"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	LogLevel   slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogNoColor bool       `env:"LOG_NO_COLOR"`
}

func (c *Config) validate() error {
	var errs []error

	switch c.TranscriptionProvider {
	case providerDeepgram:
		if c.DeepgramAPIKey == "" {
			errs = append(errs, fmt.Errorf("DEEPGRAM_API_KEY is required for transcription provider %q", c.TranscriptionProvider))
		}
	case providerOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, fmt.Errorf("OPENAI_API_KEY is required for transcription provider %q", c.TranscriptionProvider))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown transcription provider %q", c.TranscriptionProvider))
	}

	switch c.ExtractionProvider {
	case providerGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, fmt.Errorf("GEMINI_API_KEY is required for extraction provider %q", c.ExtractionProvider))
		}
	case providerOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, fmt.Errorf("OPENAI_API_KEY is required for extraction provider %q", c.ExtractionProvider))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown extraction provider %q", c.ExtractionProvider))
	}

	if c.ProviderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.ProviderTimeout))
	}

	return errors.Join(errs...)
}

func loadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, &logger.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.DateTime,
		ShowSource: true,
		NoColor:    cfg.LogNoColor,
	})))

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	workerGroup, cleanup, err := setupWorkers(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return workerGroup.Start(ctx)
}

func setupWorkers(ctx context.Context, cfg *Config) (workers.Group, func(), error) {
	var workerGroup workers.Group
	cleanup := func() {}

	telegramClient, err := telegram.NewClient(cfg.TelegramBotToken)
	if err != nil {
		return nil, nil, fmt.Errorf("creating telegram client: %w", err)
	}

	transcriber, err := newTranscriber(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating transcriber: %w", err)
	}

	extractor, err := newExtractor(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating extractor: %w", err)
	}

	creds, err := sheets.ResolveCredentials(ctx, cfg.GoogleCredentialsFile, cfg.GoogleCredentialsJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving google credentials: %w", err)
	}
	sheetsClient, err := sheets.NewClient(ctx, cfg.SheetsID, cfg.SheetsRange, option.WithCredentials(creds))
	if err != nil {
		return nil, nil, fmt.Errorf("creating sheets client: %w", err)
	}

	var mirror ledger.ContactSaver
	if cfg.PgURL != "" {
		db, err := database.NewPostgres(ctx, cfg.PgURL)
		if err != nil {
			return nil, nil, fmt.Errorf("creating db: %w", err)
		}
		cleanup = func() {
			if err := db.Close(); err != nil {
				slog.Error("closing db", logger.Err(err))
			}
		}
		mirror = repository.NewContactsRepository(db)
	} else {
		slog.Info("DATABASE_URL not set, ledger rows are not mirrored")
	}

	stats := services.NewStats(time.Now())

	ingestionService, err := services.NewIngestionService(
		services.IngestionConfig{
			EventName:       cfg.EventName,
			TempDir:         cfg.VoiceTempDir,
			ProviderTimeout: cfg.ProviderTimeout,
		},
		transcriber,
		extractor,
		ledger.NewMirrored(sheetsClient, mirror),
		telegramClient,
		stats,
	)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("creating ingestion service: %w", err)
	}

	handler := telegram.NewHandler(
		telegram.HandlerConfig{EventName: cfg.EventName, Organizer: cfg.Organizer},
		telegramClient,
		ingestionService,
		repository.NewStateRepository(),
	)

	if worker, err := workers.NewTelegramUpdateListener(telegramClient, handler); err == nil {
		workerGroup = append(workerGroup, worker)
	} else {
		cleanup()
		return nil, nil, err
	}

	if cfg.HTTPAddr != "" {
		if worker, err := workers.NewHTTPServer(cfg.HTTPAddr, api.NewRouter(stats)); err == nil {
			workerGroup = append(workerGroup, worker)
		} else {
			cleanup()
			return nil, nil, err
		}
	}

	return workerGroup, cleanup, nil
}

func newTranscriber(cfg *Config) (services.Transcriber, error) {
	switch cfg.TranscriptionProvider {
	case providerOpenAI:
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		return deepgram.NewClient(cfg.DeepgramAPIKey)
	}
}

func newExtractor(ctx context.Context, cfg *Config) (services.Extractor, error) {
	switch cfg.ExtractionProvider {
	case providerOpenAI:
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	default:
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}
}
