// Package chronicled parses daemon flags and wires the MCP server to its
// stores and services.
package chronicled

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	chronmcp "github.com/larkspur-games/chronicle/internal/api/mcp"
	"github.com/larkspur-games/chronicle/internal/events"
	"github.com/larkspur-games/chronicle/internal/genai"
	"github.com/larkspur-games/chronicle/internal/i18n"
	"github.com/larkspur-games/chronicle/internal/platform/config"
	"github.com/larkspur-games/chronicle/internal/storage/hostvars"
	"github.com/larkspur-games/chronicle/internal/storage/sqlite"
)

// Config holds daemon configuration.
type Config struct {
	DBPath         string        `env:"CHRONICLE_DB_PATH"          envDefault:"chronicle.db"`
	AuthorityURL   string        `env:"CHRONICLE_AUTHORITY_URL"`
	AuthorityToken string        `env:"CHRONICLE_AUTHORITY_TOKEN"`
	Locale         string        `env:"CHRONICLE_LOCALE"           envDefault:"zh"`
	GenAIBaseURL   string        `env:"CHRONICLE_GENAI_BASE_URL"`
	GenAIKey       string        `env:"CHRONICLE_GENAI_API_KEY"`
	GenAIModel     string        `env:"CHRONICLE_GENAI_MODEL"`
	GenAITimeout   time.Duration `env:"CHRONICLE_GENAI_TIMEOUT"    envDefault:"2m"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the SQLite cache database")
	fs.StringVar(&cfg.AuthorityURL, "authority-url", cfg.AuthorityURL, "host variable service base URL (empty uses in-memory storage)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "notification locale: zh or en")
	fs.StringVar(&cfg.GenAIModel, "model", cfg.GenAIModel, "chat completion model (empty disables generation tools)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP daemon on stdio and blocks until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close cache store: %v", err)
		}
	}()

	var authority hostvars.VarStore
	if strings.TrimSpace(cfg.AuthorityURL) != "" {
		client, err := hostvars.NewClient(cfg.AuthorityURL, cfg.AuthorityToken)
		if err != nil {
			return fmt.Errorf("configure authority store: %w", err)
		}
		authority = client
	} else {
		log.Printf("authority url not set, host variables held in memory")
		authority = hostvars.NewMemory()
	}

	bus := events.NewBus()

	var generator *genai.Client
	if strings.TrimSpace(cfg.GenAIModel) != "" {
		generator, err = genai.New(genai.Config{
			BaseURL: cfg.GenAIBaseURL,
			APIKey:  cfg.GenAIKey,
			Model:   cfg.GenAIModel,
			Timeout: cfg.GenAITimeout,
		}, bus)
		if err != nil {
			return fmt.Errorf("configure generation client: %w", err)
		}
	}

	server, err := chronmcp.NewServer(chronmcp.Deps{
		Cache:     store,
		Authority: authority,
		Bus:       bus,
		Printer:   i18n.NewPrinter(i18n.ParseLanguage(cfg.Locale)),
		GenAI:     generator,
	})
	if err != nil {
		return fmt.Errorf("configure MCP server: %w", err)
	}
	return server.Run(ctx)
}
