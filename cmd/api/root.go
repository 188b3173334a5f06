package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taiwoajasa245/confession-api/internal/content"
	"github.com/taiwoajasa245/confession-api/internal/database"
	"github.com/taiwoajasa245/confession-api/internal/generation"
	"github.com/taiwoajasa245/confession-api/internal/llm"
	"github.com/taiwoajasa245/confession-api/pkg/config"
	"github.com/taiwoajasa245/confession-api/pkg/logger"
)

var (
	// Global flags
	verbose bool

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "confession-api",
	Short: "Daily verse and confession service",
	Long: `confession-api serves one scripture verse and one faith confession per day,
generated by a text model and stored so everyone sees the same content.

Run "confession-api serve" to start the HTTP API and the daily scheduler.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.LoadConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}

		var err error
		log, err = logger.New(cfg.AppEnv, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// app is everything a command needs to reach the content service.
type app struct {
	db      database.Service
	content *content.Service
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}

// openDatabase connects to the configured database and applies migrations.
func openDatabase(ctx context.Context) (database.Service, error) {
	db, err := database.New(cfg, log.Named("database"))
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// openApp wires the generation pipeline behind the content service.
func openApp(ctx context.Context) (*app, error) {
	db, err := openDatabase(ctx)
	if err != nil {
		return nil, err
	}

	completer, err := llm.NewCompleter(ctx, cfg, log.Named("llm"))
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Debug("text backend ready", zap.String("provider", cfg.LLMProvider), zap.Strings("models", completer.Models()))

	loc, err := cfg.Location()
	if err != nil {
		db.Close()
		return nil, err
	}

	repo := content.NewRepository(db)
	pipeline := generation.NewPipeline(completer, repo, log.Named("generation"))
	svc := content.NewService(repo, pipeline, loc, log.Named("content"))

	return &app{db: db, content: svc}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
