package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"MediaSearchBot/internal/auth"
	"MediaSearchBot/internal/bot"
	"MediaSearchBot/internal/config"
	"MediaSearchBot/internal/index"
	"MediaSearchBot/internal/ingest"
	"MediaSearchBot/internal/keepalive"
	"MediaSearchBot/internal/query"
	"MediaSearchBot/internal/ratelimit"
	"MediaSearchBot/internal/search"
	"MediaSearchBot/internal/userstate"
)

func init() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Catalog storage
	store, err := index.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, cfg.UseCaptionFilter, logger)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer store.Close(context.Background())

	// User state, loaded from disk and autosaved in the background
	state := userstate.New(cfg.StateFile, cfg.SaveInterval, logger)
	state.Load()
	go state.Run(ctx)

	// Telegram API
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("Failed to create bot API", zap.Error(err))
	}
	api.Debug = cfg.Debug
	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))

	// Query parsing with optional synonym overrides
	synonyms := query.DefaultSynonyms()
	if cfg.SynonymsFile != "" {
		synonyms, err = query.LoadSynonyms(cfg.SynonymsFile)
		if err != nil {
			logger.Fatal("Failed to load synonyms", zap.String("path", cfg.SynonymsFile), zap.Error(err))
		}
	}

	limiter := ratelimit.New(cfg.RateLimitMax, cfg.RateLimitWindow)
	defer limiter.Stop()

	gate := auth.NewGate(cfg.Admins, cfg.AuthUsers, cfg.AuthChannel, state, bot.NewMembership(api), logger)
	engine := search.NewEngine(store, cfg.MaxPageSize)
	orch := search.NewOrchestrator(gate, limiter, query.NewParser(synonyms), engine, state, logger)
	pipeline := ingest.New(store, bot.NewHistory(api), state, logger)

	// Keep-alive HTTP surface with metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := keepalive.NewMetrics(registry)
	server := keepalive.NewServer(cfg.ListenAddr, store, state, registry, logger)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Keep-alive server failed", zap.Error(err))
		}
	}()

	b := bot.NewBot(api, cfg, orch, pipeline, store, state, metrics, logger)
	b.Run(ctx)

	// ctx cancelled, drain and flush
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Keep-alive shutdown failed", zap.Error(err))
	}
	if err := state.Save(); err != nil {
		logger.Error("Failed to save user state", zap.Error(err))
	}
}

// newLogger tees logs to stderr and the log file so /logger can ship it.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := zap.InfoLevel
	if cfg.Debug {
		level = zap.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}
