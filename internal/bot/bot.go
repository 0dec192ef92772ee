// Package bot wires the Telegram surface: the update loop, inline search
// answers and the admin command set.
package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"MediaSearchBot/internal/config"
	"MediaSearchBot/internal/index"
	"MediaSearchBot/internal/ingest"
	"MediaSearchBot/internal/keepalive"
	"MediaSearchBot/internal/models"
	"MediaSearchBot/internal/search"
	"MediaSearchBot/internal/userstate"
)

const handleTimeout = 10 * time.Second

// Bot handles Telegram updates for the media search bot.
type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      *config.Config
	orch     *search.Orchestrator
	pipeline *ingest.Pipeline
	store    index.Store
	state    *userstate.Store
	metrics  *keepalive.Metrics
	log      *zap.Logger
}

// NewBot creates a new Bot instance.
func NewBot(api *tgbotapi.BotAPI, cfg *config.Config, orch *search.Orchestrator, pipeline *ingest.Pipeline, store index.Store, state *userstate.Store, metrics *keepalive.Metrics, log *zap.Logger) *Bot {
	return &Bot{
		api:      api,
		cfg:      cfg,
		orch:     orch,
		pipeline: pipeline,
		store:    store,
		state:    state,
		metrics:  metrics,
		log:      log,
	}
}

// Run consumes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.refreshIndexGauge(ctx)
	b.log.Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.InlineQuery != nil:
		go b.handleInline(ctx, update.InlineQuery)
	case update.ChannelPost != nil:
		// off the loop: ingest retries back off for seconds during storage
		// outages and must not stall unrelated updates. Per-record upserts
		// are last-writer-wins, so ordering across posts is safe.
		go b.handleChannelPost(ctx, update.ChannelPost)
	case update.Message != nil && update.Message.IsCommand():
		go b.handleCommand(ctx, update.Message)
	}
}

// handleChannelPost ingests media posted to one of the configured source
// channels. Posts from other chats are ignored.
func (b *Bot) handleChannelPost(ctx context.Context, msg *tgbotapi.Message) {
	if !b.cfg.IsSourceChannel(msg.Chat.ID) {
		return
	}
	ev, ok := extractEvent(msg)
	if !ok {
		return
	}

	if err := b.ingestWithRetry(ctx, ev); err != nil {
		b.log.Error("failed to ingest channel post",
			zap.Int64("channel_id", msg.Chat.ID),
			zap.Int("message_id", msg.MessageID),
			zap.Error(err))
		return
	}
	b.metrics.Ingests.Inc()
	b.refreshIndexGauge(ctx)
}

// ingestWithRetry retries transient storage faults with backoff before
// giving up on an event.
func (b *Bot) ingestWithRetry(ctx context.Context, ev models.MediaEvent) error {
	var err error
	for attempt, backoff := 0, time.Second; attempt < 3; attempt, backoff = attempt+1, backoff*2 {
		attemptCtx, cancel := context.WithTimeout(ctx, handleTimeout)
		err = b.pipeline.Ingest(attemptCtx, ev)
		cancel()
		if err == nil {
			return nil
		}
		if _, ok := models.AsStorageError(err); !ok {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
	}
	return err
}

func (b *Bot) refreshIndexGauge(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if count, err := b.store.Count(ctx); err == nil {
		b.metrics.IndexedFiles.Set(float64(count))
	}
}

// sendMessage sends a plain text message to a chat.
func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}
