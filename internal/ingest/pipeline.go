// Package ingest normalizes inbound media events and writes them into the
// catalog.
package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"MediaSearchBot/internal/index"
	"MediaSearchBot/internal/models"
)

// HistorySource walks recent history of one source channel for backfill.
type HistorySource interface {
	History(ctx context.Context, channelID int64, limit int) ([]models.MediaEvent, error)
}

// Recorder receives counts of newly indexed files for statistics.
type Recorder interface {
	RecordIngest(n int64)
}

// Report summarizes one channel reindex run.
type Report struct {
	Inserted int
	Updated  int
	Skipped  int
}

// Pipeline turns MediaEvents into catalog records.
type Pipeline struct {
	store   index.Store
	history HistorySource
	stats   Recorder
	log     *zap.Logger
}

// New creates a Pipeline. history may be nil when backfill is not wired;
// stats may be nil when ingestion counts are not tracked.
func New(store index.Store, history HistorySource, stats Recorder, log *zap.Logger) *Pipeline {
	return &Pipeline{store: store, history: history, stats: stats, log: log}
}

// Ingest indexes one media event. Unsupported or non-media events are
// dropped silently; re-delivery of a seen identity refreshes fields without
// creating a duplicate. Backing-store failures propagate as StorageError for
// the caller to retry.
func (p *Pipeline) Ingest(ctx context.Context, ev models.MediaEvent) error {
	rec, ok := buildRecord(ev, time.Now())
	if !ok {
		p.log.Debug("dropping unsupported media event",
			zap.Int64("channel_id", ev.ChannelID),
			zap.Int("message_id", ev.MessageID),
			zap.String("kind", string(ev.Kind)))
		return nil
	}

	created, err := p.store.Upsert(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", rec.Key, err)
	}
	if created && p.stats != nil {
		p.stats.RecordIngest(1)
	}
	p.log.Debug("indexed media",
		zap.String("key", rec.Key),
		zap.String("name", rec.Name),
		zap.Bool("created", created))
	return nil
}

// Reindex re-walks recent history of one channel and re-ingests each item.
// Malformed events are counted as skipped and never abort the walk; a
// backing-store failure stops it and returns the partial report.
func (p *Pipeline) Reindex(ctx context.Context, channelID int64, limit int) (Report, error) {
	var report Report
	if p.history == nil {
		return report, fmt.Errorf("no history source configured")
	}

	events, err := p.history.History(ctx, channelID, limit)
	if err != nil {
		return report, fmt.Errorf("failed to walk channel %d: %w", channelID, err)
	}

	for _, ev := range events {
		rec, ok := buildRecord(ev, time.Now())
		if !ok {
			report.Skipped++
			continue
		}
		created, err := p.store.Upsert(ctx, rec)
		if err != nil {
			return report, fmt.Errorf("failed to index %s: %w", rec.Key, err)
		}
		if created {
			report.Inserted++
		} else {
			report.Updated++
		}
	}

	if report.Inserted > 0 && p.stats != nil {
		p.stats.RecordIngest(int64(report.Inserted))
	}
	p.log.Info("channel reindexed",
		zap.Int64("channel_id", channelID),
		zap.Int("inserted", report.Inserted),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

// buildRecord validates and normalizes an event into a MediaRecord. Events
// without a supported kind or a usable identity are rejected.
func buildRecord(ev models.MediaEvent, now time.Time) (models.MediaRecord, bool) {
	if _, ok := models.ParseMediaKind(string(ev.Kind)); !ok {
		return models.MediaRecord{}, false
	}
	if ev.ChannelID == 0 || ev.MessageID == 0 {
		return models.MediaRecord{}, false
	}

	name := ev.Name
	if name == "" {
		name = defaultName(ev.Kind, ev.MessageID)
	}

	return models.MediaRecord{
		Key:        models.RecordKey(ev.ChannelID, ev.MessageID),
		Name:       name,
		Caption:    ev.Caption,
		Size:       ev.Size,
		Kind:       ev.Kind,
		ChannelID:  ev.ChannelID,
		MessageID:  ev.MessageID,
		FileID:     ev.FileID,
		IngestedAt: now,
	}, true
}

// defaultName fills in a display name for media that carries none.
func defaultName(kind models.MediaKind, messageID int) string {
	switch kind {
	case models.KindPhoto:
		return fmt.Sprintf("photo_%d.jpg", messageID)
	case models.KindVideo:
		return fmt.Sprintf("video_%d.mp4", messageID)
	case models.KindAudio:
		return fmt.Sprintf("audio_%d.mp3", messageID)
	case models.KindAnimation:
		return fmt.Sprintf("animation_%d.gif", messageID)
	default:
		return fmt.Sprintf("file_%d", messageID)
	}
}
