package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MediaSearchBot/internal/index"
	"MediaSearchBot/internal/models"
)

type fakeHistory struct {
	events []models.MediaEvent
	err    error
}

func (f *fakeHistory) History(_ context.Context, _ int64, limit int) ([]models.MediaEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.events) {
		return f.events[:limit], nil
	}
	return f.events, nil
}

type countingRecorder struct {
	total int64
}

func (c *countingRecorder) RecordIngest(n int64) { c.total += n }

func event(msgID int, kind models.MediaKind, name string) models.MediaEvent {
	return models.MediaEvent{
		ChannelID: -100123,
		MessageID: msgID,
		Kind:      kind,
		Name:      name,
		FileID:    "file-id",
	}
}

func TestIngestIdempotent(t *testing.T) {
	ctx := context.Background()
	store := index.NewMemory(true)
	stats := &countingRecorder{}
	p := New(store, nil, stats, zap.NewNop())

	ev := event(1, models.KindDocument, "go proverbs.pdf")
	require.NoError(t, p.Ingest(ctx, ev))

	ev.Caption = "edited caption"
	require.NoError(t, p.Ingest(ctx, ev))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "re-delivery must not create a duplicate")
	assert.EqualValues(t, 1, stats.total, "only first sighting counts as new")

	got, err := store.Search(ctx, index.Query{Term: "go proverbs", Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "edited caption", got[0].Caption)
}

func TestIngestDropsUnsupported(t *testing.T) {
	ctx := context.Background()
	store := index.NewMemory(true)
	p := New(store, nil, nil, zap.NewNop())

	require.NoError(t, p.Ingest(ctx, event(1, "sticker", "x")))
	require.NoError(t, p.Ingest(ctx, event(2, "", "x")))
	require.NoError(t, p.Ingest(ctx, models.MediaEvent{Kind: models.KindVideo}), "missing identity is dropped")

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIngestDefaultNames(t *testing.T) {
	ctx := context.Background()
	store := index.NewMemory(true)
	p := New(store, nil, nil, zap.NewNop())

	require.NoError(t, p.Ingest(ctx, event(7, models.KindPhoto, "")))

	got, err := store.Search(ctx, index.Query{Term: "photo_7", Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "photo_7.jpg", got[0].Name)
}

func TestReindexReportsCounts(t *testing.T) {
	ctx := context.Background()
	store := index.NewMemory(true)
	p := New(store, nil, nil, zap.NewNop())

	// one record already present
	require.NoError(t, p.Ingest(ctx, event(1, models.KindVideo, "old.mp4")))

	history := &fakeHistory{events: []models.MediaEvent{
		event(1, models.KindVideo, "old.mp4"),
		event(2, models.KindVideo, "new.mp4"),
		event(3, "voice", ""), // unsupported, skipped
	}}
	stats := &countingRecorder{}
	p = New(store, history, stats, zap.NewNop())

	report, err := p.Reindex(ctx, -100123, 0)
	require.NoError(t, err)
	assert.Equal(t, Report{Inserted: 1, Updated: 1, Skipped: 1}, report)
	assert.EqualValues(t, 1, stats.total)
}

func TestReindexHonorsLimit(t *testing.T) {
	ctx := context.Background()
	store := index.NewMemory(true)
	history := &fakeHistory{events: []models.MediaEvent{
		event(1, models.KindVideo, "a.mp4"),
		event(2, models.KindVideo, "b.mp4"),
		event(3, models.KindVideo, "c.mp4"),
	}}
	p := New(store, history, nil, zap.NewNop())

	report, err := p.Reindex(ctx, -100123, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted+report.Updated)
}
