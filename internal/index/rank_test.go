package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MediaSearchBot/internal/models"
)

func rec(key, name, caption string, kind models.MediaKind, ingested time.Time) models.MediaRecord {
	return models.MediaRecord{
		Key:        key,
		Name:       name,
		Caption:    caption,
		Kind:       kind,
		IngestedAt: ingested,
	}
}

func keys(records []models.MediaRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Key
	}
	return out
}

func TestRankNameBeforeCaption(t *testing.T) {
	now := time.Now()
	records := []models.MediaRecord{
		rec("a", "notes.txt", "python tutorial mentioned here", models.KindDocument, now.Add(time.Hour)),
		rec("b", "python tutorial.pdf", "", models.KindDocument, now),
	}

	ordered := filterAndRank(records, Query{Term: "python tutorial"}, true)
	require.Len(t, ordered, 2)
	assert.Equal(t, []string{"b", "a"}, keys(ordered),
		"name match ranks before caption-only match even when older")
}

func TestRankPhraseFirstForQuotedTerms(t *testing.T) {
	now := time.Now()
	records := []models.MediaRecord{
		// tokens match but not as a contiguous phrase
		rec("scattered", "deep dive into learning.pdf", "", models.KindDocument, now.Add(time.Hour)),
		rec("phrase", "deep learning intro.pdf", "", models.KindDocument, now),
	}

	q := Query{Term: "deep learning", ExactPhrase: true}
	ordered := filterAndRank(records, q, true)
	require.Len(t, ordered, 2)
	assert.Equal(t, []string{"phrase", "scattered"}, keys(ordered))

	// without quoting, recency decides
	ordered = filterAndRank(records, Query{Term: "deep learning"}, true)
	assert.Equal(t, []string{"scattered", "phrase"}, keys(ordered))
}

func TestRankRecencyTieBreak(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []models.MediaRecord{
		rec("old", "report 2022.pdf", "", models.KindDocument, base),
		rec("new", "report 2024.pdf", "", models.KindDocument, base.Add(48*time.Hour)),
		rec("mid", "report 2023.pdf", "", models.KindDocument, base.Add(24*time.Hour)),
	}

	ordered := filterAndRank(records, Query{Term: "report"}, true)
	assert.Equal(t, []string{"new", "mid", "old"}, keys(ordered))
}

func TestRankKindFilter(t *testing.T) {
	now := time.Now()
	records := []models.MediaRecord{
		rec("v", "holiday.mp4", "", models.KindVideo, now),
		rec("p", "holiday.jpg", "", models.KindPhoto, now),
		rec("d", "holiday.pdf", "", models.KindDocument, now),
	}

	ordered := filterAndRank(records, Query{Term: "holiday", Kind: models.KindVideo}, true)
	require.Len(t, ordered, 1)
	assert.Equal(t, models.KindVideo, ordered[0].Kind)

	ordered = filterAndRank(records, Query{Term: "holiday"}, true)
	assert.Len(t, ordered, 3)
}

func TestRankCaptionToggle(t *testing.T) {
	now := time.Now()
	records := []models.MediaRecord{
		rec("c", "IMG_0001.jpg", "sunset over the bay", models.KindPhoto, now),
	}

	assert.Len(t, filterAndRank(records, Query{Term: "sunset"}, true), 1)
	assert.Empty(t, filterAndRank(records, Query{Term: "sunset"}, false),
		"caption matching disabled must not match captions")
}

func TestRankCaseInsensitive(t *testing.T) {
	records := []models.MediaRecord{
		rec("x", "The MATRIX (1999).mkv", "", models.KindVideo, time.Now()),
	}
	assert.Len(t, filterAndRank(records, Query{Term: "matrix"}, true), 1)
	assert.Len(t, filterAndRank(records, Query{Term: "MATRIX"}, true), 1)
}

func TestRankDeterministic(t *testing.T) {
	now := time.Now()
	// identical tiers and timestamps fall back to key order
	records := []models.MediaRecord{
		rec("b", "song.mp3", "", models.KindAudio, now),
		rec("a", "song.mp3", "", models.KindAudio, now),
		rec("c", "song.mp3", "", models.KindAudio, now),
	}

	first := keys(filterAndRank(records, Query{Term: "song"}, true))
	assert.Equal(t, []string{"a", "b", "c"}, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, keys(filterAndRank(records, Query{Term: "song"}, true)))
	}
}

func TestPageSlice(t *testing.T) {
	records := make([]models.MediaRecord, 5)
	for i := range records {
		records[i].Key = string(rune('a' + i))
	}

	assert.Len(t, pageSlice(records, 0, 2), 2)
	assert.Len(t, pageSlice(records, 4, 2), 1)
	assert.Empty(t, pageSlice(records, 5, 2))
	assert.Len(t, pageSlice(records, -1, 2), 2)
	assert.Len(t, pageSlice(records, 0, 0), 5)
}
