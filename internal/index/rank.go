package index

import (
	"sort"
	"strings"

	"MediaSearchBot/internal/models"
)

// scoredRecord carries the match tiers used for ordering.
type scoredRecord struct {
	rec    models.MediaRecord
	phrase bool
	name   bool
}

func tokenize(term string) []string {
	return strings.Fields(strings.ToLower(term))
}

func containsAll(haystack string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(haystack, tok) {
			return false
		}
	}
	return true
}

// matchRecord reports whether rec matches the tokenized term, and on which
// tiers. Matching is case-insensitive substring matching over the name and,
// when enabled, the caption.
func matchRecord(rec models.MediaRecord, tokens []string, phrase string, exactPhrase, captions bool) (scoredRecord, bool) {
	name := strings.ToLower(rec.Name)
	caption := ""
	if captions {
		caption = strings.ToLower(rec.Caption)
	}

	nameHit := containsAll(name, tokens)
	captionHit := caption != "" && containsAll(caption, tokens)
	if !nameHit && !captionHit {
		return scoredRecord{}, false
	}

	sr := scoredRecord{rec: rec, name: nameHit}
	if exactPhrase {
		sr.phrase = strings.Contains(name, phrase) ||
			(caption != "" && strings.Contains(caption, phrase))
	}
	return sr, true
}

// filterAndRank applies the kind filter and term matching to records and
// returns the full deterministic ordering: phrase hits (quoted terms only),
// then name hits over caption-only hits, then most recent ingestion, then
// key as the final tie-break.
func filterAndRank(records []models.MediaRecord, q Query, captions bool) []models.MediaRecord {
	tokens := tokenize(q.Term)
	phrase := strings.ToLower(strings.TrimSpace(q.Term))

	scored := make([]scoredRecord, 0, len(records))
	for _, rec := range records {
		if q.Kind != models.KindAny && rec.Kind != q.Kind {
			continue
		}
		if sr, ok := matchRecord(rec, tokens, phrase, q.ExactPhrase, captions); ok {
			scored = append(scored, sr)
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.phrase != b.phrase {
			return a.phrase
		}
		if a.name != b.name {
			return a.name
		}
		if !a.rec.IngestedAt.Equal(b.rec.IngestedAt) {
			return a.rec.IngestedAt.After(b.rec.IngestedAt)
		}
		return a.rec.Key < b.rec.Key
	})

	out := make([]models.MediaRecord, len(scored))
	for i, sr := range scored {
		out[i] = sr.rec
	}
	return out
}

// pageSlice cuts one page out of the full ordering.
func pageSlice(records []models.MediaRecord, offset, limit int) []models.MediaRecord {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return nil
	}
	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return records[offset:end]
}
