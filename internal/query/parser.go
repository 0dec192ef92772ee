// Package query parses raw search text into structured search requests.
package query

import (
	"strings"

	"MediaSearchBot/internal/models"
)

// Parser turns raw query strings into SearchRequests. It is pure and
// deterministic: the same input always yields the same result.
type Parser struct {
	synonyms Synonyms
}

// NewParser creates a Parser using the given type-token synonym table.
// A nil table falls back to DefaultSynonyms.
func NewParser(synonyms Synonyms) *Parser {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &Parser{synonyms: synonyms}
}

// Parse applies the query grammar: an optional trailing "| type" segment
// selects a kind filter, and a fully double-quoted term requests an
// exact-phrase match. Unrecognized type tokens degrade the request to
// unfiltered with the whole text kept as the term. An empty term after all
// stripping is ErrEmptyQuery.
func (p *Parser) Parse(raw string) (models.SearchRequest, error) {
	term := strings.TrimSpace(raw)
	kind := models.KindAny

	if i := strings.LastIndex(term, "|"); i >= 0 {
		token := strings.ToLower(strings.TrimSpace(term[i+1:]))
		if k, ok := p.lookupKind(token); ok {
			kind = k
			term = strings.TrimSpace(term[:i])
		}
	}

	exact := false
	if len(term) >= 2 && strings.HasPrefix(term, `"`) && strings.HasSuffix(term, `"`) {
		exact = true
		term = strings.TrimSpace(term[1 : len(term)-1])
	}

	if term == "" {
		return models.SearchRequest{}, models.ErrEmptyQuery
	}

	return models.SearchRequest{
		Term:        term,
		ExactPhrase: exact,
		Kind:        kind,
	}, nil
}

func (p *Parser) lookupKind(token string) (models.MediaKind, bool) {
	if token == "" {
		return models.KindAny, false
	}
	if k, ok := models.ParseMediaKind(token); ok {
		return k, true
	}
	if k, ok := p.synonyms[token]; ok {
		return k, true
	}
	return models.KindAny, false
}
