package query

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"MediaSearchBot/internal/models"
)

// Synonyms maps lowercase type tokens to media kinds.
type Synonyms map[string]models.MediaKind

// DefaultSynonyms returns the built-in type-token table.
func DefaultSynonyms() Synonyms {
	return Synonyms{
		"vid":       models.KindVideo,
		"movie":     models.KindVideo,
		"film":      models.KindVideo,
		"doc":       models.KindDocument,
		"pdf":       models.KindDocument,
		"book":      models.KindDocument,
		"ebook":     models.KindDocument,
		"music":     models.KindAudio,
		"song":      models.KindAudio,
		"mp3":       models.KindAudio,
		"image":     models.KindPhoto,
		"pic":       models.KindPhoto,
		"picture":   models.KindPhoto,
		"wallpaper": models.KindPhoto,
		"gif":       models.KindAnimation,
	}
}

// LoadSynonyms reads a yaml file mapping tokens to kind names and overlays
// it on the defaults, so deployments can extend the table without code
// changes. An entry with an unsupported kind name is an error.
func LoadSynonyms(path string) (Synonyms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonyms file: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms file: %w", err)
	}

	table := DefaultSynonyms()
	for token, kindName := range raw {
		kind, ok := models.ParseMediaKind(kindName)
		if !ok {
			return nil, fmt.Errorf("synonym %q maps to unknown kind %q", token, kindName)
		}
		table[token] = kind
	}
	return table, nil
}
