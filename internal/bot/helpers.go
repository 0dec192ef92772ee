package bot

import (
	"fmt"
	"strings"

	"MediaSearchBot/internal/models"
)

// formatFileSize renders a byte count for humans.
func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGT"[exp])
}

func fileEmoji(kind models.MediaKind) string {
	switch kind {
	case models.KindVideo:
		return "🎬"
	case models.KindAudio:
		return "🎵"
	case models.KindPhoto:
		return "🖼"
	case models.KindAnimation:
		return "🎞"
	default:
		return "📄"
	}
}

// messageLink builds a t.me deep link to a channel message. Private channel
// ids carry a -100 prefix that the link format omits.
func messageLink(channelID int64, messageID int) string {
	id := fmt.Sprintf("%d", channelID)
	if strings.HasPrefix(id, "-100") {
		id = id[4:]
	} else {
		id = strings.TrimPrefix(id, "-")
	}
	return fmt.Sprintf("https://t.me/c/%s/%d", id, messageID)
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
