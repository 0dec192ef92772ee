package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"MediaSearchBot/internal/models"
)

// handleInline answers one inline query. Every path answers something, even
// denials, so the client spinner always resolves.
func (b *Bot) handleInline(ctx context.Context, q *tgbotapi.InlineQuery) {
	ctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	offset := 0
	if q.Offset != "" {
		if n, err := strconv.Atoi(q.Offset); err == nil {
			offset = n
		}
	}

	resp := b.orch.Handle(ctx, q.Query, q.From.ID, offset)

	answer := tgbotapi.InlineConfig{
		InlineQueryID: q.ID,
		IsPersonal:    true,
		CacheTime:     b.cfg.CacheTime,
	}

	switch resp.Kind {
	case models.ResponseDenied:
		b.metrics.Queries.WithLabelValues("denied").Inc()
		answer.CacheTime = 0
		answer.SwitchPMText = denialText(resp)
		answer.SwitchPMParameter = "denied"
	case models.ResponseThrottled:
		b.metrics.Queries.WithLabelValues("throttled").Inc()
		answer.CacheTime = 0
		answer.SwitchPMText = fmt.Sprintf("Slow down, try again in %ds", int(resp.RetryAfter.Seconds())+1)
		answer.SwitchPMParameter = "throttled"
	case models.ResponseEmptyGuidance:
		b.metrics.Queries.WithLabelValues("empty").Inc()
		answer.SwitchPMText = "Type a file name, e.g. avengers | video"
		answer.SwitchPMParameter = "help"
	case models.ResponsePage:
		b.metrics.Queries.WithLabelValues("page").Inc()
		for i, rec := range resp.Page.Records {
			answer.Results = append(answer.Results, inlineResult(rec, offset+i))
		}
		if resp.Page.NextOffset != nil {
			answer.NextOffset = strconv.Itoa(*resp.Page.NextOffset)
		}
		if len(resp.Page.Records) == 0 {
			answer.SwitchPMText = "No results, try different words"
			answer.SwitchPMParameter = "noresults"
		}
	default:
		b.metrics.Queries.WithLabelValues("error").Inc()
		answer.CacheTime = 0
		answer.SwitchPMText = "Search is temporarily unavailable, try again"
		answer.SwitchPMParameter = "error"
	}

	if _, err := b.api.Request(answer); err != nil {
		b.log.Warn("failed to answer inline query",
			zap.String("query_id", q.ID),
			zap.Error(err))
	}
}

func denialText(resp models.Response) string {
	switch resp.DenyReason {
	case models.DeniedBanned:
		return "You are banned from using this bot"
	case models.DeniedSubscriptionRequired:
		return fmt.Sprintf("Join %s to use this bot", resp.JoinChannel)
	default:
		return "You are not authorized to use this bot"
	}
}

// inlineResult builds the cached-file result for one record. pos keeps ids
// unique across pages of the same answer sequence.
func inlineResult(rec models.MediaRecord, pos int) interface{} {
	id := fmt.Sprintf("%d:%s", pos, rec.Key)
	caption := fmt.Sprintf("%s %s (%s)", fileEmoji(rec.Kind), truncate(rec.Name, 60), formatFileSize(rec.Size))

	switch rec.Kind {
	case models.KindVideo:
		return tgbotapi.InlineQueryResultCachedVideo{
			Type:    "video",
			ID:      id,
			VideoID: rec.FileID,
			Title:   rec.Name,
			Caption: caption,
		}
	case models.KindAudio:
		return tgbotapi.InlineQueryResultCachedAudio{
			Type:    "audio",
			ID:      id,
			AudioID: rec.FileID,
			Caption: caption,
		}
	case models.KindPhoto:
		return tgbotapi.InlineQueryResultCachedPhoto{
			Type:    "photo",
			ID:      id,
			PhotoID: rec.FileID,
			Title:   rec.Name,
			Caption: caption,
		}
	case models.KindAnimation:
		return tgbotapi.InlineQueryResultCachedMPEG4GIF{
			Type:        "mpeg4_gif",
			ID:          id,
			MPEG4FileID: rec.FileID,
			Title:       rec.Name,
			Caption:     caption,
		}
	default:
		return tgbotapi.InlineQueryResultCachedDocument{
			Type:       "document",
			ID:         id,
			DocumentID: rec.FileID,
			Title:      rec.Name,
			Caption:    caption,
		}
	}
}
