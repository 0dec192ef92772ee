package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"MediaSearchBot/internal/models"
)

// extractEvent pulls the media attachment out of a message. The second return
// is false when the message carries no supported media.
func extractEvent(msg *tgbotapi.Message) (models.MediaEvent, bool) {
	ev := models.MediaEvent{
		ChannelID: msg.Chat.ID,
		MessageID: msg.MessageID,
		Caption:   msg.Caption,
	}

	switch {
	case msg.Document != nil:
		ev.Kind = models.KindDocument
		ev.Name = msg.Document.FileName
		ev.Size = int64(msg.Document.FileSize)
		ev.FileID = msg.Document.FileID
	case msg.Video != nil:
		ev.Kind = models.KindVideo
		ev.Name = msg.Video.FileName
		ev.Size = int64(msg.Video.FileSize)
		ev.FileID = msg.Video.FileID
	case msg.Audio != nil:
		ev.Kind = models.KindAudio
		ev.Name = msg.Audio.FileName
		ev.Size = int64(msg.Audio.FileSize)
		ev.FileID = msg.Audio.FileID
	case len(msg.Photo) > 0:
		// photos arrive as a size ladder, index the largest
		photo := msg.Photo[len(msg.Photo)-1]
		ev.Kind = models.KindPhoto
		ev.Size = int64(photo.FileSize)
		ev.FileID = photo.FileID
	case msg.Animation != nil:
		ev.Kind = models.KindAnimation
		ev.Name = msg.Animation.FileName
		ev.Size = int64(msg.Animation.FileSize)
		ev.FileID = msg.Animation.FileID
	default:
		return models.MediaEvent{}, false
	}

	return ev, true
}

// Membership answers subscription checks against a Telegram channel.
type Membership struct {
	api *tgbotapi.BotAPI
}

// NewMembership wraps api for channel membership lookups.
func NewMembership(api *tgbotapi.BotAPI) *Membership {
	return &Membership{api: api}
}

// IsMember reports whether identity belongs to channel. The channel may be an
// @username or a numeric chat id.
func (m *Membership) IsMember(_ context.Context, channel string, identity int64) (bool, error) {
	cfg := tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: identity},
	}
	if strings.HasPrefix(channel, "@") {
		cfg.SuperGroupUsername = channel
	} else {
		chatID, err := strconv.ParseInt(channel, 10, 64)
		if err != nil {
			return false, fmt.Errorf("invalid channel %q: %w", channel, err)
		}
		cfg.ChatID = chatID
	}

	member, err := m.api.GetChatMember(cfg)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	switch member.Status {
	case "creator", "administrator", "member", "restricted":
		return true, nil
	}
	return false, nil
}

// History walks recent messages of a channel for reindexing. The Bot API has
// no history call, so each message id below a fresh probe message is fetched
// by replying to it and reading the quoted original.
type History struct {
	api *tgbotapi.BotAPI
}

// NewHistory wraps api for channel history walks.
func NewHistory(api *tgbotapi.BotAPI) *History {
	return &History{api: api}
}

// History returns up to limit media events from the most recent messages of
// channelID, newest first.
func (h *History) History(ctx context.Context, channelID int64, limit int) ([]models.MediaEvent, error) {
	probe, err := h.api.Send(tgbotapi.NewMessage(channelID, "Rebuilding the index..."))
	if err != nil {
		return nil, fmt.Errorf("failed to probe channel %d: %w", channelID, err)
	}
	h.api.Request(tgbotapi.NewDeleteMessage(channelID, probe.MessageID))

	var events []models.MediaEvent
	for i := 1; i <= limit; i++ {
		if err := ctx.Err(); err != nil {
			return events, err
		}
		msgID := probe.MessageID - i
		if msgID <= 0 {
			break
		}

		reply := tgbotapi.NewMessage(channelID, ".")
		reply.ReplyToMessageID = msgID
		sent, err := h.api.Send(reply)
		if err != nil {
			// deleted or inaccessible message, skip it
			continue
		}
		if sent.ReplyToMessage != nil {
			if ev, ok := extractEvent(sent.ReplyToMessage); ok {
				events = append(events, ev)
			}
		}
		h.api.Request(tgbotapi.NewDeleteMessage(channelID, sent.MessageID))

		// stay under the Bot API flood limits
		time.Sleep(100 * time.Millisecond)
	}

	return events, nil
}
