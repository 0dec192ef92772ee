package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"MediaSearchBot/internal/models"
)

const helpText = `Search for files by typing my username in any chat, followed by your query.

Query syntax:
  avengers          search by file name or caption
  "iron man"        exact phrase match
  avengers | video  restrict to one media type

Media types: document, video, audio, photo, animation (plus shortcuts like movie, pdf, song).`

// handleCommand dispatches one bot command. Admin commands are silently
// ignored for everyone else.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	switch cmd {
	case "start":
		b.reply(msg, fmt.Sprintf("Hi %s! I index media files and answer inline searches.\n\n%s", msg.From.FirstName, helpText))
		return
	case "help":
		b.reply(msg, helpText)
		return
	}

	if !b.cfg.IsAdmin(msg.From.ID) {
		return
	}

	var err error
	switch cmd {
	case "stats":
		err = b.cmdStats(ctx, msg)
	case "total":
		err = b.cmdTotal(ctx, msg)
	case "ban":
		err = b.cmdBan(msg, args)
	case "unban":
		err = b.cmdUnban(msg, args)
	case "delete":
		err = b.cmdDelete(ctx, msg, args)
	case "index":
		err = b.cmdIndex(ctx, msg, args)
	case "broadcast":
		err = b.cmdBroadcast(msg, args)
	case "logger":
		err = b.cmdLogger(msg)
	default:
		return
	}
	if err != nil {
		b.log.Error("command failed",
			zap.String("command", cmd),
			zap.Int64("user_id", msg.From.ID),
			zap.Error(err))
		b.reply(msg, fmt.Sprintf("Command failed: %v", err))
	}
}

func (b *Bot) cmdStats(ctx context.Context, msg *tgbotapi.Message) error {
	stats := b.state.SnapshotStats()
	total, err := b.store.Count(ctx)
	if err != nil {
		return err
	}
	byKind, err := b.store.CountByKind(ctx)
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Indexed files: %d\n", total)

	kinds := make([]string, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(&sb, "  %s %s: %d\n", fileEmoji(models.MediaKind(kind)), kind, byKind[models.MediaKind(kind)])
	}

	fmt.Fprintf(&sb, "\nUsers: %d (banned: %d)\n", stats.TotalUsers, stats.BannedUsers)
	fmt.Fprintf(&sb, "Queries served: %d\n", stats.TotalQueries)
	fmt.Fprintf(&sb, "Uptime: %s", time.Since(stats.StartTime).Round(time.Second))
	b.reply(msg, sb.String())
	return nil
}

func (b *Bot) cmdTotal(ctx context.Context, msg *tgbotapi.Message) error {
	total, err := b.store.Count(ctx)
	if err != nil {
		return err
	}
	b.reply(msg, fmt.Sprintf("Total indexed files: %d", total))
	return nil
}

func (b *Bot) cmdBan(msg *tgbotapi.Message, args string) error {
	target, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.reply(msg, "Usage: /ban <user_id>")
		return nil
	}
	if b.cfg.IsAdmin(target) {
		b.reply(msg, "Admins cannot be banned.")
		return nil
	}
	changed, err := b.state.Ban(target)
	if err != nil {
		return err
	}
	if !changed {
		b.reply(msg, fmt.Sprintf("User %d is already banned.", target))
		return nil
	}
	b.reply(msg, fmt.Sprintf("User %d banned.", target))
	return nil
}

func (b *Bot) cmdUnban(msg *tgbotapi.Message, args string) error {
	target, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.reply(msg, "Usage: /unban <user_id>")
		return nil
	}
	changed, err := b.state.Unban(target)
	if err != nil {
		return err
	}
	if !changed {
		b.reply(msg, fmt.Sprintf("User %d is not banned.", target))
		return nil
	}
	b.reply(msg, fmt.Sprintf("User %d unbanned.", target))
	return nil
}

func (b *Bot) cmdDelete(ctx context.Context, msg *tgbotapi.Message, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.reply(msg, "Usage: /delete <channel_id> <message_id>")
		return nil
	}
	channelID, err1 := strconv.ParseInt(fields[0], 10, 64)
	messageID, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		b.reply(msg, "Usage: /delete <channel_id> <message_id>")
		return nil
	}

	key := models.RecordKey(channelID, messageID)
	if err := b.store.Delete(ctx, key); err != nil {
		return err
	}
	b.refreshIndexGauge(ctx)
	b.reply(msg, fmt.Sprintf("Deleted %s from the index.", key))
	return nil
}

func (b *Bot) cmdIndex(ctx context.Context, msg *tgbotapi.Message, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		b.reply(msg, "Usage: /index <channel_id> [limit]")
		return nil
	}
	channelID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		b.reply(msg, "Usage: /index <channel_id> [limit]")
		return nil
	}
	limit := 100
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
			limit = n
		}
	}

	b.reply(msg, fmt.Sprintf("Reindexing channel %d, walking up to %d messages...", channelID, limit))
	report, err := b.pipeline.Reindex(ctx, channelID, limit)
	if err != nil {
		return err
	}
	b.metrics.Ingests.Add(float64(report.Inserted))
	b.refreshIndexGauge(ctx)
	b.reply(msg, fmt.Sprintf("Reindex done: %d new, %d refreshed, %d skipped.",
		report.Inserted, report.Updated, report.Skipped))
	return nil
}

func (b *Bot) cmdBroadcast(msg *tgbotapi.Message, args string) error {
	if args == "" {
		b.reply(msg, "Usage: /broadcast <message>")
		return nil
	}

	users := b.state.UserIDs()
	sent, failed := 0, 0
	for _, id := range users {
		if err := b.sendMessage(id, args); err != nil {
			failed++
		} else {
			sent++
		}
		// stay under the Bot API flood limits
		time.Sleep(50 * time.Millisecond)
	}
	b.reply(msg, fmt.Sprintf("Broadcast done: %d sent, %d failed.", sent, failed))
	return nil
}

func (b *Bot) cmdLogger(msg *tgbotapi.Message) error {
	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FilePath(b.cfg.LogFile))
	doc.Caption = "Current log file"
	_, err := b.api.Send(doc)
	return err
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	if err := b.sendMessage(msg.Chat.ID, text); err != nil {
		b.log.Warn("failed to send reply",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Error(err))
	}
}
