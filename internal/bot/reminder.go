package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shajidul-sobuj/cp-master-bot/internal/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const contestsShown = 5

func (b *Bot) handleContests(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.refreshContestCache(ctx); err != nil {
		b.logger.Warnf("contest cache refresh failed: %v", err)
	}

	contests, err := b.db.GetUpcomingContests(ctx)
	if err != nil {
		b.logger.Errorf("failed to load contests: %v", err)
		b.reply(msg, "❌ Couldn't fetch contests. Please try again later!")
		return
	}
	if len(contests) == 0 {
		b.reply(msg, "📅 No upcoming contests found!\nCheck back later.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📅 *Upcoming Contests* 📅\n\n")

	now := utils.BotTime()
	for i, c := range contests {
		if i >= contestsShown {
			break
		}
		sb.WriteString(fmt.Sprintf("*%d. %s*\n", i+1, c.Name))
		sb.WriteString(fmt.Sprintf("🏢 Platform: %s\n", c.Platform))
		sb.WriteString(fmt.Sprintf("⏰ Starts: %s\n", formatTimeUntil(c.StartTime.Sub(now))))
		sb.WriteString(fmt.Sprintf("⏱️ Duration: %d min\n", c.Duration))
		sb.WriteString(fmt.Sprintf("🔗 %s\n\n", c.URL))
	}

	sb.WriteString("Use /subscribe to get contest reminders!")
	b.replyMarkdown(msg, sb.String())
}

func (b *Bot) handleSubscribe(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.db.UpsertChat(ctx, msg.Chat.ID, msg.Chat.Type, msg.Chat.Title); err != nil {
		b.logger.Errorf("failed to upsert chat %d: %v", msg.Chat.ID, err)
		b.reply(msg, "❌ Failed to enable reminders. Please try again!")
		return
	}
	if err := b.db.SetChatReminders(ctx, msg.Chat.ID, true); err != nil {
		b.logger.Errorf("failed to enable reminders for chat %d: %v", msg.Chat.ID, err)
		b.reply(msg, "❌ Failed to enable reminders. Please try again!")
		return
	}

	b.replyMarkdown(msg, fmt.Sprintf("✅ *Contest reminders enabled!*\n\nYou'll be notified %d minutes before contests start.\nUse /unsubscribe to disable reminders.", b.config.ReminderLeadMinutes))
}

func (b *Bot) handleUnsubscribe(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.db.UpsertChat(ctx, msg.Chat.ID, msg.Chat.Type, msg.Chat.Title); err != nil {
		b.logger.Errorf("failed to upsert chat %d: %v", msg.Chat.ID, err)
	}
	if err := b.db.SetChatReminders(ctx, msg.Chat.ID, false); err != nil {
		b.logger.Errorf("failed to disable reminders for chat %d: %v", msg.Chat.ID, err)
		b.reply(msg, "❌ Failed to disable reminders. Please try again!")
		return
	}

	b.replyMarkdown(msg, "❌ *Contest reminders disabled!*\n\nYou won't receive contest notifications.\nUse /subscribe to enable them again.")
}

// reminderLoop periodically refreshes the contest cache and notifies
// subscribed chats about contests starting within the lead window.
func (b *Bot) reminderLoop(ctx context.Context) {
	interval := time.Duration(b.config.PollIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.runReminderPass(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bot) runReminderPass(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if err := b.refreshContestCache(passCtx); err != nil {
		b.logger.Warnf("contest cache refresh failed: %v", err)
	}

	lead := time.Duration(b.config.ReminderLeadMinutes) * time.Minute
	due, err := b.db.GetContestsDueForReminder(passCtx, lead)
	if err != nil {
		b.logger.Errorf("failed to query due contests: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	chats, err := b.db.GetSubscribedChats(passCtx)
	if err != nil {
		b.logger.Errorf("failed to query subscribed chats: %v", err)
		return
	}

	for _, contest := range due {
		text := fmt.Sprintf(`🔔 *Contest Starting Soon!* 🔔

*%s*

🏢 Platform: %s
⏰ Starts in: %s
⏱️ Duration: %d minutes

🔗 %s

Get ready! Good luck! 🚀`,
			contest.Name, contest.Platform,
			formatTimeUntil(contest.StartTime.Sub(utils.BotTime())),
			contest.Duration, contest.URL)

		for _, chat := range chats {
			out := tgbotapi.NewMessage(chat.ChatID, text)
			out.ParseMode = tgbotapi.ModeMarkdown
			if _, err := b.api.Send(out); err != nil {
				b.logger.Errorf("failed to send reminder to chat %d: %v", chat.ChatID, err)
			}
		}

		if err := b.db.MarkContestNotified(passCtx, contest.ContestID); err != nil {
			b.logger.Errorf("failed to mark contest %s notified: %v", contest.ContestID, err)
		}
	}
}

// refreshContestCache pulls upcoming contests from all platforms into
// the store. A single failing platform does not fail the refresh.
func (b *Bot) refreshContestCache(ctx context.Context) error {
	var firstErr error

	if contests, err := b.cf.GetContests(ctx); err != nil {
		firstErr = err
	} else {
		for _, c := range contests {
			if err := b.db.CacheContest(ctx, c); err != nil {
				b.logger.Warnf("failed to cache contest %s: %v", c.ContestID, err)
			}
		}
	}

	if contests, err := b.ac.GetContests(ctx); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		for _, c := range contests {
			if err := b.db.CacheContest(ctx, c); err != nil {
				b.logger.Warnf("failed to cache contest %s: %v", c.ContestID, err)
			}
		}
	}

	return firstErr
}

// formatTimeUntil renders a future offset as "in 2d 3h" style text.
func formatTimeUntil(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("in %dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("in %dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("in %dm", minutes)
	}
}
