package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
	"github.com/shajidul-sobuj/cp-master-bot/internal/platform/codeforces"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const leaderboardSize = 10

func (b *Bot) handleSetCFHandle(ctx context.Context, msg *tgbotapi.Message) {
	handle := strings.TrimSpace(msg.CommandArguments())
	if handle == "" {
		b.reply(msg, "❌ Please provide your Codeforces handle!\nUsage: /cf <handle>\nExample: /cf tourist")
		return
	}

	info, err := b.cf.GetUserInfo(ctx, handle)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			b.reply(msg, fmt.Sprintf("❌ Handle '%s' not found on Codeforces! Please check it and try again.", handle))
			return
		}
		b.logger.Errorf("failed to fetch CF user %s: %v", handle, err)
		b.reply(msg, "❌ Codeforces is unavailable right now. Please try again later!")
		return
	}

	if err := b.db.EnsureUser(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName); err != nil {
		b.logger.Errorf("failed to ensure user %d: %v", msg.From.ID, err)
		b.reply(msg, "❌ Failed to save your handle. Please try again!")
		return
	}

	patch := models.UserPatch{
		CFHandle:      &info.Handle,
		CurrentRating: &info.Rating,
		MaxRating:     &info.MaxRating,
		Rank:          &info.Rank,
	}
	if err := b.db.UpdateUser(ctx, msg.From.ID, patch); err != nil {
		b.logger.Errorf("failed to update user %d: %v", msg.From.ID, err)
		b.reply(msg, "❌ Failed to save your handle. Please try again!")
		return
	}

	text := fmt.Sprintf(`✅ *Handle set successfully!*

👤 *Handle:* %s
%s *Rank:* %s
📊 *Rating:* %d
🏆 *Max Rating:* %d

You can now use /compare and /leaderboard!`,
		info.Handle, codeforces.RankEmoji(info.Rank), strings.Title(info.Rank), info.Rating, info.MaxRating)

	b.replyMarkdown(msg, text)
}

func (b *Bot) handleCompare(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		b.reply(msg, "❌ Please provide two handles!\nUsage: /compare <user1> <user2>\nExample: /compare tourist jiangly")
		return
	}

	first, err := b.cf.GetUserInfo(ctx, args[0])
	if err != nil {
		b.reply(msg, fmt.Sprintf("❌ Handle '%s' not found!", args[0]))
		return
	}
	second, err := b.cf.GetUserInfo(ctx, args[1])
	if err != nil {
		b.reply(msg, fmt.Sprintf("❌ Handle '%s' not found!", args[1]))
		return
	}

	var verdict string
	switch {
	case first.Rating > second.Rating:
		verdict = fmt.Sprintf("🏆 %s is ahead by %d points!", first.Handle, first.Rating-second.Rating)
	case second.Rating > first.Rating:
		verdict = fmt.Sprintf("🏆 %s is ahead by %d points!", second.Handle, second.Rating-first.Rating)
	default:
		verdict = "🤝 It's a tie!"
	}

	text := fmt.Sprintf(`⚔️ *User Comparison*

*%s*
%s Rank: %s
📊 Rating: %d
🏆 Max: %d

*%s*
%s Rank: %s
📊 Rating: %d
🏆 Max: %d

%s`,
		first.Handle, codeforces.RankEmoji(first.Rank), strings.Title(first.Rank), first.Rating, first.MaxRating,
		second.Handle, codeforces.RankEmoji(second.Rank), strings.Title(second.Rank), second.Rating, second.MaxRating,
		verdict)

	b.replyMarkdown(msg, text)
}

func (b *Bot) handleLeaderboard(ctx context.Context, msg *tgbotapi.Message) {
	users, err := b.db.GetLeaderboard(ctx, leaderboardSize)
	if err != nil {
		b.logger.Errorf("failed to load leaderboard: %v", err)
		b.reply(msg, "❌ Failed to load the leaderboard. Please try again!")
		return
	}

	if len(users) == 0 {
		b.reply(msg, "📊 No one has linked a Codeforces handle yet!\nUse /cf <handle> to join the leaderboard.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 *Codeforces Leaderboard* 🏆\n\n")

	medals := []string{"🥇", "🥈", "🥉"}
	for i, u := range users {
		name := u.Username
		if name == "" {
			name = u.FirstName
		}
		rank := "unrated"
		if u.Rank != nil {
			rank = *u.Rank
		}

		medal := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			medal = medals[i]
		}
		sb.WriteString(fmt.Sprintf("%s *%s* (%s)\n   📊 %d • %s\n\n", medal, name, *u.CFHandle, u.CurrentRating, strings.Title(rank)))
	}

	b.replyMarkdown(msg, sb.String())
}
