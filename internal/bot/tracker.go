package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
	"github.com/shajidul-sobuj/cp-master-bot/internal/platform"
	"github.com/shajidul-sobuj/cp-master-bot/internal/streak"
	"github.com/shajidul-sobuj/cp-master-bot/internal/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const submissionFetchCount = 200

func (b *Bot) handleSetHandle(ctx context.Context, msg *tgbotapi.Message) {
	handle := strings.TrimSpace(msg.CommandArguments())
	if handle == "" {
		b.reply(msg, "❌ Please provide your Codeforces handle!\nUsage: /sethandle <handle>\nExample: /sethandle tourist")
		return
	}

	if err := b.db.EnsureUser(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName); err != nil {
		b.logger.Errorf("failed to ensure user %d: %v", msg.From.ID, err)
		b.reply(msg, "❌ Failed to set handle. Please try again!")
		return
	}
	if err := b.db.UpdateUser(ctx, msg.From.ID, models.UserPatch{CFHandle: &handle}); err != nil {
		b.logger.Errorf("failed to set handle for user %d: %v", msg.From.ID, err)
		b.reply(msg, "❌ Failed to set handle. Please try again!")
		return
	}

	b.replyMarkdown(msg, fmt.Sprintf("✅ Handle set to: *%s*\n\nYour solving progress will now be tracked!\nUse /streak to check your solving streak.", handle))
}

func (b *Bot) handleStreak(ctx context.Context, msg *tgbotapi.Message) {
	handle, ok := b.trackedHandle(ctx, msg)
	if !ok {
		return
	}

	submissions, err := b.cf.GetUserSubmissions(ctx, handle, submissionFetchCount)
	if err != nil {
		b.logger.Errorf("failed to fetch submissions for %s: %v", handle, err)
		b.reply(msg, "❌ Couldn't fetch your submissions. Please try again!")
		return
	}

	stats := streak.ComputeFromHistory(submissions, utils.BotTime())

	// Fold today's activity into the stored incremental state as well.
	if b.solvedToday(submissions) {
		b.recordSolve(ctx, msg.From.ID)
	}

	fire := strings.Repeat("🔥", min(stats.CurrentStreak, 5))
	if fire == "" {
		fire = "📊"
	}

	text := fmt.Sprintf(`%s *Your Solving Streak* %s

🎯 *Current Streak:* %d days
🏆 *Max Streak:* %d days
📝 *Total Solve Days:* %d

%s`,
		fire, fire, stats.CurrentStreak, stats.MaxStreak, stats.TotalSolveDays,
		motivation(stats.CurrentStreak))

	b.replyMarkdown(msg, text)
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) {
	handle, ok := b.trackedHandle(ctx, msg)
	if !ok {
		return
	}

	submissions, err := b.cf.GetUserSubmissions(ctx, handle, submissionFetchCount)
	if err != nil {
		b.logger.Errorf("failed to fetch submissions for %s: %v", handle, err)
		b.reply(msg, "❌ Couldn't fetch your submissions. Please try again!")
		return
	}

	weekAgo := utils.BotTime().AddDate(0, 0, -7)
	total := 0
	accepted := 0
	solved := make(map[string]bool)
	byRating := make(map[int]int)

	for _, s := range submissions {
		if s.SubmittedAt.Before(weekAgo) {
			continue
		}
		total++
		if !s.Accepted() {
			continue
		}
		accepted++
		if !solved[s.ProblemID] {
			solved[s.ProblemID] = true
			if s.Rating != nil {
				byRating[*s.Rating]++
			}
		}
	}

	if total == 0 {
		b.reply(msg, "📊 No submissions in the last 7 days. Time to start solving! 💻")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 *Weekly Progress Report*\n\n📅 *Last 7 Days*\n\n")
	sb.WriteString(fmt.Sprintf("✅ *Problems Solved:* %d\n", len(solved)))
	sb.WriteString(fmt.Sprintf("📝 *Total Submissions:* %d\n", total))
	sb.WriteString(fmt.Sprintf("🎯 *Acceptance Rate:* %.1f%%\n\n", float64(accepted)/float64(total)*100))

	if len(byRating) > 0 {
		sb.WriteString("*By Difficulty:*\n")
		ratings := make([]int, 0, len(byRating))
		for r := range byRating {
			ratings = append(ratings, r)
		}
		sort.Ints(ratings)
		for _, r := range ratings {
			sb.WriteString(fmt.Sprintf("• %d: %d problems\n", r, byRating[r]))
		}
	}

	sb.WriteString("\n" + progressMessage(len(solved)))
	b.replyMarkdown(msg, sb.String())
}

// trackedHandle loads the caller's linked Codeforces handle, replying
// with instructions when there is none.
func (b *Bot) trackedHandle(ctx context.Context, msg *tgbotapi.Message) (string, bool) {
	user, err := b.db.GetUser(ctx, msg.From.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		b.logger.Errorf("failed to load user %d: %v", msg.From.ID, err)
		b.reply(msg, "❌ Something went wrong. Please try again!")
		return "", false
	}
	if err != nil || user.CFHandle == nil {
		b.reply(msg, "❌ You haven't set your Codeforces handle yet!\nUse /sethandle <handle> to start tracking.")
		return "", false
	}
	return *user.CFHandle, true
}

// solvedToday reports whether any accepted submission landed today.
func (b *Bot) solvedToday(submissions []platform.Submission) bool {
	today := utils.Today()
	for _, s := range submissions {
		if s.Accepted() && utils.SameDay(s.SubmittedAt, today) {
			return true
		}
	}
	return false
}

// recordSolve applies a solved-today event to the stored streak state.
func (b *Bot) recordSolve(ctx context.Context, userID int64) {
	state := models.Streak{UserID: userID}
	if stored, err := b.db.GetStreak(ctx, userID); err == nil {
		state = *stored
	} else if !errors.Is(err, models.ErrNotFound) {
		b.logger.Warnf("failed to load streak for user %d: %v", userID, err)
		return
	}

	updated, changed := streak.RecordSolve(state, utils.Today())
	if !changed {
		return
	}
	if err := b.db.SaveStreak(ctx, updated); err != nil {
		b.logger.Warnf("failed to save streak for user %d: %v", userID, err)
	}
}

func motivation(current int) string {
	switch {
	case current == 0:
		return "Start your journey today! 💪"
	case current < 7:
		return "Keep it up! You're building momentum! 🚀"
	case current < 30:
		return "Amazing consistency! Keep pushing! 🔥"
	case current < 100:
		return "Legendary streak! You're unstoppable! ⚡"
	default:
		return "Ultimate dedication! You're a CP master! 👑"
	}
}

func progressMessage(solved int) string {
	switch {
	case solved == 0:
		return "Time to start solving! 💻"
	case solved < 5:
		return "Good start! Keep the momentum going! 💪"
	case solved < 10:
		return "Great progress! You're on fire! 🔥"
	case solved < 20:
		return "Incredible week! Outstanding work! ⚡"
	default:
		return "Phenomenal! You're crushing it! 👑"
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
