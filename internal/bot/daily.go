package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shajidul-sobuj/cp-master-bot/internal/duel"
	"github.com/shajidul-sobuj/cp-master-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleDaily(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())

	var (
		problem *models.Problem
		err     error
	)
	if args == "" {
		problem, err = b.selector.SelectAny(ctx, models.PlatformCodeforces)
	} else if strings.EqualFold(args, models.PlatformLeetCode) {
		problem, err = b.lc.GetDailyQuestion(ctx)
	} else {
		rating, convErr := strconv.Atoi(args)
		if convErr != nil {
			b.reply(msg, "❌ Invalid rating! Example: /daily 1400")
			return
		}
		if rating < duel.MinRating || rating > duel.MaxRating {
			b.reply(msg, fmt.Sprintf("❌ Rating must be between %d and %d!", duel.MinRating, duel.MaxRating))
			return
		}
		problem, err = b.selector.Select(ctx, models.PlatformCodeforces, rating, "")
	}
	if err != nil {
		b.logger.Errorf("failed to select daily problem: %v", err)
		b.reply(msg, "❌ Couldn't fetch a problem right now. Please try again!")
		return
	}

	b.recordDaily(ctx, msg.Chat.ID, problem)

	text := fmt.Sprintf(`📝 *Daily Problem Challenge*

*Problem:* %s
*Rating:* %s
*Tags:* %s

🔗 %s

Good luck! 🚀`,
		problem.Name, ratingLabel(problem.Rating), tagLabel(problem.Tags, 3), problem.URL)

	b.replyMarkdown(msg, text)
}

func (b *Bot) handleTopic(ctx context.Context, msg *tgbotapi.Message) {
	topic := strings.TrimSpace(msg.CommandArguments())
	if topic == "" {
		b.reply(msg, "❌ Please provide a topic!\nUsage: /topic <topic>\nExamples: /topic dp, /topic graphs, /topic greedy")
		return
	}

	problem, err := b.selector.Select(ctx, models.PlatformCodeforces, 0, topic)
	if err != nil {
		b.logger.Errorf("failed to select problem for topic %q: %v", topic, err)
		b.reply(msg, fmt.Sprintf("❌ No problems found for topic: %s\nTry a different topic or /daily for a random problem.", topic))
		return
	}

	b.recordDaily(ctx, msg.Chat.ID, problem)

	text := fmt.Sprintf(`📝 *%s Problem*

*Problem:* %s
*Rating:* %s
*Tags:* %s

🔗 %s

Master this topic! 💪`,
		strings.Title(topic), problem.Name, ratingLabel(problem.Rating), tagLabel(problem.Tags, 0), problem.URL)

	b.replyMarkdown(msg, text)
}

// recordDaily caches the served problem and logs the assignment.
// Failures here only lose bookkeeping, not the reply.
func (b *Bot) recordDaily(ctx context.Context, chatID int64, problem *models.Problem) {
	if err := b.db.CacheProblem(ctx, *problem); err != nil {
		b.logger.Warnf("failed to cache problem %s: %v", problem.ProblemID, err)
		return
	}
	if err := b.db.RecordDailyProblem(ctx, chatID, problem.ProblemID); err != nil {
		b.logger.Warnf("failed to record daily problem for chat %d: %v", chatID, err)
	}
}

func ratingLabel(rating *int) string {
	if rating == nil {
		return "N/A"
	}
	return strconv.Itoa(*rating)
}

func tagLabel(tags []string, limit int) string {
	if len(tags) == 0 {
		return "—"
	}
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return strings.Join(tags, ", ")
}
