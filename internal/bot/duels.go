package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shajidul-sobuj/cp-master-bot/internal/duel"
	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
	"github.com/shajidul-sobuj/cp-master-bot/internal/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleDuel(ctx context.Context, msg *tgbotapi.Message) {
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.From == nil {
		b.reply(msg, "⚠️ Reply to the user you want to challenge, e.g. /duel 1400")
		return
	}

	rating, err := strconv.Atoi(msg.CommandArguments())
	if err != nil {
		b.reply(msg, "❌ Invalid rating. Usage: /duel <rating>, e.g. /duel 1400")
		return
	}

	challenger := duel.Participant{
		ID:        msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
	}
	challenged := duel.Participant{
		ID:        msg.ReplyToMessage.From.ID,
		Username:  msg.ReplyToMessage.From.UserName,
		FirstName: msg.ReplyToMessage.From.FirstName,
	}

	duelID, err := b.duels.Challenge(ctx, msg.Chat.ID, msg.Chat.Type, challenger, challenged, rating)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAlreadyPending):
			b.reply(msg, fmt.Sprintf("❌ %s already has a pending duel!", displayName(msg.ReplyToMessage.From)))
		case errors.Is(err, models.ErrInvalidInput):
			b.reply(msg, "❌ "+err.Error())
		default:
			b.logger.Errorf("failed to create duel: %v", err)
			b.reply(msg, "❌ Failed to create duel. Please try again!")
		}
		return
	}

	text := fmt.Sprintf(`⚔️ *DUEL CHALLENGE!* ⚔️

%s has challenged %s!

*Problem Rating:* %d
*Duration:* %d minutes

%s, use /accept to accept or /decline to decline.`,
		displayName(msg.From), displayName(msg.ReplyToMessage.From),
		rating, int(b.duels.Duration().Minutes()),
		displayName(msg.ReplyToMessage.From))

	b.logger.Infof("duel %d challenged in chat %d", duelID, msg.Chat.ID)
	b.replyMarkdown(msg, text)
}

func (b *Bot) handleAccept(ctx context.Context, msg *tgbotapi.Message) {
	accepted, err := b.duels.Accept(ctx, msg.From.ID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			b.reply(msg, "❌ You don't have any pending duel challenges!")
		case errors.Is(err, models.ErrUnavailable):
			b.reply(msg, "❌ Couldn't fetch a problem right now. The duel is still pending — try /accept again!")
		default:
			b.logger.Errorf("failed to accept duel: %v", err)
			b.reply(msg, "❌ Failed to accept the duel. Please try again!")
		}
		return
	}

	text := fmt.Sprintf(`🔥 *DUEL STARTED!* 🔥

⏰ Duration: %d minutes
📝 *Problem:* %s
⭐ *Rating:* %d

🔗 %s

First to solve wins! Use /duelstatus to check time remaining.`,
		int(b.duels.Duration().Minutes()), *accepted.ProblemName, accepted.ProblemRating, *accepted.ProblemURL)

	b.replyMarkdown(msg, text)
}

func (b *Bot) handleDecline(ctx context.Context, msg *tgbotapi.Message) {
	_, err := b.duels.Decline(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			b.reply(msg, "❌ You don't have any pending duel challenges!")
			return
		}
		b.logger.Errorf("failed to decline duel: %v", err)
		b.reply(msg, "❌ Failed to decline the duel. Please try again!")
		return
	}

	b.reply(msg, "❌ Duel declined. Maybe next time!")
}

func (b *Bot) handleDuelStatus(ctx context.Context, msg *tgbotapi.Message) {
	status, err := b.duels.Status(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			b.reply(msg, "❌ You don't have any active duels!")
			return
		}
		b.logger.Errorf("failed to get duel status: %v", err)
		b.reply(msg, "❌ Failed to check the duel. Please try again!")
		return
	}

	if status.Expired {
		b.replyMarkdown(msg, "⏰ *Time's up!*\n\nThe duel has ended. Check submissions to determine the winner!")
		return
	}

	text := fmt.Sprintf(`⚔️ *Active Duel Status*

📝 *Problem:* %s
⏰ *Time Remaining:* %s

🔗 %s

Keep coding! 💪`,
		*status.Duel.ProblemName, utils.FormatRemaining(status.Remaining), *status.Duel.ProblemURL)

	b.replyMarkdown(msg, text)
}
