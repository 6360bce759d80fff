package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/shajidul-sobuj/cp-master-bot/internal/config"
	"github.com/shajidul-sobuj/cp-master-bot/internal/database"
	"github.com/shajidul-sobuj/cp-master-bot/internal/duel"
	"github.com/shajidul-sobuj/cp-master-bot/internal/logger"
	"github.com/shajidul-sobuj/cp-master-bot/internal/platform/atcoder"
	"github.com/shajidul-sobuj/cp-master-bot/internal/platform/codeforces"
	"github.com/shajidul-sobuj/cp-master-bot/internal/platform/leetcode"
	"github.com/shajidul-sobuj/cp-master-bot/internal/problems"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// commandTimeout bounds every platform/store round-trip made while
// handling a single command.
const commandTimeout = 30 * time.Second

type Bot struct {
	api      *tgbotapi.BotAPI
	db       *database.Database
	duels    *duel.Service
	selector *problems.Selector
	cf       *codeforces.Client
	ac       *atcoder.Client
	lc       *leetcode.Client
	logger   logger.Logger
	config   *config.Config
}

func New(cfg *config.Config, db *database.Database, log logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	if err := db.CreateTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	cf := codeforces.New(log)
	ac := atcoder.New(log)
	lc := leetcode.New(log)
	selector := problems.NewSelector(cf, ac, lc, log)
	duels := duel.NewService(db, selector, time.Duration(cfg.DuelDurationMinutes)*time.Minute, log)

	return &Bot{
		api:      api,
		db:       db,
		duels:    duels,
		selector: selector,
		cf:       cf,
		ac:       ac,
		lc:       lc,
		logger:   log,
		config:   cfg,
	}, nil
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Infof("starting bot as @%s", b.api.Self.UserName)

	go b.reminderLoop(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			go b.handleUpdate(update)
		case <-ctx.Done():
			b.logger.Info("bot stopped")
			return nil
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	msg := update.Message
	b.logger.Debugf("command /%s from %d in chat %d", msg.Command(), msg.From.ID, msg.Chat.ID)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "help":
		b.handleHelp(msg)
	case "cf":
		b.handleSetCFHandle(ctx, msg)
	case "compare":
		b.handleCompare(ctx, msg)
	case "leaderboard":
		b.handleLeaderboard(ctx, msg)
	case "daily":
		b.handleDaily(ctx, msg)
	case "topic":
		b.handleTopic(ctx, msg)
	case "contests":
		b.handleContests(ctx, msg)
	case "subscribe":
		b.handleSubscribe(ctx, msg)
	case "unsubscribe":
		b.handleUnsubscribe(ctx, msg)
	case "duel":
		b.handleDuel(ctx, msg)
	case "accept":
		b.handleAccept(ctx, msg)
	case "decline":
		b.handleDecline(ctx, msg)
	case "duelstatus":
		b.handleDuelStatus(ctx, msg)
	case "sethandle":
		b.handleSetHandle(ctx, msg)
	case "streak":
		b.handleStreak(ctx, msg)
	case "report":
		b.handleReport(ctx, msg)
	default:
		b.logger.Warnf("unknown command: %s", msg.Command())
	}
}

// reply sends a plain text reply into the message's chat.
func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	if _, err := b.api.Send(out); err != nil {
		b.logger.Errorf("failed to send message to chat %d: %v", msg.Chat.ID, err)
	}
}

// replyMarkdown sends a Markdown-formatted reply.
func (b *Bot) replyMarkdown(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(out); err != nil {
		b.logger.Errorf("failed to send message to chat %d: %v", msg.Chat.ID, err)
	}
}

// displayName picks the best available name for a Telegram user.
func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if name == "" {
		name = fmt.Sprintf("User%d", u.ID)
	}
	return name
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	welcomeText := fmt.Sprintf(`🏆 *Welcome to CP Master Bot, %s!*

Your competitive programming companion.

*Rating & Profile:*
• /cf <handle> — Link Codeforces handle
• /compare <user1> <user2> — Compare ratings
• /leaderboard — Group leaderboard

*Daily Problems:*
• /daily [rating] — Random problem
• /topic <topic> — Problem by topic

*Contest Reminders:*
• /contests — Upcoming contests
• /subscribe — Enable reminders
• /unsubscribe — Disable reminders

*Duels (groups only):*
• /duel <rating> — Challenge a user (reply to them)
• /accept, /decline, /duelstatus

*Practice Tracker:*
• /sethandle <handle> — Link handle for tracking
• /streak — Your solving streak
• /report — Weekly progress`, msg.From.FirstName)

	b.replyMarkdown(msg, welcomeText)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	helpText := `📚 *CP Master Bot Help*

*Rating:*
/cf <handle> — link your Codeforces handle
/compare <user1> <user2> — compare two handles
/leaderboard — top 10 rated members

*Problems:*
/daily — random problem
/daily 1400 — problem near rating 1400
/daily leetcode — LeetCode daily challenge
/topic dp — problem from a topic

*Contests:*
/contests — upcoming contests
/subscribe — contest reminders for this chat
/unsubscribe — stop reminders

*Duels:*
Reply to someone with /duel 1400 to challenge them.
/accept — accept an incoming duel
/decline — decline it
/duelstatus — time remaining in your duel

*Tracker:*
/sethandle <handle> — link handle for streak tracking
/streak — current and longest solve streak
/report — last 7 days of solving`

	b.replyMarkdown(msg, helpText)
}
