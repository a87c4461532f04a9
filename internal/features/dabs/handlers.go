// handlers.go разбирает команду /dabs <подкоманда> и отвечает в чат.
//
// Формат:
//
//	/dabs check [detailed] [@user]
//	/dabs daily-roll
//	/dabs level <amount|max> [true|false]
//	/dabs give <@user> <dabs|all>       (или ответом на сообщение)
//	/dabs leaderboards [sort-by] [positive|negative]
//	/dabs switch-mode
//	/dabs bet-roll <dabs>
//	/dabs bet-flip <heads|tails> <dabs|all>
//	/dabs bet-dubs <dabs|all>
package dabs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dabs-bot/internal/common"
	"serotonyl.ru/dabs-bot/internal/features/members"
	"serotonyl.ru/dabs-bot/internal/metrics"
)

// LeaderboardSize: сколько строк показывать в таблице.
const LeaderboardSize = 10

// Members: то, что обработчику нужно от справочника участников.
type Members interface {
	GetByUsername(ctx context.Context, username string) (*members.Member, error)
	DisplayName(ctx context.Context, userID int64) string
}

// Handler обрабатывает команды экономики.
type Handler struct {
	service *Service
	members Members
	bot     common.Sender
}

// NewHandler создаёт обработчик /dabs.
func NewHandler(service *Service, members Members, bot common.Sender) *Handler {
	return &Handler{service: service, members: members, bot: bot}
}

// HandleCommand выполняет подкоманду и отвечает на сообщение.
// Отказы уходят пользователю как есть; ошибка возвращается только при системном сбое
// (пользователь к этому моменту уже получил общий ответ).
func (h *Handler) HandleCommand(ctx context.Context, msg *tgbotapi.Message, args []string) error {
	sub := "check"
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
		args = args[1:]
	}

	text, err := h.dispatch(ctx, msg, sub, args)
	switch {
	case err == nil:
		metrics.ObserveCommand(sub, metrics.OutcomeOK)
		h.reply(msg, text)
		return nil

	case common.IsRejection(err):
		metrics.ObserveCommand(sub, metrics.OutcomeRejected)
		h.reply(msg, "❌ "+common.RejectionReason(err))
		return nil

	default:
		metrics.ObserveCommand(sub, metrics.OutcomeError)
		log.WithError(err).WithFields(log.Fields{
			"sub":     sub,
			"user_id": msg.From.ID,
		}).Error("Ошибка команды dabs")
		h.reply(msg, "⚠️ Something went wrong, try again later.")
		return fmt.Errorf("dabs %s: %w", sub, err)
	}
}

func (h *Handler) dispatch(ctx context.Context, msg *tgbotapi.Message, sub string, args []string) (string, error) {
	userID := userKey(msg.From.ID)

	switch sub {
	case "check":
		return h.check(ctx, msg, args)

	case "daily-roll", "daily":
		res, rec, err := h.service.DailyRoll(ctx, userID)
		if err != nil {
			return "", err
		}
		return RenderRoll(res, rec), nil

	case "level":
		return h.level(ctx, userID, args)

	case "give":
		return h.give(ctx, msg, args)

	case "leaderboards", "leaderboard", "top":
		return h.leaderboard(ctx, args)

	case "switch-mode":
		rec, err := h.service.SwitchMode(ctx, userID)
		if err != nil {
			return "", err
		}
		return RenderSwitch(rec), nil

	case "bet-roll":
		amount, err := requireAmount(args, false)
		if err != nil {
			return "", err
		}
		res, rec, err := h.service.BetRoll(ctx, userID, amount)
		if err != nil {
			return "", err
		}
		return RenderBet(res, rec), nil

	case "bet-flip":
		return h.betFlip(ctx, userID, args)

	case "bet-dubs":
		amount, err := requireAmount(args, true)
		if err != nil {
			return "", err
		}
		res, rec, err := h.service.BetDubs(ctx, userID, amount)
		if err != nil {
			return "", err
		}
		return RenderBet(res, rec), nil
	}
	return "", common.ErrUnknownSubcmd
}

func (h *Handler) check(ctx context.Context, msg *tgbotapi.Message, args []string) (string, error) {
	detailed := false
	var rest []string
	for _, a := range args {
		switch strings.ToLower(a) {
		case "detailed", "full", "true", "detailed=true":
			detailed = true
		default:
			rest = append(rest, a)
		}
	}

	targetID, _, found, err := h.resolveTarget(ctx, msg, rest)
	if err != nil {
		return "", err
	}
	if !found {
		targetID = msg.From.ID
	}

	res, err := h.service.Check(ctx, userKey(msg.From.ID), userKey(targetID), detailed)
	if err != nil {
		return "", err
	}
	name := h.members.DisplayName(ctx, targetID)
	return RenderCheck(name, res.Record, res.Detailed, h.service.Today()), nil
}

func (h *Handler) level(ctx context.Context, userID string, args []string) (string, error) {
	if len(args) == 0 {
		return "", common.ErrMissingArgument
	}
	amount, err := parseAmount(args[0], true)
	if err != nil {
		return "", err
	}

	dryRun := true
	if len(args) > 1 {
		switch strings.ToLower(args[1]) {
		case "false", "no", "apply", "dry-run=false":
			dryRun = false
		case "true", "yes", "dry-run=true":
		default:
			return "", common.Reject("dry-run must be true or false.")
		}
	}

	res, rec, err := h.service.Level(ctx, userID, amount, dryRun)
	if err != nil {
		return "", err
	}
	return RenderLevel(res, rec), nil
}

func (h *Handler) give(ctx context.Context, msg *tgbotapi.Message, args []string) (string, error) {
	targetID, rest, found, err := h.resolveTarget(ctx, msg, args)
	if err != nil {
		return "", err
	}
	if !found {
		return "", common.Reject("Who to give to? Mention @user or reply to their message.")
	}
	amount, err := requireAmount(rest, true)
	if err != nil {
		return "", err
	}

	res, err := h.service.Give(ctx, userKey(msg.From.ID), userKey(targetID), amount)
	if err != nil {
		return "", err
	}
	return RenderGive(h.members.DisplayName(ctx, msg.From.ID), h.members.DisplayName(ctx, targetID), res), nil
}

func (h *Handler) leaderboard(ctx context.Context, args []string) (string, error) {
	key, board := SortDabs, BoardPositive
	for _, a := range args {
		if b, err := ParseBoard(a); err == nil {
			board = b
			continue
		}
		k, err := ParseSortKey(a)
		if err != nil {
			return "", err
		}
		key = k
	}

	entries, err := h.service.Leaderboard(ctx, key, board)
	if err != nil {
		return "", err
	}
	return RenderLeaderboard(key, board, entries, LeaderboardSize, func(id string) string {
		return h.nameOf(ctx, id)
	}), nil
}

func (h *Handler) betFlip(ctx context.Context, userID string, args []string) (string, error) {
	var (
		choice  string
		amounts []string
	)
	for _, a := range args {
		switch strings.ToLower(a) {
		case "heads", "h":
			choice = "heads"
		case "tails", "t":
			choice = "tails"
		default:
			amounts = append(amounts, a)
		}
	}
	if choice == "" {
		return "", common.ErrBadFlipChoice
	}
	amount, err := requireAmount(amounts, true)
	if err != nil {
		return "", err
	}

	res, rec, err := h.service.BetFlip(ctx, userID, amount, choice == "heads")
	if err != nil {
		return "", err
	}
	return RenderBet(res, rec), nil
}

// resolveTarget ищет адресата: @username в аргументах, text_mention, затем ответ на сообщение.
// rest: аргументы без найденного @username.
func (h *Handler) resolveTarget(ctx context.Context, msg *tgbotapi.Message, args []string) (int64, []string, bool, error) {
	for i, a := range args {
		if !strings.HasPrefix(a, "@") {
			continue
		}
		m, err := h.members.GetByUsername(ctx, a)
		if err != nil {
			return 0, nil, false, err
		}
		rest := append(append([]string{}, args[:i]...), args[i+1:]...)
		return m.UserID, rest, true, nil
	}

	for _, e := range msg.Entities {
		if e.Type == "text_mention" && e.User != nil {
			return e.User.ID, args, true, nil
		}
	}

	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil && !msg.ReplyToMessage.From.IsBot {
		return msg.ReplyToMessage.From.ID, args, true, nil
	}
	return 0, args, false, nil
}

func (h *Handler) nameOf(ctx context.Context, userID string) string {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return userID
	}
	return h.members.DisplayName(ctx, id)
}

func (h *Handler) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := h.bot.Send(out); err != nil {
		log.WithError(err).WithField("chat_id", msg.Chat.ID).Error("Ошибка отправки сообщения")
	}
}

// userKey: ключ записи в хранилище для Telegram user ID.
func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// requireAmount берёт первый аргумент как сумму.
func requireAmount(args []string, allowAll bool) (int64, error) {
	if len(args) == 0 {
		return 0, common.ErrMissingArgument
	}
	return parseAmount(args[0], allowAll)
}

// parseAmount разбирает целое; "all"/"max" означает 0, если allowAll.
func parseAmount(s string, allowAll bool) (int64, error) {
	switch strings.ToLower(s) {
	case "all", "max":
		if allowAll {
			return 0, nil
		}
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 10, 64)
	if err != nil {
		return 0, common.ErrBadAmount
	}
	return n, nil
}
