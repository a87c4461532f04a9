// errors.go определяет ошибки, общие для всех модулей бота.
// Отказы (Rejection): ожидаемые ответы пользователю, их текст показывается как есть.
// Остальные ошибки считаются системными: логируем и отвечаем общей фразой.
package common

import "errors"

// Rejection: отказ в операции по правилам экономики.
// Не является сбоем: текст уходит пользователю без изменений.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

// Reject создаёт отказ с произвольным текстом.
func Reject(reason string) *Rejection {
	return &Rejection{Reason: reason}
}

// IsRejection сообщает, является ли err (или что-то в его цепочке) отказом.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}

// RejectionReason возвращает текст отказа или пустую строку.
func RejectionReason(err error) string {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason
	}
	return ""
}

// Ставки
var (
	ErrBetZeroBalance   = Reject("Cannot bet while holding 0 dabs.")
	ErrBetNegativeOnPos = Reject("Cannot bet negative dabs while holding a positive amount.")
	ErrBetPositiveOnNeg = Reject("Cannot bet positive dabs while holding a negative amount.")
	ErrNotEnoughDabs    = Reject("Not enough dabs.")
	ErrBadFlipChoice    = Reject("Choice must be heads or tails.")
	ErrGamblingDisabled = Reject("Gambling is disabled right now.")
)

// Переводы
var (
	ErrGiveZeroBalance   = Reject("Cannot give dabs while holding 0.")
	ErrGiveCapReached    = Reject("You've already given half your dabs today.")
	ErrGiveNotWhole      = Reject("The remaining percentage of your current dabs you can give away today is not a whole number.")
	ErrGiveNegativeOnPos = Reject("Cannot give negative dabs while holding a positive amount.")
	ErrGivePositiveOnNeg = Reject("Cannot give positive dabs while holding a negative amount.")
	ErrGiveOverCap       = Reject("Cannot give more than half your dabs in 1 day.")
	ErrSelfGive          = Reject("Cannot give dabs to yourself.")
)

// Уровни и ежедневный ролл
var (
	ErrAlreadyClaimed = Reject("You already claimed your daily roll today.")
	ErrNegativeLevels = Reject("Cannot level up a negative amount of times.")
)

// Прочие пользовательские ошибки
var (
	ErrUnknownUser     = Reject("I don't know that user yet. They need to talk first.")
	ErrUnknownSortKey  = Reject("Unknown leaderboard sort key.")
	ErrUnknownBoard    = Reject("Leaderboard type must be positive or negative.")
	ErrBlankQuery      = Reject("Cannot search blank query.")
	ErrBadAmount       = Reject("Amount must be a whole number.")
	ErrUnknownSubcmd   = Reject("Unknown dabs subcommand. Try /help.")
	ErrMissingArgument = Reject("Missing argument. Try /help.")
)

// Ошибки админки
var (
	// ErrNotAdmin: пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrAdminDisabled: не задан ADMIN_PASSWORD_HASH
	ErrAdminDisabled = errors.New("админка отключена")
	// ErrWrongPassword: неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts: слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired: сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)

// ErrNoResults: словарь ничего не нашёл
var ErrNoResults = errors.New("ничего не найдено")
