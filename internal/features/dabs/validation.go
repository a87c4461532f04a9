package dabs

import "serotonyl.ru/dabs-bot/internal/common"

// Дневной лимит переводов: половина баланса.
const giveCap = 0.5

// giveTolerance гасит ошибку округления: (0.5-0.4)*100 == 9.999999999999998.
const giveTolerance = 1e-9

// ValidateGamble проверяет, можно ли поставить amount при балансе balance.
// nil: можно, иначе *common.Rejection.
func ValidateGamble(amount, balance int64) error {
	switch {
	case balance == 0:
		return common.ErrBetZeroBalance
	case amount < 0 && balance > 0:
		return common.ErrBetNegativeOnPos
	case amount > 0 && balance < 0:
		return common.ErrBetPositiveOnNeg
	case absInt(amount) > absInt(balance):
		return common.ErrNotEnoughDabs
	}
	return nil
}

// ValidateGive проверяет перевод amount при балансе balance,
// если сегодня уже отдана доля given.
// Порядок проверок важен: он определяет, какой отказ увидит пользователь.
func ValidateGive(amount, balance int64, given float64) error {
	switch {
	case balance == 0:
		return common.ErrGiveZeroBalance
	case given >= giveCap:
		return common.ErrGiveCapReached
	case amount == 0:
		return common.ErrGiveNotWhole
	case amount < 0 && balance > 0:
		return common.ErrGiveNegativeOnPos
	case amount > 0 && balance < 0:
		return common.ErrGivePositiveOnNeg
	case float64(absInt(amount)) > giveAllowance(balance, given)+giveTolerance:
		return common.ErrGiveOverCap
	case absInt(amount) > absInt(balance):
		return common.ErrNotEnoughDabs
	}
	return nil
}

// giveAllowance: сколько ещё можно отдать сегодня, по модулю.
func giveAllowance(balance int64, given float64) float64 {
	left := giveCap - given
	if left <= 0 {
		return 0
	}
	return left * float64(absInt(balance))
}

// Giveable: весь доступный сегодня перевод со знаком баланса (give с суммой 0).
// Дробный остаток отбрасывается, поэтому может получиться 0.
func Giveable(balance int64, given float64) int64 {
	whole := int64(giveAllowance(balance, given) + giveTolerance)
	if balance < 0 {
		return -whole
	}
	return whole
}
