// engine.go содержит правила экономики.
// Функции меняют запись только при успехе: отказ возвращается до любых изменений.
// Время и случайность приходят снаружи (today, RNG).
package dabs

import (
	"math"

	"serotonyl.ru/dabs-bot/internal/common"
)

// DailyRoll: ежедневный ролл. Стрик растёт, если вчера тоже крутили.
func DailyRoll(rec *Record, today int64, rng RNG) (RollResult, error) {
	if rec.LastClaim == today {
		return RollResult{}, common.ErrAlreadyClaimed
	}

	streak := int64(1)
	if rec.LastClaim == today-1 {
		streak = rec.ClaimStreak + 1
	}

	draw := rng.Int64N(rollSpace)
	tier := Tier(draw)
	payout := mulSat(RollPayouts[tier], streak)
	signed := mulSat(payout, rec.sign())

	rec.ClaimStreak = streak
	rec.LastClaim = today
	rec.Dabs = addSat(rec.Dabs, signed)
	rec.trackDabs()
	rec.History[tier]++
	rec.DailyWins = addSat(rec.DailyWins, payout)
	awardBadges(rec)

	return RollResult{Draw: draw, Tier: tier, Payout: signed, Streak: streak}, nil
}

// LevelCost считает цену перехода с уровня level на следующий, 10·(|level|+1)².
func LevelCost(level int64) int64 {
	n := absInt(level) + 1
	return mulSat(10, mulSat(n, n))
}

// LevelUp покупает уровни за дабы. requested == 0: сколько хватит.
// Тратятся только дабы «по режиму»: положительные для nice, отрицательные для ebil.
func LevelUp(rec *Record, requested int64, dryRun bool) (LevelResult, error) {
	if requested < 0 {
		return LevelResult{}, common.ErrNegativeLevels
	}

	sign := rec.sign()
	spendable := mulSat(rec.Dabs, sign)
	level := rec.Level

	var levels, cost int64
	for requested == 0 || levels < requested {
		c := LevelCost(level)
		if spendable < c {
			break
		}
		spendable -= c
		cost += c
		level += sign
		levels++
	}

	res := LevelResult{
		Levels:    levels,
		Cost:      cost,
		FromLevel: rec.Level,
		ToLevel:   level,
		DryRun:    dryRun,
		NextCost:  LevelCost(level),
	}
	if dryRun || levels == 0 {
		return res, nil
	}

	rec.Dabs -= cost * sign
	rec.Level = level
	rec.trackDabs()
	rec.trackLevel()
	awardBadges(rec)
	return res, nil
}

// SwitchMode меняет режим. Текущий уровень сгорает, баланс остаётся как был.
func SwitchMode(rec *Record) {
	rec.LevelsDestroyed = addSat(rec.LevelsDestroyed, absInt(rec.Level))
	rec.Positive = !rec.Positive
	rec.Level = 0
	rec.trackLevel()
}

// Give переводит дабы от sender к receiver. requested == 0: весь дневной остаток.
// Доля PercentGiven сбрасывается, если последний перевод был не сегодня.
// Доля считается от GiveBase: баланса перед первым переводом дня.
func Give(sender, receiver *Record, requested, today int64) (GiveResult, error) {
	balance := sender.Dabs
	given, base := sender.PercentGiven, sender.GiveBase
	if sender.LastGiveDate != today {
		given = 0
		base = absInt(balance)
	}
	if base == 0 {
		// записи без giveBase
		base = absInt(balance)
	}

	amount := requested
	if amount == 0 {
		amount = Giveable(balance, given)
	}
	if err := ValidateGive(amount, balance, given); err != nil {
		return GiveResult{}, err
	}

	sender.Dabs -= amount
	receiver.Dabs = addSat(receiver.Dabs, amount)
	sender.LastGiveDate = today
	sender.GiveBase = base
	sender.PercentGiven = min(giveCap, given+float64(absInt(amount))/float64(base))

	// «плохой» перевод двигает получателя против его режима
	bad := (receiver.Positive && amount < 0) || (!receiver.Positive && amount > 0)
	mag := absInt(amount)
	if bad {
		sender.TotalBadGive = addSat(sender.TotalBadGive, mag)
		receiver.TotalBadGot = addSat(receiver.TotalBadGot, mag)
	} else {
		sender.TotalGive = addSat(sender.TotalGive, mag)
		receiver.TotalGot = addSat(receiver.TotalGot, mag)
	}

	sender.trackDabs()
	receiver.trackDabs()
	awardBadges(sender)
	awardBadges(receiver)

	return GiveResult{
		Amount:       amount,
		Bad:          bad,
		PercentGiven: sender.PercentGiven,
		Sender:       sender,
		Receiver:     receiver,
	}, nil
}

// BetRoll: кубик 0..100. Множитель draw/50: 0 теряет ставку, 100 удваивает.
// Ставка 0 не превращается в «всё», это пустая ставка.
func BetRoll(rec *Record, amount int64, rng RNG) (BetResult, error) {
	if err := ValidateGamble(amount, rec.Dabs); err != nil {
		return BetResult{}, err
	}

	draw := rng.Int64N(betRollMax + 1)
	net := scaleRoll(amount, draw)
	won := settleBet(rec, amount, net)

	return BetResult{Game: GameRoll, Amount: amount, Draw: draw, Net: net, Won: won}, nil
}

// BetFlip: монетка. Выигрыш растёт на 10% ставки за каждую победу подряд.
func BetFlip(rec *Record, amount int64, heads bool, rng RNG) (BetResult, error) {
	if amount == 0 {
		amount = rec.Dabs
	}
	if err := ValidateGamble(amount, rec.Dabs); err != nil {
		return BetResult{}, err
	}

	draw := rng.Int64N(2)
	gotHeads := draw == 1

	var net int64
	if gotHeads == heads {
		rec.FlipSteak++
		net = addSat(amount, mulSat(amount, rec.FlipSteak-1)/10)
	} else {
		rec.FlipSteak = 0
		net = -amount
	}
	won := settleBet(rec, amount, net)

	return BetResult{
		Game:   GameFlip,
		Amount: amount,
		Draw:   draw,
		Heads:  gotHeads,
		Won:    won,
		Net:    net,
		Streak: rec.FlipSteak,
	}, nil
}

// BetDubs: число 0..1000000, выигрыш от дублей и выше.
func BetDubs(rec *Record, amount int64, rng RNG) (BetResult, error) {
	if amount == 0 {
		amount = rec.Dabs
	}
	if err := ValidateGamble(amount, rec.Dabs); err != nil {
		return BetResult{}, err
	}

	draw := rng.Int64N(dubsSpace)
	tier := Tier(draw)

	net := -amount
	if tier > 0 {
		net = mulSat(amount, DubsMultipliers[tier])
	}
	won := settleBet(rec, amount, net)

	return BetResult{Game: GameDubs, Amount: amount, Draw: draw, Tier: tier, Won: won, Net: net}, nil
}

// settleBet применяет итог ставки и обновляет статистику.
// Выигрыш: когда итог сдвигает баланс в сторону режима.
func settleBet(rec *Record, amount, net int64) bool {
	won := (rec.Positive && net > 0) || (!rec.Positive && net < 0)

	rec.Dabs = addSat(rec.Dabs, net)
	rec.trackDabs()
	rec.BetTotal = addSat(rec.BetTotal, absInt(amount))
	if won {
		rec.BetWon = addSat(rec.BetWon, absInt(net))
	}
	awardBadges(rec)
	return won
}

// scaleRoll считает amount·(draw-50)/50 без переполнения.
func scaleRoll(amount, draw int64) int64 {
	d := draw - betRollMax/2
	return (amount/50)*d + (amount%50)*d/50
}

func absInt(n int64) int64 {
	if n < 0 {
		if n == math.MinInt64 {
			return math.MaxInt64
		}
		return -n
	}
	return n
}

// addSat складывает с насыщением на границах int64.
func addSat(a, b int64) int64 {
	c := a + b
	switch {
	case a > 0 && b > 0 && c < 0:
		return math.MaxInt64
	case a < 0 && b < 0 && c >= 0:
		return math.MinInt64
	}
	return c
}

// mulSat умножает с насыщением на границах int64.
func mulSat(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	c := a * b
	overflow := c/b != a ||
		(a == -1 && b == math.MinInt64) ||
		(b == -1 && a == math.MinInt64)
	if !overflow {
		return c
	}
	if (a < 0) != (b < 0) {
		return math.MinInt64
	}
	return math.MaxInt64
}
