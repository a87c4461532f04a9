// render.go собирает тексты ответов. Только простой текст,
// без HTML-разметки: имена пользователей не нужно экранировать.
package dabs

import (
	"fmt"
	"strings"

	"serotonyl.ru/dabs-bot/internal/common"
)

// RenderCheck: карточка пользователя.
func RenderCheck(name string, rec *Record, detailed bool, today int64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", name, rec.Mode())
	fmt.Fprintf(&sb, "Dabs: %s\n", common.FormatNumber(rec.Dabs))
	fmt.Fprintf(&sb, "Level: %d, next costs %s\n", rec.Level, common.FormatDabs(LevelCost(rec.Level)))
	fmt.Fprintf(&sb, "Daily streak: %d\n", rec.ClaimStreak)
	if len(rec.Badges) > 0 {
		fmt.Fprintf(&sb, "Badges: %s\n", strings.Join(rec.Badges, ", "))
	}
	if !detailed {
		return strings.TrimRight(sb.String(), "\n")
	}

	given := rec.PercentGiven
	if rec.LastGiveDate != today {
		given = 0
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Highest/lowest dabs: %s / %s\n", common.FormatNumber(rec.HighestDabs), common.FormatNumber(rec.LowestDabs))
	fmt.Fprintf(&sb, "Highest/lowest level: %d / %d\n", rec.HighestLevel, rec.LowestLevel)
	fmt.Fprintf(&sb, "Levels destroyed: %d\n", rec.LevelsDestroyed)
	fmt.Fprintf(&sb, "Given today: %.0f%%\n", given*100)
	fmt.Fprintf(&sb, "Gifted: %s (bad: %s)\n", common.FormatNumber(rec.TotalGive), common.FormatNumber(rec.TotalBadGive))
	fmt.Fprintf(&sb, "Received: %s (bad: %s)\n", common.FormatNumber(rec.TotalGot), common.FormatNumber(rec.TotalBadGot))
	fmt.Fprintf(&sb, "Daily wins: %s\n", common.FormatNumber(rec.DailyWins))
	fmt.Fprintf(&sb, "Rolls: %d singles, %d dubs, %d trips, %d quads, %d quints, %d sextuples\n",
		rec.History[0], rec.History[1], rec.History[2], rec.History[3], rec.History[4], rec.History[5])
	fmt.Fprintf(&sb, "Bet total: %s, won: %s\n", common.FormatNumber(rec.BetTotal), common.FormatNumber(rec.BetWon))
	fmt.Fprintf(&sb, "Flip streak: %d", rec.FlipSteak)
	return sb.String()
}

// RenderRoll: ответ на daily-roll.
func RenderRoll(res RollResult, rec *Record) string {
	return fmt.Sprintf("🎲 %06d\n%s\nStreak x%d: %s\nNow at %s.",
		res.Draw, DubsFlavour(res.Tier), res.Streak,
		common.FormatSigned(res.Payout), common.FormatDabs(rec.Dabs))
}

// RenderLevel: ответ на level.
func RenderLevel(res LevelResult, rec *Record) string {
	if res.Levels == 0 {
		return fmt.Sprintf("Not enough dabs to level up. Level %d costs %s, you have %s.",
			res.FromLevel+rec.sign(), common.FormatDabs(LevelCost(res.FromLevel)), common.FormatDabs(rec.Dabs))
	}
	if res.DryRun {
		return fmt.Sprintf("Dry run: %d %s for %s would take you from level %d to %d. Add \"false\" to apply.",
			res.Levels, common.Plural(res.Levels, "level", "levels"), common.FormatDabs(res.Cost), res.FromLevel, res.ToLevel)
	}
	return fmt.Sprintf("⬆️ Level %d → %d for %s. Next level costs %s. Dabs left: %s.",
		res.FromLevel, res.ToLevel, common.FormatDabs(res.Cost), common.FormatDabs(res.NextCost), common.FormatNumber(rec.Dabs))
}

// RenderSwitch: ответ на switch-mode.
func RenderSwitch(rec *Record) string {
	if rec.Positive {
		return "😇 You are nice now. Your level was reset to 0."
	}
	return "😈 You are ebil now. Your level was reset to 0."
}

// RenderGive: ответ на give.
func RenderGive(from, to string, res GiveResult) string {
	verb := "gave"
	if res.Bad {
		verb = "destroyed"
	}
	return fmt.Sprintf("%s %s %s to %s. Given today: %.0f%%.",
		from, verb, common.FormatDabs(res.Amount), to, res.PercentGiven*100)
}

// RenderBet: ответ на любую ставку.
func RenderBet(res BetResult, rec *Record) string {
	var head string
	switch res.Game {
	case GameRoll:
		head = fmt.Sprintf("🎲 Rolled %d/100.", res.Draw)
	case GameFlip:
		side := "tails"
		if res.Heads {
			side = "heads"
		}
		head = fmt.Sprintf("🪙 %s!", side)
		if res.Won && res.Streak > 1 {
			head += fmt.Sprintf(" %d in a row.", res.Streak)
		}
	case GameDubs:
		head = fmt.Sprintf("🎰 %07d\n%s", res.Draw, DubsFlavour(res.Tier))
	}

	outcome := "You lost"
	if res.Won {
		outcome = "You won"
	}
	if res.Net == 0 {
		outcome = "Even"
	}
	return fmt.Sprintf("%s\n%s: %s. Now at %s.", head, outcome, common.FormatSigned(res.Net), common.FormatDabs(rec.Dabs))
}

// RenderLeaderboard: таблица лидеров; names возвращает имя по userID.
func RenderLeaderboard(key SortKey, board Board, entries []Entry, limit int, names func(userID string) string) string {
	if len(entries) == 0 {
		return fmt.Sprintf("Nobody on the %s %s board yet.", board, key)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 %s leaderboard (%s)\n", key, board)
	for i, e := range entries {
		if i >= limit {
			break
		}
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, names(e.UserID), common.FormatNumber(e.Value))
	}
	return strings.TrimRight(sb.String(), "\n")
}
