package dabs

// Значки, которые выдаются автоматически.
const (
	BadgeSextuples      = "sextuples"
	BadgeHotStreak      = "hot-streak"
	BadgeLevel10        = "level-10"
	BadgePhilanthropist = "philanthropist"
	BadgeHighRoller     = "high-roller"
)

// awardBadges выдаёт заслуженные значки и возвращает новые.
func awardBadges(rec *Record) []string {
	rules := []struct {
		badge string
		ok    bool
	}{
		{BadgeSextuples, rec.History[5] > 0},
		{BadgeHotStreak, rec.FlipSteak >= 5},
		{BadgeLevel10, absInt(rec.Level) >= 10},
		{BadgePhilanthropist, rec.TotalGive >= 1_000},
		{BadgeHighRoller, rec.BetTotal >= 10_000},
	}

	var added []string
	for _, r := range rules {
		if r.ok && rec.AddBadge(r.badge) {
			added = append(added, r.badge)
		}
	}
	return added
}
