package dabs

// Диапазоны розыгрышей.
const (
	rollSpace  = 1_000_000     // daily-roll: 0..999999
	dubsSpace  = 1_000_000 + 1 // bet-dubs: 0..1000000
	betRollMax = 100           // bet-roll: 0..100
)

// RollPayouts: выплата daily-roll по уровню совпадения (умножается на стрик).
var RollPayouts = [6]int64{0, 10, 100, 1_000, 10_000, 100_000}

// DubsMultipliers: множитель выигрыша bet-dubs по уровню совпадения.
var DubsMultipliers = [6]int64{0, 5, 50, 500, 5_000, 50_000}

var tierNames = [6]string{
	"Singles, no payout.",
	"Dubs!",
	"Trips!",
	"QUADS!",
	"QUINTUPLES!!!",
	"S E X T U P L E S ! ! !",
}

// Tier считает, сколько цифр подряд, начиная с разряда десятков,
// совпадают с последней цифрой. Берутся 6 младших разрядов с ведущими нулями,
// поэтому результат 0..5.
//
//	Tier(0)       → 5
//	Tier(111111)  → 5
//	Tier(123455)  → 1
//	Tier(555550)  → 0
//	Tier(1000000) → 5
func Tier(n int64) int {
	if n < 0 {
		n = -n
	}
	n %= 1_000_000
	last := n % 10
	tier := 0
	for range 5 {
		n /= 10
		if n%10 != last {
			break
		}
		tier++
	}
	return tier
}

// DubsFlavour: подпись к уровню совпадения.
func DubsFlavour(tier int) string {
	if tier < 0 || tier >= len(tierNames) {
		return ""
	}
	return tierNames[tier]
}
