// pluralize.go форматирует числа и подписи к ним для ответов бота.
package common

import (
	"fmt"
	"strconv"
)

// Plural возвращает one при |n| == 1, иначе many.
func Plural(n int64, one, many string) string {
	if n == 1 || n == -1 {
		return one
	}
	return many
}

// FormatDabs создаёт строку вида "1 dab" или "-1 234 dabs".
func FormatDabs(n int64) string {
	return fmt.Sprintf("%s %s", FormatNumber(n), Plural(n, "dab", "dabs"))
}

// FormatSigned как FormatDabs, но с явным "+" для положительных.
//
//	FormatSigned(100) → "+100 dabs"
//	FormatSigned(-50) → "-50 dabs"
func FormatSigned(n int64) string {
	if n > 0 {
		return "+" + FormatDabs(n)
	}
	return FormatDabs(n)
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(2350) → "2 350"
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	out := make([]byte, 0, len(s)+len(s)/3+1)
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
