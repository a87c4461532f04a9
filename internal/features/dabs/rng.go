package dabs

import (
	"math/rand/v2"
	"sync"
)

// RNG: источник равномерных случайных чисел; Int64N возвращает 0..n-1.
type RNG interface {
	Int64N(n int64) int64
}

type systemRNG struct{}

func (systemRNG) Int64N(n int64) int64 { return rand.Int64N(n) }

// SystemRNG использует глобальный генератор math/rand/v2.
var SystemRNG RNG = systemRNG{}

// lockedRNG делает *rand.Rand безопасным для горутин.
type lockedRNG struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRNG: воспроизводимый генератор (RNG_SEED), для отладки розыгрышей.
func NewSeededRNG(seed uint64) RNG {
	return &lockedRNG{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRNG) Int64N(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int64N(n)
}
