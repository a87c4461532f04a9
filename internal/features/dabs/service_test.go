package dabs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/dabs-bot/internal/common"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestService(t *testing.T, store Store, rng RNG) (*Service, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	svc := NewService(store, WithRNG(rng), WithClock(clock.now), WithLocation(time.UTC))
	return svc, clock
}

func TestServiceCheckCreatesRecord(t *testing.T) {
	store := NewMemoryStore()
	svc, _ := newTestService(t, store, script(t))

	res, err := svc.Check(context.Background(), "1", "", true)
	require.NoError(t, err)
	assert.Equal(t, "1", res.UserID)
	assert.True(t, res.Detailed)
	assert.Equal(t, NewRecord(), res.Record)

	res, err = svc.Check(context.Background(), "1", "2", false)
	require.NoError(t, err)
	assert.Equal(t, "2", res.UserID)

	all, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestServiceDailyRollUsesClock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc, clock := newTestService(t, store, script(t, 11, 22))

	res, rec, err := svc.DailyRoll(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.Payout)
	assert.Equal(t, svc.Today(), rec.LastClaim)

	_, _, err = svc.DailyRoll(ctx, "1")
	assert.ErrorIs(t, err, common.ErrAlreadyClaimed)

	clock.t = clock.t.Add(24 * time.Hour)
	res, _, err = svc.DailyRoll(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Streak)
	assert.Equal(t, int64(20), res.Payout)

	stored, err := store.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(30), stored.Dabs)
}

func TestServiceRejectionIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "1", withDabs(100)))
	svc, _ := newTestService(t, store, script(t))

	_, _, err := svc.BetDubs(ctx, "1", 500)
	assert.ErrorIs(t, err, common.ErrNotEnoughDabs)

	stored, err := store.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), stored.Dabs)
	assert.Zero(t, stored.BetTotal)
}

func TestServiceLevelDryRun(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "1", withDabs(100)))
	svc, _ := newTestService(t, store, script(t))

	res, rec, err := svc.Level(ctx, "1", 0, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Levels)
	assert.Equal(t, int64(100), rec.Dabs)

	res, rec, err = svc.Level(ctx, "1", 0, false)
	require.NoError(t, err)
	assert.Equal(t, int64(50), res.Cost)
	assert.Equal(t, int64(2), rec.Level)
}

func TestServiceGive(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "a", withDabs(100)))
	svc, _ := newTestService(t, store, script(t))

	_, err := svc.Give(ctx, "a", "a", 10)
	assert.ErrorIs(t, err, common.ErrSelfGive)

	res, err := svc.Give(ctx, "a", "b", 30)
	require.NoError(t, err)
	assert.Equal(t, int64(30), res.Amount)

	a, _ := store.Get(ctx, "a")
	b, _ := store.Get(ctx, "b")
	assert.Equal(t, int64(70), a.Dabs)
	assert.Equal(t, int64(30), b.Dabs)
	assert.Equal(t, svc.Today(), a.LastGiveDate)
	assert.InDelta(t, 0.3, a.PercentGiven, 1e-9)
}

// failingStore ломает Put для одного пользователя.
type failingStore struct {
	*MemoryStore
	failFor string
}

func (s *failingStore) Put(ctx context.Context, userID string, rec *Record) error {
	if userID == s.failFor {
		return errors.New("disk full")
	}
	return s.MemoryStore.Put(ctx, userID, rec)
}

func TestServiceGiveRollsBackSender(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Put(ctx, "a", withDabs(100)))
	require.NoError(t, mem.Put(ctx, "b", NewRecord()))
	svc, _ := newTestService(t, &failingStore{MemoryStore: mem, failFor: "b"}, script(t))

	_, err := svc.Give(ctx, "a", "b", 10)
	require.Error(t, err)
	assert.False(t, common.IsRejection(err))

	a, _ := mem.Get(ctx, "a")
	assert.Equal(t, int64(100), a.Dabs)
	assert.Zero(t, a.PercentGiven)
}

func TestServiceConcurrentOppositeGivesConserveDabs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "a", withDabs(1_000_000)))
	require.NoError(t, store.Put(ctx, "b", withDabs(1_000_000)))
	svc, _ := newTestService(t, store, SystemRNG)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			from, to := "a", "b"
			if i%2 == 1 {
				from, to = to, from
			}
			_, err := svc.Give(ctx, from, to, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	a, _ := store.Get(ctx, "a")
	b, _ := store.Get(ctx, "b")
	assert.Equal(t, int64(2_000_000), a.Dabs+b.Dabs)
	assert.Zero(t, svc.locks.size(), "замки освобождены")
}

func TestServiceGamblingDisabled(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, WithGambling(false))

	_, _, err := svc.BetFlip(context.Background(), "1", 0, true)
	assert.ErrorIs(t, err, common.ErrGamblingDisabled)
}

func TestServiceBetsAndSwitchMode(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "1", withDabs(100)))
	svc, _ := newTestService(t, store, script(t, 100, 1, 11))

	res, rec, err := svc.BetRoll(ctx, "1", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.Net)
	assert.Equal(t, int64(110), rec.Dabs)

	res, _, err = svc.BetFlip(ctx, "1", 10, true)
	require.NoError(t, err)
	assert.True(t, res.Won)

	res, rec, err = svc.BetDubs(ctx, "1", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Tier)
	assert.Equal(t, int64(170), rec.Dabs)

	rec, err = svc.SwitchMode(ctx, "1")
	require.NoError(t, err)
	assert.False(t, rec.Positive)
}

func TestServiceLeaderboardAndBadges(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "a", withDabs(10)))
	require.NoError(t, store.Put(ctx, "b", withDabs(20)))
	svc, _ := newTestService(t, store, script(t))

	entries, err := svc.Leaderboard(ctx, SortDabs, BoardPositive)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(entries))

	added, err := svc.GrantBadge(ctx, "a", "founder")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = svc.GrantBadge(ctx, "a", "founder")
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := svc.RevokeBadge(ctx, "a", "founder")
	require.NoError(t, err)
	assert.True(t, removed)

	a, _ := store.Get(ctx, "a")
	assert.False(t, a.HasBadge("founder"))
}
