package dabs

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/dabs-bot/internal/common/telegramtest"
	"serotonyl.ru/dabs-bot/internal/features/members"
)

const chatID = -100500

type handlerFixture struct {
	store   *MemoryStore
	members *members.Service
	sender  *telegramtest.Sender
	handler *Handler
}

func newHandlerFixture(t *testing.T, rng RNG) *handlerFixture {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryStore()
	svc, _ := newTestService(t, store, rng)
	dir := members.NewService(members.NewMemoryRepository())
	require.NoError(t, dir.EnsureMember(ctx, 1, "alice", "Alice", ""))
	require.NoError(t, dir.EnsureMember(ctx, 2, "bob", "Bob", ""))

	sender := &telegramtest.Sender{}
	return &handlerFixture{
		store:   store,
		members: dir,
		sender:  sender,
		handler: NewHandler(svc, dir, sender),
	}
}

func (f *handlerFixture) run(t *testing.T, userID int64, args ...string) string {
	t.Helper()
	msg := telegramtest.Message(chatID, userID, "", "/dabs")
	require.NoError(t, f.handler.HandleCommand(context.Background(), msg, args))
	return f.sender.LastText()
}

func TestHandleCheckDefault(t *testing.T) {
	f := newHandlerFixture(t, script(t))

	text := f.run(t, 1)
	assert.Contains(t, text, "@alice (nice)")
	assert.Contains(t, text, "Dabs: 0")
	assert.NotContains(t, text, "Levels destroyed")

	text = f.run(t, 1, "check", "detailed", "@bob")
	assert.Contains(t, text, "@bob (nice)")
	assert.Contains(t, text, "Levels destroyed: 0")
}

func TestHandleCheckByReply(t *testing.T) {
	f := newHandlerFixture(t, script(t))
	msg := telegramtest.Message(chatID, 1, "alice", "/dabs check")
	msg.ReplyToMessage = telegramtest.Message(chatID, 2, "bob", "hi")

	require.NoError(t, f.handler.HandleCommand(context.Background(), msg, []string{"check"}))
	assert.Contains(t, f.sender.LastText(), "@bob")

	sent := f.sender.Sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(chatID), sent.ChatID)
	assert.Equal(t, msg.MessageID, sent.ReplyToMessageID)
}

func TestHandleDailyRollAndRepeat(t *testing.T) {
	f := newHandlerFixture(t, script(t, 11))

	text := f.run(t, 1, "daily-roll")
	assert.Contains(t, text, "000011")
	assert.Contains(t, text, "+10")

	text = f.run(t, 1, "daily-roll")
	assert.Equal(t, "❌ You already claimed your daily roll today.", text)
}

func TestHandleLevelDryRunByDefault(t *testing.T) {
	f := newHandlerFixture(t, script(t))
	require.NoError(t, f.store.Put(context.Background(), "1", withDabs(100)))

	text := f.run(t, 1, "level", "max")
	assert.Contains(t, text, "Dry run")

	text = f.run(t, 1, "level", "max", "false")
	assert.Contains(t, text, "Level 0 → 2")

	rec, err := f.store.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Level)
}

func TestHandleLevelBadDryRunFlag(t *testing.T) {
	f := newHandlerFixture(t, script(t))

	text := f.run(t, 1, "level", "1", "maybe")
	assert.Equal(t, "❌ dry-run must be true or false.", text)
}

func TestHandleGive(t *testing.T) {
	f := newHandlerFixture(t, script(t))
	ctx := context.Background()
	require.NoError(t, f.store.Put(ctx, "1", withDabs(100)))

	text := f.run(t, 1, "give", "@bob", "20")
	assert.Equal(t, "@alice gave 20 dabs to @bob. Given today: 20%.", text)

	bob, err := f.store.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, int64(20), bob.Dabs)
}

func TestHandleGiveRejections(t *testing.T) {
	f := newHandlerFixture(t, script(t))

	assert.Contains(t, f.run(t, 1, "give", "10"), "Who to give to?")
	assert.Contains(t, f.run(t, 1, "give", "@nobody", "10"), "❌")
	assert.Contains(t, f.run(t, 1, "give", "@bob", "ten"), "❌")
	assert.Contains(t, f.run(t, 1, "give", "@bob"), "❌")
}

func TestHandleLeaderboard(t *testing.T) {
	f := newHandlerFixture(t, script(t))
	ctx := context.Background()
	require.NoError(t, f.store.Put(ctx, "1", withDabs(100)))
	require.NoError(t, f.store.Put(ctx, "2", withDabs(300)))

	text := f.run(t, 1, "leaderboards")
	assert.Contains(t, text, "1. @bob: 300")
	assert.Contains(t, text, "2. @alice: 100")

	text = f.run(t, 1, "leaderboards", "dabs", "negative")
	assert.Contains(t, text, "Nobody")

	assert.Contains(t, f.run(t, 1, "leaderboards", "shoe-size"), "❌")
}

func TestHandleBetFlip(t *testing.T) {
	f := newHandlerFixture(t, script(t, 1))
	require.NoError(t, f.store.Put(context.Background(), "1", withDabs(100)))

	text := f.run(t, 1, "bet-flip", "heads", "10")
	assert.Contains(t, text, "heads")
	assert.Contains(t, text, "You won")

	assert.Equal(t, "❌ Choice must be heads or tails.", f.run(t, 1, "bet-flip", "edge", "10"))
}

func TestHandleSwitchMode(t *testing.T) {
	f := newHandlerFixture(t, script(t))

	assert.Contains(t, f.run(t, 1, "switch-mode"), "ebil")
	assert.Contains(t, f.run(t, 1, "switch-mode"), "nice")
}

func TestHandleUnknownSubcommand(t *testing.T) {
	f := newHandlerFixture(t, script(t))
	assert.Contains(t, f.run(t, 1, "dance"), "❌")
}

type brokenStore struct{ *MemoryStore }

func (brokenStore) Get(context.Context, string) (*Record, error) {
	return nil, errors.New("connection refused")
}

func TestHandleSystemErrorIsReturned(t *testing.T) {
	svc, _ := newTestService(t, brokenStore{NewMemoryStore()}, script(t))
	sender := &telegramtest.Sender{}
	h := NewHandler(svc, members.NewService(members.NewMemoryRepository()), sender)

	msg := telegramtest.Message(chatID, 1, "alice", "/dabs")
	err := h.HandleCommand(context.Background(), msg, []string{"daily-roll"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "⚠️ Something went wrong, try again later.", sender.LastText())
}

func TestParseAmount(t *testing.T) {
	n, err := parseAmount("all", true)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = parseAmount("all", false)
	assert.Error(t, err)

	n, err = parseAmount("1_000", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), n)

	n, err = parseAmount("-5", false)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), n)
}
