package bot

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/dabs-bot/internal/bot/filters"
	"serotonyl.ru/dabs-bot/internal/bot/middleware"
	"serotonyl.ru/dabs-bot/internal/common/telegramtest"
	"serotonyl.ru/dabs-bot/internal/config"
	"serotonyl.ru/dabs-bot/internal/features/admin"
	"serotonyl.ru/dabs-bot/internal/features/dabs"
	"serotonyl.ru/dabs-bot/internal/features/dictionary"
	"serotonyl.ru/dabs-bot/internal/features/members"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser("DabsBot")

	tests := []struct {
		text    string
		cmd     string
		args    []string
		isValid bool
	}{
		{"/dabs check", "dabs", []string{"check"}, true},
		{"!dabs   give @bob 10", "dabs", []string{"give", "@bob", "10"}, true},
		{".UD dab", "ud", []string{"dab"}, true},
		{"/dabs@dabsbot daily-roll", "dabs", []string{"daily-roll"}, true},
		{"/dabs@otherbot daily-roll", "", nil, false},
		{"/@dabsbot", "", nil, false},
		{"hello", "", nil, false},
		{"/", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tt.text)
			assert.Equal(t, tt.isValid, ok)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestDiffCommands(t *testing.T) {
	live := []tgbotapi.BotCommand{
		{Command: "dabs", Description: "old"},
		{Command: "help", Description: "Show available commands"},
		{Command: "karma", Description: "gone"},
	}
	target := []tgbotapi.BotCommand{
		{Command: "dabs", Description: "new"},
		{Command: "help", Description: "Show available commands"},
		{Command: "ud", Description: "dictionary"},
	}

	diff := DiffCommands(live, target)
	assert.Equal(t, []string{"help"}, diff.Matched)
	assert.Equal(t, []string{"dabs"}, diff.Mismatched)
	assert.Equal(t, []string{"ud"}, diff.Missing)
	assert.Equal(t, []string{"karma"}, diff.Deprecated)
	assert.True(t, diff.Changed())

	assert.False(t, DiffCommands(target, target).Changed())
}

type fakeCommandsAPI struct {
	telegramtest.Sender
	live []tgbotapi.BotCommand
	err  error
}

func (f *fakeCommandsAPI) GetMyCommands() ([]tgbotapi.BotCommand, error) {
	return f.live, f.err
}

func TestSyncCommands(t *testing.T) {
	api := &fakeCommandsAPI{live: Commands()}
	diff, err := SyncCommands(api, Commands())
	require.NoError(t, err)
	assert.False(t, diff.Changed())
	assert.Empty(t, api.Requests, "меню совпадает, ничего не шлём")

	api = &fakeCommandsAPI{}
	diff, err = SyncCommands(api, Commands())
	require.NoError(t, err)
	assert.Len(t, diff.Missing, len(Commands()))
	require.Len(t, api.Requests, 1)
	set, ok := api.Requests[0].(tgbotapi.SetMyCommandsConfig)
	require.True(t, ok)
	assert.Equal(t, Commands(), set.Commands)

	_, err = SyncCommands(&fakeCommandsAPI{err: errors.New("401")}, Commands())
	assert.ErrorContains(t, err, "401")
}

type fakeAPI struct {
	telegramtest.Sender
	updates chan tgbotapi.Update
	stopped bool
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return f.updates }
func (f *fakeAPI) StopReceivingUpdates()                                       { f.stopped = true }

type fakeLookuper struct{}

func (fakeLookuper) Lookup(context.Context, string) ([]dictionary.Definition, error) {
	return []dictionary.Definition{{Word: "a"}, {Word: "b"}}, nil
}

// failingStore имитирует недоступное хранилище.
type failingStore struct{ dabs.Store }

func (failingStore) Get(context.Context, string) (*dabs.Record, error) {
	return nil, errors.New("connection refused")
}

type fixture struct {
	bot     *Bot
	api     *fakeAPI
	store   dabs.Store
	dumpDir string
}

func newFixture(t *testing.T, store dabs.Store, allowed []int64) *fixture {
	t.Helper()
	cfg := &config.Config{
		BotMaxInflight:          4,
		BotUpdateTimeoutSeconds: 1,
		RateLimitRequests:       100,
		RateLimitWindow:         time.Minute,
	}
	api := &fakeAPI{updates: make(chan tgbotapi.Update)}

	dir := members.NewService(members.NewMemoryRepository())
	dabsSvc := dabs.NewService(store, dabs.WithRNG(dabs.NewSeededRNG(1)), dabs.WithLocation(time.UTC))
	adminSvc := admin.NewService(admin.NewRepository(), "", nil)
	dumpDir := t.TempDir()

	b := New(api, "dabsbot", cfg, Deps{
		Members:       dir,
		MemberHandler: members.NewHandler(dir),
		Dabs:          dabs.NewHandler(dabsSvc, dir, api),
		Dictionary:    dictionary.NewHandler(fakeLookuper{}, api),
		Admin:         admin.NewHandler(adminSvc, dabsSvc, dir, api),
		ChatFilter:    filters.NewChatFilter(allowed),
		Dumper:        middleware.NewDumper(dumpDir),
	})
	t.Cleanup(b.rateLimiter.Close)
	return &fixture{bot: b, api: api, store: store, dumpDir: dumpDir}
}

func messageUpdate(chatID, userID int64, username, text string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 1, Message: telegramtest.Message(chatID, userID, username, text)}
}

func TestHandleUpdateRoutesDabs(t *testing.T) {
	f := newFixture(t, dabs.NewMemoryStore(), nil)

	f.bot.handleUpdate(context.Background(), messageUpdate(-1, 7, "carol", "/dabs check"))
	assert.Contains(t, f.api.LastText(), "@carol (nice)")

	_, err := f.bot.Members.GetByUsername(context.Background(), "carol")
	assert.NoError(t, err, "участник запомнен")
}

func TestHandleUpdateHelpAndIgnoredText(t *testing.T) {
	f := newFixture(t, dabs.NewMemoryStore(), nil)
	ctx := context.Background()

	f.bot.handleUpdate(ctx, messageUpdate(-1, 7, "carol", "just chatting"))
	assert.Empty(t, f.api.Sent)

	f.bot.handleUpdate(ctx, messageUpdate(-1, 7, "carol", "/help"))
	assert.Contains(t, f.api.LastText(), "/dabs daily-roll")
}

func TestHandleUpdateChatFilter(t *testing.T) {
	f := newFixture(t, dabs.NewMemoryStore(), []int64{-100})

	f.bot.handleUpdate(context.Background(), messageUpdate(-200, 7, "carol", "/dabs"))
	assert.Empty(t, f.api.Sent)

	f.bot.handleUpdate(context.Background(), messageUpdate(-100, 7, "carol", "/dabs"))
	assert.Len(t, f.api.Sent, 1)
}

func TestHandleUpdateRateLimit(t *testing.T) {
	f := newFixture(t, dabs.NewMemoryStore(), nil)
	f.bot.rateLimiter.Close()
	f.bot.rateLimiter = middleware.NewRateLimiter(1, time.Hour)
	defer f.bot.rateLimiter.Close()

	f.bot.handleUpdate(context.Background(), messageUpdate(-1, 7, "carol", "/help"))
	f.bot.handleUpdate(context.Background(), messageUpdate(-1, 7, "carol", "/help"))
	assert.Len(t, f.api.Sent, 1)
}

func TestHandleUpdateNewMembers(t *testing.T) {
	f := newFixture(t, dabs.NewMemoryStore(), nil)
	msg := telegramtest.Message(-1, 7, "carol", "")
	msg.NewChatMembers = []tgbotapi.User{{ID: 8, UserName: "dave"}, {ID: 9, UserName: "somebot", IsBot: true}}

	f.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: msg})

	_, err := f.bot.Members.GetByUsername(context.Background(), "dave")
	assert.NoError(t, err)
	_, err = f.bot.Members.GetByUsername(context.Background(), "somebot")
	assert.Error(t, err)
}

func TestHandleUpdateDumpsSystemErrors(t *testing.T) {
	f := newFixture(t, failingStore{dabs.NewMemoryStore()}, nil)

	f.bot.handleUpdate(context.Background(), messageUpdate(-1, 7, "carol", "/dabs daily-roll"))
	assert.Contains(t, f.api.LastText(), "Something went wrong")

	entries, err := os.ReadDir(f.dumpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHandleUpdateDictionaryCallback(t *testing.T) {
	f := newFixture(t, dabs.NewMemoryStore(), nil)
	ctx := context.Background()

	f.bot.handleUpdate(ctx, messageUpdate(-1, 7, "carol", "/ud a"))
	require.Len(t, f.api.Sent, 1)

	f.bot.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: -1}},
		Data:    "ud:next",
	}})
	assert.Contains(t, f.api.LastText(), "2/2")
}

func TestHandleUpdateUnknownCallbackIsAnswered(t *testing.T) {
	f := newFixture(t, dabs.NewMemoryStore(), nil)

	f.bot.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb",
		From: &tgbotapi.User{ID: 7},
		Data: "weird",
	}})
	require.Len(t, f.api.Requests, 1)
	_, ok := f.api.Requests[0].(tgbotapi.CallbackConfig)
	assert.True(t, ok)
}

func TestStartStopsOnCancel(t *testing.T) {
	f := newFixture(t, dabs.NewMemoryStore(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.bot.Start(ctx)
		close(done)
	}()

	f.api.updates <- messageUpdate(-1, 7, "carol", "/help")
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("бот не остановился")
	}
	assert.True(t, f.api.stopped)
	assert.Len(t, f.api.Sent, 1, "апдейт в обработке дописан")
}
