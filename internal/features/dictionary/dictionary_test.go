package dictionary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/dabs-bot/internal/common"
	"serotonyl.ru/dabs-bot/internal/common/telegramtest"
)

const sampleBody = `{"list":[
 {"word":"dab","definition":"A [dance move].","example":"He did a dab.\r\nThen another.","permalink":"https://ud/dab","author":"someone","written_on":"2016-01-02T00:00:00.000Z"},
 {"word":"dab","definition":"Second","example":"","permalink":"https://ud/dab2","author":"other","written_on":"bad"},
 {"definition":"no word, skipped"}
]}`

func TestClientLookup(t *testing.T) {
	var gotTerm string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTerm = r.URL.Query().Get("term")
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	defs, err := NewClient(srv.URL, time.Second).Lookup(context.Background(), "  dab on them ")
	require.NoError(t, err)
	assert.Equal(t, "dab on them", gotTerm)
	require.Len(t, defs, 2)
	assert.Equal(t, "A [dance move].", defs[0].Definition)
	assert.Equal(t, 2016, defs[0].WrittenOn.Year())
	assert.True(t, defs[1].WrittenOn.IsZero())
}

func TestClientLookupErrors(t *testing.T) {
	status, body := http.StatusOK, `{"list":[]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	_, err := c.Lookup(ctx, "   ")
	assert.ErrorIs(t, err, common.ErrBlankQuery)

	_, err = c.Lookup(ctx, "zzz")
	assert.ErrorIs(t, err, common.ErrNoResults)

	body = "<html>"
	_, err = c.Lookup(ctx, "zzz")
	assert.Error(t, err)

	status, body = http.StatusInternalServerError, `{}`
	_, err = c.Lookup(ctx, "zzz")
	assert.ErrorContains(t, err, "500")
}

func TestRender(t *testing.T) {
	d := Definition{
		Word:       "a<b",
		Definition: "see [dab move] & more",
		Example:    "line one\r\nline two",
		Permalink:  "https://ud/x",
		Author:     "me",
		WrittenOn:  time.Date(2020, 5, 6, 0, 0, 0, 0, time.UTC),
	}

	text := Render(d, 0, 3)
	assert.Contains(t, text, "Top result")
	assert.Contains(t, text, "<b>a&lt;b</b>")
	assert.Contains(t, text, `<a href="https://www.urbandictionary.com/define.php?term=dab+move">dab move</a>`)
	assert.Contains(t, text, "&amp; more")
	assert.Contains(t, text, "<i>line one</i>\n<i>line two</i>")
	assert.Contains(t, text, "me, 2020-05-06")

	assert.Contains(t, Render(d, 2, 3), "3/3")
}

type fakeLookuper struct {
	defs []Definition
	err  error
}

func (f *fakeLookuper) Lookup(_ context.Context, term string) ([]Definition, error) {
	if term == "" {
		return nil, common.ErrBlankQuery
	}
	return f.defs, f.err
}

func threeDefs() []Definition {
	return []Definition{{Word: "one"}, {Word: "two"}, {Word: "three"}}
}

func newTestHandler(l Lookuper) (*Handler, *telegramtest.Sender, *time.Time) {
	sender := &telegramtest.Sender{}
	h := NewHandler(l, sender)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	return h, sender, &now
}

func callback(from int64, messageID int, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: -1}},
		Data:    data,
	}
}

func TestHandleCommandReplies(t *testing.T) {
	ctx := context.Background()

	h, sender, _ := newTestHandler(&fakeLookuper{})
	require.NoError(t, h.HandleCommand(ctx, telegramtest.Message(-1, 5, "u", "/ud"), nil))
	assert.Equal(t, "Cannot search blank query.", sender.LastText())

	h, sender, _ = newTestHandler(&fakeLookuper{err: common.ErrNoResults})
	require.NoError(t, h.HandleCommand(ctx, telegramtest.Message(-1, 5, "u", "/ud zz"), []string{"zz"}))
	assert.Equal(t, "No results for zz.", sender.LastText())

	h, sender, _ = newTestHandler(&fakeLookuper{err: errors.New("timeout")})
	err := h.HandleCommand(ctx, telegramtest.Message(-1, 5, "u", "/ud zz"), []string{"zz"})
	assert.ErrorContains(t, err, "timeout")
	assert.Contains(t, sender.LastText(), "unavailable")
}

func TestHandleCommandSingleResultHasNoKeyboard(t *testing.T) {
	h, sender, _ := newTestHandler(&fakeLookuper{defs: []Definition{{Word: "only"}}})
	require.NoError(t, h.HandleCommand(context.Background(), telegramtest.Message(-1, 5, "u", "/ud only"), []string{"only"}))

	sent := sender.Sent[0].(tgbotapi.MessageConfig)
	assert.Nil(t, sent.ReplyMarkup)
	assert.Equal(t, tgbotapi.ModeHTML, sent.ParseMode)
	assert.Zero(t, h.pages.len())
}

func TestPagination(t *testing.T) {
	ctx := context.Background()
	h, sender, _ := newTestHandler(&fakeLookuper{defs: threeDefs()})
	require.NoError(t, h.HandleCommand(ctx, telegramtest.Message(-1, 5, "u", "/ud x"), []string{"x"}))
	require.Equal(t, 1, h.pages.len())
	msgID := 1

	require.NoError(t, h.HandleCallback(ctx, callback(5, msgID, callbackPrev)))
	assert.Contains(t, sender.LastText(), "three")
	assert.Contains(t, sender.LastText(), "3/3")

	require.NoError(t, h.HandleCallback(ctx, callback(5, msgID, callbackNext)))
	assert.Contains(t, sender.LastText(), "Top result")

	h.random = func(int) int { return 1 }
	require.NoError(t, h.HandleCallback(ctx, callback(5, msgID, callbackRandom)))
	assert.Contains(t, sender.LastText(), "two")
}

func TestPaginationOnlyForRequester(t *testing.T) {
	ctx := context.Background()
	h, sender, _ := newTestHandler(&fakeLookuper{defs: threeDefs()})
	require.NoError(t, h.HandleCommand(ctx, telegramtest.Message(-1, 5, "u", "/ud x"), []string{"x"}))
	sentBefore := len(sender.Sent)

	require.NoError(t, h.HandleCallback(ctx, callback(6, 1, callbackNext)))
	assert.Len(t, sender.Sent, sentBefore, "чужое нажатие ничего не редактирует")

	answer := sender.Requests[len(sender.Requests)-1].(tgbotapi.CallbackConfig)
	assert.Contains(t, answer.Text, "Only the person")
}

func TestPaginationExpires(t *testing.T) {
	ctx := context.Background()
	h, sender, now := newTestHandler(&fakeLookuper{defs: threeDefs()})
	require.NoError(t, h.HandleCommand(ctx, telegramtest.Message(-1, 5, "u", "/ud x"), []string{"x"}))

	*now = now.Add(PageTTL + time.Second)
	require.NoError(t, h.HandleCallback(ctx, callback(5, 1, callbackNext)))

	answer := sender.Requests[len(sender.Requests)-1].(tgbotapi.CallbackConfig)
	assert.Contains(t, answer.Text, "expired")
	assert.Zero(t, h.pages.len())
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	h, sender, now := newTestHandler(&fakeLookuper{defs: threeDefs()})
	require.NoError(t, h.HandleCommand(ctx, telegramtest.Message(-1, 5, "u", "/ud x"), []string{"x"}))

	assert.Zero(t, h.Sweep())
	*now = now.Add(PageTTL + time.Second)
	assert.Equal(t, 1, h.Sweep())

	_, ok := sender.Requests[len(sender.Requests)-1].(tgbotapi.EditMessageReplyMarkupConfig)
	assert.True(t, ok)
}

func TestPageMoveWraps(t *testing.T) {
	p := &page{defs: threeDefs()}
	p.move(-1)
	assert.Equal(t, 2, p.index)
	p.move(2)
	assert.Equal(t, 1, p.index)
}

func TestIsCallback(t *testing.T) {
	assert.True(t, IsCallback(callbackNext))
	assert.False(t, IsCallback("admin:x"))
}
