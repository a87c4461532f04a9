// Package dictionary проксирует Urban Dictionary, /ud <term> с листанием кнопками.
// client.go ходит в HTTP API и разбирает ответ через gjson.
package dictionary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"serotonyl.ru/dabs-bot/internal/common"
)

// Definition: одно определение из выдачи.
type Definition struct {
	Word       string
	Definition string
	Example    string
	Permalink  string
	Author     string
	WrittenOn  time.Time
}

// Lookuper ищет определения; в тестах подменяется.
type Lookuper interface {
	Lookup(ctx context.Context, term string) ([]Definition, error)
}

// Client: HTTP-клиент словаря.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient создаёт клиент; baseURL: адрес define-эндпоинта без query.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// maxBody: ответы словаря маленькие, больше не читаем.
const maxBody = 2 << 20

// Lookup возвращает определения по убыванию релевантности.
// Пустой запрос даёт отказ common.ErrBlankQuery, пустая выдача common.ErrNoResults.
func (c *Client) Lookup(ctx context.Context, term string) ([]Definition, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, common.ErrBlankQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?term="+url.QueryEscape(term), nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("словарь недоступен: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа словаря: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("словарь ответил %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("словарь вернул не JSON")
	}

	defs := parseDefinitions(body)
	if len(defs) == 0 {
		return nil, common.ErrNoResults
	}
	return defs, nil
}

func parseDefinitions(body []byte) []Definition {
	var defs []Definition
	gjson.GetBytes(body, "list").ForEach(func(_, item gjson.Result) bool {
		d := Definition{
			Word:       item.Get("word").String(),
			Definition: item.Get("definition").String(),
			Example:    item.Get("example").String(),
			Permalink:  item.Get("permalink").String(),
			Author:     item.Get("author").String(),
		}
		if t, err := time.Parse(time.RFC3339, item.Get("written_on").String()); err == nil {
			d.WrittenOn = t
		}
		if d.Word != "" {
			defs = append(defs, d)
		}
		return true
	})
	return defs
}
