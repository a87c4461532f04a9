package dictionary

import (
	"fmt"
	"sync"
	"time"
)

// PageTTL: сколько живут кнопки листания.
const PageTTL = 5 * time.Minute

// page: выдача, которую листает один пользователь в одном сообщении.
type page struct {
	chatID    int64
	messageID int
	userID    int64
	defs      []Definition
	index     int
	touched   time.Time
}

// move сдвигает индекс по кругу.
func (p *page) move(delta int) {
	n := len(p.defs)
	p.index = ((p.index+delta)%n + n) % n
}

// pageCache хранит открытые выдачи по (chat, message).
type pageCache struct {
	mu    sync.Mutex
	pages map[string]*page
}

func newPageCache() *pageCache {
	return &pageCache{pages: make(map[string]*page)}
}

func pageKey(chatID int64, messageID int) string {
	return fmt.Sprintf("%d:%d", chatID, messageID)
}

func (c *pageCache) put(p *page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[pageKey(p.chatID, p.messageID)] = p
}

// with выполняет fn над выдачей под замком. false: выдачи нет или она протухла.
func (c *pageCache) with(chatID int64, messageID int, now time.Time, fn func(p *page)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := pageKey(chatID, messageID)
	p, ok := c.pages[key]
	if !ok {
		return false
	}
	if now.Sub(p.touched) > PageTTL {
		delete(c.pages, key)
		return false
	}
	fn(p)
	return true
}

// expire вынимает протухшие выдачи.
func (c *pageCache) expire(now time.Time) []*page {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*page
	for key, p := range c.pages {
		if now.Sub(p.touched) > PageTTL {
			out = append(out, p)
			delete(c.pages, key)
		}
	}
	return out
}

func (c *pageCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}
