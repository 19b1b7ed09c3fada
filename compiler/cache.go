package compiler

import (
	"container/list"
	"strconv"
	"sync"

	"github.com/sqlexpr/sqlexpr/expr"
)

// hashKey derives the cache key component from the tree's structural hash.
func hashKey(e expr.Expression) string {
	return strconv.FormatUint(expr.Hash(e), 16)
}

type renderEntry struct {
	key    string
	expr   expr.Expression
	sql    string
	params []any
}

// renderCache is a small LRU over rendered SQL fragments. Parameters are
// copied on both sides so callers cannot alias cache state. Each entry
// keeps the expression it was rendered from: the key is derived from a
// structural hash, and a hash collision must read as a miss, never as
// another expression's SQL.
type renderCache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	entries map[string]*list.Element
}

func newRenderCache(maxSize int) *renderCache {
	if maxSize <= 0 {
		maxSize = 128
	}
	return &renderCache{
		maxSize: maxSize,
		order:   list.New(),
		entries: map[string]*list.Element{},
	}
}

func (c *renderCache) get(key string, e expr.Expression) (string, []any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return "", nil, false
	}
	entry := el.Value.(*renderEntry)
	if !expr.Equal(entry.expr, e) {
		// Hash collision with a structurally different tree.
		return "", nil, false
	}
	c.order.MoveToFront(el)
	return entry.sql, append([]any{}, entry.params...), true
}

func (c *renderCache) put(key string, e expr.Expression, sql string, params []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		entry := el.Value.(*renderEntry)
		entry.expr = e
		entry.sql = sql
		entry.params = append([]any{}, params...)
		return
	}
	if c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*renderEntry).key)
		}
	}
	el := c.order.PushFront(&renderEntry{key: key, expr: e, sql: sql, params: append([]any{}, params...)})
	c.entries[key] = el
}

func (c *renderCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
