package notify

import (
	"sort"
	"sync"
)

// MemoryChannel is an in-process Channel implementation. Handlers run
// synchronously on the posting goroutine, so delivery order follows post
// order exactly.
type MemoryChannel struct {
	mu       sync.RWMutex
	handlers map[string]map[string]Handler // name -> key -> handler
}

// NewMemoryChannel creates a new in-process notification channel.
func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{handlers: make(map[string]map[string]Handler)}
}

// Post delivers change to every handler observing name. Handlers are
// invoked in deterministic key order.
func (c *MemoryChannel) Post(name string, change Change) {
	c.mu.RLock()
	byKey := c.handlers[name]
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	handlers := make([]Handler, 0, len(keys))
	for _, k := range keys {
		handlers = append(handlers, byKey[k])
	}
	c.mu.RUnlock()

	for _, h := range handlers {
		h(change)
	}
}

// Observe registers handler under (name, key). Replaces any existing
// registration for the same key.
func (c *MemoryChannel) Observe(name, key string, handler Handler) {
	if handler == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	byKey, ok := c.handlers[name]
	if !ok {
		byKey = make(map[string]Handler)
		c.handlers[name] = byKey
	}
	byKey[key] = handler
}

// Unobserve removes the handler registered under (name, key). Idempotent.
func (c *MemoryChannel) Unobserve(name, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if byKey, ok := c.handlers[name]; ok {
		delete(byKey, key)
		if len(byKey) == 0 {
			delete(c.handlers, name)
		}
	}
}

// ObserverCount returns the number of handlers observing name.
func (c *MemoryChannel) ObserverCount(name string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handlers[name])
}

var _ Channel = (*MemoryChannel)(nil)
