package core

import (
	"fmt"
	"reflect"
	"sync"
)

// AutoMockFactory builds a mock for an interface type. It reports false when it
// cannot mock target.
type AutoMockFactory func(target reflect.Type, mode Mode) (MockHandle, bool)

// MockHandle pairs a mock object with the engine behind it.
type MockHandle struct {
	Object any
	Engine *Engine
}

// AutoMock returns the auto-mock the engine created for unmatched calls to
// memberName returning target.
func (e *Engine) AutoMock(memberName string, target reflect.Type) (MockHandle, error) {
	handle, ok := e.autoMocks.lookup(autoMockKey{member: memberName, target: target})
	if !ok {
		return MockHandle{}, fmt.Errorf("%w for %s returning %v", ErrNoAutoMock, memberName, target)
	}

	return handle, nil
}

type autoMockCache struct {
	factory AutoMockFactory

	mu      sync.Mutex
	entries map[autoMockKey]MockHandle
}

// getOrCreate returns the cached handle for key, building it at most once.
// The factory runs under the cache lock so concurrent misses cannot build two mocks.
func (c *autoMockCache) getOrCreate(key autoMockKey, mode Mode) (MockHandle, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if handle, ok := c.entries[key]; ok {
		return handle, true, false
	}

	if c.factory == nil {
		return MockHandle{}, false, false
	}

	handle, ok := c.factory(key.target, mode)
	if !ok {
		return MockHandle{}, false, false
	}

	if c.entries == nil {
		c.entries = map[autoMockKey]MockHandle{}
	}

	c.entries[key] = handle

	return handle, true, true
}

func (c *autoMockCache) lookup(key autoMockKey) (MockHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	handle, ok := c.entries[key]

	return handle, ok
}

func (c *autoMockCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
}

type autoMockKey struct {
	member string
	target reflect.Type
}
