package core

import (
	"reflect"
	"sync"
)

// MockFactory builds a mock of one interface type for the given mode.
type MockFactory func(mode Mode) MockHandle

// RegisterFactory makes target auto-mockable by every engine using the default
// auto-mock factory. Generated adapters register themselves this way.
func RegisterFactory(target reflect.Type, factory MockFactory) {
	factories.Store(target, factory)
}

// RegisteredFactory is the default AutoMockFactory: it builds mocks from the
// factories passed to RegisterFactory.
func RegisteredFactory(target reflect.Type, mode Mode) (MockHandle, bool) {
	factory, ok := factories.Load(target)
	if !ok {
		return MockHandle{}, false
	}

	return factory.(MockFactory)(mode), true //nolint:forcetypeassert // only MockFactory is stored
}

// unexported variables.
var (
	//nolint:gochecknoglobals // generated adapters register at init time
	factories sync.Map
)
