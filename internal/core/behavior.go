package core

// Behavior is the action a matched setup performs.
// Execute receives the call's arguments and returns the member's result (nil for
// void members or "use the zero value"). A non-nil error is surfaced to the caller
// unchanged.
type Behavior interface {
	Execute(args []any) (any, error)
}

// BehaviorFunc adapts an ordinary function to a Behavior.
type BehaviorFunc func(args []any) (any, error)

// Execute calls f(args).
func (f BehaviorFunc) Execute(args []any) (any, error) {
	return f(args)
}

// Assignments maps out-parameter positions to the values a matched setup assigns.
type Assignments map[int]any

// EventRaise is a directive to raise an event after a setup's behavior ran.
type EventRaise struct {
	Event string
	Args  []any
}

// Raiser delivers events raised by matched setups. Generated adapters implement it.
type Raiser interface {
	RaiseEvent(name string, args []any)
}

// Void is the result type of members without a return value.
type Void = struct{}
