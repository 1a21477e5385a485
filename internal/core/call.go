package core

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// CallRecord is the log entry for one intercepted call. Everything but the
// verified and unmatched flags is fixed at creation.
type CallRecord struct {
	MemberID   int
	MemberName string
	Args       []any
	Sequence   uint64

	verified  atomic.Bool
	unmatched atomic.Bool
}

// NewCallRecord snapshots args into a new record with the given sequence number.
func NewCallRecord(memberID int, memberName string, args []any, sequence uint64) *CallRecord {
	return &CallRecord{
		MemberID:   memberID,
		MemberName: memberName,
		Args:       append([]any(nil), args...),
		Sequence:   sequence,
	}
}

// FormatCall renders the record as Name(arg, ...).
func (r *CallRecord) FormatCall() string {
	return FormatCall(r.MemberName, r.Args)
}

// IsUnmatched reports whether no setup matched the call.
func (r *CallRecord) IsUnmatched() bool {
	return r.unmatched.Load()
}

// IsVerified reports whether a verification has accounted for the call.
func (r *CallRecord) IsVerified() bool {
	return r.verified.Load()
}

// MarkVerified flags the record as accounted for by a verification.
func (r *CallRecord) MarkVerified() {
	r.verified.Store(true)
}

func (r *CallRecord) String() string {
	return fmt.Sprintf("%s (seq #%d)", r.FormatCall(), r.Sequence)
}

func (r *CallRecord) markUnmatched() {
	r.unmatched.Store(true)
}

// FormatCall renders a call as name(a, b) using %v per argument and null for nil.
func FormatCall(name string, args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if arg == nil {
			parts[i] = "null"

			continue
		}

		parts[i] = fmt.Sprintf("%v", arg)
	}

	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}

// NextSequence draws from the process-wide counter shared by every engine, so
// records from different mocks can be totally ordered.
func NextSequence() uint64 {
	return callSequence.Add(1)
}

// callLog is an append-only record list with snapshot reads.
type callLog struct {
	mu      sync.Mutex
	records []*CallRecord
}

// record appends a new record. The sequence number is drawn under the log lock so
// the log stays in sequence order.
func (l *callLog) record(memberID int, memberName string, args []any) *CallRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	record := NewCallRecord(memberID, memberName, args, NextSequence())
	l.records = append(l.records, record)

	return record
}

func (l *callLog) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = nil
}

func (l *callLog) filter(keep func(*CallRecord) bool) []*CallRecord {
	out := []*CallRecord{}

	for _, record := range l.snapshot() {
		if keep(record) {
			out = append(out, record)
		}
	}

	return out
}

func (l *callLog) snapshot() []*CallRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]*CallRecord(nil), l.records...)
}

// unexported variables.
var (
	//nolint:gochecknoglobals // one counter orders calls across all mocks
	callSequence atomic.Uint64
)
