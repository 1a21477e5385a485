package core

// CallInfo describes one recorded call in a diagnostics report.
type CallInfo struct {
	MemberID   int    `json:"member_id" yaml:"member_id"`
	MemberName string `json:"member_name" yaml:"member_name"`
	Call       string `json:"call" yaml:"call"`
	Sequence   uint64 `json:"sequence" yaml:"sequence"`
}

// Diagnostics reports a mock's setup coverage and unmatched calls for coverage tooling.
type Diagnostics struct {
	MockID          string      `json:"mock_id" yaml:"mock_id" jsonschema:"description=Unique id of the mock"`
	MockName        string      `json:"mock_name,omitempty" yaml:"mock_name,omitempty" jsonschema:"description=Display name of the mock"`
	Mode            string      `json:"mode" yaml:"mode" jsonschema:"enum=loose,enum=strict"`
	TotalSetups     int         `json:"total_setups" yaml:"total_setups"`
	ExercisedSetups int         `json:"exercised_setups" yaml:"exercised_setups"`
	TotalCalls      int         `json:"total_calls" yaml:"total_calls"`
	UnusedSetups    []SetupInfo `json:"unused_setups" yaml:"unused_setups" jsonschema:"description=Setups that never matched a call"`
	UnmatchedCalls  []CallInfo  `json:"unmatched_calls" yaml:"unmatched_calls" jsonschema:"description=Calls that matched no setup"`
}

// SetupInfo describes one setup in a diagnostics report.
type SetupInfo struct {
	MemberID    int      `json:"member_id" yaml:"member_id"`
	MemberName  string   `json:"member_name" yaml:"member_name"`
	Matchers    []string `json:"matchers" yaml:"matchers"`
	InvokeCount int64    `json:"invoke_count" yaml:"invoke_count"`
}

// Diagnostics returns the setup-coverage and unmatched-call report.
func (e *Engine) Diagnostics() Diagnostics {
	report := Diagnostics{
		MockID:         e.id.String(),
		MockName:       e.name,
		Mode:           e.mode.String(),
		UnusedSetups:   []SetupInfo{},
		UnmatchedCalls: []CallInfo{},
	}

	for _, setup := range e.Setups() {
		report.TotalSetups++

		if setup.InvokeCount() > 0 {
			report.ExercisedSetups++

			continue
		}

		report.UnusedSetups = append(report.UnusedSetups, SetupInfo{
			MemberID:    setup.MemberID(),
			MemberName:  setup.MemberName(),
			Matchers:    setup.MatcherDescriptions(),
			InvokeCount: setup.InvokeCount(),
		})
	}

	for _, call := range e.AllCalls() {
		report.TotalCalls++

		if !call.IsUnmatched() {
			continue
		}

		report.UnmatchedCalls = append(report.UnmatchedCalls, CallInfo{
			MemberID:   call.MemberID,
			MemberName: call.MemberName,
			Call:       call.FormatCall(),
			Sequence:   call.Sequence,
		})
	}

	return report
}
