package pipeline

import "fmt"

// Stage is a state of a single run.
type Stage int

const (
	StageStart Stage = iota
	StageFetching
	StageFiltering
	StageValidating
	StageReporting
	StageMetricsPush
	StageDone
	StageFailed
)

var stageNames = [...]string{
	StageStart:       "START",
	StageFetching:    "FETCHING",
	StageFiltering:   "FILTERING",
	StageValidating:  "VALIDATING",
	StageReporting:   "REPORTING",
	StageMetricsPush: "METRICS_PUSH",
	StageDone:        "DONE",
	StageFailed:      "FAILED",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// StageError records the stage a run failed in. Only fetching, validating
// and reporting can fail a run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }
