package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a scenario has no baseline or a version does
// not exist.
var ErrNotFound = errors.New("not found")

// #region baseline
// Baseline is one versioned baseline recording for a scenario.
type Baseline struct {
	VersionID string
	Scenario  string
	ParentID  string // previously active version, empty for the first
	Recording []byte // recording JSON as promoted
	Source    string // where the recording came from (file path, run id)
	Note      string
	CreatedAt time.Time
}
// #endregion baseline

// #region baseline-summary
// BaselineSummary is a version row without its recording payload.
type BaselineSummary struct {
	VersionID string
	Scenario  string
	ParentID  string
	Source    string
	Note      string
	CreatedAt time.Time
	Active    bool
}
// #endregion baseline-summary
