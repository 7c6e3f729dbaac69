package model

import (
	"time"
)

const (
	// StatusGenerated marks a field whose value was produced this run.
	StatusGenerated = "generated"
	// StatusKept marks a field whose existing value was reused untouched.
	StatusKept = "kept"
	// StatusSkipped marks a field the resolver declined to fill.
	StatusSkipped = "skipped"
	// StatusAborted marks a field blocked by a manual ancestor.
	StatusAborted = "aborted"
	// StatusFailed marks a field whose resolution errored.
	StatusFailed = "failed"
)

// FieldResult captures the outcome of resolving a single field.
type FieldResult struct {
	Field     string
	Status    string
	Message   string
	Error     error
	Duration  time.Duration
	Timestamp time.Time
}

// NoteReport aggregates the field results for one note.
type NoteReport struct {
	NoteID    int64
	NoteType  string
	DidUpdate bool
	Results   []FieldResult
	Err       error
}

// Failed reports whether the note as a whole should count as failed:
// either the run errored outright or at least one field did.
func (r *NoteReport) Failed() bool {
	if r == nil {
		return false
	}
	if r.Err != nil {
		return true
	}
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			return true
		}
	}
	return false
}

// BatchReport summarizes a generation run over many notes.
type BatchReport struct {
	RunID     string
	Updated   int
	Failed    int
	Skipped   int
	Duration  time.Duration
	Timestamp time.Time
}

// Total returns the number of notes the run touched.
func (b *BatchReport) Total() int {
	if b == nil {
		return 0
	}
	return b.Updated + b.Failed + b.Skipped
}

// AllSucceeded reports whether no note in the run failed.
func (b *BatchReport) AllSucceeded() bool {
	if b == nil {
		return true
	}
	return b.Failed == 0
}

// ExitCode maps the run outcome to a process exit code: 0 when every note
// succeeded or was skipped, 1 when any note failed.
func (b *BatchReport) ExitCode() int {
	if b.AllSucceeded() {
		return 0
	}
	return 1
}
