package core

import (
	"fmt"
	"time"
)

// File is a note known to the storage, addressed by its vault-relative slash path.
type File struct {
	Path string
	Name string
}

// CreateResult reports what a create call did.
type CreateResult int

const (
	Created CreateResult = iota
	AlreadyExisted
)

func (r CreateResult) String() string {
	if r == AlreadyExisted {
		return "already_existed"
	}
	return "created"
}

// Outcome is the terminal state of a rollover run.
type Outcome string

const (
	// OutcomeUpToDate means the current period's note already exists.
	OutcomeUpToDate Outcome = "up_to_date"
	// OutcomeCreated means no predecessor existed and an empty note was created.
	OutcomeCreated Outcome = "created"
	// OutcomeRolled means the predecessor was archived and its open rows carried forward.
	OutcomeRolled Outcome = "rolled"
	// OutcomeMerged means a forced rollover appended carried rows to an existing note.
	OutcomeMerged Outcome = "merged"
	// OutcomeRepaired means an interrupted rollover was completed from the journal.
	OutcomeRepaired Outcome = "repaired"
	// OutcomeBusy means another rollover held the vault.
	OutcomeBusy Outcome = "busy"
	// OutcomeFailed means the sequence stopped on an error.
	OutcomeFailed Outcome = "failed"
)

// Mutated reports whether the outcome changed the storage.
func (o Outcome) Mutated() bool {
	switch o {
	case OutcomeCreated, OutcomeRolled, OutcomeMerged, OutcomeRepaired:
		return true
	}
	return false
}

// Result describes a single rollover run.
type Result struct {
	Run      string
	Outcome  Outcome
	Target   string
	Previous string
	Archive  string
	Carried  int
	At       time.Time
}

// Event is published to subscribers after every rollover run.
type Event struct {
	Outcome Outcome
	Target  string
	Archive string
	Run     string
	Err     error
	Time    time.Time
}

// String implements lifecycle.Event.
func (e Event) String() string {
	s := fmt.Sprintf("%s %s", e.Outcome, e.Target)
	if e.Archive != "" {
		s += " (archived " + e.Archive + ")"
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// JournalEntry records a rollover between the move and the creation of the new note.
type JournalEntry struct {
	Previous string    `yaml:"previous"`
	Archive  string    `yaml:"archive"`
	Target   string    `yaml:"target"`
	Run      string    `yaml:"run"`
	Started  time.Time `yaml:"started"`
}
