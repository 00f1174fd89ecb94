package domain

import (
	"errors"
	"time"
)

// ErrProgressOutOfRange is returned when progress falls outside 0-100.
var ErrProgressOutOfRange = errors.New("progress must be between 0 and 100")

// LibraryEntry is the latest shelf state of one book for one user.
type LibraryEntry struct {
	UserID     string        `json:"user_id"`
	BookID     string        `json:"book_id"`
	Status     ReadingStatus `json:"status"`
	Progress   int           `json:"progress_percent"`
	Note       string        `json:"note,omitempty"`
	StartedAt  *time.Time    `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// StatusChange is a requested shelf update. Nil fields keep their stored value.
type StatusChange struct {
	Status   ReadingStatus
	Progress *int
	Note     *string
}

// Validate checks the change without touching any entry.
func (c StatusChange) Validate() error {
	if !c.Status.Valid() {
		return errors.New("unknown reading status")
	}
	if c.Progress != nil && (*c.Progress < 0 || *c.Progress > 100) {
		return ErrProgressOutOfRange
	}
	return nil
}

// Apply moves the entry to the requested status at now.
//
// Transitions are advisory: every known status is accepted from every state.
// The state only drives timestamps and progress:
//
//	reading    sets started_at once; stores supplied progress
//	read       sets finished_at once; progress becomes 100
//	tbr        clears progress
//	paused     keeps progress so a resume continues
//	abandoned  keeps progress
func (e *LibraryEntry) Apply(c StatusChange, now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}

	e.Status = c.Status
	switch c.Status {
	case StatusReading:
		if e.StartedAt == nil {
			e.StartedAt = timePtr(now)
		}
		if c.Progress != nil {
			e.Progress = *c.Progress
		}
	case StatusRead:
		if e.FinishedAt == nil {
			e.FinishedAt = timePtr(now)
		}
		e.Progress = 100
	case StatusTBR:
		e.Progress = 0
	case StatusPaused, StatusAbandoned:
	}

	if c.Note != nil {
		e.Note = *c.Note
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	return nil
}

// LibraryFilter narrows a library listing.
type LibraryFilter struct {
	Status *ReadingStatus
	Year   *int
	Genre  string // genre slug
	Limit  int
	Offset int
}

// LibraryItem is one row of a library listing.
type LibraryItem struct {
	Book  BookSummary  `json:"book"`
	Entry LibraryEntry `json:"entry"`
}

func timePtr(t time.Time) *time.Time {
	return &t
}
