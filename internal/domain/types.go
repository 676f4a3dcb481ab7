package domain

import "time"

// Status is the issue lifecycle state. Issues start open and are moved to
// verified by the verification flow; no state machine constrains the rest.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
	StatusVerified   Status = "verified"
	StatusClosed     Status = "closed"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusVerified, StatusClosed:
		return true
	}
	return false
}

const (
	DefaultStatus   = StatusOpen
	DefaultPriority = "medium"
)

type Issue struct {
	ID           int64
	Title        string
	Description  *string
	Status       Status
	Priority     string
	AssigneeID   *int64
	AssigneeName *string
	AssignedDate *time.Time
	VerifierID   *int64
	VerifierName *string
	VerifiedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Assignee is read-only reference data; rows are populated externally.
type Assignee struct {
	ID   int64
	Name string
}

// IssueDraft is the validated input of a create. A nil AssigneeID means the
// allocator picks one (or leaves the issue unassigned).
type IssueDraft struct {
	Title       string
	Description *string
	Status      Status
	Priority    string
	AssigneeID  *int64
}

// IssuePatch is a sparse update. The Set flags record which keys were present
// in the request, so an explicit null is distinguishable from an absent key.
// Title and Status cannot be nulled, so a nil pointer alone means "untouched".
type IssuePatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Status         *Status
	Priority       *string
	AssigneeID     *int64
	AssigneeSet    bool

	// Filled by the allocator, never by callers.
	AssignedDate    *time.Time
	AssignedDateSet bool
}

// Empty reports whether the patch carries no caller-provided field.
func (p IssuePatch) Empty() bool {
	return p.Title == nil && !p.DescriptionSet && p.Status == nil &&
		p.Priority == nil && !p.AssigneeSet
}

// IssueFilter is the list query: every filter is optional, blank means
// "no filter". Page is 1-indexed.
type IssueFilter struct {
	Search       string
	Status       string
	Priority     string
	AssigneeName string
	AssigneeID   *int64
	SortBy       string
	Order        string
	Page         int
	PageSize     int
}

type IssuePage struct {
	Page       int
	PageSize   int
	TotalCount int
	Issues     []Issue
}
