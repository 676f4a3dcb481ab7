package http

import (
	"encoding/json"
	"time"

	"github.com/divyarao54/Issue-Tracking-System/internal/domain"
)

// Nullable tracks JSON key presence: encoding/json only invokes
// UnmarshalJSON for keys that appear, so Set distinguishes an absent key
// from an explicit null. Partial updates depend on that distinction.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Valid = false
		return nil
	}
	if err := json.Unmarshal(b, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

type createIssueRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssigneeID  *int64  `json:"assignee_id"`
}

func (r createIssueRequest) toDraft() domain.IssueDraft {
	d := domain.IssueDraft{
		Title:       r.Title,
		Description: r.Description,
		AssigneeID:  r.AssigneeID,
	}
	if r.Status != nil {
		d.Status = domain.Status(*r.Status)
	}
	if r.Priority != nil {
		d.Priority = *r.Priority
	}
	return d
}

type updateIssueRequest struct {
	Title       *string          `json:"title"`
	Description Nullable[string] `json:"description"`
	Status      *string          `json:"status"`
	Priority    *string          `json:"priority"`
	AssigneeID  Nullable[int64]  `json:"assignee_id"`
}

func (r updateIssueRequest) toPatch() domain.IssuePatch {
	p := domain.IssuePatch{
		Title:    r.Title,
		Priority: r.Priority,
	}
	if r.Status != nil {
		st := domain.Status(*r.Status)
		p.Status = &st
	}
	if r.Description.Set {
		p.DescriptionSet = true
		if r.Description.Valid {
			v := r.Description.Value
			p.Description = &v
		}
	}
	if r.AssigneeID.Set {
		p.AssigneeSet = true
		if r.AssigneeID.Valid {
			v := r.AssigneeID.Value
			p.AssigneeID = &v
		}
	}
	return p
}

type issueResponse struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	AssigneeID   *int64     `json:"assignee_id"`
	Assignee     *string    `json:"assignee"`
	AssignedDate *string    `json:"assigned_date"`
	VerifierID   *int64     `json:"verifier_id"`
	Verifier     *string    `json:"verifier"`
	VerifiedAt   *time.Time `json:"verified_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toIssueResponse(it domain.Issue) issueResponse {
	out := issueResponse{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		Status:      string(it.Status),
		Priority:    it.Priority,
		AssigneeID:  it.AssigneeID,
		Assignee:    it.AssigneeName,
		VerifierID:  it.VerifierID,
		Verifier:    it.VerifierName,
		VerifiedAt:  it.VerifiedAt,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
	if it.AssignedDate != nil {
		d := it.AssignedDate.Format("2006-01-02")
		out.AssignedDate = &d
	}
	return out
}

type listIssuesResponse struct {
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalCount int             `json:"totalCount"`
	Issues     []issueResponse `json:"issues"`
}

type assigneeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
