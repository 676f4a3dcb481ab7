package services

import (
	"context"
	"time"

	"github.com/divyarao54/Issue-Tracking-System/internal/domain"
	"github.com/divyarao54/Issue-Tracking-System/internal/repo"
)

// resolveAssignee enforces the one-assignment-per-assignee-per-day rule.
//
// With no requested id it picks the lowest-id assignee with nothing dated
// today; everyone booked means the issue stays unassigned. With a requested
// id it rejects an assignee already booked today (ignoring excludeIssueID,
// the issue being updated) and otherwise accepts the id as given, without an
// existence check.
//
// The returned date is today when an assignee is attached and nil otherwise,
// keeping assignee and assigned date null together.
func (s *Service) resolveAssignee(ctx context.Context, q repo.Querier, requested *int64, excludeIssueID int64) (*int64, *time.Time, error) {
	day := s.today()

	if requested != nil {
		booked, err := s.store.AssigneeBooked(ctx, q, *requested, day, excludeIssueID)
		if err != nil {
			return nil, nil, err
		}
		if booked {
			return nil, nil, domain.Invalidf("assignee already assigned today")
		}
		return requested, &day, nil
	}

	free, err := s.store.FirstFreeAssignee(ctx, q, day)
	if err != nil {
		return nil, nil, err
	}
	if free == nil {
		return nil, nil, nil
	}
	return &free.ID, &day, nil
}
