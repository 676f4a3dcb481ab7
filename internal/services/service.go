package services

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/divyarao54/Issue-Tracking-System/internal/config"
	"github.com/divyarao54/Issue-Tracking-System/internal/domain"
	"github.com/divyarao54/Issue-Tracking-System/internal/repo"
	"github.com/rs/zerolog"
)

// store is what the service needs from the persistence layer. Transactional
// methods take a repo.Querier so check-then-write sequences share one tx.
type store interface {
	Pool() repo.Querier
	InTx(ctx context.Context, fn func(q repo.Querier) error) error
	ListIssues(ctx context.Context, f domain.IssueFilter) ([]domain.Issue, int, error)
	GetIssue(ctx context.Context, q repo.Querier, id int64) (*domain.Issue, error)
	InsertIssue(ctx context.Context, q repo.Querier, it *domain.Issue) error
	UpdateIssue(ctx context.Context, q repo.Querier, id int64, p domain.IssuePatch) error
	VerifyIssue(ctx context.Context, q repo.Querier, id, verifierID int64, now time.Time) error
	FirstFreeAssignee(ctx context.Context, q repo.Querier, day time.Time) (*domain.Assignee, error)
	AssigneeBooked(ctx context.Context, q repo.Querier, assigneeID int64, day time.Time, excludeIssueID int64) (bool, error)
	AssigneeExists(ctx context.Context, q repo.Querier, id int64) (bool, error)
	ListAssignees(ctx context.Context) ([]domain.Assignee, error)
}

type Service struct {
	cfg   config.Config
	log   zerolog.Logger
	store store
	node  *snowflake.Node
	now   func() time.Time
}

func NewService(cfg config.Config, log zerolog.Logger, st store, node *snowflake.Node) *Service {
	return &Service{cfg: cfg, log: log, store: st, node: node, now: time.Now}
}

// today is the allocator's date boundary, midnight in the process timezone.
func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func (s *Service) ListIssues(ctx context.Context, f domain.IssueFilter) (domain.IssuePage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 10
	}
	items, total, err := s.store.ListIssues(ctx, f)
	if err != nil {
		return domain.IssuePage{}, err
	}
	return domain.IssuePage{Page: f.Page, PageSize: f.PageSize, TotalCount: total, Issues: items}, nil
}

func (s *Service) GetIssue(ctx context.Context, id int64) (*domain.Issue, error) {
	return s.store.GetIssue(ctx, s.store.Pool(), id)
}

func (s *Service) CreateIssue(ctx context.Context, d domain.IssueDraft) (*domain.Issue, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return nil, domain.Invalidf("title is required")
	}
	if d.Status == "" {
		d.Status = domain.DefaultStatus
	} else if !domain.ValidStatus(d.Status) {
		return nil, domain.Invalidf("unknown status %q", d.Status)
	}
	if strings.TrimSpace(d.Priority) == "" {
		d.Priority = domain.DefaultPriority
	}

	it := &domain.Issue{
		ID:          s.node.Generate().Int64(),
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    d.Priority,
	}
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		assigneeID, assignedDate, err := s.resolveAssignee(ctx, q, d.AssigneeID, 0)
		if err != nil {
			return err
		}
		it.AssigneeID = assigneeID
		it.AssignedDate = assignedDate
		if err := s.store.InsertIssue(ctx, q, it); err != nil {
			return err
		}
		got, err := s.store.GetIssue(ctx, q, it.ID)
		if err != nil {
			return err
		}
		it = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("issue_id", it.ID).Msg("issue created")
	return it, nil
}

func (s *Service) UpdateIssue(ctx context.Context, id int64, p domain.IssuePatch) (*domain.Issue, error) {
	if p.Empty() {
		return nil, domain.Invalidf("no fields provided")
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, domain.Invalidf("title cannot be empty")
	}
	if p.Status != nil && !domain.ValidStatus(*p.Status) {
		return nil, domain.Invalidf("unknown status %q", *p.Status)
	}

	var out *domain.Issue
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		if _, err := s.store.GetIssue(ctx, q, id); err != nil {
			return err
		}
		if p.AssigneeSet {
			assigneeID, assignedDate, err := s.resolveAssignee(ctx, q, p.AssigneeID, id)
			if err != nil {
				return err
			}
			p.AssigneeID = assigneeID
			p.AssignedDate = assignedDate
			p.AssignedDateSet = true
		}
		if err := s.store.UpdateIssue(ctx, q, id, p); err != nil {
			return err
		}
		got, err := s.store.GetIssue(ctx, q, id)
		if err != nil {
			return err
		}
		out = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyIssue moves any issue to verified. Preconditions in order: the issue
// must exist, then the verifier must exist in assignees.
func (s *Service) VerifyIssue(ctx context.Context, id, verifierID int64) (*domain.Issue, error) {
	var out *domain.Issue
	err := s.store.InTx(ctx, func(q repo.Querier) error {
		if _, err := s.store.GetIssue(ctx, q, id); err != nil {
			return err
		}
		ok, err := s.store.AssigneeExists(ctx, q, verifierID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundf("verifier %d", verifierID)
		}
		if err := s.store.VerifyIssue(ctx, q, id, verifierID, s.now()); err != nil {
			return err
		}
		got, err := s.store.GetIssue(ctx, q, id)
		if err != nil {
			return err
		}
		out = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("issue_id", id).Int64("verifier_id", verifierID).Msg("issue verified")
	return out, nil
}

func (s *Service) ListAssignees(ctx context.Context) ([]domain.Assignee, error) {
	return s.store.ListAssignees(ctx)
}
