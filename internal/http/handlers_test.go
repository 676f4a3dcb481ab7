package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/divyarao54/Issue-Tracking-System/internal/config"
	"github.com/divyarao54/Issue-Tracking-System/internal/domain"
	"github.com/rs/zerolog"
)

type stubService struct {
	page      domain.IssuePage
	issue     *domain.Issue
	assignees []domain.Assignee
	err       error

	gotFilter domain.IssueFilter
	gotPatch  domain.IssuePatch
	gotDraft  domain.IssueDraft
}

func (s *stubService) ListIssues(ctx context.Context, f domain.IssueFilter) (domain.IssuePage, error) {
	s.gotFilter = f
	return s.page, s.err
}

func (s *stubService) GetIssue(ctx context.Context, id int64) (*domain.Issue, error) {
	return s.issue, s.err
}

func (s *stubService) CreateIssue(ctx context.Context, d domain.IssueDraft) (*domain.Issue, error) {
	s.gotDraft = d
	return s.issue, s.err
}

func (s *stubService) UpdateIssue(ctx context.Context, id int64, p domain.IssuePatch) (*domain.Issue, error) {
	s.gotPatch = p
	return s.issue, s.err
}

func (s *stubService) VerifyIssue(ctx context.Context, id, verifierID int64) (*domain.Issue, error) {
	return s.issue, s.err
}

func (s *stubService) ListAssignees(ctx context.Context) ([]domain.Assignee, error) {
	return s.assignees, s.err
}

func sampleIssue() *domain.Issue {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	return &domain.Issue{
		ID: 7, Title: "Bug A", Status: domain.StatusOpen, Priority: "medium",
		CreatedAt: now, UpdatedAt: now,
	}
}

func doRequest(svc service, method, target, body string) *httptest.ResponseRecorder {
	r := NewRouter(config.Config{AppEnv: "test"}, zerolog.Nop(), svc)
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doRequest(&stubService{}, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}
}

func TestListIssues_ResponseShapeAndParams(t *testing.T) {
	svc := &stubService{page: domain.IssuePage{Page: 2, PageSize: 5, TotalCount: 11, Issues: []domain.Issue{*sampleIssue()}}}
	w := doRequest(svc, http.MethodGet, "/issues?status=open&sort_by=priority&order=asc&page=2&pageSize=5&assignee_id=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d: %s", w.Code, w.Body.String())
	}

	if svc.gotFilter.Status != "open" || svc.gotFilter.SortBy != "priority" || svc.gotFilter.Order != "asc" {
		t.Fatalf("filter not forwarded: %#v", svc.gotFilter)
	}
	if svc.gotFilter.Page != 2 || svc.gotFilter.PageSize != 5 {
		t.Fatalf("paging not forwarded: %#v", svc.gotFilter)
	}
	if svc.gotFilter.AssigneeID == nil || *svc.gotFilter.AssigneeID != 3 {
		t.Fatalf("assignee_id not forwarded: %#v", svc.gotFilter.AssigneeID)
	}

	var body struct {
		Page       int               `json:"page"`
		PageSize   int               `json:"pageSize"`
		TotalCount int               `json:"totalCount"`
		Issues     []json.RawMessage `json:"issues"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Page != 2 || body.PageSize != 5 || body.TotalCount != 11 || len(body.Issues) != 1 {
		t.Fatalf("unexpected shape: %s", w.Body.String())
	}
}

func TestListIssues_DefaultsApplied(t *testing.T) {
	svc := &stubService{}
	doRequest(svc, http.MethodGet, "/issues", "")
	f := svc.gotFilter
	if f.SortBy != "created_at" || f.Order != "desc" || f.Page != 1 || f.PageSize != 10 {
		t.Fatalf("defaults not applied: %#v", f)
	}
}

func TestListIssues_BadAssigneeID(t *testing.T) {
	w := doRequest(&stubService{}, http.MethodGet, "/issues?assignee_id=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad assignee_id = %d", w.Code)
	}
}

func TestGetIssue_ErrorMapping(t *testing.T) {
	w := doRequest(&stubService{err: domain.NotFoundf("issue 9")}, http.MethodGet, "/issues/9", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("not found = %d", w.Code)
	}

	w = doRequest(&stubService{err: errors.New("connection refused")}, http.MethodGet, "/issues/9", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("store fault = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Fatalf("store error leaked to client: %s", w.Body.String())
	}

	w = doRequest(&stubService{issue: sampleIssue()}, http.MethodGet, "/issues/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric id = %d", w.Code)
	}
}

func TestCreateIssue_ForwardsDraft(t *testing.T) {
	svc := &stubService{issue: sampleIssue()}
	w := doRequest(svc, http.MethodPost, "/issues", `{"title":"Bug A","priority":"high","assignee_id":4}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create = %d: %s", w.Code, w.Body.String())
	}
	if svc.gotDraft.Title != "Bug A" || svc.gotDraft.Priority != "high" {
		t.Fatalf("draft not forwarded: %#v", svc.gotDraft)
	}
	if svc.gotDraft.AssigneeID == nil || *svc.gotDraft.AssigneeID != 4 {
		t.Fatalf("assignee_id not forwarded: %#v", svc.gotDraft.AssigneeID)
	}
}

func TestCreateIssue_MalformedBody(t *testing.T) {
	w := doRequest(&stubService{}, http.MethodPost, "/issues", `{"title":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d", w.Code)
	}
}

func TestUpdateIssue_ConflictMapsTo400(t *testing.T) {
	svc := &stubService{err: domain.Invalidf("assignee already assigned today")}
	w := doRequest(svc, http.MethodPut, "/issues/7", `{"assignee_id":3}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("conflict = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "assignee already assigned today") {
		t.Fatalf("conflict message missing: %s", w.Body.String())
	}
}

func TestVerifyIssue_RequiresVerifierID(t *testing.T) {
	w := doRequest(&stubService{issue: sampleIssue()}, http.MethodPost, "/issues/7/verify", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing verifier_id = %d", w.Code)
	}

	w = doRequest(&stubService{issue: sampleIssue()}, http.MethodPost, "/issues/7/verify?verifier_id=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("verify = %d: %s", w.Code, w.Body.String())
	}
}

func TestListAssignees(t *testing.T) {
	svc := &stubService{assignees: []domain.Assignee{{ID: 1, Name: "alice"}}}
	w := doRequest(svc, http.MethodGet, "/assignees", "")
	if w.Code != http.StatusOK {
		t.Fatalf("assignees = %d", w.Code)
	}
	var body struct {
		Assignees []assigneeResponse `json:"assignees"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(body.Assignees) != 1 || body.Assignees[0].Name != "alice" {
		t.Fatalf("unexpected assignees: %s", w.Body.String())
	}
}
