package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/divyarao54/Issue-Tracking-System/internal/config"
	"github.com/divyarao54/Issue-Tracking-System/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type service interface {
	ListIssues(ctx context.Context, f domain.IssueFilter) (domain.IssuePage, error)
	GetIssue(ctx context.Context, id int64) (*domain.Issue, error)
	CreateIssue(ctx context.Context, d domain.IssueDraft) (*domain.Issue, error)
	UpdateIssue(ctx context.Context, id int64, p domain.IssuePatch) (*domain.Issue, error)
	VerifyIssue(ctx context.Context, id, verifierID int64) (*domain.Issue, error)
	ListAssignees(ctx context.Context) ([]domain.Assignee, error)
}

type Handlers struct {
	cfg config.Config
	log zerolog.Logger
	svc service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service) *Handlers {
	return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeErr maps the domain taxonomy onto status codes; anything outside it is
// a store fault, logged but never leaked to the client.
func (h *Handlers) writeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid issue id"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, def int) int {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (h *Handlers) ListIssues(c *gin.Context) {
	f := domain.IssueFilter{
		Search:       c.Query("search"),
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		AssigneeName: c.Query("assignee_name"),
		SortBy:       c.DefaultQuery("sort_by", "created_at"),
		Order:        c.DefaultQuery("order", "desc"),
		Page:         intQuery(c, "page", 1),
		PageSize:     intQuery(c, "pageSize", 10),
	}
	if v := strings.TrimSpace(c.Query("assignee_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignee_id"})
			return
		}
		f.AssigneeID = &id
	}

	page, err := h.svc.ListIssues(c.Request.Context(), f)
	if err != nil {
		h.writeErr(c, err)
		return
	}
	out := listIssuesResponse{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		Issues:     make([]issueResponse, 0, len(page.Issues)),
	}
	for _, it := range page.Issues {
		out.Issues = append(out.Issues, toIssueResponse(it))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) GetIssue(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	it, err := h.svc.GetIssue(c.Request.Context(), id)
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toIssueResponse(*it))
}

func (h *Handlers) CreateIssue(c *gin.Context) {
	var req createIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	it, err := h.svc.CreateIssue(c.Request.Context(), req.toDraft())
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toIssueResponse(*it))
}

func (h *Handlers) UpdateIssue(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	it, err := h.svc.UpdateIssue(c.Request.Context(), id, req.toPatch())
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toIssueResponse(*it))
}

func (h *Handlers) VerifyIssue(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	verifierID, err := strconv.ParseInt(strings.TrimSpace(c.Query("verifier_id")), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "verifier_id is required"})
		return
	}
	it, err := h.svc.VerifyIssue(c.Request.Context(), id, verifierID)
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toIssueResponse(*it))
}

func (h *Handlers) ListAssignees(c *gin.Context) {
	assignees, err := h.svc.ListAssignees(c.Request.Context())
	if err != nil {
		h.writeErr(c, err)
		return
	}
	out := make([]assigneeResponse, 0, len(assignees))
	for _, a := range assignees {
		out = append(out, assigneeResponse{ID: a.ID, Name: a.Name})
	}
	c.JSON(http.StatusOK, gin.H{"assignees": out})
}
