package repo

import (
	"strings"
	"testing"

	"github.com/divyarao54/Issue-Tracking-System/internal/domain"
)

func TestWhereBuilder_RenumbersPlaceholders(t *testing.T) {
	b := &whereBuilder{}
	b.And("i.status = ?", "open")
	b.And("(i.title ILIKE ? OR i.description ILIKE ?)", "%a%", "%a%")

	sql := b.SQL()
	want := " WHERE i.status = $1 AND (i.title ILIKE $2 OR i.description ILIKE $3)"
	if sql != want {
		t.Fatalf("got %q, want %q", sql, want)
	}
	if len(b.args) != 3 {
		t.Fatalf("expected 3 args, got %d: %#v", len(b.args), b.args)
	}
	if m := b.Bind(10); m != "$4" {
		t.Fatalf("Bind after 3 args should yield $4, got %s", m)
	}
}

func TestWhereBuilder_EmptyProducesNoClause(t *testing.T) {
	b := &whereBuilder{}
	if b.SQL() != "" {
		t.Fatalf("empty builder should produce empty SQL, got %q", b.SQL())
	}
}

func TestIssueWhere_BlankFiltersIgnored(t *testing.T) {
	b := issueWhere(domain.IssueFilter{Status: "  ", Priority: "", Search: "\t", AssigneeName: " "})
	if b.SQL() != "" {
		t.Fatalf("whitespace-only filters must not produce predicates, got %q", b.SQL())
	}

	id := int64(7)
	b = issueWhere(domain.IssueFilter{Status: "open", AssigneeID: &id})
	sql := b.SQL()
	if !strings.Contains(sql, "i.status = $1") || !strings.Contains(sql, "i.assignee_id = $2") {
		t.Fatalf("unexpected predicate: %q", sql)
	}
}

func TestIssueWhere_SearchCoversTitleAndDescription(t *testing.T) {
	b := issueWhere(domain.IssueFilter{Search: "crash"})
	sql := b.SQL()
	if !strings.Contains(sql, "i.title ILIKE $1") || !strings.Contains(sql, "i.description ILIKE $2") {
		t.Fatalf("search predicate should hit both columns: %q", sql)
	}
	if b.args[0] != "%crash%" || b.args[1] != "%crash%" {
		t.Fatalf("search args should be containment patterns: %#v", b.args)
	}
}

func TestOrderClause_AllowListFallback(t *testing.T) {
	if got := orderClause("priority", "desc"); got != " ORDER BY i.priority DESC, i.id DESC" {
		t.Fatalf("got %q", got)
	}
	// Unknown sort field falls back to created_at rather than erroring.
	if got := orderClause("nonexistent_field", "desc"); got != " ORDER BY i.created_at DESC, i.id DESC" {
		t.Fatalf("got %q", got)
	}
	// Attempted injection never reaches the SQL text.
	if got := orderClause("id; DROP TABLE issues", "asc"); !strings.Contains(got, "i.created_at") {
		t.Fatalf("injection attempt must fall back: %q", got)
	}
}

func TestOrderClause_DirectionFallsBackToAsc(t *testing.T) {
	if got := orderClause("id", "DESC"); got != " ORDER BY i.id DESC, i.id DESC" {
		t.Fatalf("order should be case-insensitive: %q", got)
	}
	if got := orderClause("id", "sideways"); got != " ORDER BY i.id ASC, i.id ASC" {
		t.Fatalf("invalid order should fall back to ASC: %q", got)
	}
}
