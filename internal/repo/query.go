package repo

import (
	"strconv"
	"strings"

	"github.com/divyarao54/Issue-Tracking-System/internal/domain"
)

// whereBuilder accumulates AND-joined predicate clauses with positional
// bindings. Clauses use ? markers which are rewritten to $n so fragments can
// be composed in any order; user-controlled values only ever travel as args.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (b *whereBuilder) And(expr string, vals ...any) {
	var sb strings.Builder
	vi := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' {
			b.args = append(b.args, vals[vi])
			vi++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(len(b.args)))
			continue
		}
		sb.WriteByte(expr[i])
	}
	b.clauses = append(b.clauses, sb.String())
}

// Bind appends a trailing arg (LIMIT/OFFSET values) and returns its $n marker.
func (b *whereBuilder) Bind(val any) string {
	b.args = append(b.args, val)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *whereBuilder) SQL() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// issueWhere translates the optional filters into predicates. Blank or
// whitespace-only values mean "no filter", never "match empty".
func issueWhere(f domain.IssueFilter) *whereBuilder {
	b := &whereBuilder{}
	if v := strings.TrimSpace(f.Status); v != "" {
		b.And("i.status = ?", v)
	}
	if v := strings.TrimSpace(f.Priority); v != "" {
		b.And("i.priority = ?", v)
	}
	if v := strings.TrimSpace(f.AssigneeName); v != "" {
		b.And("a.name = ?", v)
	}
	if f.AssigneeID != nil {
		b.And("i.assignee_id = ?", *f.AssigneeID)
	}
	if v := strings.TrimSpace(f.Search); v != "" {
		pat := "%" + v + "%"
		b.And("(i.title ILIKE ? OR i.description ILIKE ?)", pat, pat)
	}
	return b
}

// sortColumns is the allow-list for ORDER BY; anything else falls back to
// created_at. Sort identifiers cannot be parameterized, so nothing outside
// this map ever reaches the SQL text.
var sortColumns = map[string]string{
	"id":         "i.id",
	"title":      "i.title",
	"status":     "i.status",
	"priority":   "i.priority",
	"assignee":   "a.name",
	"created_at": "i.created_at",
	"updated_at": "i.updated_at",
}

func orderClause(sortBy, order string) string {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = sortColumns["created_at"]
	}
	dir := "ASC"
	if strings.EqualFold(order, "desc") {
		dir = "DESC"
	}
	// Secondary key keeps pagination stable when the sort column has ties.
	return " ORDER BY " + col + " " + dir + ", i.id " + dir
}
