package repo

import (
	"context"
	_ "embed"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/divyarao54/Issue-Tracking-System/internal/config"
	"github.com/divyarao54/Issue-Tracking-System/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed schema.sql
var schemaSQL string

type DB struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(ctx2); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

// Migrate applies the embedded schema; every statement is idempotent.
// Statements run one at a time: the extended protocol rejects multi-statement
// strings.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// statement helpers serve plain reads and transactional check-then-write
// sequences.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db  *DB
	log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

// Pool exposes the connection pool as a Querier for non-transactional calls.
func (r *Repository) Pool() Querier { return r.db.Pool }

// InTx runs fn inside a single transaction; fn returning an error rolls
// everything back.
func (r *Repository) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	var ok bool
	err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
	return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
	var ok bool
	err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
	if !ok && err == nil {
		return errors.New("advisory unlock returned false")
	}
	return err
}

const issueColumns = `i.id, i.title, i.description, i.status, i.priority,
    i.assignee_id, a.name, i.assigned_date,
    i.verifier_id, v.name, i.verified_at,
    i.created_at, i.updated_at`

const issueJoin = ` FROM issues i
    LEFT JOIN assignees a ON a.id = i.assignee_id
    LEFT JOIN assignees v ON v.id = i.verifier_id`

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var it domain.Issue
	err := row.Scan(&it.ID, &it.Title, &it.Description, &it.Status, &it.Priority,
		&it.AssigneeID, &it.AssigneeName, &it.AssignedDate,
		&it.VerifierID, &it.VerifierName, &it.VerifiedAt,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ListIssues runs the count and the page as two separate queries over the
// identical predicate. The two are not snapshot-consistent under concurrent
// writes; callers accept that.
func (r *Repository) ListIssues(ctx context.Context, f domain.IssueFilter) ([]domain.Issue, int, error) {
	where := issueWhere(f)

	var total int
	countQ := "SELECT COUNT(*)" + issueJoin + where.SQL()
	if err := r.db.Pool.QueryRow(ctx, countQ, where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := issueWhere(f)
	q := "SELECT " + issueColumns + issueJoin + page.SQL() + orderClause(f.SortBy, f.Order)
	offset := (f.Page - 1) * f.PageSize
	q += " LIMIT " + page.Bind(f.PageSize) + " OFFSET " + page.Bind(offset)

	rows, err := r.db.Pool.Query(ctx, q, page.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]domain.Issue, 0, f.PageSize)
	for rows.Next() {
		it, err := scanIssue(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) GetIssue(ctx context.Context, q Querier, id int64) (*domain.Issue, error) {
	row := q.QueryRow(ctx, "SELECT "+issueColumns+issueJoin+" WHERE i.id = $1", id)
	it, err := scanIssue(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFoundf("issue %d", id)
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// InsertIssue persists a new row; the caller supplies the generated id and
// the allocation outcome (assignee + assigned date together or neither).
func (r *Repository) InsertIssue(ctx context.Context, q Querier, it *domain.Issue) error {
	const ins = `INSERT INTO issues(id, title, description, status, priority, assignee_id, assigned_date)
        VALUES($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at, updated_at`
	return q.QueryRow(ctx, ins, it.ID, it.Title, it.Description, it.Status, it.Priority,
		it.AssigneeID, it.AssignedDate).Scan(&it.CreatedAt, &it.UpdatedAt)
}

// UpdateIssue applies only the fields the patch marks as present and always
// refreshes updated_at.
func (r *Repository) UpdateIssue(ctx context.Context, q Querier, id int64, p domain.IssuePatch) error {
	var sets []string
	var args []any
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.DescriptionSet {
		add("description", p.Description)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.Priority != nil {
		add("priority", *p.Priority)
	}
	if p.AssigneeSet {
		add("assignee_id", p.AssigneeID)
	}
	if p.AssignedDateSet {
		add("assigned_date", p.AssignedDate)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	stmt := "UPDATE issues SET " + strings.Join(sets, ", ") + " WHERE id = $" + strconv.Itoa(len(args))
	tag, err := q.Exec(ctx, stmt, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("issue %d", id)
	}
	return nil
}

// VerifyIssue stamps the verified state; no other column changes.
func (r *Repository) VerifyIssue(ctx context.Context, q Querier, id, verifierID int64, now time.Time) error {
	const stmt = `UPDATE issues
        SET status = $1, verifier_id = $2, verified_at = $3, updated_at = $3
        WHERE id = $4`
	tag, err := q.Exec(ctx, stmt, domain.StatusVerified, verifierID, now, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("issue %d", id)
	}
	return nil
}

// FirstFreeAssignee returns the lowest-id assignee with no issue dated day,
// or nil when everyone is booked.
func (r *Repository) FirstFreeAssignee(ctx context.Context, q Querier, day time.Time) (*domain.Assignee, error) {
	const sel = `SELECT a.id, a.name FROM assignees a
        WHERE NOT EXISTS (
            SELECT 1 FROM issues i WHERE i.assignee_id = a.id AND i.assigned_date = $1
        )
        ORDER BY a.id
        LIMIT 1`
	var as domain.Assignee
	err := q.QueryRow(ctx, sel, day).Scan(&as.ID, &as.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &as, nil
}

// AssigneeBooked reports whether assigneeID already has an issue dated day,
// ignoring excludeIssueID (pass 0 on create).
func (r *Repository) AssigneeBooked(ctx context.Context, q Querier, assigneeID int64, day time.Time, excludeIssueID int64) (bool, error) {
	const sel = `SELECT EXISTS (
        SELECT 1 FROM issues WHERE assignee_id = $1 AND assigned_date = $2 AND id <> $3
    )`
	var booked bool
	err := q.QueryRow(ctx, sel, assigneeID, day, excludeIssueID).Scan(&booked)
	return booked, err
}

func (r *Repository) AssigneeExists(ctx context.Context, q Querier, id int64) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM assignees WHERE id = $1)", id).Scan(&ok)
	return ok, err
}

// ListAssignees returns the assignees currently referenced by at least one
// issue, ordered by id.
func (r *Repository) ListAssignees(ctx context.Context) ([]domain.Assignee, error) {
	const sel = `SELECT DISTINCT a.id, a.name FROM assignees a
        JOIN issues i ON i.assignee_id = a.id
        ORDER BY a.id`
	rows, err := r.db.Pool.Query(ctx, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Assignee
	for rows.Next() {
		var as domain.Assignee
		if err := rows.Scan(&as.ID, &as.Name); err != nil {
			return nil, err
		}
		out = append(out, as)
	}
	return out, rows.Err()
}

// AssignmentSnapshot counts issues assigned on day and assignees still free
// that day; used by the daily digest job.
func (r *Repository) AssignmentSnapshot(ctx context.Context, day time.Time) (assigned, free int, err error) {
	if err = r.db.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM issues WHERE assigned_date = $1", day).Scan(&assigned); err != nil {
		return 0, 0, err
	}
	const freeQ = `SELECT COUNT(*) FROM assignees a
        WHERE NOT EXISTS (
            SELECT 1 FROM issues i WHERE i.assignee_id = a.id AND i.assigned_date = $1
        )`
	if err = r.db.Pool.QueryRow(ctx, freeQ, day).Scan(&free); err != nil {
		return 0, 0, err
	}
	return assigned, free, nil
}
