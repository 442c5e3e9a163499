// Package postgres implements store.Store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/query"
	"github.com/aawaaz/complaint-desk/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const complaintColumns = `
	c.id, c.title, c.content, c.category, c.source, c.level, c.area,
	c.complainant_name, c.contact, c.assignee, c.status, c.processing_notes,
	(SELECT AVG(f.score) FROM complaint_feedback f WHERE f.ticket_no = c.id) AS satisfaction,
	c.created_at, c.updated_at`

const historyColumns = `id, ticket_no, status, operator, description, created_at, updated_at`

const feedbackColumns = `
	id, survey_code, ticket_no, investigator_name, contact_info,
	processing_speed, staff_attitude, resolution_effect, other_suggestions,
	score, created_at`

// Store persists to the complaints, resolve_history and complaint_feedback tables
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// NewStore creates a store on pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) CreateComplaint(ctx context.Context, c models.Complaint) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO complaints (
			id, title, content, category, source, level, area,
			complainant_name, contact, assignee, status, processing_notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, c.ID, c.Title, c.Content, c.Category, c.Source, c.Level, string(c.Area),
		c.ComplainantName, c.Contact, c.Assignee, string(c.Status), c.ProcessingNotes,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

func (s *Store) GetComplaint(ctx context.Context, id string) (models.Complaint, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints c WHERE c.id = $1`, id)
	c, err := scanComplaint(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Complaint{}, apperrors.NewNotFoundError("complaint", id)
	}
	if err != nil {
		return models.Complaint{}, fmt.Errorf("get complaint: %w", err)
	}
	return c, nil
}

func (s *Store) ListComplaints(ctx context.Context, q query.ComplaintQuery) ([]models.Complaint, int, error) {
	where, args := complaintFilter(q)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints c`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}

	direction := "DESC"
	if q.OrderBy == query.OrderAsc {
		direction = "ASC"
	}
	args = append(args, q.PageSize, q.Offset())
	sql := fmt.Sprintf(`SELECT %s FROM complaints c%s ORDER BY c.created_at %s, c.id %s LIMIT $%d OFFSET $%d`,
		complaintColumns, where, direction, direction, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	list, err := collectComplaints(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *Store) UpdateComplaint(ctx context.Context, id string, mutate store.Mutation) (c models.Complaint, err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Complaint{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints c WHERE c.id = $1 FOR UPDATE`, id)
	c, err = scanComplaint(row)
	if errors.Is(err, pgx.ErrNoRows) {
		err = apperrors.NewNotFoundError("complaint", id)
		return models.Complaint{}, err
	}
	if err != nil {
		return models.Complaint{}, fmt.Errorf("lock complaint: %w", err)
	}

	entry, err := mutate(&c)
	if err != nil {
		return models.Complaint{}, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE complaints SET
			title = $2, content = $3, category = $4, source = $5, level = $6, area = $7,
			complainant_name = $8, contact = $9, assignee = $10, status = $11,
			processing_notes = $12, updated_at = $13
		WHERE id = $1
	`, c.ID, c.Title, c.Content, c.Category, c.Source, c.Level, string(c.Area),
		c.ComplainantName, c.Contact, c.Assignee, string(c.Status),
		c.ProcessingNotes, c.UpdatedAt); err != nil {
		return models.Complaint{}, fmt.Errorf("update complaint: %w", err)
	}

	if entry != nil {
		if _, err = tx.Exec(ctx, `
			INSERT INTO resolve_history (`+historyColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, entry.ID, entry.TicketNo, string(entry.Status), entry.Operator, entry.Description,
			entry.CreatedAt, entry.UpdatedAt); err != nil {
			return models.Complaint{}, fmt.Errorf("insert resolve history: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Complaint{}, err
	}
	return c, nil
}

func (s *Store) DeleteComplaints(ctx context.Context, ids []string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM complaints WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete complaints: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) ComplaintsCreatedBetween(ctx context.Context, from, to *time.Time) ([]models.Complaint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+complaintColumns+`
		FROM complaints c
		WHERE ($1::timestamptz IS NULL OR c.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR c.created_at <= $2)
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query complaints: %w", err)
	}
	defer rows.Close()
	return collectComplaints(rows)
}

func (s *Store) ListHistory(ctx context.Context, ticketNo string) ([]models.ResolveHistory, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+historyColumns+`
		FROM resolve_history
		WHERE ticket_no = $1
		ORDER BY created_at, id
	`, ticketNo)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()
	return collectHistory(rows)
}

func (s *Store) AllHistory(ctx context.Context) ([]models.ResolveHistory, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+historyColumns+` FROM resolve_history ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()
	return collectHistory(rows)
}

func (s *Store) CreateFeedback(ctx context.Context, f models.Feedback) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO complaint_feedback (`+feedbackColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, f.ID, f.SurveyCode, f.TicketNo, f.InvestigatorName, f.ContactInfo,
		f.ProcessingSpeed, f.StaffAttitude, f.ResolutionEffect, f.OtherSuggestions,
		f.Score, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *Store) ListFeedback(ctx context.Context, q query.FeedbackQuery) ([]models.Feedback, int, error) {
	var cond filter
	if q.DateRange != nil {
		cond.add("created_at >= ?", q.DateRange.Start)
		cond.add("created_at <= ?", q.DateRange.End)
	}
	if q.TicketNo != "" {
		cond.add("ticket_no = ?", q.TicketNo)
	}
	if q.SurveyCode != "" {
		cond.add("survey_code = ?", q.SurveyCode)
	}
	if q.Keyword != "" {
		cond.add("investigator_name ILIKE ?", likePattern(q.Keyword))
	}
	where, args := cond.where(), cond.args

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaint_feedback`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count feedback: %w", err)
	}

	args = append(args, q.PageSize, q.Offset())
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM complaint_feedback%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		feedbackColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	list := make([]models.Feedback, 0)
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.SurveyCode, &f.TicketNo, &f.InvestigatorName, &f.ContactInfo,
			&f.ProcessingSpeed, &f.StaffAttitude, &f.ResolutionEffect, &f.OtherSuggestions,
			&f.Score, &f.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan feedback: %w", err)
		}
		list = append(list, f)
	}
	return list, total, rows.Err()
}

func (s *Store) DeleteFeedback(ctx context.Context, ids []string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM complaint_feedback WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete feedback: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// filter accumulates WHERE conditions; "?" in a condition becomes the
// positional placeholder of its argument
type filter struct {
	conds []string
	args  []any
}

func (f *filter) add(cond string, arg any) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(f.args))))
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// complaintFilter renders q's filters as a WHERE clause with positional args
func complaintFilter(q query.ComplaintQuery) (string, []any) {
	var f filter
	if q.DateRange != nil {
		f.add("c.created_at >= ?", q.DateRange.Start)
		f.add("c.created_at <= ?", q.DateRange.End)
	}
	if q.Keyword != "" {
		f.add("(c.title ILIKE ? OR c.complainant_name ILIKE ?)", likePattern(q.Keyword))
	}
	if q.Status != "" {
		f.add("c.status = ?", string(q.Status))
	}
	if q.Category != "" {
		f.add("c.category = ?", q.Category)
	}
	if q.Level != "" {
		f.add("c.level = ?", q.Level)
	}
	if q.Area != "" {
		f.add("c.area = ?", string(q.Area))
	}
	return f.where(), f.args
}

// likePattern escapes LIKE metacharacters and wraps s for substring search
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func scanComplaint(row scanner) (models.Complaint, error) {
	var (
		c      models.Complaint
		area   string
		status string
	)
	err := row.Scan(&c.ID, &c.Title, &c.Content, &c.Category, &c.Source, &c.Level, &area,
		&c.ComplainantName, &c.Contact, &c.Assignee, &status, &c.ProcessingNotes,
		&c.Satisfaction, &c.CreatedAt, &c.UpdatedAt)
	c.Area = models.Area(area)
	c.Status = models.Status(status)
	return c, err
}

func collectComplaints(rows pgx.Rows) ([]models.Complaint, error) {
	list := make([]models.Complaint, 0)
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func collectHistory(rows pgx.Rows) ([]models.ResolveHistory, error) {
	list := make([]models.ResolveHistory, 0)
	for rows.Next() {
		var (
			h      models.ResolveHistory
			status string
		)
		if err := rows.Scan(&h.ID, &h.TicketNo, &status, &h.Operator, &h.Description,
			&h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		h.Status = models.Status(status)
		list = append(list, h)
	}
	return list, rows.Err()
}
