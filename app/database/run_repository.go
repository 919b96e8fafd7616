package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var ErrRunNotFound = errors.New("run not found")

var _ RunRepository = (*SQLRunRepository)(nil)

var summaryColumns = []string{"id", "run_date", "collected", "filtered", "kept", "cost", "created_at"}

type SQLRunRepository struct {
	db  *DB
	qb  sq.StatementBuilderType
	now func() time.Time
}

func NewRunRepository(db *DB) *SQLRunRepository {
	return &SQLRunRepository{
		db:  db,
		qb:  sq.StatementBuilder.PlaceholderFormat(sq.Question),
		now: time.Now,
	}
}

// SaveRun inserts run or replaces the counters and digest of the run with
// the same date. The stored row is returned.
func (r *SQLRunRepository) SaveRun(run Run) (*Run, error) {
	if run.Date == "" {
		return nil, fmt.Errorf("run date is required")
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = r.now().UTC().Unix()
	}

	query, args, err := r.qb.
		Insert("runs").
		Columns("id", "run_date", "collected", "filtered", "kept", "cost", "digest", "created_at").
		Values(run.ID, run.Date, run.Collected, run.Filtered, run.Kept, run.Cost, run.Digest, run.CreatedAt).
		Suffix(`ON CONFLICT(run_date) DO UPDATE SET
			collected = excluded.collected,
			filtered = excluded.filtered,
			kept = excluded.kept,
			cost = excluded.cost,
			digest = excluded.digest,
			created_at = excluded.created_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build upsert query: %w", err)
	}

	if _, err := r.db.Exec(query, args...); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	return r.GetRun(run.Date)
}

func (r *SQLRunRepository) GetRun(date string) (*Run, error) {
	query, args, err := r.qb.
		Select(append(summaryColumns, "digest")...).
		From("runs").
		Where(sq.Eq{"run_date": date}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var run Run
	if err := r.db.Get(&run, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, date)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &run, nil
}

// ListRuns returns run summaries, newest date first. Digest bodies are not
// loaded.
func (r *SQLRunRepository) ListRuns(limit int) ([]Run, error) {
	builder := r.qb.
		Select(summaryColumns...).
		From("runs").
		OrderBy("run_date DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	runs := []Run{}
	if err := r.db.Select(&runs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

func (r *SQLRunRepository) GetRunCount() (int, error) {
	query, args, err := r.qb.Select("COUNT(*)").From("runs").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.db.Get(&count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to get run count: %w", err)
	}
	return count, nil
}
