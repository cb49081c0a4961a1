package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"jiceot/internal/core"
	"jiceot/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements records.Store on a single SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func storageLogger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentStorage)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const typeColumns = `id, kind, name, icon, color, cycle_months, anchor_day,
	fixed_amount_cents, stopped, start_year, start_month`

type scanner interface {
	Scan(dest ...any) error
}

func scanType(s scanner) (core.ObligationType, error) {
	var (
		t       core.ObligationType
		kind    string
		fixed   sql.NullInt64
		stopped int64
	)
	err := s.Scan(&t.ID, &kind, &t.Name, &t.Icon, &t.Color, &t.CycleMonths, &t.AnchorDay,
		&fixed, &stopped, &t.StartPeriod.Year, &t.StartPeriod.Month)
	if err != nil {
		return core.ObligationType{}, err
	}
	t.Kind = core.Kind(kind)
	t.Stopped = stopped != 0
	if fixed.Valid {
		t.FixedAmount = &core.Money{Cents: fixed.Int64}
	}
	return t, nil
}

// ListObligationTypes implements records.TypeLister
func (r *SQLiteRepository) ListObligationTypes(ctx context.Context, kind core.Kind, includeStopped bool) ([]core.ObligationType, error) {
	q := `SELECT ` + typeColumns + ` FROM obligation_types WHERE kind = ?`
	if !includeStopped {
		q += ` AND stopped = 0`
	}
	q += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, q, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list obligation types: %w", err)
	}
	defer rows.Close()

	var out []core.ObligationType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan obligation type: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate obligation types: %w", err)
	}
	return out, nil
}

// GetObligationType implements records.TypeReader
func (r *SQLiteRepository) GetObligationType(ctx context.Context, id int64) (core.ObligationType, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+typeColumns+` FROM obligation_types WHERE id = ?`, id)
	t, err := scanType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ObligationType{}, fmt.Errorf("obligation type %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.ObligationType{}, fmt.Errorf("get obligation type by id: %w", err)
	}
	return t, nil
}

// CreateObligationType implements records.TypeWriter
func (r *SQLiteRepository) CreateObligationType(ctx context.Context, t core.ObligationType) (core.ObligationType, error) {
	if err := t.Validate(); err != nil {
		return core.ObligationType{}, err
	}
	var fixed sql.NullInt64
	if t.FixedAmount != nil {
		fixed = sql.NullInt64{Int64: t.FixedAmount.Cents, Valid: true}
	}
	stopped := 0
	if t.Stopped {
		stopped = 1
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO obligation_types
		(kind, name, icon, color, cycle_months, anchor_day, fixed_amount_cents, stopped, start_year, start_month)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(t.Kind), t.Name, t.Icon, t.Color, t.CycleMonths, t.AnchorDay, fixed, stopped,
		t.StartPeriod.Year, t.StartPeriod.Month)
	if err != nil {
		return core.ObligationType{}, fmt.Errorf("create obligation type: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.ObligationType{}, fmt.Errorf("read obligation type id: %w", err)
	}
	t.ID = id

	storageLogger(ctx).InfoContext(ctx, "Obligation type saved to SQLite",
		log.FieldTypeID, t.ID,
		log.FieldKind, t.Kind,
		log.FieldTypeName, t.Name,
		"cycle_months", t.CycleMonths,
		"anchor_day", t.AnchorDay)

	return t, nil
}

const completionColumns = `id, type_id, kind, year, month, amount_cents, note`

func scanCompletion(s scanner) (core.CompletionRecord, error) {
	var (
		c    core.CompletionRecord
		kind string
	)
	if err := s.Scan(&c.ID, &c.TypeID, &kind, &c.Period.Year, &c.Period.Month, &c.Amount.Cents, &c.Note); err != nil {
		return core.CompletionRecord{}, err
	}
	c.Kind = core.Kind(kind)
	return c, nil
}

func (r *SQLiteRepository) queryCompletions(ctx context.Context, q string, args ...any) ([]core.CompletionRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.CompletionRecord
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListCompletionsForPeriod implements records.CompletionLister
func (r *SQLiteRepository) ListCompletionsForPeriod(ctx context.Context, typeID int64, p core.Period) ([]core.CompletionRecord, error) {
	out, err := r.queryCompletions(ctx,
		`SELECT `+completionColumns+` FROM completions
		WHERE type_id = ? AND year = ? AND month = ? ORDER BY id`,
		typeID, p.Year, p.Month)
	if err != nil {
		return nil, fmt.Errorf("list completions for %s: %w", p, err)
	}
	return out, nil
}

// ListCompletions implements records.CompletionLister
func (r *SQLiteRepository) ListCompletions(ctx context.Context, kind core.Kind, from, to core.Period) ([]core.CompletionRecord, error) {
	out, err := r.queryCompletions(ctx,
		`SELECT `+completionColumns+` FROM completions
		WHERE kind = ? AND (year * 12 + month - 1) BETWEEN ? AND ? ORDER BY id`,
		string(kind), from.Index(), to.Index())
	if err != nil {
		return nil, fmt.Errorf("list completions %s..%s: %w", from, to, err)
	}
	return out, nil
}

// CreateCompletion implements records.CompletionWriter. The record takes the
// kind of its obligation type.
func (r *SQLiteRepository) CreateCompletion(ctx context.Context, c core.CompletionRecord) (core.CompletionRecord, error) {
	if err := c.Validate(); err != nil {
		return core.CompletionRecord{}, err
	}
	t, err := r.GetObligationType(ctx, c.TypeID)
	if err != nil {
		return core.CompletionRecord{}, err
	}
	c.Kind = t.Kind

	res, err := r.db.ExecContext(ctx, `INSERT INTO completions
		(type_id, kind, year, month, amount_cents, note) VALUES (?, ?, ?, ?, ?, ?)`,
		c.TypeID, string(c.Kind), c.Period.Year, c.Period.Month, c.Amount.Cents, c.Note)
	if err != nil {
		return core.CompletionRecord{}, fmt.Errorf("create completion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.CompletionRecord{}, fmt.Errorf("read completion id: %w", err)
	}
	c.ID = id

	storageLogger(ctx).InfoContext(ctx, "Completion saved to SQLite",
		"id", c.ID,
		log.FieldTypeID, c.TypeID,
		log.FieldKind, c.Kind,
		log.FieldPeriod, c.Period.String(),
		log.FieldAmountCents, c.Amount.Cents)

	return c, nil
}
