package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/hms-api/internal/repository"
)

type txKey struct{}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// NewTransactor returns the unit of work shared by all repositories built
// from base.
func NewTransactor(base BaseRepository) repository.Transactor {
	return &base
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes fn within a transaction carried by ctx. A nested call
// joins the outer transaction.
func (r *BaseRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ext returns the transaction in ctx, or the pool.
func (r *BaseRepository) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return r.db
}

func (r *BaseRepository) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := sqlx.GetContext(ctx, r.ext(ctx), dest, query, args...); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *BaseRepository) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := sqlx.SelectContext(ctx, r.ext(ctx), dest, query, args...); err != nil {
		return mapError(err)
	}
	return nil
}

// exec runs a statement and reports ErrNotFound when no row was touched.
func (r *BaseRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.ext(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var uniqueFields = map[string]string{
	"users_email_key":                  "email",
	"patients_email_key":               "email",
	"prescriptions_appointment_id_key": "appointment_id",
	"billings_invoice_number_key":      "invoice_number",
	"doctors_user_id_key":              "user_id",
	"receptionists_user_id_key":        "user_id",
	"lab_staff_user_id_key":            "user_id",
}

// mapError translates driver errors into repository errors.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			field, ok := uniqueFields[pqErr.Constraint]
			if !ok {
				field = strings.TrimSuffix(pqErr.Constraint, "_key")
			}
			return &repository.DuplicateError{Field: field}
		case "23503":
			return fmt.Errorf("%w: %s", repository.ErrReferenced, pqErr.Constraint)
		}
	}
	return err
}

// conditions accumulates WHERE clauses with numbered placeholders.
type conditions struct {
	clauses []string
	args    []interface{}
}

// add appends a clause; each %d in clause is replaced by the placeholder
// index of arg.
func (c *conditions) add(clause string, arg interface{}) {
	c.args = append(c.args, arg)
	n := len(c.args)
	c.clauses = append(c.clauses, strings.ReplaceAll(clause, "%d", fmt.Sprint(n)))
}

func (c *conditions) raw(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the clause and args.
func (c *conditions) page(limit, offset int) (string, []interface{}) {
	args := append(append([]interface{}{}, c.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(c.args)+1, len(c.args)+2), args
}

func likePattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(s)) + "%"
}
