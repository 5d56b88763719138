package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/abzsd/CareAgents/internal/logger"
)

// Record is one table row as a column-name-to-value mapping.
type Record = map[string]any

// Error variables
var (
	ErrConstraintViolation = errors.New("constraint violation")
	ErrTimeout             = errors.New("command timed out")
	ErrUnknownTable        = errors.New("table not in repository allow-list")
	ErrBadIdentifier       = errors.New("invalid column identifier")
)

// Tables the repository may target. SQL identifiers are joined into query
// text, so they come only from this code-defined list, never from requests.
var allowedTables = map[string]struct{}{
	"patients":        {},
	"doctors":         {},
	"appointments":    {},
	"medical_history": {},
	"users":           {},
	"health_vitals":   {},
}

// defaultCommandTimeout bounds a single statement when no explicit
// timeout is configured.
const defaultCommandTimeout = 60 * time.Second

// RecordRepository provides generic CRUD, filter, search and pagination
// over a single table. The id column name is supplied per call, so one
// repository can serve several identifying columns when needed.
type RecordRepository struct {
	db       *sqlx.DB
	table    string
	txGetter func(ctx context.Context) *sqlx.Tx
	timeout  time.Duration
}

// NewRecordRepository creates a repository for one allow-listed table.
// txGetter may be nil; when it yields a transaction, statements run on it.
func NewRecordRepository(db *sqlx.DB, table string, txGetter func(ctx context.Context) *sqlx.Tx) (*RecordRepository, error) {
	if _, ok := allowedTables[table]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return &RecordRepository{db: db, table: table, txGetter: txGetter, timeout: defaultCommandTimeout}, nil
}

// WithCommandTimeout overrides the per-statement timeout. Non-positive
// values are ignored. Returns the repository for chaining.
func (r *RecordRepository) WithCommandTimeout(d time.Duration) *RecordRepository {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// opCtx bounds one statement by the command timeout. A shorter caller
// deadline still wins. Exceeding the timeout surfaces as ErrTimeout
// through classify.
func (r *RecordRepository) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// Table returns the table this repository targets.
func (r *RecordRepository) Table() string { return r.table }

func (r *RecordRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Insert stores a single record, stamping created_at and updated_at, and
// returns the stored row. Unique and foreign-key conflicts surface as
// ErrConstraintViolation with the driver detail preserved.
func (r *RecordRepository) Insert(ctx context.Context, data Record) (Record, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	now := time.Now().UTC()
	row := make(Record, len(data)+2)
	for k, v := range data {
		row[k] = v
	}
	row["created_at"] = now
	row["updated_at"] = now

	columns := sortedColumns(row)
	placeholders := make([]string, len(columns))
	values := make([]any, len(columns))
	for i, col := range columns {
		if !validIdentifier(col) {
			return nil, fmt.Errorf("%w: %s", ErrBadIdentifier, col)
		}
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		values[i] = bindValue(row[col])
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		r.table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)

	stored := Record{}
	err := r.executor(ctx).QueryRowxContext(ctx, query, values...).MapScan(stored)

	logger.Log.Infow("insert",
		"query", strings.Join(strings.Fields(query), " "),
		"table", r.table,
		"error", err,
	)

	if err != nil {
		return nil, classify(err)
	}
	return stored, nil
}

// InsertMany stores records as one all-or-nothing transaction: if any row
// violates a constraint, no row is persisted. When a transaction is already
// present in the context it is used and left uncommitted for its owner.
func (r *RecordRepository) InsertMany(ctx context.Context, records []Record) ([]Record, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	if len(records) == 0 {
		return nil, nil
	}

	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return r.insertAll(ctx, tx, records)
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, classify(err)
	}
	stored, err := r.insertAll(ctx, tx, records)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, classify(err)
	}
	return stored, nil
}

func (r *RecordRepository) insertAll(ctx context.Context, tx *sqlx.Tx, records []Record) ([]Record, error) {
	now := time.Now().UTC()
	stored := make([]Record, 0, len(records))

	for _, data := range records {
		row := make(Record, len(data)+2)
		for k, v := range data {
			row[k] = v
		}
		row["created_at"] = now
		row["updated_at"] = now

		columns := sortedColumns(row)
		placeholders := make([]string, len(columns))
		values := make([]any, len(columns))
		for i, col := range columns {
			if !validIdentifier(col) {
				return nil, fmt.Errorf("%w: %s", ErrBadIdentifier, col)
			}
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			values[i] = bindValue(row[col])
		}

		query := fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
			r.table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
		)

		rec := Record{}
		if err := tx.QueryRowxContext(ctx, query, values...).MapScan(rec); err != nil {
			logger.Log.Errorw("insert many failed",
				"table", r.table,
				"error", err,
			)
			return nil, classify(err)
		}
		stored = append(stored, rec)
	}
	return stored, nil
}

// FindByID returns the record with the given id, or nil when no row
// matches. Soft-deleted rows are still returned here.
func (r *RecordRepository) FindByID(ctx context.Context, idField string, idValue any) (Record, error) {
	if !validIdentifier(idField) {
		return nil, fmt.Errorf("%w: %s", ErrBadIdentifier, idField)
	}
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1 LIMIT 1", r.table, idField)

	rec := Record{}
	err := r.executor(ctx).QueryRowxContext(ctx, query, idValue).MapScan(rec)

	logger.Log.Infow("find by id",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{idValue},
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return rec, nil
}

// FindAll returns records ordered newest created_at first. Pagination is
// an offset/limit window: pages can skip or repeat rows when rows are
// inserted or deleted between requests.
func (r *RecordRepository) FindAll(ctx context.Context, limit, offset int) ([]Record, error) {
	query := fmt.Sprintf(
		"SELECT * FROM %s ORDER BY created_at DESC LIMIT $1 OFFSET $2", r.table,
	)
	return r.selectRecords(ctx, query, limit, offset)
}

// FindByFilter returns records matching every filter with equality.
// Conjunctive only: no OR, no ranges, no ordering override.
func (r *RecordRepository) FindByFilter(ctx context.Context, filters Record, limit int) ([]Record, error) {
	if len(filters) == 0 {
		return r.FindAll(ctx, limit, 0)
	}

	columns := sortedColumns(filters)
	clauses := make([]string, len(columns))
	values := make([]any, 0, len(columns)+1)
	for i, col := range columns {
		if !validIdentifier(col) {
			return nil, fmt.Errorf("%w: %s", ErrBadIdentifier, col)
		}
		clauses[i] = fmt.Sprintf("%s = $%d", col, i+1)
		values = append(values, bindValue(filters[col]))
	}
	values = append(values, limit)

	query := fmt.Sprintf(
		"SELECT * FROM %s WHERE %s LIMIT $%d",
		r.table, strings.Join(clauses, " AND "), len(values),
	)
	return r.selectRecords(ctx, query, values...)
}

// Update applies a partial update built only from the supplied mapping and
// refreshes updated_at. Returns whether exactly one row was affected; a
// missing row yields false, not an error.
func (r *RecordRepository) Update(ctx context.Context, idField string, idValue any, data Record) (bool, error) {
	if len(data) == 0 {
		return false, nil
	}
	if !validIdentifier(idField) {
		return false, fmt.Errorf("%w: %s", ErrBadIdentifier, idField)
	}
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	row := make(Record, len(data)+1)
	for k, v := range data {
		row[k] = v
	}
	row["updated_at"] = time.Now().UTC()

	columns := sortedColumns(row)
	clauses := make([]string, len(columns))
	values := make([]any, 0, len(columns)+1)
	for i, col := range columns {
		if !validIdentifier(col) {
			return false, fmt.Errorf("%w: %s", ErrBadIdentifier, col)
		}
		clauses[i] = fmt.Sprintf("%s = $%d", col, i+1)
		values = append(values, bindValue(row[col]))
	}
	values = append(values, idValue)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d",
		r.table, strings.Join(clauses, ", "), idField, len(values),
	)

	res, err := r.executor(ctx).ExecContext(ctx, query, values...)
	var affected int64
	if res != nil {
		affected, _ = res.RowsAffected()
	}

	logger.Log.Infow("update",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{idValue},
		"rows_affected", affected,
		"error", err,
	)

	if err != nil {
		return false, classify(err)
	}
	return affected == 1, nil
}

// Delete removes the record physically.
func (r *RecordRepository) Delete(ctx context.Context, idField string, idValue any) (bool, error) {
	if !validIdentifier(idField) {
		return false, fmt.Errorf("%w: %s", ErrBadIdentifier, idField)
	}
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", r.table, idField)

	res, err := r.executor(ctx).ExecContext(ctx, query, idValue)
	var affected int64
	if res != nil {
		affected, _ = res.RowsAffected()
	}

	logger.Log.Infow("delete",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{idValue},
		"rows_affected", affected,
		"error", err,
	)

	if err != nil {
		return false, classify(err)
	}
	return affected == 1, nil
}

// SoftDelete marks the record inactive. The row stays physically present
// and FindByID still returns it; only filters on is_active hide it.
func (r *RecordRepository) SoftDelete(ctx context.Context, idField string, idValue any) (bool, error) {
	return r.Update(ctx, idField, idValue, Record{"is_active": false})
}

// Count returns how many records match the filters, with the same
// conjunctive equality semantics as FindByFilter.
func (r *RecordRepository) Count(ctx context.Context, filters Record) (int, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table)
	values := make([]any, 0, len(filters))

	if len(filters) > 0 {
		columns := sortedColumns(filters)
		clauses := make([]string, len(columns))
		for i, col := range columns {
			if !validIdentifier(col) {
				return 0, fmt.Errorf("%w: %s", ErrBadIdentifier, col)
			}
			clauses[i] = fmt.Sprintf("%s = $%d", col, i+1)
			values = append(values, bindValue(filters[col]))
		}
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	var count int
	err := sqlx.GetContext(ctx, r.executor(ctx), &count, query, values...)

	logger.Log.Infow("count",
		"query", strings.Join(strings.Fields(query), " "),
		"result", count,
		"error", err,
	)

	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

// Search matches the term as a case-insensitive substring across the
// given columns, combined with OR. Free-text lookup, not ranked search.
func (r *RecordRepository) Search(ctx context.Context, fields []string, term string, limit int) ([]Record, error) {
	if len(fields) == 0 || term == "" {
		return nil, nil
	}

	clauses := make([]string, len(fields))
	values := make([]any, 0, len(fields)+1)
	for i, field := range fields {
		if !validIdentifier(field) {
			return nil, fmt.Errorf("%w: %s", ErrBadIdentifier, field)
		}
		clauses[i] = fmt.Sprintf("LOWER(%s) LIKE $%d", field, i+1)
		values = append(values, "%"+strings.ToLower(term)+"%")
	}
	values = append(values, limit)

	query := fmt.Sprintf(
		"SELECT * FROM %s WHERE %s ORDER BY created_at DESC LIMIT $%d",
		r.table, strings.Join(clauses, " OR "), len(values),
	)
	return r.selectRecords(ctx, query, values...)
}

// Query runs a caller-supplied statement with positional parameters.
// Escape hatch for service-level enrichment and range queries; the query
// text comes from code, never from request input.
func (r *RecordRepository) Query(ctx context.Context, query string, args ...any) ([]Record, error) {
	return r.selectRecords(ctx, query, args...)
}

func (r *RecordRepository) selectRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	rows, err := r.executor(ctx).QueryxContext(ctx, query, args...)

	logger.Log.Infow("select",
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec := Record{}
		if err := rows.MapScan(rec); err != nil {
			return nil, classify(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return records, nil
}

// bindValue serializes maps, slices and structs to JSON text so the
// repository stays opaque to their structure. Scalars pass through.
func bindValue(v any) any {
	if v == nil {
		return nil
	}
	switch v.(type) {
	case []byte, time.Time, *time.Time:
		return v
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return v
		}
		return string(b)
	case reflect.Ptr:
		rv := reflect.ValueOf(v)
		if rv.IsNil() {
			return nil
		}
		return bindValue(rv.Elem().Interface())
	}
	return v
}

// classify maps driver errors onto the repository taxonomy, keeping the
// underlying detail in the message.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23503", "23502", "23514":
			return fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.Message)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return err
}

func sortedColumns(rec Record) []string {
	columns := make([]string, 0, len(rec))
	for col := range rec {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
