// Package store provides a SQLite-backed history of projection runs.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/snowball/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrRunNotFound is returned when no stored run matches an ID.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousID is returned when an ID prefix matches more than one run.
	ErrAmbiguousID = errors.New("ambiguous run id")
	// ErrNonFinite is returned by SaveRun for results holding NaN or Inf.
	ErrNonFinite = errors.New("run has non-finite values")
)

// Store provides SQLite-backed run history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Run is one stored projection. Money columns are kept as decimal text
// rounded to cents.
type Run struct {
	ID            uuid.UUID
	CreatedAt     time.Time
	Mode          model.Mode
	Params        model.Params
	Months        int
	ReachedTarget bool
	FinalBalance  decimal.Decimal
	Contributed   decimal.Decimal
	Income        decimal.Decimal
	Benchmark     decimal.Decimal
	Difference    decimal.Decimal

	// Series is only populated by LoadRun.
	Series model.Series
}

// Result rebuilds a projection result from the stored run.
func (r Run) Result() model.Result {
	return model.Result{
		Mode:   r.Mode,
		Params: r.Params,
		Final: model.State{
			Balance:     r.FinalBalance.InexactFloat64(),
			Contributed: r.Contributed.InexactFloat64(),
			Income:      r.Income.InexactFloat64(),
		},
		Months:        r.Months,
		Series:        r.Series,
		ReachedTarget: r.ReachedTarget,
		Benchmark:     r.Benchmark.InexactFloat64(),
		Difference:    r.Difference.InexactFloat64(),
	}
}

// Dir returns the XDG-compliant cache directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "snowball")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "snowball")
}

// Path returns the full path to the history database.
func Path() string {
	return filepath.Join(Dir(), "history.db")
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the history database.
func (s *Store) Close() error {
	return s.db.Close()
}

// money renders v as decimal text rounded to cents. Callers check finiteness
// first since decimal cannot hold NaN or Inf.
func money(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

// SaveRun stores a result and its samples, returning the new run's ID.
// Results with NaN or Inf anywhere are rejected with ErrNonFinite.
func (s *Store) SaveRun(res model.Result) (uuid.UUID, error) {
	if !res.Finite() {
		return uuid.Nil, fmt.Errorf("%w: balance %v, income %v", ErrNonFinite, res.Final.Balance, res.Final.Income)
	}
	id := uuid.New()

	params, err := json.Marshal(res.Params)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encoding params: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return uuid.Nil, err
	}
	defer func() { _ = tx.Rollback() }()

	reached := 0
	if res.ReachedTarget {
		reached = 1
	}

	_, err = tx.Exec(`INSERT INTO runs
		(id, created_at, mode, params, months, reached_target,
		 final_balance, contributed, income, benchmark, difference)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), s.now().UTC().Format(time.RFC3339Nano), string(res.Mode), string(params),
		res.Months, reached,
		money(res.Final.Balance), money(res.Final.Contributed), money(res.Final.Income),
		money(res.Benchmark), money(res.Difference),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting run: %w", err)
	}

	for i := 0; i < res.Series.Len(); i++ {
		smp := res.Series.At(i)
		_, err = tx.Exec(`INSERT INTO run_samples
			(run_id, idx, month, contributed, yield, income)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id.String(), i, smp.Month, smp.Contributed, smp.Yield, smp.Income,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("inserting sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

const runColumns = `id, created_at, mode, params, months, reached_target,
	final_balance, contributed, income, benchmark, difference`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		r                                             Run
		id, created, mode, params                     string
		reached                                       int
		balance, contributed, income, bench, diffText string
	)
	if err := row.Scan(&id, &created, &mode, &params, &r.Months, &reached,
		&balance, &contributed, &income, &bench, &diffText); err != nil {
		return Run{}, err
	}

	var err error
	if r.ID, err = uuid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("parsing run id %q: %w", id, err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	r.Mode = model.Mode(mode)
	r.ReachedTarget = reached != 0
	if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
		return Run{}, fmt.Errorf("decoding params for %s: %w", id, err)
	}

	for _, f := range []struct {
		text string
		dst  *decimal.Decimal
	}{
		{balance, &r.FinalBalance},
		{contributed, &r.Contributed},
		{income, &r.Income},
		{bench, &r.Benchmark},
		{diffText, &r.Difference},
	} {
		if *f.dst, err = decimal.NewFromString(f.text); err != nil {
			return Run{}, fmt.Errorf("decoding amount %q: %w", f.text, err)
		}
	}
	return r, nil
}

// ListRuns returns stored runs, newest first. A non-positive limit returns all.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY created_at DESC, rowid DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadRun reads one run with its samples.
func (s *Store) LoadRun(id uuid.UUID) (Run, error) {
	r, err := scanRun(s.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}

	rows, err := s.db.Query(`SELECT month, contributed, yield, income
		FROM run_samples WHERE run_id = ? ORDER BY idx`, id.String())
	if err != nil {
		return Run{}, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var smp model.Sample
		if err := rows.Scan(&smp.Month, &smp.Contributed, &smp.Yield, &smp.Income); err != nil {
			return Run{}, err
		}
		r.Series.Append(smp)
	}
	return r, rows.Err()
}

// ResolveID finds the run whose ID starts with prefix.
func (s *Store) ResolveID(prefix string) (uuid.UUID, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return uuid.Nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	if id, err := uuid.Parse(prefix); err == nil {
		return id, nil
	}

	rows, err := s.db.Query("SELECT id FROM runs WHERE id LIKE ? LIMIT 2", prefix+"%")
	if err != nil {
		return uuid.Nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return uuid.Nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return uuid.Nil, err
	}

	switch len(ids) {
	case 0:
		return uuid.Nil, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return uuid.Parse(ids[0])
	default:
		return uuid.Nil, fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

// DeleteRun removes a run and its samples.
func (s *Store) DeleteRun(id uuid.UUID) error {
	res, err := s.db.Exec("DELETE FROM runs WHERE id = ?", id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// RunCount returns the number of stored runs.
func (s *Store) RunCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}
