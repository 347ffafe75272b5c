package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"jobfinder/internal/database"
)

// recordingDB captures every statement and serves canned rows.
type recordingDB struct {
	execs     []string
	execArgs  [][]any
	failOn    string
	failAfter int

	rows   [][]any
	row    []any
	rowErr error

	tx *recordingTx
}

func (d *recordingDB) Ping(context.Context) error { return nil }
func (d *recordingDB) Close() error               { return nil }

func (d *recordingDB) Exec(_ context.Context, q string, args ...any) (int64, error) {
	return d.record(q, args)
}

func (d *recordingDB) record(q string, args []any) (int64, error) {
	d.execs = append(d.execs, q)
	d.execArgs = append(d.execArgs, args)
	if d.failOn != "" && strings.Contains(q, d.failOn) {
		if d.failAfter <= 0 {
			return 0, errors.New("exec failed")
		}
		d.failAfter--
	}
	return 1, nil
}

func (d *recordingDB) Query(_ context.Context, q string, args ...any) (database.Rows, error) {
	d.execs = append(d.execs, q)
	d.execArgs = append(d.execArgs, args)
	return &fakeRows{data: d.rows, i: -1}, nil
}

func (d *recordingDB) QueryRow(_ context.Context, q string, args ...any) database.Row {
	d.execs = append(d.execs, q)
	d.execArgs = append(d.execArgs, args)
	return fakeRow{vals: d.row, err: d.rowErr}
}

func (d *recordingDB) Begin(context.Context) (database.Tx, error) {
	d.tx = &recordingTx{db: d}
	return d.tx, nil
}

type recordingTx struct {
	db         *recordingDB
	committed  bool
	rolledBack bool
}

func (t *recordingTx) Exec(_ context.Context, q string, args ...any) (int64, error) {
	return t.db.record(q, args)
}
func (t *recordingTx) Query(ctx context.Context, q string, args ...any) (database.Rows, error) {
	return t.db.Query(ctx, q, args...)
}
func (t *recordingTx) QueryRow(ctx context.Context, q string, args ...any) database.Row {
	return t.db.QueryRow(ctx, q, args...)
}
func (t *recordingTx) Commit(context.Context) error {
	t.committed = true
	return nil
}
func (t *recordingTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeRows struct {
	data [][]any
	i    int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Next() bool {
	r.i++
	return r.i < len(r.data)
}
func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.data[r.i], dest)
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.vals, dest)
}

func assign(vals []any, dest []any) error {
	if len(vals) != len(dest) {
		return fmt.Errorf("scan: %d values for %d targets", len(vals), len(dest))
	}
	for i, v := range vals {
		dv := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		dv.Set(reflect.ValueOf(v))
	}
	return nil
}
