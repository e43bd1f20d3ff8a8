package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakePool implements dbpool and records every statement it receives.
type fakePool struct {
	queryRowFunc func(sql string, args []any) pgx.Row
	queryFunc    func(sql string, args []any) (pgx.Rows, error)
	execFunc     func(sql string, args []any) (pgconn.CommandTag, error)
	tx           *fakeTx

	gotSQL     []string
	gotArgs    [][]any
	beginCalls int
}

func (p *fakePool) Exec(_ context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	p.gotSQL = append(p.gotSQL, sql)
	p.gotArgs = append(p.gotArgs, arguments)
	if p.execFunc != nil {
		return p.execFunc(sql, arguments)
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (p *fakePool) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.gotSQL = append(p.gotSQL, sql)
	p.gotArgs = append(p.gotArgs, args)
	if p.queryFunc != nil {
		return p.queryFunc(sql, args)
	}
	return &fakeRows{}, nil
}

func (p *fakePool) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.gotSQL = append(p.gotSQL, sql)
	p.gotArgs = append(p.gotArgs, args)
	if p.queryRowFunc != nil {
		return p.queryRowFunc(sql, args)
	}
	return &fakeRow{}
}

func (p *fakePool) Begin(context.Context) (pgx.Tx, error) {
	p.beginCalls++
	if p.tx == nil {
		p.tx = &fakeTx{}
	}
	return p.tx, nil
}

func (p *fakePool) Ping(context.Context) error { return nil }

func (p *fakePool) Close() {}

// fakeRow holds one row of column values for Scan.
type fakeRow struct {
	values []any
	err    error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		if err := assignDest(d, r.values[i]); err != nil {
			return err
		}
	}
	return nil
}

// fakeRows implements pgx.Rows over an in-memory value grid.
type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.idx < len(r.rows) {
		r.idx++
		return true
	}
	return false
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(row))
	}
	for i, d := range dest {
		if err := assignDest(d, row[i]); err != nil {
			return err
		}
	}
	return nil
}

// fakeTx implements pgx.Tx for batch upsert tests. execErrAt (1-based) makes
// that Exec call fail.
type fakeTx struct {
	execErrAt int

	execCalls  int
	execSQL    []string
	execArgs   [][]any
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	t.execCalls++
	t.execSQL = append(t.execSQL, sql)
	t.execArgs = append(t.execArgs, arguments)
	if t.execErrAt != 0 && t.execCalls == t.execErrAt {
		return pgconn.CommandTag{}, errors.New("duplicate key value violates unique constraint")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (t *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not supported")
}

func (t *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *fakeTx) Conn() *pgx.Conn                                        { return nil }

func (t *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("not supported")
}

func (t *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (t *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row {
	return &fakeRow{err: errors.New("not supported")}
}

// assignDest covers the scan destination types the store uses. nil means a
// SQL NULL.
func assignDest(dest, val any) error {
	switch d := dest.(type) {
	case *bool:
		*d = val.(bool)
	case *string:
		*d = val.(string)
	case **string:
		if val == nil {
			*d = nil
		} else {
			s := val.(string)
			*d = &s
		}
	case *int64:
		switch v := val.(type) {
		case int:
			*d = int64(v)
		case int64:
			*d = v
		default:
			return fmt.Errorf("scan: %T into *int64", val)
		}
	case **int:
		if val == nil {
			*d = nil
		} else {
			v := val.(int)
			*d = &v
		}
	case *[]string:
		if val == nil {
			*d = nil
		} else {
			*d = val.([]string)
		}
	case *float64:
		*d = val.(float64)
	case *time.Time:
		*d = val.(time.Time)
	case **time.Time:
		if val == nil {
			*d = nil
		} else {
			v := val.(time.Time)
			*d = &v
		}
	default:
		return fmt.Errorf("scan: unsupported destination %T", dest)
	}
	return nil
}
