// Package export dumps the submission tables to CSV and optionally purges
// them, so a term's data can be archived and the database reset.
package export

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rollcall/internal/platform/database"
)

// Tables are exported in this order and purged together.
var Tables = []string{"attendance", "flagged_pairings", "audit_events"}

// TableResult reports what happened to one table.
type TableResult struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
	File  string `json:"file,omitempty"`
}

// Report summarises one export run.
type Report struct {
	Tables []TableResult `json:"tables"`
	Purged bool          `json:"purged"`
}

type Exporter struct {
	db     *database.DB
	logger *slog.Logger
}

func New(db *database.DB, logger *slog.Logger) *Exporter {
	return &Exporter{db: db, logger: logger}
}

// Run writes <dir>/<table>.csv for every non-empty table and, when purge is
// set, deletes all rows of every table. Reads and deletes share one
// transaction, so a row is purged only if it was exported.
func (e *Exporter) Run(ctx context.Context, dir string, purge bool) (Report, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Report{}, fmt.Errorf("create export dir: %w", err)
	}

	var report Report
	err := e.db.RunInTx(ctx, func(ctx context.Context) error {
		if purge && e.db.Dialect == database.DialectPostgres {
			// Writers wait until the purge commits instead of slipping rows
			// in between the export and the delete.
			if _, err := e.db.Q(ctx).ExecContext(ctx,
				"LOCK TABLE "+strings.Join(Tables, ", ")+" IN SHARE ROW EXCLUSIVE MODE"); err != nil {
				return fmt.Errorf("lock tables: %w", err)
			}
		}

		report.Tables = report.Tables[:0]
		for _, table := range Tables {
			res, err := e.exportTable(ctx, dir, table)
			if err != nil {
				return err
			}
			report.Tables = append(report.Tables, res)
			if res.Rows == 0 {
				e.logger.InfoContext(ctx, "table is empty, nothing exported", "table", table)
			} else {
				e.logger.InfoContext(ctx, "table exported", "table", table, "rows", res.Rows, "file", res.File)
			}
		}

		if !purge {
			return nil
		}
		for _, table := range Tables {
			if _, err := e.db.Q(ctx).ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("purge %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}
	report.Purged = purge
	return report, nil
}

func (e *Exporter) exportTable(ctx context.Context, dir, table string) (TableResult, error) {
	rows, err := e.db.Q(ctx).QueryContext(ctx, "SELECT * FROM "+table)
	if err != nil {
		return TableResult{}, fmt.Errorf("read %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return TableResult{}, fmt.Errorf("columns of %s: %w", table, err)
	}

	path := filepath.Join(dir, table+".csv")
	var w *fileWriter
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	n := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return TableResult{}, fmt.Errorf("scan %s: %w", table, err)
		}
		if w == nil {
			if w, err = createFile(path); err != nil {
				return TableResult{}, err
			}
			defer w.abort()
			w.writeHeader(columns)
		}
		w.writeRow(values)
		n++
	}
	if err := rows.Err(); err != nil {
		return TableResult{}, fmt.Errorf("iterate %s: %w", table, err)
	}
	if w == nil {
		return TableResult{Table: table}, nil
	}
	if err := w.commit(); err != nil {
		return TableResult{}, err
	}
	return TableResult{Table: table, Rows: n, File: path}, nil
}

// fileWriter writes to a temp file renamed into place on commit.
type fileWriter struct {
	f    *os.File
	buf  *bufio.Writer
	path string
	done bool
}

func createFile(path string) (*fileWriter, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &fileWriter{f: f, buf: bufio.NewWriter(f), path: path}, nil
}

func (w *fileWriter) writeHeader(columns []string) {
	_, _ = w.buf.WriteString(strings.Join(columns, ","))
	_ = w.buf.WriteByte('\n')
}

// writeRow quotes every value, doubling embedded quotes.
func (w *fileWriter) writeRow(values []any) {
	for i, v := range values {
		if i > 0 {
			_ = w.buf.WriteByte(',')
		}
		_ = w.buf.WriteByte('"')
		_, _ = w.buf.WriteString(strings.ReplaceAll(format(v), `"`, `""`))
		_ = w.buf.WriteByte('"')
	}
	_ = w.buf.WriteByte('\n')
}

func (w *fileWriter) commit() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	if err := os.Rename(w.f.Name(), w.path); err != nil {
		return fmt.Errorf("rename %s: %w", w.path, err)
	}
	w.done = true
	return nil
}

func (w *fileWriter) abort() {
	if w.done {
		return
	}
	_ = w.f.Close()
	_ = os.Remove(w.f.Name())
}

func format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}
