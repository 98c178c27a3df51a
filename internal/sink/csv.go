package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"retail-sales-analytics/internal/report"
)

const maxWorkers = 4

// CSVSink writes every report table to <dir>/<name>.csv.
type CSVSink struct {
	dir    string
	logger zerolog.Logger
}

func NewCSVSink(dir string, logger zerolog.Logger) *CSVSink {
	return &CSVSink{dir: dir, logger: logger.With().Str("component", "csv_sink").Logger()}
}

// Write exports the tables concurrently. Each file is written to a
// temporary name first and renamed into place, so a reader never sees a
// half-written report.
func (s *CSVSink) Write(ctx context.Context, tables []report.Table) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("sink: create output directory %s: %w", s.dir, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for _, table := range tables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := s.writeTable(table)
			if err != nil {
				return err
			}
			s.logger.Debug().Str("report", table.Name()).Str("path", path).Msg("report written")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info().Int("reports", len(tables)).Str("dir", s.dir).Msg("reports exported")
	return nil
}

// Path returns the file a table is written to.
func (s *CSVSink) Path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}

func (s *CSVSink) writeTable(table report.Table) (string, error) {
	path := s.Path(table.Name())
	tmp, err := os.CreateTemp(s.dir, "."+table.Name()+"-*.csv")
	if err != nil {
		return "", fmt.Errorf("sink: create temp file for %s: %w", table.Name(), err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(table.Header()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sink: write %s header: %w", table.Name(), err)
	}
	if err := w.WriteAll(table.Rows()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sink: write %s rows: %w", table.Name(), err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("sink: chmod %s: %w", table.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("sink: close %s: %w", table.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("sink: move %s into place: %w", table.Name(), err)
	}
	return path, nil
}
