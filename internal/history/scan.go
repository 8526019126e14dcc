package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run        Run
		status     string
		startedRaw string
		finished   string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.RequestID,
		&run.Codec,
		&run.Passes,
		&run.InputExt,
		&run.Filter,
		&run.SourceWidth,
		&run.SourceHeight,
		&run.Width,
		&run.Height,
		&run.Quality,
		&run.OutputBytes,
		&status,
		&run.ErrorKind,
		&run.ErrorMessage,
		&startedRaw,
		&finished,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Status = Status(status)

	var err error
	if run.StartedAt, err = parseTimeString(startedRaw); err != nil {
		return Run{}, fmt.Errorf("parse started_at %q: %w", startedRaw, err)
	}
	if run.FinishedAt, err = parseTimeString(finished); err != nil {
		return Run{}, fmt.Errorf("parse finished_at %q: %w", finished, err)
	}
	return run, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
