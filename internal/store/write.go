package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kstlab/radex/internal/experiment"
	"github.com/kstlab/radex/internal/timeline"
)

// SaveRun stores a reconstructed experiment as a new run and returns the
// run id. The whole run is written in one transaction.
func (s *Store) SaveRun(ctx context.Context, exp *experiment.Experiment) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, name, source, cycle_begin, cycle_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, exp.Name, exp.Source, exp.Cycle.Begin, exp.Cycle.End,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	for _, sc := range exp.Subcycles {
		if err := saveSubcycle(ctx, tx, id, sc); err != nil {
			return "", fmt.Errorf("save run %s subcycle %d: %w", exp.Name, sc.Index, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return id, nil
}

type txLike interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveSubcycle(ctx context.Context, tx txLike, runID string, sc experiment.Subcycle) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO subcycles (run_id, idx, t_begin, t_end, baud)
		VALUES (?, ?, ?, ?, ?)
	`, runID, sc.Index, sc.Window.Begin, sc.Window.End, sc.BaudLength)
	if err != nil {
		return err
	}

	if err := saveIntervals(ctx, tx, runID, sc.Index, "RF", sc.Transmit); err != nil {
		return err
	}
	for _, name := range sortedKeys(sc.Receive) {
		if err := saveIntervals(ctx, tx, runID, sc.Index, name, sc.Receive[name]); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(sc.Settings) {
		if err := saveIntervals(ctx, tx, runID, sc.Index, name, sc.Settings[name]); err != nil {
			return err
		}
	}

	for _, ev := range sc.PhaseShifts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (run_id, subcycle, kind, channel, t, value)
			VALUES (?, ?, 'phase', 0, ?, ?)
		`, runID, sc.Index, ev.Time, ev.Value)
		if err != nil {
			return err
		}
	}
	chs := make([]int, 0, len(sc.Frequencies))
	for ch := range sc.Frequencies {
		chs = append(chs, ch)
	}
	sort.Ints(chs)
	for _, ch := range chs {
		for _, ev := range sc.Frequencies[ch] {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO events (run_id, subcycle, kind, channel, t, value)
				VALUES (?, ?, 'frequency', ?, ?, ?)
			`, runID, sc.Index, ch, ev.Time, ev.Value)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func saveIntervals(ctx context.Context, tx txLike, runID string, subcycle int, stream string, ivs []timeline.Interval) error {
	for _, iv := range ivs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO intervals (run_id, subcycle, stream, t_begin, t_end)
			VALUES (?, ?, ?, ?, ?)
		`, runID, subcycle, stream, iv.Begin, iv.End)
		if err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string][]timeline.Interval) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
