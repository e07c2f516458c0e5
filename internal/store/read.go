package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kstlab/radex/internal/experiment"
	"github.com/kstlab/radex/internal/timeline"
)

// RunInfo is the catalog entry of a stored run.
type RunInfo struct {
	ID        string
	Name      string
	Source    string
	Cycle     timeline.Interval
	CreatedAt string
	Subcycles int
}

// ListRuns returns the stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.source, r.cycle_begin, r.cycle_end, r.created_at,
		       (SELECT COUNT(*) FROM subcycles sc WHERE sc.run_id = r.id)
		FROM runs r
		ORDER BY r.created_at DESC, r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var ri RunInfo
		if err := rows.Scan(&ri.ID, &ri.Name, &ri.Source,
			&ri.Cycle.Begin, &ri.Cycle.End, &ri.CreatedAt, &ri.Subcycles); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, ri)
	}
	return runs, rows.Err()
}

// LoadRun reads a stored run back into an experiment. The id may be
// abbreviated to a unique prefix.
func (s *Store) LoadRun(ctx context.Context, id string) (*experiment.Experiment, error) {
	full, err := s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	exp := &experiment.Experiment{}
	err = s.db.QueryRowContext(ctx, `
		SELECT name, source, cycle_begin, cycle_end FROM runs WHERE id = ?
	`, full).Scan(&exp.Name, &exp.Source, &exp.Cycle.Begin, &exp.Cycle.End)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}

	if err := s.loadSubcycles(ctx, full, exp); err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	return exp, nil
}

func (s *Store) resolveID(ctx context.Context, id string) (string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE id LIKE ? ORDER BY id`, id+"%")
	if err != nil {
		return "", fmt.Errorf("resolve run id %s: %w", id, err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return "", fmt.Errorf("resolve run id %s: %w", id, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no run with id %s", id)
	default:
		return "", fmt.Errorf("run id %s is ambiguous among %s", id, strings.Join(matches, ", "))
	}
}

func (s *Store) loadSubcycles(ctx context.Context, runID string, exp *experiment.Experiment) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, t_begin, t_end, baud FROM subcycles
		WHERE run_id = ? ORDER BY idx
	`, runID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		sc := experiment.Subcycle{
			Receive:     map[string][]timeline.Interval{},
			Settings:    map[string][]timeline.Interval{},
			Frequencies: map[int]timeline.EventList{},
		}
		if err := rows.Scan(&sc.Index, &sc.Window.Begin, &sc.Window.End, &sc.BaudLength); err != nil {
			return err
		}
		exp.Subcycles = append(exp.Subcycles, sc)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	byIndex := map[int]*experiment.Subcycle{}
	for i := range exp.Subcycles {
		byIndex[exp.Subcycles[i].Index] = &exp.Subcycles[i]
	}
	if err := s.loadIntervals(ctx, runID, byIndex); err != nil {
		return err
	}
	return s.loadEvents(ctx, runID, byIndex)
}

func (s *Store) loadIntervals(ctx context.Context, runID string, byIndex map[int]*experiment.Subcycle) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subcycle, stream, t_begin, t_end FROM intervals
		WHERE run_id = ? ORDER BY subcycle, stream, t_begin
	`, runID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var idx int
		var stream string
		var iv timeline.Interval
		if err := rows.Scan(&idx, &stream, &iv.Begin, &iv.End); err != nil {
			return err
		}
		sc, ok := byIndex[idx]
		if !ok {
			return fmt.Errorf("interval references unknown subcycle %d", idx)
		}
		switch {
		case stream == "RF":
			sc.Transmit = append(sc.Transmit, iv)
		case strings.HasPrefix(stream, "CH"):
			sc.Receive[stream] = append(sc.Receive[stream], iv)
		default:
			sc.Settings[stream] = append(sc.Settings[stream], iv)
		}
	}
	return rows.Err()
}

func (s *Store) loadEvents(ctx context.Context, runID string, byIndex map[int]*experiment.Subcycle) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subcycle, kind, channel, t, value FROM events
		WHERE run_id = ? ORDER BY subcycle, kind, channel, t
	`, runID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var idx, channel int
		var kind string
		var ev timeline.TimedEvent
		if err := rows.Scan(&idx, &kind, &channel, &ev.Time, &ev.Value); err != nil {
			return err
		}
		sc, ok := byIndex[idx]
		if !ok {
			return fmt.Errorf("event references unknown subcycle %d", idx)
		}
		switch kind {
		case "phase":
			sc.PhaseShifts = append(sc.PhaseShifts, ev)
		case "frequency":
			sc.Frequencies[channel] = append(sc.Frequencies[channel], ev)
		default:
			return fmt.Errorf("unknown event kind %q", kind)
		}
	}
	return rows.Err()
}

// DeleteRun removes a stored run and everything attached to it.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	full, err := s.resolveID(ctx, id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, full)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
