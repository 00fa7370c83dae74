package store

import (
	"context"
	"fmt"
)

// Run is one recorded solve.
type Run struct {
	// Seq is assigned by the store on insert.
	Seq int64 `json:"seq"`
	// ID is assigned by the store's IDGenerator.
	ID string `json:"id"`

	Scenario  string `json:"scenario"`
	InputCode string `json:"input_code"`
	Steps     int    `json:"steps"`
	Unsolved  int    `json:"unsolved"`
	Pass      bool   `json:"pass"`
}

// StepRecord is one derived value of a run.
type StepRecord struct {
	Ord      int     `json:"ord"`
	Slot     int     `json:"slot"`
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Equation int     `json:"equation"`
	Family   string  `json:"family"`
	Where    string  `json:"where"`
}

// RecordRun stores run and its steps in one transaction and returns the
// run with ID and Seq filled in. run.Steps is set to len(steps); Ord is
// taken from each step's position.
func (s *Store) RecordRun(ctx context.Context, run Run, steps []StepRecord) (Run, error) {
	run.ID = s.ids.Generate()
	run.Steps = len(steps)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, scenario, input_code, steps, unsolved, pass)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Scenario,
		run.InputCode,
		run.Steps,
		run.Unsolved,
		run.Pass,
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	if run.Seq, err = res.LastInsertId(); err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO steps (run_id, ord, slot, label, value, equation, family, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("record steps: %w", err)
	}
	defer stmt.Close()

	for i, st := range steps {
		_, err := stmt.ExecContext(ctx,
			run.ID,
			i,
			st.Slot,
			st.Label,
			st.Value,
			st.Equation,
			st.Family,
			st.Where,
		)
		if err != nil {
			return Run{}, fmt.Errorf("record step %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}
