package store

import (
	"context"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/overproofed/internal/testutil"
)

// createTestStore creates a new store in a temp dir with sequential ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDGenerator("run")))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSteps() []StepRecord {
	return []StepRecord{
		{Slot: 7, Label: "dough.flour.bakers", Value: 1.0, Equation: 0, Family: "fallback", Where: "dough.flour"},
		{Slot: 6, Label: "dough.flour.weight", Value: 0.388, Equation: 12, Family: "percent-of-flour", Where: "dough.total"},
		{Slot: 13, Label: "dough.nonflour.bakers", Value: math.Inf(1), Equation: 3, Family: "bakers-sum", Where: "dough.nonflour"},
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)

		var count int
		require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count))
		require.NoError(t, s.Close())
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	require.NotNil(t, db)
	assert.NoError(t, db.Ping())
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, s.verifyPragma(tt.name, tt.expected))
		})
	}
}

func TestSchema_ScenarioIndex(t *testing.T) {
	s := createTestStore(t)

	rows, err := s.db.Query("SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'runs'")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.True(t, slices.Contains(names, "idx_runs_scenario"), "indexes: %v", names)
}

func TestRecordRun_AssignsIDAndSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.RecordRun(ctx, Run{Scenario: "funny_pizza", InputCode: "AAAAAA", Pass: true}, sampleSteps())
	require.NoError(t, err)
	second, err := s.RecordRun(ctx, Run{Scenario: "funny_pizza", InputCode: "AAAAAA"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "run-0001", first.ID)
	assert.Equal(t, "run-0002", second.ID)
	assert.Less(t, first.Seq, second.Seq)
	assert.Equal(t, 3, first.Steps)
	assert.Equal(t, 0, second.Steps)
}

func TestRecordRun_DefaultIDsAreUUIDv7(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	run, err := s.RecordRun(context.Background(), Run{Scenario: "x", InputCode: "AAAAAA"}, nil)
	require.NoError(t, err)

	id, err := uuid.Parse(run.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestReadRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want, err := s.RecordRun(ctx, Run{Scenario: "simple_loaf", InputCode: "code", Unsolved: 2, Pass: true}, sampleSteps())
	require.NoError(t, err)

	got, err := s.ReadRun(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, sql.ErrNoRows)
}

func TestReadSteps_OrderAndValues(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run, err := s.RecordRun(ctx, Run{Scenario: "x", InputCode: "code"}, sampleSteps())
	require.NoError(t, err)

	got, err := s.ReadSteps(ctx, run.ID)
	require.NoError(t, err)

	want := sampleSteps()
	for i := range want {
		want[i].Ord = i
	}
	require.Len(t, got, len(want))
	assert.Equal(t, want[:2], got[:2])
	assert.True(t, math.IsInf(got[2].Value, 1))
	assert.Equal(t, "dough.nonflour.bakers", got[2].Label)
}

func TestReadSteps_Empty(t *testing.T) {
	s := createTestStore(t)

	steps, err := s.ReadSteps(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, steps)
	assert.Empty(t, steps)
}

func TestListRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "a", "a", "b"} {
		_, err := s.RecordRun(ctx, Run{Scenario: name, InputCode: "code"}, nil)
		require.NoError(t, err)
	}

	ids := func(runs []Run) []string {
		out := make([]string, len(runs))
		for i, r := range runs {
			out[i] = r.ID
		}
		return out
	}

	tests := []struct {
		name     string
		scenario string
		limit    int
		want     []string
	}{
		{"everything", "", 0, []string{"run-0001", "run-0002", "run-0003", "run-0004", "run-0005"}},
		{"last two", "", 2, []string{"run-0004", "run-0005"}},
		{"one scenario", "a", 0, []string{"run-0001", "run-0003", "run-0004"}},
		{"one scenario limited", "a", 1, []string{"run-0004"}},
		{"unknown scenario", "c", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := s.ListRuns(ctx, tt.scenario, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(runs))
		})
	}
}

func TestConstraint_StepsRequireRun(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO steps (run_id, ord, slot, label, value, equation, family, location)
		VALUES ('nope', 0, 0, 'x', 1.0, 0, 'fallback', 'dough.flour')
	`)
	assert.Error(t, err, "foreign key should reject a step without a run")
}
