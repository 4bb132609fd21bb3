package vm

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// ---------------------------------------------------------------------------
// TraceStore: sqlite-backed execution trace recorder
// ---------------------------------------------------------------------------

// TraceStore persists one row per executed step so a run can be inspected
// after the fact without replaying it.
type TraceStore struct {
	db    *sql.DB
	runID int64
}

// OpenTraceStore opens (or creates) a trace database at path.
func OpenTraceStore(path string) (*TraceStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		main_class  TEXT NOT NULL,
		created_at  TEXT NOT NULL DEFAULT (datetime('now'))
	);
	CREATE TABLE IF NOT EXISTS steps (
		run_id      INTEGER NOT NULL REFERENCES runs(id),
		step        INTEGER NOT NULL,
		pc          INTEGER NOT NULL,
		line        INTEGER NOT NULL,
		opcode      TEXT NOT NULL,
		thread      TEXT NOT NULL,
		description TEXT NOT NULL,
		PRIMARY KEY (run_id, step)
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: create schema: %w", err)
	}

	return &TraceStore{db: db}, nil
}

// BeginRun records a new run and makes it current.
func (t *TraceStore) BeginRun(mainClass string) error {
	res, err := t.db.Exec(`INSERT INTO runs (main_class) VALUES (?)`, mainClass)
	if err != nil {
		return fmt.Errorf("trace: begin run: %w", err)
	}
	t.runID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("trace: begin run: %w", err)
	}
	return nil
}

// Record persists one step's outcome against the current run.
func (t *TraceStore) Record(state *VMState, result *ExecutionResult) error {
	pc := 0
	line := 0
	opcode := ""
	if result.Instruction != nil {
		line = result.Instruction.Line
		opcode = result.Instruction.Op.Name()
	}
	thread := ""
	if active := state.Active(); active != nil {
		thread = active.Name
		if top := active.Top(); top != nil {
			pc = top.PC
		}
	}

	_, err := t.db.Exec(
		`INSERT OR REPLACE INTO steps (run_id, step, pc, line, opcode, thread, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.runID, state.StepNumber, pc, line, opcode, thread, result.Description,
	)
	if err != nil {
		return fmt.Errorf("trace: record step %d: %w", state.StepNumber, err)
	}
	return nil
}

// StepCount returns how many steps the current run has recorded.
func (t *TraceStore) StepCount() (int, error) {
	var n int
	err := t.db.QueryRow(`SELECT COUNT(*) FROM steps WHERE run_id = ?`, t.runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("trace: count steps: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (t *TraceStore) Close() error {
	return t.db.Close()
}
