package vm

import (
	"path/filepath"
	"testing"
)

func TestTraceStoreRecordsSteps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	store, err := OpenTraceStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if err := store.BeginRun("Demo"); err != nil {
		t.Fatalf("begin run: %v", err)
	}

	state := NewVMState()
	state.Threads = []*ThreadState{{ID: 1, Name: "main", Status: StatusRunnable}}
	instr := Instr(OpLoadConst, 3, IntOperand(1))

	for i := 1; i <= 4; i++ {
		state.StepNumber = i
		result := &ExecutionResult{
			State:       state,
			Instruction: &instr,
			Description: "pushed constant 1",
		}
		if err := store.Record(state, result); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	n, err := store.StepCount()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 4 {
		t.Errorf("steps recorded = %d, want 4", n)
	}
}

func TestTraceStoreSeparatesRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	store, err := OpenTraceStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	state := NewVMState()
	result := &ExecutionResult{State: state, Description: "noop"}

	if err := store.BeginRun("A"); err != nil {
		t.Fatal(err)
	}
	state.StepNumber = 1
	if err := store.Record(state, result); err != nil {
		t.Fatal(err)
	}

	if err := store.BeginRun("B"); err != nil {
		t.Fatal(err)
	}
	n, err := store.StepCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("fresh run has %d steps, want 0", n)
	}
}
