package vm

// ---------------------------------------------------------------------------
// Simulator: the engine facade consumed by external collaborators
// ---------------------------------------------------------------------------

// DefaultMaxSteps caps run-to-completion to stop runaway loops.
const DefaultMaxSteps = 50000

// ExecutionResult is what every engine operation hands outward. State is a
// deep clone; Description is human-readable and used verbatim by the UI.
type ExecutionResult struct {
	State       *VMState
	Instruction *Instruction
	Description string
}

// Simulator drives an interpreter and exposes the stepping surface.
type Simulator struct {
	program   *CompiledProgram
	interp    *Interpreter
	isRunning bool
	maxSteps  int
}

// NewSimulator loads the program: classes are registered, static fields
// seeded, and the main thread created, paused before its first step.
func NewSimulator(program *CompiledProgram) *Simulator {
	return &Simulator{
		program:  program,
		interp:   NewInterpreter(program),
		maxSteps: DefaultMaxSteps,
	}
}

// SetMaxSteps overrides the run safety cap.
func (s *Simulator) SetMaxSteps(n int) {
	if n > 0 {
		s.maxSteps = n
	}
}

// SetHistoryCapacity resizes the snapshot ring for subsequent steps.
func (s *Simulator) SetHistoryCapacity(n int) {
	s.interp.History = NewHistory(n)
}

// Interpreter exposes the underlying interpreter for inspection tooling.
func (s *Simulator) Interpreter() *Interpreter {
	return s.interp
}

// Step advances one instruction. It never fails: uncaught JVM exceptions
// surface as Status == VMError with State.Error set.
func (s *Simulator) Step() *ExecutionResult {
	out := s.interp.Step()
	return &ExecutionResult{
		State:       s.interp.State.Clone(),
		Instruction: out.Instruction,
		Description: out.Description,
	}
}

// StepBack pops one history entry and installs it as the current state.
func (s *Simulator) StepBack() *ExecutionResult {
	if prev := s.interp.History.Pop(); prev != nil {
		s.interp.State = prev
	}
	return &ExecutionResult{
		State:       s.interp.State.Clone(),
		Description: "stepped back",
	}
}

// Reset reinitialises execution and clears history.
func (s *Simulator) Reset() {
	s.interp = NewInterpreter(s.program)
	s.isRunning = false
}

// Run drives Step until completion, error, pause, or the safety cap.
func (s *Simulator) Run() *ExecutionResult {
	s.isRunning = true
	var last *ExecutionResult
	for i := 0; i < s.maxSteps && s.isRunning && s.CanStepForward(); i++ {
		last = s.Step()
	}
	s.isRunning = false
	if last == nil {
		last = &ExecutionResult{State: s.GetState(), Description: "nothing to run"}
	}
	return last
}

// Pause clears the running flag; an in-flight Run stops at the next step
// boundary.
func (s *Simulator) Pause() {
	s.isRunning = false
}

// IsRunning reports whether a Run loop is active.
func (s *Simulator) IsRunning() bool {
	return s.isRunning
}

// CanStepForward reports whether another step can make progress.
func (s *Simulator) CanStepForward() bool {
	status := s.interp.State.Status
	return status != VMCompleted && status != VMError
}

// CanStepBack reports whether history holds a snapshot to restore.
func (s *Simulator) CanStepBack() bool {
	return s.interp.History.Len() > 0
}

// GetState returns a deep clone of the current machine state.
func (s *Simulator) GetState() *VMState {
	return s.interp.State.Clone()
}

// Output returns the program's output lines so far.
func (s *Simulator) Output() []string {
	out := make([]string, len(s.interp.State.Output))
	copy(out, s.interp.State.Output)
	return out
}
