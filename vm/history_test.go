package vm

import "testing"

func TestHistoryPushPop(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 3; i++ {
		s := NewVMState()
		s.StepNumber = i
		h.Push(s)
	}
	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}
	if got := h.Pop().StepNumber; got != 2 {
		t.Errorf("popped step = %d, want 2", got)
	}
	if h.Len() != 2 {
		t.Errorf("len after pop = %d, want 2", h.Len())
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(2)
	for i := 0; i < 5; i++ {
		s := NewVMState()
		s.StepNumber = i
		h.Push(s)
	}
	if h.Len() != 2 {
		t.Fatalf("len = %d, want 2", h.Len())
	}
	if got := h.Pop().StepNumber; got != 4 {
		t.Errorf("top = %d, want 4", got)
	}
	if got := h.Pop().StepNumber; got != 3 {
		t.Errorf("next = %d, want 3", got)
	}
	if h.Pop() != nil {
		t.Error("expected nil after draining")
	}
}

func TestHistoryDefaultCapacity(t *testing.T) {
	h := NewHistory(0)
	if h.capacity != DefaultHistoryCapacity {
		t.Errorf("capacity = %d, want %d", h.capacity, DefaultHistoryCapacity)
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(4)
	h.Push(NewVMState())
	h.Clear()
	if h.Len() != 0 {
		t.Errorf("len after clear = %d", h.Len())
	}
}
