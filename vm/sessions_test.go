package vm

import "testing"

func testProgram() *CompiledProgram {
	return &CompiledProgram{
		MainMethod:    "main",
		MethodOffsets: map[string]int{},
	}
}

func TestSessionStoreCreateGetDestroy(t *testing.T) {
	store := NewSessionStore()

	s := store.Create("demo", testProgram())
	if s.ID == "" {
		t.Fatal("empty session id")
	}
	if s.Simulator == nil {
		t.Fatal("no simulator attached")
	}

	got, ok := store.Get(s.ID)
	if !ok || got != s {
		t.Fatal("Get did not return the created session")
	}

	store.Destroy(s.ID)
	if _, ok := store.Get(s.ID); ok {
		t.Error("session survived Destroy")
	}
}

func TestSessionStoreList(t *testing.T) {
	store := NewSessionStore()
	a := store.Create("a", testProgram())
	b := store.Create("b", testProgram())

	if a.ID == b.ID {
		t.Fatal("duplicate session ids")
	}
	ids := store.List()
	if len(ids) != 2 {
		t.Errorf("list = %v, want 2 entries", ids)
	}
}
