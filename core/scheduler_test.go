package core

import "testing"

func idsOf(actions []Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.ID
	}
	return out
}

func indexOfID(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func TestTopologicalSortRespectsDependsOn(t *testing.T) {
	actions := []Action{
		{ID: "c", DependsOn: []string{"a", "b"}},
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
	}
	order, err := TopologicalSort(actions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := idsOf(order)
	if indexOfID(ids, "a") > indexOfID(ids, "b") {
		t.Fatalf("a must precede b, got %v", ids)
	}
	if indexOfID(ids, "b") > indexOfID(ids, "c") {
		t.Fatalf("b must precede c, got %v", ids)
	}
	if indexOfID(ids, "a") > indexOfID(ids, "c") {
		t.Fatalf("a must precede c, got %v", ids)
	}
}

func TestTopologicalSortIsDeterministic(t *testing.T) {
	actions := []Action{
		{ID: "x"},
		{ID: "y"},
		{ID: "z"},
	}
	first, err := TopologicalSort(actions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := TopologicalSort(actions)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if idsOf(again)[0] != idsOf(first)[0] || idsOf(again)[1] != idsOf(first)[1] || idsOf(again)[2] != idsOf(first)[2] {
			t.Fatalf("expected deterministic FIFO order, got %v then %v", idsOf(first), idsOf(again))
		}
	}
	if got := idsOf(first); got[0] != "x" || got[1] != "y" || got[2] != "z" {
		t.Fatalf("expected insertion order [x y z], got %v", got)
	}
}

func TestTopologicalSortDetectsCycle(t *testing.T) {
	actions := []Action{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"a"}},
	}
	_, err := TopologicalSort(actions)
	if err == nil {
		t.Fatal("expected a cycle error, got nil")
	}
	var coreErr *Error
	if !asError(err, &coreErr) || coreErr.Kind != KindConfig {
		t.Fatalf("expected a KindConfig error, got %v", err)
	}
}

func TestTopologicalSortRejectsUnknownDependency(t *testing.T) {
	actions := []Action{
		{ID: "a", DependsOn: []string{"ghost"}},
	}
	if _, err := TopologicalSort(actions); err == nil {
		t.Fatal("expected an error for an unknown dependency")
	}
}

// asError is a tiny errors.As shim kept local to the test so the test
// file has no extra non-testing imports.
func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
