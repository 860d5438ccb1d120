package fset

import "testing"

func TestExplicitMatches(t *testing.T) {
	f := New[string]()
	f.AddExplicit(1, "a")

	if !f.Matches(1, "a") {
		t.Error("explicit member should match")
	}
	if f.Matches(1, "b") {
		t.Error("non-member without complement marker should not match")
	}
	if f.Matches(2, "a") {
		t.Error("member of a different agent should not match")
	}
}

func TestOtherMatches(t *testing.T) {
	f := New[string]()
	f.SetOther(1, []string{"b", "c"})

	if !f.Matches(1, "a") {
		t.Error("anything outside the complement set should match")
	}
	if f.Matches(1, "b") {
		t.Error("member of the complement set should not match")
	}
}

func TestExplicitTakesPrecedenceOverComplementExclusion(t *testing.T) {
	f := New[string]()
	f.AddExplicit(1, "b")
	f.SetOther(1, []string{"b"})

	if !f.Matches(1, "b") {
		t.Error("explicit membership should match even if also excluded by the complement set")
	}
}

func TestIsIrrelevantWhenEmpty(t *testing.T) {
	f := New[string]()
	if !f.IsIrrelevant(1) {
		t.Error("agent with no explicit members and no complement marker should be irrelevant")
	}
	f.SetOther(1, nil)
	if f.IsIrrelevant(1) {
		t.Error("agent with a complement marker (even empty exclusion) should not be irrelevant")
	}
}

func TestAgentsSortedAndDeduplicated(t *testing.T) {
	f := New[int]()
	f.AddExplicit(3, 10)
	f.AddExplicit(1, 11)
	f.SetOther(2, nil)
	f.AddExplicit(1, 12)

	got := f.Agents()
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Agents() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Agents() = %v, want %v", got, want)
		}
	}
}
