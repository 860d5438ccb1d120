package bound

import "testing"

var objectiveNames = []string{"revenue", "cost"}

func vec(a, b float64) Value {
	return FromSlice(objectiveNames, []float64{a, b})
}

func TestUpdateIsExactComponentwiseMinMax(t *testing.T) {
	b1 := Bound{L: vec(1, 5), U: vec(10, 20)}
	b2 := Bound{L: vec(2, 1), U: vec(8, 30)}

	got := b1.Update(b2)

	wantL := vec(1, 1)
	wantU := vec(10, 30)
	if got.L.At(0) != wantL.At(0) || got.L.At(1) != wantL.At(1) {
		t.Errorf("Update L = %v, want %v", got.L, wantL)
	}
	if got.U.At(0) != wantU.At(0) || got.U.At(1) != wantU.At(1) {
		t.Errorf("Update U = %v, want %v", got.U, wantU)
	}
}

func TestAddAssociativeAndCommutative(t *testing.T) {
	a := Bound{L: vec(1, 2), U: vec(3, 4)}
	b := Bound{L: vec(5, 6), U: vec(7, 8)}
	c := Bound{L: vec(9, 10), U: vec(11, 12)}

	left := a.Add(b).Add(c)
	right := a.Add(b.Add(c))
	for i := 0; i < 2; i++ {
		if left.L.At(i) != right.L.At(i) || left.U.At(i) != right.U.At(i) {
			t.Fatalf("Add not associative at objective %d: %v vs %v", i, left, right)
		}
	}

	ab := a.Add(b)
	ba := b.Add(a)
	for i := 0; i < 2; i++ {
		if ab.L.At(i) != ba.L.At(i) || ab.U.At(i) != ba.U.At(i) {
			t.Fatalf("Add not commutative at objective %d: %v vs %v", i, ab, ba)
		}
	}
}

func TestEmptyIsAdditiveIdentity(t *testing.T) {
	e := Empty(objectiveNames)
	a := Bound{L: vec(1, 2), U: vec(3, 4)}

	got := a.Add(e)
	if got.L.At(0) != a.L.At(0) || got.U.At(1) != a.U.At(1) {
		t.Errorf("Add(Empty) = %v, want %v", got, a)
	}
}

func TestFromIsDegenerate(t *testing.T) {
	v := vec(5, -3)
	b := From(v)
	if b.L.At(0) != b.U.At(0) || b.L.At(1) != b.U.At(1) {
		t.Errorf("From(v) should have L == U, got L=%v U=%v", b.L, b.U)
	}
}

func TestScale(t *testing.T) {
	b := Bound{L: vec(2, 4), U: vec(6, 8)}
	got := b.Scale(0.5)
	if got.L.At(0) != 1 || got.L.At(1) != 2 || got.U.At(0) != 3 || got.U.At(1) != 4 {
		t.Errorf("Scale(0.5) = %v", got)
	}
}

func TestWeightedTotal(t *testing.T) {
	v := vec(10, 4)
	total := v.WeightedTotal([]float64{1, -1})
	if total != 6 {
		t.Errorf("WeightedTotal = %v, want 6", total)
	}
}
