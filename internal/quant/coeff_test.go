package quant

import (
	"math/cmplx"
	"testing"
)

func TestSampledLinear(t *testing.T) {
	c, err := NewSampled(
		[]float64{0, 1, 2},
		[]complex128{0, 2, 0},
		InterpLinear,
	)
	if err != nil {
		t.Fatalf("new sampled failed: %v", err)
	}

	cases := []struct {
		t    float64
		want complex128
	}{
		{-1, 0}, // clamp low
		{0, 0},
		{0.5, 1},
		{1, 2},
		{1.25, 1.5},
		{2, 0},
		{3, 0}, // clamp high
	}
	for _, tc := range cases {
		if got := c.Eval(tc.t); cmplx.Abs(got-tc.want) > 1e-12 {
			t.Errorf("Eval(%v) = %v, want %v", tc.t, got, tc.want)
		}
	}
}

func TestSampledPrevious(t *testing.T) {
	c, err := NewSampled(
		[]float64{0, 1, 2},
		[]complex128{1, 5, 9},
		InterpPrevious,
	)
	if err != nil {
		t.Fatalf("new sampled failed: %v", err)
	}
	if got := c.Eval(0.9); got != 1 {
		t.Errorf("Eval(0.9) = %v, want 1", got)
	}
	if got := c.Eval(1.0); got != 5 {
		t.Errorf("Eval(1.0) = %v, want 5", got)
	}
	if got := c.Eval(1.1); got != 5 {
		t.Errorf("Eval(1.1) = %v, want 5", got)
	}
}

func TestSampledValidation(t *testing.T) {
	if _, err := NewSampled([]float64{0, 1}, []complex128{1}, InterpLinear); err == nil {
		t.Error("expected length mismatch error")
	}
	if _, err := NewSampled([]float64{0, 0}, []complex128{1, 2}, InterpLinear); err == nil {
		t.Error("expected non-increasing grid error")
	}
}

func TestTimeDepEval(t *testing.T) {
	a := Destroy(3)
	td, err := NewTimeDep(Identity(3), Term{Op: a, C: Func(func(t float64) complex128 {
		return complex(t, 0)
	})})
	if err != nil {
		t.Fatalf("new timedep failed: %v", err)
	}
	if td.IsConstant() {
		t.Fatal("operator with terms reported constant")
	}

	at2, err := Identity(3).Add(a.Scale(2))
	if err != nil {
		t.Fatal(err)
	}
	if !td.Eval(2).EqualApprox(at2, 1e-14) {
		t.Error("Eval(2) != 1 + 2a")
	}
}

func TestTimeDepMergeAndScale(t *testing.T) {
	x := Static(SigmaX())
	z := Static(SigmaZ())
	sum, err := x.Merge(z)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	want, _ := SigmaX().Add(SigmaZ())
	if !sum.Eval(0).EqualApprox(want, 1e-14) {
		t.Error("merged constant parts wrong")
	}

	half := sum.Scale(0.5)
	if !half.Eval(0).EqualApprox(want.Scale(0.5), 1e-14) {
		t.Error("scaled operator wrong")
	}

	if _, err := x.Merge(Static(Destroy(3))); err == nil {
		t.Error("expected dims error merging 2- and 3-level operators")
	}
	if _, err := NewTimeDep(nil); err == nil {
		t.Error("expected error for empty time-dependent operator")
	}
}
