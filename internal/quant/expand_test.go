package quant

import (
	"errors"
	"testing"
)

func TestExpandSingleSite(t *testing.T) {
	full, err := Expand(SigmaZ(), 3, []int{1})
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if full.Size() != 8 {
		t.Fatalf("size = %d, want 8", full.Size())
	}
	// Z on site 1 of |010⟩ gives eigenvalue -1, on |000⟩ gives +1.
	for state, want := range map[int]complex128{
		0: 1,  // |000⟩
		2: -1, // |010⟩
		6: -1, // |110⟩
		1: 1,  // |001⟩
	} {
		got := Expect(full, Fock(8, state))
		if got != want {
			t.Errorf("⟨%03b|Z₁|%03b⟩ = %v, want %v", state, state, got, want)
		}
	}
}

func TestExpandTargetOrder(t *testing.T) {
	// |1⟩⟨0| ⊗ |0⟩⟨1| placed on (2, 0) vs (0, 2) must differ.
	op := SigmaPlus().Tensor(SigmaMinus())
	fwd, err := Expand(op, 3, []int{0, 2})
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	rev, err := Expand(op, 3, []int{2, 0})
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	// fwd maps |001⟩ -> |100⟩: entry (4, 1) is 1
	if fwd.At(4, 1) != 1 {
		t.Errorf("fwd(4,1) = %v, want 1", fwd.At(4, 1))
	}
	// rev maps |100⟩ -> |001⟩: entry (1, 4) is 1
	if rev.At(1, 4) != 1 {
		t.Errorf("rev(1,4) = %v, want 1", rev.At(1, 4))
	}
}

func TestExpandDimensionMismatch(t *testing.T) {
	_, err := ExpandInto(Destroy(3), []int{2, 2, 2}, []int{0})
	if !errors.Is(err, ErrDimMismatch) {
		t.Errorf("expected ErrDimMismatch, got %v", err)
	}
	// the qubit-register form must reject non-qubit factors, not fabricate
	// a register matching the operator
	if _, err := Expand(Destroy(3), 2, []int{0}); !errors.Is(err, ErrDimMismatch) {
		t.Errorf("expected ErrDimMismatch for qutrit operator, got %v", err)
	}
	if _, err := Expand(SigmaZ(), 3, []int{0, 1}); err == nil {
		t.Error("expected error for target count mismatch")
	}
	if _, err := Expand(SigmaZ(), 3, []int{5}); err == nil {
		t.Error("expected error for out-of-range target")
	}
	if _, err := Expand(SigmaZ().Tensor(SigmaZ()), 3, []int{1, 1}); err == nil {
		t.Error("expected error for duplicate targets")
	}
}

func TestExpandPeriodic(t *testing.T) {
	ops, err := ExpandPeriodic(SigmaMinus(), 3, nil)
	if err != nil {
		t.Fatalf("expand periodic failed: %v", err)
	}
	if len(ops) != 3 {
		t.Fatalf("got %d embeddings, want 3", len(ops))
	}
	for i, op := range ops {
		if op.Size() != 8 {
			t.Errorf("embedding %d size = %d, want 8", i, op.Size())
		}
		for j := i + 1; j < len(ops); j++ {
			if ops[i].EqualApprox(ops[j], 1e-14) {
				t.Errorf("embeddings %d and %d coincide", i, j)
			}
		}
	}
	// shift by 1 puts the operator on site 1
	site1, err := Expand(SigmaMinus(), 3, []int{1})
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if !ops[1].EqualApprox(site1, 1e-14) {
		t.Error("second periodic embedding should act on site 1")
	}
}
