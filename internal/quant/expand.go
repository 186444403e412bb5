package quant

import "fmt"

// Expand embeds op, acting on len(targets) qubit sites, into a register of n
// qubits. Identity operators are inserted on all other sites, and op's i-th
// factor lands on targets[i]. A nil targets defaults to the first
// len(op.Dims()) sites. An operator with a non-qubit factor is a dimension
// mismatch; ExpandInto takes an explicit register for those.
func Expand(op *Operator, n int, targets []int) (*Operator, error) {
	register := make([]int, n)
	for i := range register {
		register[i] = 2
	}
	return ExpandInto(op, register, targets)
}

// ExpandInto embeds op into a register with explicit per-site dimensions.
// op's i-th factor dimension must equal the dimension of site targets[i].
func ExpandInto(op *Operator, register []int, targets []int) (*Operator, error) {
	k := len(op.dims)
	n := len(register)
	if targets == nil {
		targets = make([]int, k)
		for i := range targets {
			targets[i] = i
		}
	}
	if len(targets) != k {
		return nil, fmt.Errorf("%w: operator has %d factors, %d targets given",
			ErrDimMismatch, k, len(targets))
	}
	seen := make(map[int]bool, k)
	for i, t := range targets {
		if t < 0 || t >= n {
			return nil, fmt.Errorf("%w: target %d outside register of %d sites", ErrBadShape, t, n)
		}
		if seen[t] {
			return nil, fmt.Errorf("%w: duplicate target %d", ErrBadShape, t)
		}
		seen[t] = true
		if op.dims[i] != register[t] {
			return nil, fmt.Errorf("%w: factor %d has dimension %d, site %d has dimension %d",
				ErrDimMismatch, i, op.dims[i], t, register[t])
		}
	}

	stride := make([]int, n)
	s := 1
	for i := n - 1; i >= 0; i-- {
		stride[i] = s
		s *= register[i]
	}
	opStride := make([]int, k)
	s = 1
	for i := k - 1; i >= 0; i-- {
		opStride[i] = s
		s *= op.dims[i]
	}

	others := make([]int, 0, n-k)
	for i := 0; i < n; i++ {
		if !seen[i] {
			others = append(others, i)
		}
	}

	out := zero(register)
	idx := make([]int, len(others))
	for {
		// base index contribution of the identity sites (row == column)
		base := 0
		for i, site := range others {
			base += idx[i] * stride[site]
		}
		for r := 0; r < op.n; r++ {
			for c := 0; c < op.n; c++ {
				v := op.m.At(r, c)
				if v == 0 {
					continue
				}
				row, col := base, base
				for i := 0; i < k; i++ {
					row += (r / opStride[i] % op.dims[i]) * stride[targets[i]]
					col += (c / opStride[i] % op.dims[i]) * stride[targets[i]]
				}
				out.m.Set(row, col, v)
			}
		}
		// next assignment of the identity sites
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < register[others[i]] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			break
		}
	}
	return out, nil
}

// ExpandPeriodic returns the n qubit-register embeddings of op obtained by
// cyclically shifting targets by 0..n-1 (mod n). It applies a local operator
// uniformly to every equivalent register location.
func ExpandPeriodic(op *Operator, n int, targets []int) ([]*Operator, error) {
	if targets == nil {
		targets = make([]int, len(op.dims))
		for i := range targets {
			targets[i] = i
		}
	}
	out := make([]*Operator, 0, n)
	shifted := make([]int, len(targets))
	for shift := 0; shift < n; shift++ {
		for i, t := range targets {
			shifted[i] = (t + shift) % n
		}
		e, err := Expand(op, n, shifted)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
