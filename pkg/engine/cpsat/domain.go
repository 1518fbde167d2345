package cpsat

import "math"

// domains is a mutable working copy of every variable's current bound
// interval, narrowed during search.
type domains struct {
	lo, hi []int64
}

func newDomains(m *Model) *domains {
	d := &domains{lo: make([]int64, len(m.vars)), hi: make([]int64, len(m.vars))}
	for i, v := range m.vars {
		d.lo[i] = v.lo
		d.hi[i] = v.hi
	}
	return d
}

func (d *domains) clone() *domains {
	out := &domains{lo: make([]int64, len(d.lo)), hi: make([]int64, len(d.hi))}
	copy(out.lo, d.lo)
	copy(out.hi, d.hi)
	return out
}

func (d *domains) fixed(v VarID) bool {
	return d.lo[v] == d.hi[v]
}

func (d *domains) empty(v VarID) bool {
	return d.lo[v] > d.hi[v]
}

func (d *domains) anyEmpty() bool {
	for i := range d.lo {
		if d.lo[i] > d.hi[i] {
			return true
		}
	}
	return false
}

// propagate narrows domains to a fixpoint under every linear, min/max
// and division constraint. Returns false if any domain becomes empty
// (the branch is infeasible).
func (m *Model) propagate(d *domains) bool {
	for {
		changed := false

		for _, c := range m.linear {
			ok, didChange := propagateLinear(c, d)
			if !ok {
				return false
			}
			changed = changed || didChange
		}

		for _, c := range m.minmax {
			ok, didChange := propagateMinMax(c, d)
			if !ok {
				return false
			}
			changed = changed || didChange
		}

		for _, c := range m.division {
			ok, didChange := propagateDivision(c, d)
			if !ok {
				return false
			}
			changed = changed || didChange
		}

		if !changed {
			return !d.anyEmpty()
		}
	}
}

// termBounds returns the min and max value a coeff*var term can take
// given the variable's current domain.
func termBounds(coeff, lo, hi int64) (int64, int64) {
	a, b := coeff*lo, coeff*hi
	if a > b {
		return b, a
	}
	return a, b
}

// propagateLinear narrows each term's variable domain so that
// sum(terms) satisfies the constraint, given the other terms' current
// bounds. This is standard bounds-consistency propagation for linear
// constraints over integers.
func propagateLinear(c linearConstraint, d *domains) (ok bool, changed bool) {
	type term struct {
		v     VarID
		coeff int64
	}
	terms := make([]term, 0, len(c.terms))
	for v, coeff := range c.terms {
		terms = append(terms, term{v: v, coeff: coeff})
	}

	sumLo, sumHi := int64(0), int64(0)
	for _, t := range terms {
		lo, hi := termBounds(t.coeff, d.lo[t.v], d.hi[t.v])
		sumLo += lo
		sumHi += hi
	}

	// Required range for the whole sum under this constraint.
	var reqLo, reqHi int64
	switch c.op {
	case OpEQ:
		reqLo, reqHi = c.bound, c.bound
	case OpLE:
		reqLo, reqHi = math.MinInt64, c.bound
	case OpGE:
		reqLo, reqHi = c.bound, math.MaxInt64
	}

	if sumLo > reqHi || sumHi < reqLo {
		return false, false
	}

	for _, t := range terms {
		lo, hi := termBounds(t.coeff, d.lo[t.v], d.hi[t.v])
		otherLoMin := sumLo - lo
		otherHiMax := sumHi - hi

		// term must satisfy: reqLo - otherHiMax <= term <= reqHi - otherLoMin
		termLo := maxInt64(lo, subSat(reqLo, otherHiMax))
		termHi := minInt64(hi, subSat(reqHi, otherLoMin))
		if termLo > termHi {
			return false, false
		}

		newLo, newHi := boundsFromTerm(t.coeff, termLo, termHi, d.lo[t.v], d.hi[t.v])
		if newLo > d.lo[t.v] {
			d.lo[t.v] = newLo
			changed = true
		}
		if newHi < d.hi[t.v] {
			d.hi[t.v] = newHi
			changed = true
		}
		if d.lo[t.v] > d.hi[t.v] {
			return false, changed
		}
	}

	return true, changed
}

// boundsFromTerm inverts coeff*var in [termLo, termHi] back into bounds
// on var, intersected with its current [curLo, curHi].
func boundsFromTerm(coeff, termLo, termHi, curLo, curHi int64) (int64, int64) {
	if coeff == 0 {
		return curLo, curHi
	}
	a := float64(termLo) / float64(coeff)
	b := float64(termHi) / float64(coeff)
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	newLo := maxInt64(curLo, int64(math.Ceil(lo-1e-9)))
	newHi := minInt64(curHi, int64(math.Floor(hi+1e-9)))
	return newLo, newHi
}

func propagateMinMax(c minMaxConstraint, d *domains) (ok bool, changed bool) {
	if len(c.vars) == 0 {
		return true, false
	}
	lo, hi := d.lo[c.vars[0]], d.hi[c.vars[0]]
	for _, v := range c.vars[1:] {
		if c.isMax {
			if d.lo[v] > lo {
				lo = d.lo[v]
			}
			if d.hi[v] > hi {
				hi = d.hi[v]
			}
		} else {
			if d.lo[v] < lo {
				lo = d.lo[v]
			}
			if d.hi[v] < hi {
				hi = d.hi[v]
			}
		}
	}
	// Result is within [min-of-los-or-maxes...]; a sound, simple bound:
	// for max-equality, result in [max(los), max(his)]; for
	// min-equality, result in [min(los), min(his)]. The loop above
	// already tracks exactly that.
	if lo > d.hi[c.result] || hi < d.lo[c.result] {
		return false, false
	}
	if lo > d.lo[c.result] {
		d.lo[c.result] = lo
		changed = true
	}
	if hi < d.hi[c.result] {
		d.hi[c.result] = hi
		changed = true
	}
	return !d.empty(c.result), changed
}

func propagateDivision(c divisionConstraint, d *domains) (ok bool, changed bool) {
	if c.divisor == 0 {
		return false, false
	}
	lo := floorDiv(d.lo[c.dividend], c.divisor)
	hi := floorDiv(d.hi[c.dividend], c.divisor)
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo > d.hi[c.result] || hi < d.lo[c.result] {
		return false, false
	}
	if lo > d.lo[c.result] {
		d.lo[c.result] = lo
		changed = true
	}
	if hi < d.hi[c.result] {
		d.hi[c.result] = hi
		changed = true
	}
	return !d.empty(c.result), changed
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func subSat(a, b int64) int64 {
	if a == math.MaxInt64 || b == math.MinInt64 {
		return math.MaxInt64
	}
	if a == math.MinInt64 || b == math.MaxInt64 {
		return math.MinInt64
	}
	return a - b
}
