package da

// ElementalMatVec computes one element's local contribution: in holds its
// Np gathered nodal input values (refel axis order, zero at any hanging
// node's slot); the implementation writes Np values into out. Returns
// false on failure, matching spec.md §9's contract for the pair below.
type ElementalMatVec interface {
	ElementalMatVec(d *DA, elemIndex int, in, out []float64) bool
}

// PreMatVec runs once per element before ElementalMatVec, e.g. to impose
// boundary conditions on the gathered input. The source declares this
// bool-returning but omits a return statement; this contract fixes that:
// true on success, false to abort the sweep for that element.
type PreMatVec interface {
	PreMatVec(d *DA, elemIndex int, in []float64) bool
}

// PostMatVec runs once per element after ElementalMatVec, e.g. to apply
// boundary conditions to the element's output before it is scattered.
// Same true/false contract as PreMatVec.
type PostMatVec interface {
	PostMatVec(d *DA, elemIndex int, out []float64) bool
}

// Capability bundles the {elementalMatVec, preMatVec, postMatVec} trait
// set MatVec iterates with. Pre and Post are optional.
type Capability struct {
	Elemental ElementalMatVec
	Pre       PreMatVec
	Post      PostMatVec
}

// MatVec drives one matrix-free sweep over every local element: gather
// in's DOF values onto the element's nodal buffer, run Pre/Elemental/Post,
// then scatter the element's output back onto out.
//
// The scatter step accumulates (out[dof] += contribution) rather than
// overwriting, fixing the PoissonMat element kernel bug spec.md §9
// documents: "out[i] is overwritten inside the inner per-axis summation
// loop rather than accumulated... implementations must fix this to
// accumulate." A node shared by several elements must sum every element's
// contribution, exactly as a finite-element assembly requires.
//
// Returns false if any element's Pre/Elemental/Post call returned false;
// the sweep still runs to completion over every element so a caller can
// inspect out's partially-assembled state if it chooses to.
func (d *DA) MatVec(cap Capability, in, out []float64) bool {
	np := d.refElem.Np
	gbuf := make([]float64, np)
	obuf := make([]float64, np)
	ok := true

	for e := range d.elements {
		idxs := d.elemDofIdx[e]
		for i, j := range idxs {
			if j >= 0 {
				gbuf[i] = in[j]
			} else {
				gbuf[i] = 0
			}
		}

		if cap.Pre != nil && !cap.Pre.PreMatVec(d, e, gbuf) {
			ok = false
			continue
		}

		for i := range obuf {
			obuf[i] = 0
		}
		if !cap.Elemental.ElementalMatVec(d, e, gbuf, obuf) {
			ok = false
			continue
		}

		if cap.Post != nil && !cap.Post.PostMatVec(d, e, obuf) {
			ok = false
			continue
		}

		for i, j := range idxs {
			if j >= 0 {
				out[j] += obuf[i]
			}
		}
	}
	return ok
}
