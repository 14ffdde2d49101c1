package refel

// KroneckerProduct applies a distinct square matrix along each of dim axes
// of an nrp^dim tensor stored as a flat, row-major buffer with axis 0
// fastest-varying (adjacent entries along axis 0 are one slot apart; axis
// dim-1 entries are nrp^(dim-1) slots apart). This is the double-buffered
// per-axis apply _examples/original_source/FEM/include/refel.h's
// IKD_Parent2Child/I3D_Parent2Child perform by unrolled axis case (its
// "along x", "along y", "along z" comments apply mats[0], mats[1], mats[2]
// in turn); no literal KroneckerProduct source was recovered, so this is
// built from that double-buffering pattern plus the conceptual description
// of applying a sequence of 1D operators along each axis.
//
// Algebraically this computes (mats[dim-1] (x) ... (x) mats[0]) * in, where
// (x) is the Kronecker product, without ever materializing that dim-way
// Kronecker product matrix.
func KroneckerProduct(nrp int, mats []Mat1D, in []float64) []float64 {
	dim := len(mats)
	total := len(in)

	buf := make([]float64, total)
	copy(buf, in)
	out := make([]float64, total)

	inner := 1 // number of index combinations for axes after the current one
	for axis := 0; axis < dim; axis++ {
		applyAxis(nrp, inner, total, mats[axis], buf, out)
		buf, out = out, buf
		inner *= nrp
	}
	return buf
}

// Mat1D is a square nrp x nrp matrix stored row-major, as applied by
// applyAxis: out[k] = sum_j M[k][j] * in[j].
type Mat1D struct {
	Nrp  int
	Data []float64
}

func (m Mat1D) at(i, j int) float64 { return m.Data[i*m.Nrp+j] }

// applyAxis applies m along the axis whose stride in the flat buffer is
// inner (so inner = nrp^axis for axis-0-fastest-varying storage): for every
// combination of the remaining axes, replace the nrp contiguous-by-inner-
// stride values along this axis with m times those values.
func applyAxis(nrp, inner, total int, m Mat1D, in, out []float64) {
	outer := total / (nrp * inner)
	for o := 0; o < outer; o++ {
		base := o * nrp * inner
		for p := 0; p < inner; p++ {
			off := base + p
			for k := 0; k < nrp; k++ {
				var sum float64
				for j := 0; j < nrp; j++ {
					sum += m.at(k, j) * in[off+j*inner]
				}
				out[off+k*inner] = sum
			}
		}
	}
}

// childMat1D flattens Child0/Child1 (built on gonum's mat.Dense via
// utils.Matrix) into the row-major Mat1D KroneckerProduct expects.
func (re *RefElement) childMat1D(childBit int) Mat1D {
	var m Mat1D
	m.Nrp = re.Nrp
	m.Data = make([]float64, re.Nrp*re.Nrp)
	src := re.Child0
	if childBit == 1 {
		src = re.Child1
	}
	for i := 0; i < re.Nrp; i++ {
		for j := 0; j < re.Nrp; j++ {
			m.Data[i*re.Nrp+j] = src.At(i, j)
		}
	}
	return m
}

func (re *RefElement) childMat1DTranspose(childBit int) Mat1D {
	var m Mat1D
	m.Nrp = re.Nrp
	m.Data = make([]float64, re.Nrp*re.Nrp)
	src := re.Child0T
	if childBit == 1 {
		src = re.Child1T
	}
	for i := 0; i < re.Nrp; i++ {
		for j := 0; j < re.Nrp; j++ {
			m.Data[i*re.Nrp+j] = src.At(i, j)
		}
	}
	return m
}

// ParentToChild interpolates a parent's Np-length nodal value buffer onto
// the Np nodes of Morton child childM: axis d of the tensor-product uses
// Child0 if bit d of childM is 0, Child1 if it is 1 — mirroring refel.h's
// IKD_Parent2Child axis selection.
func (re *RefElement) ParentToChild(childM int, parentValues []float64) []float64 {
	mats := make([]Mat1D, re.Dim)
	for d := 0; d < re.Dim; d++ {
		bit := (childM >> d) & 1
		mats[d] = re.childMat1D(bit)
	}
	return KroneckerProduct(re.Nrp, mats, parentValues)
}

// ChildToParent applies the transpose interpolation, accumulating child
// childM's nodal contribution back onto the parent's node buffer — the
// adjoint operation IKD_Parent2Child's transpose matrices (ipT_1D_0/
// ipT_1D_1) perform for FEM residual/mass assembly.
func (re *RefElement) ChildToParent(childM int, childValues []float64) []float64 {
	mats := make([]Mat1D, re.Dim)
	for d := 0; d < re.Dim; d++ {
		bit := (childM >> d) & 1
		mats[d] = re.childMat1DTranspose(bit)
	}
	return KroneckerProduct(re.Nrp, mats, childValues)
}
