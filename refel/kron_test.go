package refel

import "testing"

func identityMat1D(nrp int) Mat1D {
	data := make([]float64, nrp*nrp)
	for i := 0; i < nrp; i++ {
		data[i*nrp+i] = 1
	}
	return Mat1D{Nrp: nrp, Data: data}
}

func TestKroneckerProductIdentityIsNoOp(t *testing.T) {
	nrp := 3
	dim := 3
	total := 1
	for i := 0; i < dim; i++ {
		total *= nrp
	}
	in := make([]float64, total)
	for i := range in {
		in[i] = float64(i) + 1
	}
	mats := make([]Mat1D, dim)
	for d := range mats {
		mats[d] = identityMat1D(nrp)
	}
	out := KroneckerProduct(nrp, mats, in)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %v, want %v (identity no-op)", i, out[i], in[i])
		}
	}
}

// Hand-verified 2x2 case: mats[0] (x-axis) swaps the two x values, mats[1]
// (y-axis) is identity. Storage is x-fastest: in = [(0,0) (1,0) (0,1) (1,1)].
func TestKroneckerProductSwapAxis0(t *testing.T) {
	nrp := 2
	swap := Mat1D{Nrp: 2, Data: []float64{0, 1, 1, 0}}
	id := identityMat1D(2)
	in := []float64{10, 20, 30, 40} // (0,0)=10 (1,0)=20 (0,1)=30 (1,1)=40
	out := KroneckerProduct(nrp, []Mat1D{swap, id}, in)
	want := []float64{20, 10, 40, 30} // x swapped within each y-row
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out = %v, want %v", out, want)
		}
	}
}

func TestParentToChildReproducesConstantAcrossAllChildren(t *testing.T) {
	re := NewRefElement(2, 2)
	parent := make([]float64, re.Np)
	for i := range parent {
		parent[i] = 1
	}
	for childM := 0; childM < 4; childM++ {
		childVals := re.ParentToChild(childM, parent)
		for i, v := range childVals {
			if !approxEqual(v, 1, 1e-9) {
				t.Fatalf("childM=%d: ParentToChild(ones)[%d] = %v, want 1", childM, i, v)
			}
		}
	}
}
