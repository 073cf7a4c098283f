package registration

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// KabschSolver is a minimal rigid-registration Solver built on the
// Kabsch algorithm (SVD-based least-squares rotation fit). It is not a
// Coherent Point Drift implementation; it exists so this repository runs
// end to end without a separately-vendored CPD solver, and satisfies the
// same Solver contract. A production deployment should inject a real CPD
// solver.
//
// KabschSolver assumes row i of the moving matrix already corresponds to
// row i of the fixed matrix (true for equal-length matrices built from
// the same nearest_k/cell-bucket draw against two registered clouds); it
// truncates to the shorter of the two row counts.
type KabschSolver struct{}

func (KabschSolver) Register(ctx context.Context, fixed, moving *mat.Dense, opts Options) (*Run, error) {
	nf, _ := fixed.Dims()
	nm, _ := moving.Dims()
	n := nf
	if nm < n {
		n = nm
	}
	if n == 0 {
		return nil, fmt.Errorf("kabsch: no corresponding points to register")
	}

	fixedCentroid := rowMean(fixed, n)
	movingCentroid := rowMean(moving, n)

	fc := centered(fixed, n, fixedCentroid)
	mc := centered(moving, n, movingCentroid)

	var h mat.Dense
	h.Mul(mc.T(), fc) // 3x3 covariance

	var svd mat.SVD
	if ok := svd.Factorize(&h, mat.SVDFull); !ok {
		return nil, fmt.Errorf("kabsch: SVD factorization failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	d := 1.0
	if det3(&v)*det3(&u) < 0 {
		d = -1.0
	}
	diag := mat.NewDiagDense(3, []float64{1, 1, d})

	var vd, rotation mat.Dense
	vd.Mul(&v, diag)
	rotation.Mul(&vd, u.T())

	translation := make([]float64, 3)
	var rc mat.VecDense
	rc.MulVec(&rotation, mat.NewVecDense(3, []float64{movingCentroid[0], movingCentroid[1], movingCentroid[2]}))
	for i := 0; i < 3; i++ {
		translation[i] = fixedCentroid[i] - rc.AtVec(i)
	}

	nm2, _ := moving.Dims()
	moved := mat.NewDense(nm2, 3, nil)
	for i := 0; i < nm2; i++ {
		row := mat.NewVecDense(3, []float64{moving.At(i, 0), moving.At(i, 1), moving.At(i, 2)})
		var out mat.VecDense
		out.MulVec(&rotation, row)
		moved.Set(i, 0, out.AtVec(0)+translation[0])
		moved.Set(i, 1, out.AtVec(1)+translation[1])
		moved.Set(i, 2, out.AtVec(2)+translation[2])
	}

	return &Run{
		Converged:  true,
		Iterations: 1,
		Moved:      moved,
		Transform: Transform{
			Rotation:    &rotation,
			Translation: translation,
			Scale:       1,
		},
	}, nil
}

func rowMean(m *mat.Dense, n int) [3]float64 {
	var sum [3]float64
	for i := 0; i < n; i++ {
		sum[0] += m.At(i, 0)
		sum[1] += m.At(i, 1)
		sum[2] += m.At(i, 2)
	}
	fn := float64(n)
	return [3]float64{sum[0] / fn, sum[1] / fn, sum[2] / fn}
}

func centered(m *mat.Dense, n int, centroid [3]float64) *mat.Dense {
	out := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, m.At(i, 0)-centroid[0])
		out.Set(i, 1, m.At(i, 1)-centroid[1])
		out.Set(i, 2, m.At(i, 2)-centroid[2])
	}
	return out
}

func det3(m mat.Matrix) float64 {
	a, b, c := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	d, e, f := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	g, h, i := m.At(2, 0), m.At(2, 1), m.At(2, 2)
	return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
}
