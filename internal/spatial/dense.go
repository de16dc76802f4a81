package spatial

import "gonum.org/v1/gonum/mat"

// WrenchColumn reads column c of a 6-row matrix as a Wrench.
func WrenchColumn(m mat.Matrix, c int) Wrench {
	var v [6]float64
	for i := range v {
		v[i] = m.At(i, c)
	}
	return WrenchFromVec6(v)
}

// SetWrenchColumn writes w into column c of a 6-row matrix.
func SetWrenchColumn(m *mat.Dense, c int, w Wrench) {
	for i, x := range w.Vec6() {
		m.Set(i, c, x)
	}
}

// TwistColumn reads column c of a 6-row matrix as a Twist.
func TwistColumn(m mat.Matrix, c int) Twist {
	var v [6]float64
	for i := range v {
		v[i] = m.At(i, c)
	}
	return TwistFromVec6(v)
}

func SetTwistColumn(m *mat.Dense, c int, t Twist) {
	for i, x := range t.Vec6() {
		m.Set(i, c, x)
	}
}

// PackTwist copies t into the 6-vector dst.
func PackTwist(dst *mat.VecDense, t Twist) {
	for i, x := range t.Vec6() {
		dst.SetVec(i, x)
	}
}

func PackWrench(dst *mat.VecDense, w Wrench) {
	for i, x := range w.Vec6() {
		dst.SetVec(i, x)
	}
}

func UnpackWrench(v mat.Vector) Wrench {
	var a [6]float64
	for i := range a {
		a[i] = v.AtVec(i)
	}
	return WrenchFromVec6(a)
}

func UnpackTwist(v mat.Vector) Twist {
	var a [6]float64
	for i := range a {
		a[i] = v.AtVec(i)
	}
	return TwistFromVec6(a)
}
