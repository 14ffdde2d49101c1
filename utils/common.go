// Package utils holds the dense linear-algebra helpers refel builds its
// reference-element operators on top of: a chainable Matrix/Vector pair over
// gonum's mat.Dense/VecDense, plus the Index/R1/R2/R3 slicing helpers used to
// address their rows and columns. Everything outside that concern (the
// sparse, mesh, graphics and kernel-codegen helpers the teacher package also
// carried) has been dropped with it.
package utils

const (
	NODETOL = 1.e-12
)

type EvalOp uint8

const (
	Equal EvalOp = iota
	Less
	Greater
	LessOrEqual
	GreaterOrEqual
)
