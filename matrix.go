//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"math"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
)

// Matrix is a PDF transformation matrix [A B C D E F]. It maps (x, y) to
// (A*x + C*y + E, B*x + D*y + F).
type Matrix fpdf.Matrix

// Identity is the matrix that leaves points in place.
var Identity = Matrix{A: 1, D: 1}

// Multiply returns the matrix that applies m, then n.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.B*n.C,
		B: m.A*n.B + m.B*n.D,
		C: m.C*n.A + m.D*n.C,
		D: m.C*n.B + m.D*n.D,
		E: m.E*n.A + m.F*n.C + n.E,
		F: m.E*n.B + m.F*n.D + n.F,
	}
}

// Translate returns m followed by a shift of (x, y).
func (m Matrix) Translate(x, y float32) Matrix {
	return m.Multiply(Matrix{A: 1, D: 1, E: x, F: y})
}

// Scale returns m followed by a scale of (x, y).
func (m Matrix) Scale(x, y float32) Matrix {
	return m.Multiply(Matrix{A: x, D: y})
}

// Rotate returns m followed by a counterclockwise rotation by degrees.
// Quarter turns are exact.
func (m Matrix) Rotate(degrees float64) Matrix {
	var sin, cos float64
	switch d := math.Mod(degrees, 360); d {
	case 0:
		sin, cos = 0, 1
	case 90, -270:
		sin, cos = 1, 0
	case 180, -180:
		sin, cos = 0, -1
	case 270, -90:
		sin, cos = -1, 0
	default:
		sin, cos = math.Sincos(d * math.Pi / 180)
	}
	s, c := float32(sin), float32(cos)
	return m.Multiply(Matrix{A: c, B: s, C: -s, D: c})
}

// Apply maps the point (x, y).
func (m Matrix) Apply(x, y float32) (float32, float32) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}
