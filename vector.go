package main

import (
	"gonum.org/v1/gonum/floats"
)

func sumV(v []float64) float64 {
	return floats.Sum(v)
}

func divVS(dst []float64, s float64) {
	floats.Scale(1/s, dst)
}

// subV returns a - b.
func subV(a, b []float64) []float64 {
	if len(a) != len(b) {
		panic("Subtracting vectors of different size")
	}
	res := make([]float64, len(a))
	floats.SubTo(res, a, b)
	return res
}

func absSumV(v []float64) float64 {
	return floats.Norm(v, 1)
}
