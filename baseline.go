package main

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

type BaselineOptions struct {
	Lambda    float64
	DiffOrder int
	MaxIter   int
	Tol       float64
}

func DefaultBaselineOptions() BaselineOptions {
	return BaselineOptions{
		Lambda:    1e6,
		DiffOrder: 1,
		MaxIter:   50,
		Tol:       1e-3,
	}
}

func (o BaselineOptions) validate(n int) error {
	if o.Lambda <= 0 {
		return errors.Errorf("lambda must be positive, got %v", o.Lambda)
	}
	if o.DiffOrder < 1 {
		return errors.Errorf("difference order must be at least 1, got %d", o.DiffOrder)
	}
	if o.MaxIter < 0 {
		return errors.Errorf("max iterations must not be negative, got %d", o.MaxIter)
	}
	if n <= o.DiffOrder {
		return errors.Errorf("need more than %d points for difference order %d, got %d", o.DiffOrder, o.DiffOrder, n)
	}
	return nil
}

type Baseline struct {
	Values     []float64
	Weights    []float64
	TolHistory []float64
	Iterations int
	Converged  bool
}

// AirPLS fits a baseline with adaptive iteratively reweighted penalized least
// squares. Points above the current fit get zero weight, points below it get
// exponentially growing weight, until the negative residual shrinks below Tol
// relative to the signal's L1 norm.
func AirPLS(y []float64, o BaselineOptions) (*Baseline, error) {
	n := len(y)
	if err := o.validate(n); err != nil {
		return nil, err
	}

	penalty := differencePenalty(n, o.DiffOrder, o.Lambda)
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}
	yL1 := absSumV(y)
	b := &Baseline{TolHistory: make([]float64, 0, o.MaxIter+1)}

	var z []float64
	for i := 1; i <= o.MaxIter+1; i++ {
		var err error
		z, err = solvePenalized(penalty, o.DiffOrder, weights, y)
		if err != nil {
			return nil, errors.Wrapf(err, "iteration %d", i)
		}
		b.Iterations = i

		residual := subV(y, z)
		negSum := 0.0
		negCount := 0
		for _, r := range residual {
			if r < 0 {
				negSum += r
				negCount++
			}
		}
		if negCount < 2 {
			log.Tracef("airPLS stopped at iteration %d: %d negative residuals", i, negCount)
			break
		}
		residualL1 := math.Abs(negSum)
		diff := residualL1 / yL1
		b.TolHistory = append(b.TolHistory, diff)
		log.Tracef("airPLS iteration %d: relative residual %g", i, diff)
		if diff < o.Tol {
			b.Converged = true
			break
		}
		for j, r := range residual {
			if r < 0 {
				weights[j] = math.Exp(float64(i) * r / residualL1)
			} else {
				weights[j] = 0
			}
		}
	}

	b.Values = z
	b.Weights = weights
	return b, nil
}

// differencePenalty returns the upper band of lambda * D^T D, row-major with
// order+1 entries per row, where D is the n-order x n difference matrix.
func differencePenalty(n, order int, lambda float64) []float64 {
	coeffs := differenceCoefficients(order)
	k := order
	band := make([]float64, n*(k+1))
	for r := 0; r+order < n; r++ {
		for a := 0; a <= order; a++ {
			for c := a; c <= order; c++ {
				band[(r+a)*(k+1)+(c-a)] += lambda * coeffs[a] * coeffs[c]
			}
		}
	}
	return band
}

// differenceCoefficients gives the row of the forward difference operator:
// (-1)^(order-k) * C(order, k).
func differenceCoefficients(order int) []float64 {
	coeffs := make([]float64, order+1)
	binom := 1.0
	for k := 0; k <= order; k++ {
		sign := 1.0
		if (order-k)%2 == 1 {
			sign = -1
		}
		coeffs[k] = sign * binom
		binom = binom * float64(order-k) / float64(k+1)
	}
	return coeffs
}

// solvePenalized solves (W + P) z = W y.
func solvePenalized(penalty []float64, k int, weights, y []float64) ([]float64, error) {
	n := len(y)
	data := make([]float64, len(penalty))
	copy(data, penalty)
	rhs := make([]float64, n)
	for i := 0; i < n; i++ {
		data[i*(k+1)] += weights[i]
		rhs[i] = weights[i] * y[i]
	}
	a := mat.NewSymBandDense(n, k, data)

	var chol mat.BandCholesky
	if ok := chol.Factorize(a); !ok {
		return nil, errors.New("penalized system is not positive definite")
	}
	var z mat.VecDense
	if err := chol.SolveVecTo(&z, mat.NewVecDense(n, rhs)); err != nil {
		return nil, errors.Wrap(err, "solving penalized system")
	}
	return mat.Col(nil, 0, &z), nil
}
