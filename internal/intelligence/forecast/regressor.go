package forecast

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// regressor is a fitted predictor over standardized feature vectors.
type regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) float64
}

// ridgePenalty keeps the normal equations positive definite when features
// are collinear (lags and rolling means often are) or constant.
const ridgePenalty = 1e-6

// linearRegression is ordinary least squares with an intercept.
type linearRegression struct {
	intercept float64
	coef      []float64
}

func (m *linearRegression) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("linear regression: empty or mismatched training data")
	}
	n, p := len(X), len(X[0])

	xMeans := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		xMeans[j] = stat.Mean(col, nil)
	}
	yMean := stat.Mean(y, nil)

	// Normal equations on centered data: (XᵀX + λnI) β = Xᵀy.
	xtx := make([]float64, p*p)
	xty := make([]float64, p)
	for i := range X {
		dy := y[i] - yMean
		for a := 0; a < p; a++ {
			da := X[i][a] - xMeans[a]
			xty[a] += da * dy
			for b := a; b < p; b++ {
				xtx[a*p+b] += da * (X[i][b] - xMeans[b])
			}
		}
	}
	for a := 0; a < p; a++ {
		xtx[a*p+a] += ridgePenalty * float64(n)
		for b := 0; b < a; b++ {
			xtx[a*p+b] = xtx[b*p+a]
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(mat.NewSymDense(p, xtx)); !ok {
		return errors.New("linear regression: normal equations are not positive definite")
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, mat.NewVecDense(p, xty)); err != nil {
		return fmt.Errorf("linear regression: solve: %w", err)
	}

	m.coef = make([]float64, p)
	m.intercept = yMean
	for j := 0; j < p; j++ {
		m.coef[j] = beta.AtVec(j)
		m.intercept -= m.coef[j] * xMeans[j]
	}
	return nil
}

func (m *linearRegression) Predict(x []float64) float64 {
	out := m.intercept
	for j, c := range m.coef {
		out += c * x[j]
	}
	return out
}
