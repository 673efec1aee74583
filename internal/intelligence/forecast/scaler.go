package forecast

import "gonum.org/v1/gonum/stat"

// standardScaler rescales each column to zero mean and unit variance using
// statistics from the training rows only. Constant columns keep scale 1.
type standardScaler struct {
	means  []float64
	scales []float64
}

func fitScaler(X [][]float64) *standardScaler {
	p := len(X[0])
	s := &standardScaler{
		means:  make([]float64, p),
		scales: make([]float64, p),
	}
	col := make([]float64, len(X))
	for j := 0; j < p; j++ {
		for i, row := range X {
			col[i] = row[j]
		}
		m, sd := stat.PopMeanStdDev(col, nil)
		if sd < 1e-12 {
			sd = 1
		}
		s.means[j] = m
		s.scales[j] = sd
	}
	return s
}

func (s *standardScaler) transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.means[j]) / s.scales[j]
	}
	return out
}

func (s *standardScaler) transformAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.transform(row)
	}
	return out
}
