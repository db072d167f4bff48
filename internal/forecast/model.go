package forecast

import (
	"fmt"
	"math"
)

// standardizer captures per-feature zero-mean/unit-variance parameters at
// training time so they can be reapplied identically at prediction time.
type standardizer struct {
	mean []float64
	std  []float64
}

func fitStandardizer(rows [][]float64) standardizer {
	n := len(rows)
	width := len(rows[0])
	s := standardizer{mean: make([]float64, width), std: make([]float64, width)}

	for _, row := range rows {
		for j, v := range row {
			s.mean[j] += v
		}
	}
	for j := range s.mean {
		s.mean[j] /= float64(n)
	}
	for _, row := range rows {
		for j, v := range row {
			d := v - s.mean[j]
			s.std[j] += d * d
		}
	}
	for j := range s.std {
		s.std[j] = math.Sqrt(s.std[j] / float64(n))
		if s.std[j] == 0 {
			// A constant column carries no signal; leave it at zero after
			// centering instead of dividing by zero.
			s.std[j] = 1
		}
	}
	return s
}

func (s standardizer) apply(row []float64) []float64 {
	scaled := make([]float64, len(row))
	for j, v := range row {
		scaled[j] = (v - s.mean[j]) / s.std[j]
	}
	return scaled
}

// linearModel is one carrier's learned mapping from a feature vector to a
// price: an ordinary-least-squares fit on standardized features.
type linearModel struct {
	scaler    standardizer
	intercept float64
	coef      []float64
	r2        float64
}

// fitOLS fits price ~ features by solving the normal equations of the
// standardized design matrix. No regularization and no cross-carrier
// sharing: each carrier's market behavior is modeled independently.
func fitOLS(rows [][]float64, targets []float64) (*linearModel, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no training rows")
	}
	if len(rows) != len(targets) {
		return nil, fmt.Errorf("rows/targets length mismatch: %d != %d", len(rows), len(targets))
	}

	scaler := fitStandardizer(rows)
	width := len(rows[0]) + 1 // leading intercept column

	// Accumulate X'X and X'y directly; the design matrix itself is never
	// materialized.
	xtx := make([][]float64, width)
	for i := range xtx {
		xtx[i] = make([]float64, width)
	}
	xty := make([]float64, width)

	scaledRow := make([]float64, width)
	for i, row := range rows {
		scaled := scaler.apply(row)
		scaledRow[0] = 1
		copy(scaledRow[1:], scaled)
		for a := 0; a < width; a++ {
			for b := a; b < width; b++ {
				xtx[a][b] += scaledRow[a] * scaledRow[b]
			}
			xty[a] += scaledRow[a] * targets[i]
		}
	}
	for a := 0; a < width; a++ {
		for b := 0; b < a; b++ {
			xtx[a][b] = xtx[b][a]
		}
	}

	weights := solveSymmetric(xtx, xty)

	model := &linearModel{
		scaler:    scaler,
		intercept: weights[0],
		coef:      weights[1:],
	}
	model.r2 = model.rSquared(rows, targets)
	return model, nil
}

// predict applies the captured standardization and the learned weights.
func (m *linearModel) predict(features []float64) float64 {
	scaled := m.scaler.apply(features)
	price := m.intercept
	for j, c := range m.coef {
		price += c * scaled[j]
	}
	return price
}

func (m *linearModel) rSquared(rows [][]float64, targets []float64) float64 {
	mean := 0.0
	for _, y := range targets {
		mean += y
	}
	mean /= float64(len(targets))

	var ssRes, ssTot float64
	for i, row := range rows {
		d := targets[i] - m.predict(row)
		ssRes += d * d
		t := targets[i] - mean
		ssTot += t * t
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}

// solveSymmetric solves A·w = b by Gaussian elimination with partial
// pivoting. Singular directions (e.g. from constant feature columns that
// standardization zeroed out) get a zero weight instead of failing the
// whole fit.
func solveSymmetric(a [][]float64, b []float64) []float64 {
	n := len(b)
	// Work on copies; callers may reuse their accumulators.
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n+1)
		copy(m[i], a[i])
		m[i][n] = b[i]
	}

	const pivotTolerance = 1e-10

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < pivotTolerance {
			// Degenerate direction: drop the variable and its equation so
			// the weight stays exactly zero.
			for r := 0; r < n; r++ {
				m[r][col] = 0
			}
			for k := 0; k <= n; k++ {
				m[col][k] = 0
			}
			m[col][col] = 1
			continue
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := m[r][col] / m[col][col]
			if factor == 0 {
				continue
			}
			for k := col; k <= n; k++ {
				m[r][k] -= factor * m[col][k]
			}
		}
	}

	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = m[i][n] / m[i][i]
	}
	return w
}
