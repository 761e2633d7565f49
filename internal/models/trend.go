package models

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"github.com/itsmostafa/modelrun/internal/model"
)

func init() {
	model.Register("Trend", func() model.Unit { return &Trend{} })
}

// Trend indexes series X against its first period.
type Trend struct {
	LL int

	X      []float64
	XIndex []float64
	XDiff  []float64
}

func (m *Trend) Params() []model.Param {
	return []model.Param{
		model.Series("X", &m.X),
		model.Series("X_INDEX", &m.XIndex),
		model.Series("X_DIFF", &m.XDiff),
		model.Length(&m.LL),
	}
}

func (m *Trend) Run() error {
	if len(m.X) != m.LL || m.LL == 0 {
		return errors.New("input X is not bound")
	}
	if m.X[0] == 0 {
		return errors.New("cannot index a series starting at zero")
	}

	m.XIndex = make([]float64, m.LL)
	floats.ScaleTo(m.XIndex, 100/m.X[0], m.X)

	m.XDiff = make([]float64, m.LL)
	floats.SubTo(m.XDiff[1:], m.X[1:], m.X[:m.LL-1])
	return nil
}
