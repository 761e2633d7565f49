package models

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/itsmostafa/modelrun/internal/model"
)

func init() {
	model.Register("Model1", func() model.Unit { return &Model1{} })
}

// Model1 is the GDP expenditure projection.
type Model1 struct {
	LL int

	TwKI  []float64
	TwKS  []float64
	TwINW []float64
	TwEKS []float64
	TwIMP []float64

	KI  []float64
	KS  []float64
	INW []float64
	EKS []float64
	IMP []float64

	PKB []float64

	// scratch space, never bound
	temp float64
}

func (m *Model1) Params() []model.Param {
	return []model.Param{
		model.Length(&m.LL),
		model.Series("twKI", &m.TwKI),
		model.Series("twKS", &m.TwKS),
		model.Series("twINW", &m.TwINW),
		model.Series("twEKS", &m.TwEKS),
		model.Series("twIMP", &m.TwIMP),
		model.Series("KI", &m.KI),
		model.Series("KS", &m.KS),
		model.Series("INW", &m.INW),
		model.Series("EKS", &m.EKS),
		model.Series("IMP", &m.IMP),
		model.Series("PKB", &m.PKB),
		model.Float("temp", &m.temp).Internal(),
	}
}

func (m *Model1) Run() error {
	components := []struct {
		name   string
		level  []float64
		growth []float64
	}{
		{"KI", m.KI, m.TwKI},
		{"KS", m.KS, m.TwKS},
		{"INW", m.INW, m.TwINW},
		{"EKS", m.EKS, m.TwEKS},
		{"IMP", m.IMP, m.TwIMP},
	}
	for _, c := range components {
		if len(c.level) != m.LL || len(c.growth) != m.LL {
			return fmt.Errorf("input %s or its growth factor is not bound", c.name)
		}
		for t := 1; t < m.LL; t++ {
			m.temp = c.growth[t] * c.level[t-1]
			c.level[t] = m.temp
		}
	}

	m.PKB = make([]float64, m.LL)
	floats.AddTo(m.PKB, m.KI, m.KS)
	floats.Add(m.PKB, m.INW)
	floats.Add(m.PKB, m.EKS)
	floats.Sub(m.PKB, m.IMP)
	return nil
}
