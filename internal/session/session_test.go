package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmostafa/modelrun/internal/model"
	"github.com/itsmostafa/modelrun/internal/script"
	"github.com/itsmostafa/modelrun/internal/store"
)

// scale multiplies GDP by RATE into SCALED.
type scale struct {
	LL     int
	GDP    []float64
	RATE   []float64
	SCALED []float64
}

func (u *scale) Params() []model.Param {
	return []model.Param{
		model.Length(&u.LL),
		model.Series("GDP", &u.GDP),
		model.Series("RATE", &u.RATE),
		model.Series("SCALED", &u.SCALED),
	}
}

func (u *scale) Run() error {
	if len(u.GDP) != u.LL || len(u.RATE) != u.LL {
		return errors.New("inputs not bound")
	}
	u.SCALED = make([]float64, u.LL)
	for i := range u.SCALED {
		u.SCALED[i] = u.GDP[i] * u.RATE[i]
	}
	return nil
}

func newSession(t *testing.T, logs *bytes.Buffer) *Session {
	t.Helper()
	reg := model.NewRegistry()
	reg.Register("Scale", func() model.Unit { return &scale{} })

	opts := Options{Registry: reg, Script: script.DefaultConfig()}
	if logs != nil {
		opts.Logger = slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return New(opts)
}

func TestSession_LoadRunAndReport(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, nil)
	require.NotEmpty(t, s.ID)

	require.NoError(t, s.Load(ctx, "testdata/sample.txt"))
	assert.Equal(t, "testdata/sample.txt", s.Source())

	result, err := s.RunModel(ctx, "Scale")
	require.NoError(t, err)
	assert.Contains(t, result.Harvested, "SCALED")

	scriptResult, err := s.RunScript(ctx, "GDP = GDP.map(function (g) { return g + 1 }); tmp = 1;")
	require.NoError(t, err)
	assert.Equal(t, []string{"tmp"}, scriptResult.Dropped)

	want := "LATA\t2020\t2021\t2022\n" +
		"GDP\t101\t106\t106\n" +
		"RATE\t1.5\t2\t2.5\n" +
		"SCALED\t150\t210\t262.5\n"
	assert.Equal(t, want, s.TSV())

	var buf bytes.Buffer
	require.NoError(t, s.WriteTSV(&buf))
	assert.Equal(t, want, buf.String())
}

func TestSession_LoadFailureKeepsStore(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, nil)
	require.NoError(t, s.Load(ctx, "testdata/sample.txt"))
	before := s.Store()

	bad := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("GDP 1 2\n"), 0644))

	err := s.Load(ctx, bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrMissingHeader))
	assert.Same(t, before, s.Store())
	assert.Equal(t, "testdata/sample.txt", s.Source())
}

func TestSession_RunModelBeforeLoad(t *testing.T) {
	_, err := newSession(t, nil).RunModel(context.Background(), "Scale")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrMissingLL))
}

func TestSession_RunScriptFileAndEngine(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, nil)
	require.NoError(t, s.Load(ctx, "testdata/sample.txt"))

	path := filepath.Join(t.TempDir(), "halve.tengo")
	require.NoError(t, os.WriteFile(path, []byte("for i := 0; i < len(GDP); i++ { GDP[i] = GDP[i] / 2 }"), 0644))

	result, err := s.RunScriptFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, script.EngineTengo, result.Engine)

	result, err = s.RunScriptWith(ctx, script.EngineTengo, `println(LL)`)
	require.NoError(t, err)
	assert.Equal(t, "3\n", result.Output)

	gdp, _ := s.Store().Get("GDP")
	assert.Equal(t, []float64{50, 52.5, 52.5}, gdp.Floats())
}

func TestSession_LogsCarrySessionID(t *testing.T) {
	var logs bytes.Buffer
	ctx := context.Background()
	s := newSession(t, &logs)

	require.NoError(t, s.Load(ctx, "testdata/sample.txt"))
	_, err := s.RunModel(ctx, "Scale")
	require.NoError(t, err)
	_, err = s.RunScript(ctx, "LL = 9;")
	require.Error(t, err)

	out := logs.String()
	assert.Contains(t, out, "session="+s.ID)
	assert.Contains(t, out, "model=Scale")
	assert.Contains(t, out, "script failed")
	assert.Contains(t, out, "stage=script")
}

func TestSession_FailuresLeaveReportingToCaller(t *testing.T) {
	var logs bytes.Buffer
	reg := model.NewRegistry()
	s := New(Options{
		Registry: reg,
		Logger:   slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo})),
	})
	ctx := context.Background()

	require.Error(t, s.Load(ctx, filepath.Join(t.TempDir(), "missing.txt")))
	require.NoError(t, s.Load(ctx, "testdata/sample.txt"))
	_, err := s.RunModel(ctx, "Missing")
	require.Error(t, err)
	_, err = s.RunScript(ctx, "LL = 9;")
	require.Error(t, err)

	out := logs.String()
	assert.NotContains(t, out, "level=ERROR")
	assert.NotContains(t, out, "load failed")
	assert.NotContains(t, out, "model failed")
	assert.Contains(t, out, "data loaded")
}
