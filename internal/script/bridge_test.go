package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmostafa/modelrun/internal/store"
)

func newStore() *store.Store {
	s := store.New()
	s.Set(store.LengthKey, store.Scalar(3))
	s.Set("LATA", store.IntegerSeries([]int{2020, 2021, 2022}))
	s.Set("GDP", store.NumericSeries([]float64{100, 105, 105}))
	s.Set("RATE", store.NumericSeries([]float64{1.5, 2, 2.5}))
	return s
}

func requireUnchanged(t *testing.T, before, after *store.Store) {
	t.Helper()
	require.Equal(t, before.Names(), after.Names())
	before.Each(func(name string, v store.Value) bool {
		got, _ := after.Get(name)
		assert.True(t, v.Equal(got), "%s changed: %v -> %v", name, v, got)
		return true
	})
}

func TestBridge_HarvestAsymmetry(t *testing.T) {
	tests := []struct {
		engine string
		code   string
	}{
		{EngineJS, "GDP = GDP[0] * 2; newVar = 5;"},
		{EngineTengo, "GDP = GDP[0] * 2\nnewVar := 5"},
	}
	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			s := newStore()
			result, err := NewBridge(DefaultConfig()).RunWith(context.Background(), tt.engine, s, tt.code)
			require.NoError(t, err)

			gdp, _ := s.Get("GDP")
			assert.Equal(t, store.KindScalar, gdp.Kind())
			f, ok := store.AsFloat(gdp.Any())
			require.True(t, ok, "GDP = %v", gdp.Any())
			assert.Equal(t, 200.0, f)

			assert.False(t, s.Has("newVar"))
			assert.Contains(t, result.Dropped, "newVar")
			assert.Equal(t, []string{"LL", "LATA", "GDP", "RATE"}, s.Names())
		})
	}
}

func TestBridge_SeriesStaySeries(t *testing.T) {
	tests := []struct {
		engine string
		code   string
	}{
		{EngineJS, "RATE = RATE.map(function (r) { return r * 2 }); GDP[1] = 0;"},
		{EngineTengo, "for i := 0; i < len(RATE); i++ { RATE[i] = RATE[i] * 2 }\nGDP[1] = 0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			s := newStore()
			_, err := NewBridge(DefaultConfig()).RunWith(context.Background(), tt.engine, s, tt.code)
			require.NoError(t, err)

			rate, _ := s.Get("RATE")
			assert.Equal(t, store.KindNumericSeries, rate.Kind())
			assert.Equal(t, []float64{3, 4, 5}, rate.Floats())

			gdp, _ := s.Get("GDP")
			assert.Equal(t, []float64{100, 0, 105}, gdp.Floats())

			years, _ := s.Get("LATA")
			assert.Equal(t, store.KindIntegerSeries, years.Kind())
			assert.Equal(t, []int{2020, 2021, 2022}, years.Ints())

			ll, ok := s.Length()
			require.True(t, ok)
			assert.Equal(t, 3, ll)
		})
	}
}

func TestBridge_NewSeriesOfWrongLengthBecomesScalar(t *testing.T) {
	s := newStore()
	_, err := NewBridge(DefaultConfig()).Run(context.Background(), s, "RATE = [1, 2];")
	require.NoError(t, err)

	rate, _ := s.Get("RATE")
	assert.Equal(t, store.KindScalar, rate.Kind())
}

func TestBridge_PrintOutput(t *testing.T) {
	tests := []struct {
		engine string
		code   string
		want   string
	}{
		{EngineJS, `print("LL is", LL); console.log("done")`, "LL is 3\ndone\n"},
		{EngineTengo, `println("LL is", LL)` + "\n" + `print("done")`, "LL is 3\ndone"},
	}
	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			result, err := NewBridge(DefaultConfig()).RunWith(context.Background(), tt.engine, newStore(), tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Output)
			assert.Equal(t, tt.engine, result.Engine)
		})
	}
}

func TestBridge_FailuresLeaveStoreUnmodified(t *testing.T) {
	tests := []struct {
		name     string
		engine   string
		code     string
		wantKind error
	}{
		{"js syntax error", EngineJS, "GDP = = 1", store.ErrScriptFailed},
		{"js runtime error after mutation", EngineJS, "GDP = 1; undefined_function();", store.ErrScriptFailed},
		{"js thrown error", EngineJS, `RATE = 0; throw new Error("nope")`, store.ErrScriptFailed},
		{"js deleted variable", EngineJS, "GDP = 1; delete RATE;", store.ErrVariableRemoved},
		{"js LL changed", EngineJS, "LL = 4;", store.ErrLengthChanged},
		{"tengo compile error", EngineTengo, "GDP = undefinedName", store.ErrScriptFailed},
		{"tengo runtime error", EngineTengo, `GDP = 1` + "\n" + `x := LL / 0`, store.ErrScriptFailed},
		{"tengo LL changed", EngineTengo, `LL = "three"`, store.ErrLengthChanged},
		{"unknown engine", "lua", "GDP = 1", store.ErrScriptFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore()
			before := s.Clone()

			result, err := NewBridge(DefaultConfig()).RunWith(context.Background(), tt.engine, s, tt.code)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.wantKind), "got %v", err)
			assert.Equal(t, store.StageScript, store.StageOf(err))
			requireUnchanged(t, before, s)
		})
	}
}

func TestBridge_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond

	tests := []struct {
		engine string
		code   string
	}{
		{EngineJS, "GDP = 0; while (true) {}"},
		{EngineTengo, "GDP = 0\nfor {}"},
	}
	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			s := newStore()
			before := s.Clone()

			_, err := NewBridge(cfg).RunWith(context.Background(), tt.engine, s, tt.code)
			require.Error(t, err)
			assert.True(t, errors.Is(err, store.ErrScriptFailed))
			requireUnchanged(t, before, s)
		})
	}
}

func TestBridge_TengoAllocationBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAllocs = 100

	s := newStore()
	code := "xs := []\nfor i := 0; i < 10000; i++ { xs = append(xs, [i]) }"
	_, err := NewBridge(cfg).RunWith(context.Background(), EngineTengo, s, code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrScriptFailed))
}

func TestBridge_TengoStdlib(t *testing.T) {
	s := newStore()
	code := `math := import("math")` + "\n" + `RATE = [math.floor(RATE[0]), RATE[1], RATE[2]]`
	_, err := NewBridge(DefaultConfig()).RunWith(context.Background(), EngineTengo, s, code)
	require.NoError(t, err)

	rate, _ := s.Get("RATE")
	assert.Equal(t, []float64{1, 2, 2.5}, rate.Floats())
	assert.False(t, s.Has("math"))

	_, err = NewBridge(DefaultConfig()).RunWith(context.Background(), EngineTengo, s, `os := import("os")`)
	require.Error(t, err)
}

func TestBridge_RunFile(t *testing.T) {
	dir := t.TempDir()
	jsPath := filepath.Join(dir, "double.js")
	tengoPath := filepath.Join(dir, "double.tengo")
	require.NoError(t, os.WriteFile(jsPath, []byte("RATE = RATE.map(function (r) { return r * 2 });"), 0644))
	require.NoError(t, os.WriteFile(tengoPath, []byte("for i := 0; i < len(RATE); i++ { RATE[i] = RATE[i] * 2 }"), 0644))

	s := newStore()
	b := NewBridge(DefaultConfig())

	result, err := b.RunFile(context.Background(), s, jsPath)
	require.NoError(t, err)
	assert.Equal(t, EngineJS, result.Engine)

	result, err = b.RunFile(context.Background(), s, tengoPath)
	require.NoError(t, err)
	assert.Equal(t, EngineTengo, result.Engine)

	rate, _ := s.Get("RATE")
	assert.Equal(t, []float64{6, 8, 10}, rate.Floats())

	_, err = b.RunFile(context.Background(), s, filepath.Join(dir, "missing.js"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEngineForFile(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.js", EngineJS},
		{"dir/b.tengo", EngineTengo},
		{"c.groovy", EngineTengo},
		{"noext", EngineTengo},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, EngineForFile(tt.path, EngineTengo))
		})
	}
}

func TestValidateEngine(t *testing.T) {
	for _, name := range []string{EngineJS, EngineTengo} {
		got, err := ValidateEngine(name)
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}
	_, err := ValidateEngine("python")
	assert.Error(t, err)
}

func TestMapEnv(t *testing.T) {
	env := NewMapEnv()
	env.Set("a", 1)
	env.Set("b", 2)
	env.Set("a", 3)
	assert.Equal(t, []string{"a", "b"}, env.Names())

	v, ok := env.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	env.Delete("a")
	env.Delete("missing")
	assert.False(t, env.Contains("a"))
	assert.Equal(t, []string{"b"}, env.Names())
}

func TestEnvFromStoreCopiesSeries(t *testing.T) {
	s := newStore()
	env := EnvFromStore(s)

	raw, _ := env.Get("GDP")
	raw.([]float64)[0] = -1

	gdp, _ := s.Get("GDP")
	assert.Equal(t, 100.0, gdp.Floats()[0])
	assert.Equal(t, s.Names(), env.Names())
}
