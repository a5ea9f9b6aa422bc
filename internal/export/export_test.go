package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/san-kum/seirsim/internal/config"
	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/experiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSolution() *dynamo.Solution {
	return &dynamo.Solution{
		Times:  []float64{0, 0.5, 1},
		States: []dynamo.State{{99, 0, 1, 0}, {98.5, 0.3, 1.1, 0.1}, {97.75, 0.6, 1.3, 0.35}},
		Labels: []string{"S", "E", "I", "R"},
	}
}

func runDefault(t *testing.T) *experiment.Result {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Points = 50

	exp := experiment.New(cfg, nil)
	require.NoError(t, exp.Setup(experiment.NewRegistry()))
	res, err := exp.Run(context.Background())
	require.NoError(t, err)
	return res
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleSolution()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"time", "S", "E", "I", "R"}, records[0])
	assert.Equal(t, []string{"0", "99", "0", "1", "0"}, records[1])
	assert.Equal(t, []string{"1", "97.75", "0.6", "1.3", "0.35"}, records[3])
}

func TestWriteCSVRoundTripsValues(t *testing.T) {
	sol := &dynamo.Solution{
		Times:  []float64{0, 1.0 / 3},
		States: []dynamo.State{{1.0 / 7}, {2.0 / 3}},
		Labels: []string{"x0"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sol))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	v, err := strconv.ParseFloat(records[2][1], 64)
	require.NoError(t, err)
	assert.Equal(t, 2.0/3, v)
}

func TestWriteJSON(t *testing.T) {
	res := runDefault(t)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, res))

	var data Data
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))

	assert.Equal(t, res.ID, data.ID)
	assert.Equal(t, "SEIR", data.Model)
	assert.Equal(t, "rk45", data.Solver)
	assert.Equal(t, 100.0, data.Params.N)
	assert.InDelta(t, 15.0, data.Params.R0, 1e-12)
	assert.Equal(t, [2]float64{0, 160}, data.Span)
	assert.Equal(t, []string{"S", "E", "I", "R"}, data.Labels)
	assert.Len(t, data.Times, 50)
	assert.Len(t, data.Series, 4)
	assert.Len(t, data.Series["I"], 50)
	assert.Equal(t, 99.0, data.Series["S"][0])
	assert.Zero(t, data.Tolerance.Dt)
	assert.Positive(t, data.Stats.Steps)
	assert.Contains(t, data.Metrics, "peak_I")
}

func TestNewDataDropsNonFinite(t *testing.T) {
	res := runDefault(t)
	res.Metrics["broken"] = 1 / zero()

	data := NewData(res)
	assert.NotContains(t, data.Metrics, "broken")
	assert.Contains(t, data.Metrics, "final_R")
}

func zero() float64 { return 0 }

func TestToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	require.NoError(t, ToFile(path, func(w io.Writer) error {
		return WriteCSV(w, sampleSolution())
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("time,S,E,I,R\n")))
}
