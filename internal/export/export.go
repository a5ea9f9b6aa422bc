package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/experiment"
)

type ParamsData struct {
	N     float64 `json:"n"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
	Sigma float64 `json:"sigma"`
	R0    float64 `json:"r0"`
}

type ToleranceData struct {
	RelTol   float64 `json:"rtol"`
	AbsTol   float64 `json:"atol"`
	MaxSteps int     `json:"max_steps"`
	Dt       float64 `json:"dt,omitempty"`
}

type Data struct {
	ID        string               `json:"id"`
	Model     string               `json:"model"`
	Solver    string               `json:"solver"`
	Params    ParamsData           `json:"params"`
	Tolerance ToleranceData        `json:"tolerance"`
	Span      [2]float64           `json:"span"`
	Labels    []string             `json:"labels"`
	Times     []float64            `json:"times"`
	Series    map[string][]float64 `json:"series"`
	Stats     dynamo.Stats         `json:"stats"`
	Metrics   map[string]float64   `json:"metrics"`
	ElapsedMS float64              `json:"elapsed_ms"`
}

func NewData(res *experiment.Result) Data {
	p := res.Model.Params()
	cfg := res.Config
	sol := res.Solution

	data := Data{
		ID:     res.ID,
		Model:  res.Model.Name(),
		Solver: cfg.Solver,
		Params: ParamsData{N: p.N, Beta: p.Beta, Gamma: p.Gamma, Sigma: p.Sigma, R0: p.R0()},
		Tolerance: ToleranceData{
			RelTol:   cfg.Tolerance.RelTol,
			AbsTol:   cfg.Tolerance.AbsTol,
			MaxSteps: cfg.Tolerance.MaxSteps,
		},
		Span:      [2]float64{cfg.T0, cfg.T1},
		Labels:    sol.Labels,
		Times:     sol.Times,
		Series:    make(map[string][]float64, len(sol.Labels)),
		Stats:     sol.Stats,
		Metrics:   finite(res.Metrics),
		ElapsedMS: float64(res.Elapsed.Microseconds()) / 1000,
	}
	if cfg.Solver != "rk45" {
		data.Tolerance.Dt = cfg.Tolerance.Dt
	}
	if math.IsInf(data.Params.R0, 0) {
		data.Params.R0 = 0
	}
	for i, label := range sol.Labels {
		data.Series[label] = sol.Series(i)
	}
	return data
}

// finite drops values encoding/json cannot represent.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

func WriteJSON(w io.Writer, res *experiment.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewData(res))
}

// WriteCSV writes one row per grid point: time followed by each compartment.
func WriteCSV(w io.Writer, sol *dynamo.Solution) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, sol.Labels...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, t := range sol.Times {
		row[0] = formatFloat(t)
		for j, v := range sol.States[i] {
			row[j+1] = formatFloat(v)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ToFile runs write against path, or stdout when path is empty or "-".
func ToFile(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
