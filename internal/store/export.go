package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/kmdra/horizon/internal/sim"
)

type ExportData struct {
	Model      string             `json:"model"`
	Controller string             `json:"controller"`
	Backend    string             `json:"backend,omitempty"`
	Mode       string             `json:"mode"`
	Horizon    int                `json:"horizon,omitempty"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Controls   [][]float64        `json:"controls"`
	Metrics    map[string]float64 `json:"metrics"`
}

func ExportJSON(path string, meta RunMetadata, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return exportTo(file, meta, result)
}

func ExportJSONStdout(meta RunMetadata, result *sim.Result) error {
	return exportTo(os.Stdout, meta, result)
}

func exportTo(w io.Writer, meta RunMetadata, result *sim.Result) error {
	data := ExportData{
		Model:      meta.Model,
		Controller: meta.Controller,
		Backend:    meta.Backend,
		Mode:       meta.Mode,
		Horizon:    meta.Horizon,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Steps:      len(result.Times),
		Times:      result.Times,
		States:     make([][]float64, len(result.States)),
		Controls:   make([][]float64, len(result.Controls)),
		Metrics:    result.Metrics,
	}

	for i, s := range result.States {
		data.States[i] = s
	}
	for i, c := range result.Controls {
		data.Controls[i] = c
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
