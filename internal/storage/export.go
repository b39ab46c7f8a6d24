package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/beerslab/internal/concentration"
	"github.com/san-kum/beerslab/internal/sim"
)

type ExportData struct {
	Solute     string                   `json:"solute"`
	SoluteForm string                   `json:"solute_form"`
	Dt         float64                  `json:"dt"`
	Duration   float64                  `json:"duration"`
	Steps      int                      `json:"steps"`
	Times      []float64                `json:"times"`
	Samples    []concentration.Snapshot `json:"samples"`
	Metrics    map[string]float64       `json:"metrics"`
}

func exportData(result *sim.Result) ExportData {
	data := ExportData{
		Steps:   result.StepsTaken,
		Times:   result.Times,
		Samples: result.Samples,
		Metrics: result.Metrics,
	}
	if cfg := result.Config; cfg != nil {
		data.Solute = cfg.Solute
		data.SoluteForm = cfg.SoluteForm
		data.Dt = cfg.Dt
		data.Duration = cfg.Duration
	}
	return data
}

// WriteJSON encodes a result as indented JSON.
func WriteJSON(w io.Writer, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(result))
}

func ExportJSON(path string, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, result)
}

// WriteSamplesCSV writes a header row and one row per sample.
func WriteSamplesCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sampleHeader); err != nil {
		return err
	}
	for i, s := range result.Samples {
		if err := cw.Write(sampleRow(result.Times[i], s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportCSV(path string, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteSamplesCSV(file, result)
}
