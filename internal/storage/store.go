package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/beerslab/internal/concentration"
	"github.com/san-kum/beerslab/internal/config"
	"github.com/san-kum/beerslab/internal/sim"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Solute     string             `json:"solute"`
	SoluteForm string             `json:"solute_form"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Actions    []config.Action    `json:"actions,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

var sampleHeader = []string{
	"time", "solute", "solute_form", "solute_amount", "volume",
	"concentration", "percent_concentration", "precipitate_amount",
	"saturated", "particles", "color", "solvent_flow_rate",
	"drain_flow_rate", "evaporation_rate", "shaker_rate", "dropper_flow_rate",
}

// Save writes <id>/metadata.json and <id>/samples.csv and returns the id.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Solute, uuid.NewString())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Solute:     cfg.Solute,
		SoluteForm: cfg.SoluteForm,
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Steps:      result.StepsTaken,
		Actions:    result.Applied,
		Metrics:    result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, samplesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteSamplesCSV(csvFile, result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads back the samples and their times.
func (s *Store) LoadSamples(runID string) ([]concentration.Snapshot, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []concentration.Snapshot{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	samples := make([]concentration.Snapshot, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		t, snap, err := parseSample(records[i])
		if err != nil {
			return nil, nil, fmt.Errorf("storage: %s line %d: %w", samplesFile, i+1, err)
		}
		times = append(times, t)
		samples = append(samples, snap)
	}

	return samples, times, nil
}

// LoadResult rebuilds a result from a stored run. The configuration holds
// only what the metadata records.
func (s *Store) LoadResult(runID string) (*RunMetadata, *sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, times, err := s.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.DefaultConfig()
	cfg.Solute = meta.Solute
	cfg.SoluteForm = meta.SoluteForm
	cfg.Seed = meta.Seed
	cfg.Dt = meta.Dt
	cfg.Duration = meta.Duration
	cfg.Actions = meta.Actions

	return meta, &sim.Result{
		Config:     cfg,
		Times:      times,
		Samples:    samples,
		Applied:    meta.Actions,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}, nil
}

// Delete removes a run directory.
func (s *Store) Delete(runID string) error {
	dir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(filepath.Join(dir, metadataFile)); err != nil {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return os.RemoveAll(dir)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func sampleRow(t float64, s concentration.Snapshot) []string {
	return []string{
		formatFloat(t),
		s.Solute,
		s.SoluteForm,
		formatFloat(s.SoluteAmount),
		formatFloat(s.Volume),
		formatFloat(s.Concentration),
		formatFloat(s.PercentConcentration),
		formatFloat(s.PrecipitateAmount),
		strconv.FormatBool(s.Saturated),
		strconv.Itoa(s.Particles),
		s.Color,
		formatFloat(s.SolventFlowRate),
		formatFloat(s.DrainFlowRate),
		formatFloat(s.EvaporationRate),
		formatFloat(s.ShakerRate),
		formatFloat(s.DropperFlowRate),
	}
}

func parseSample(record []string) (float64, concentration.Snapshot, error) {
	var snap concentration.Snapshot
	if len(record) != len(sampleHeader) {
		return 0, snap, fmt.Errorf("expected %d fields, got %d", len(sampleHeader), len(record))
	}

	var firstErr error
	num := func(i int) float64 {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", sampleHeader[i], err)
		}
		return v
	}

	t := num(0)
	snap.Solute = record[1]
	snap.SoluteForm = record[2]
	snap.SoluteAmount = num(3)
	snap.Volume = num(4)
	snap.Concentration = num(5)
	snap.PercentConcentration = num(6)
	snap.PrecipitateAmount = num(7)
	saturated, err := strconv.ParseBool(record[8])
	if err != nil && firstErr == nil {
		firstErr = fmt.Errorf("saturated: %w", err)
	}
	snap.Saturated = saturated
	particles, err := strconv.Atoi(record[9])
	if err != nil && firstErr == nil {
		firstErr = fmt.Errorf("particles: %w", err)
	}
	snap.Particles = particles
	snap.Color = record[10]
	snap.SolventFlowRate = num(11)
	snap.DrainFlowRate = num(12)
	snap.EvaporationRate = num(13)
	snap.ShakerRate = num(14)
	snap.DropperFlowRate = num(15)

	return t, snap, firstErr
}
