// Package storage persists runs to a directory tree: one subdirectory per
// run holding metadata.json, expect.csv, and the full noise realization as
// noise.msgpack so any run can be replayed bit-for-bit.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/qdyn/internal/sde"
	"github.com/san-kum/qdyn/internal/traj"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Scenario  string    `json:"scenario"`
	Timestamp time.Time `json:"timestamp"`
	Solver    string    `json:"solver"`
	Method    string    `json:"method"`
	NTraj     int       `json:"ntraj"`
	NSub      int       `json:"nsub"`
	Seed      uint64    `json:"seed"`
	Duration  float64   `json:"duration"`
	Steps     int       `json:"steps"`
	Labels    []string  `json:"labels"`
}

// Save writes one run and returns its generated ID.
func (s *Store) Save(meta RunMetadata, res *traj.Result) (string, error) {
	runID := fmt.Sprintf("%s-%s", meta.Scenario, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeExpect(filepath.Join(runDir, "expect.csv"), meta.Labels, res); err != nil {
		return "", err
	}

	if res.Noise != nil {
		data, err := msgpack.Marshal(res.Noise)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(runDir, "noise.msgpack"), data, 0644); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func writeExpect(path string, labels []string, res *traj.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"time"}
	for o := range res.Expect {
		label := fmt.Sprintf("e%d", o)
		if o < len(labels) {
			label = labels[o]
		}
		header = append(header, label)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range res.Times {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for o := range res.Expect {
			row = append(row, strconv.FormatFloat(real(res.Expect[o][i]), 'g', 12, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

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
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadExpect reads the expectation traces back: times plus one column per
// observable.
func (s *Store) LoadExpect(runID string) ([]float64, [][]float64, []string, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "expect.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, nil, fmt.Errorf("storage: run %s has no expectation data", runID)
	}

	labels := records[0][1:]
	times := make([]float64, 0, len(records)-1)
	cols := make([][]float64, len(labels))
	for i := range cols {
		cols[i] = make([]float64, 0, len(records)-1)
	}
	for _, rec := range records[1:] {
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, nil, nil, err
		}
		times = append(times, t)
		for o := range cols {
			v, err := strconv.ParseFloat(rec[o+1], 64)
			if err != nil {
				return nil, nil, nil, err
			}
			cols[o] = append(cols[o], v)
		}
	}
	return times, cols, labels, nil
}

// LoadNoise reads the stored realization for replay.
func (s *Store) LoadNoise(runID string) (*sde.Realization, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "noise.msgpack"))
	if err != nil {
		return nil, err
	}
	var r sde.Realization
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
