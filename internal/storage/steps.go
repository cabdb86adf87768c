package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/dynobj/internal/experiment"
)

var stepColumns = []string{"step", "instance", "class", "method", "args", "state", "failed", "output", "error"}

func writeSteps(path string, records []experiment.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)

	keys := metricKeys(records)
	header := append(append([]string{}, stepColumns...), keys...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		args := make([]string, len(rec.Args))
		for i, v := range rec.Args {
			args[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}

		row := []string{
			strconv.Itoa(rec.Step),
			rec.Instance,
			rec.Class,
			rec.Method,
			strings.Join(args, " "),
			rec.State,
			strconv.FormatBool(rec.Failed),
			rec.Output,
			rec.Err,
		}
		for _, k := range keys {
			v, ok := rec.Metrics[k]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func metricKeys(records []experiment.Record) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		for k := range rec.Metrics {
			seen[k] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadSteps reads a run's step log back into records.
func (s *Store) LoadSteps(runID string) ([]experiment.Record, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, stepsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []experiment.Record{}, nil
	}

	keys := rows[0][len(stepColumns):]
	records := make([]experiment.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseStep(row, keys)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", stepsFile, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseStep(row, keys []string) (experiment.Record, error) {
	if len(row) != len(stepColumns)+len(keys) {
		return experiment.Record{}, ErrMalformedStep
	}

	step, err := strconv.Atoi(row[0])
	if err != nil {
		return experiment.Record{}, fmt.Errorf("%w: step %q", ErrMalformedStep, row[0])
	}
	failed, err := strconv.ParseBool(row[6])
	if err != nil {
		return experiment.Record{}, fmt.Errorf("%w: failed %q", ErrMalformedStep, row[6])
	}

	rec := experiment.Record{
		Step:     step,
		Instance: row[1],
		Class:    row[2],
		Method:   row[3],
		State:    row[5],
		Failed:   failed,
		Output:   row[7],
		Err:      row[8],
	}

	for _, field := range strings.Fields(row[4]) {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return experiment.Record{}, fmt.Errorf("%w: arg %q", ErrMalformedStep, field)
		}
		rec.Args = append(rec.Args, v)
	}

	for j, k := range keys {
		cell := row[len(stepColumns)+j]
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			continue
		}
		if rec.Metrics == nil {
			rec.Metrics = make(map[string]float64)
		}
		rec.Metrics[k] = v
	}

	return rec, nil
}

// Series returns one metric of one instance across the steps of a run.
// field has the form instance.metric, for example glider.altitude.
func (s *Store) Series(runID, field string) ([]float64, []float64, error) {
	instance, metric, ok := strings.Cut(field, ".")
	if !ok || instance == "" || metric == "" {
		return nil, nil, fmt.Errorf("%w: %q (want instance.metric)", ErrUnknownField, field)
	}

	records, err := s.LoadSteps(runID)
	if err != nil {
		return nil, nil, err
	}

	var steps, values []float64
	for _, rec := range records {
		if rec.Instance != instance {
			continue
		}
		v, ok := rec.Metrics[metric]
		if !ok {
			continue
		}
		steps = append(steps, float64(rec.Step))
		values = append(values, v)
	}

	if len(values) == 0 {
		return nil, nil, fmt.Errorf("%w: %s in %s", ErrUnknownField, field, runID)
	}
	return steps, values, nil
}

// Fields lists the instance.metric names recorded in a run.
func (s *Store) Fields(runID string) ([]string, error) {
	records, err := s.LoadSteps(runID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, rec := range records {
		for k := range rec.Metrics {
			seen[rec.Instance+"."+k] = true
		}
	}
	fields := make([]string, 0, len(seen))
	for f := range seen {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields, nil
}
