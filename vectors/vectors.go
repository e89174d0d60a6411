// Package vectors replays recorded Intcode runs and reports where a fresh
// run disagrees with the recording.
package vectors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/colorfulnotion/intcode/host"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Vector is one recorded run.
type Vector struct {
	Name     string  `json:"name"`
	Program  string  `json:"program"`
	Inputs   []int64 `json:"inputs,omitempty"`
	Expected Outcome `json:"expected"`
}

// Outcome is what a run produced. Memory is only compared when the
// recording carries one.
type Outcome struct {
	Outputs []int64 `json:"outputs"`
	Memory  string  `json:"memory,omitempty"`
	State   string  `json:"state"`
	Error   string  `json:"error,omitempty"`
}

// Mismatch describes one vector whose fresh run differs from the recording.
type Mismatch struct {
	Name   string
	Actual Outcome
	Diff   string
}

var kinds = []error{
	vmerrors.ErrProgramParse,
	vmerrors.ErrOpcodeParse,
	vmerrors.ErrAddressingMode,
	vmerrors.ErrImmediateDestination,
	vmerrors.ErrNegativeAddress,
	vmerrors.ErrInvalidInput,
	vmerrors.ErrOutputClosed,
	vmerrors.ErrNotReady,
}

// ErrorKind names err by its code and name, e.g. "IO1_InvalidInputError".
// Errors outside the VM's own set are named by their message.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return vmerrors.GetErrorCodeWithName(k)
		}
	}
	return err.Error()
}

// Parse reads either a single vector or an array of them.
func Parse(data []byte) ([]Vector, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var v Vector
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parse vector: %w", err)
		}
		return []Vector{v}, nil
	}
	var vs []Vector
	if err := json.Unmarshal(data, &vs); err != nil {
		return nil, fmt.Errorf("parse vectors: %w", err)
	}
	return vs, nil
}

// LoadFile reads vectors from a JSON file.
func LoadFile(path string) ([]Vector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vs, nil
}

// Execute runs v once and records what happened. Context errors are
// returned rather than recorded.
func Execute(ctx context.Context, v Vector) (Outcome, error) {
	return execute(ctx, v, v.Expected.Memory != "")
}

func execute(ctx context.Context, v Vector, withMemory bool) (Outcome, error) {
	m := host.NewIO(host.InputCapacity(len(v.Inputs)))
	m.VM.Identifier = v.Name
	outcome := Outcome{Outputs: []int64{}}

	if err := m.VM.Load(v.Program); err != nil {
		outcome.State = m.VM.State().String()
		outcome.Error = ErrorKind(err)
		return outcome, nil
	}
	if err := m.Feed(ctx, v.Inputs...); err != nil {
		return outcome, err
	}
	out, err := m.Collect(ctx)
	if ctx.Err() != nil {
		return outcome, ctx.Err()
	}
	if out != nil {
		outcome.Outputs = out
	}
	outcome.State = m.VM.State().String()
	outcome.Error = ErrorKind(err)
	if withMemory {
		outcome.Memory = m.VM.Dump()
	}
	return outcome, nil
}

// Compare returns an ASCII delta between two outcomes, or "" when they match.
func Compare(expected, actual Outcome, coloring bool) (string, error) {
	expJSON, err := json.Marshal(expected)
	if err != nil {
		return "", err
	}
	actJSON, err := json.Marshal(actual)
	if err != nil {
		return "", err
	}

	differ := gojsondiff.New()
	delta, err := differ.Compare(expJSON, actJSON)
	if err != nil {
		return "", fmt.Errorf("diff outcomes: %w", err)
	}
	if !delta.Modified() {
		return "", nil
	}

	// the formatter walks the left side as a generic value
	var leftObj map[string]interface{}
	if err := json.Unmarshal(expJSON, &leftObj); err != nil {
		return "", err
	}
	cfg := formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       coloring,
	}
	return formatter.NewAsciiFormatter(leftObj, cfg).Format(delta)
}

// Check runs every vector and returns the ones that disagree with their
// recording.
func Check(ctx context.Context, vs []Vector, coloring bool) ([]Mismatch, error) {
	var mismatches []Mismatch
	for i, v := range vs {
		name := v.Name
		if name == "" {
			name = fmt.Sprintf("vector-%d", i)
			v.Name = name
		}
		actual, err := Execute(ctx, v)
		if err != nil {
			return mismatches, fmt.Errorf("%s: %w", name, err)
		}
		expected := v.Expected
		if expected.Outputs == nil {
			expected.Outputs = []int64{}
		}
		diff, err := Compare(expected, actual, coloring)
		if err != nil {
			return mismatches, fmt.Errorf("%s: %w", name, err)
		}
		if diff == "" {
			log.Debug(log.VectorMonitoring, "vector passed", "name", name)
			continue
		}
		log.Info(log.VectorMonitoring, "vector failed", "name", name, "state", actual.State, "error", actual.Error)
		mismatches = append(mismatches, Mismatch{Name: name, Actual: actual, Diff: diff})
	}
	return mismatches, nil
}

// Record fills in each vector's expectation from a fresh run. withMemory
// also records the final memory image.
func Record(ctx context.Context, vs []Vector, withMemory bool) error {
	for i := range vs {
		actual, err := execute(ctx, vs[i], withMemory)
		if err != nil {
			return fmt.Errorf("%s: %w", vs[i].Name, err)
		}
		vs[i].Expected = actual
	}
	return nil
}
