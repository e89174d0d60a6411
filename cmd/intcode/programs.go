package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/store"
)

// loadProgram reads ref as a file ("-" for stdin), falling back to a name or
// hash in the program store.
func (a *app) loadProgram(ref string) ([]int64, error) {
	if ref == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return intcode.ParseProgram(string(data))
	}
	data, err := os.ReadFile(ref)
	if err == nil {
		return intcode.ParseProgram(string(data))
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	lib, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer lib.Close()
	return lib.Program(ref)
}

func (a *app) openStore() (*store.Library, error) {
	lib, err := store.Open(a.cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("program store: %w", err)
	}
	return lib, nil
}

// capacity is the configured channel size, raised to fit n queued inputs.
func (a *app) capacity(n int) int {
	c := a.cfg.VM.ChannelCapacity
	if n > c {
		return n
	}
	return c
}

// parseValues parses "1,2,-3". Empty text gives no values.
func parseValues(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return intcode.ParseProgram(s)
}

// parsePatches parses "1=12,2=2" into address/value pairs, in order.
func parsePatches(s string) ([][2]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var patches [][2]int64
	for _, p := range strings.Split(s, ",") {
		addr, value, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok {
			return nil, fmt.Errorf("patch %q: want addr=value", p)
		}
		a, err := strconv.ParseInt(strings.TrimSpace(addr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("patch %q: %w", p, err)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("patch %q: %w", p, err)
		}
		patches = append(patches, [2]int64{a, v})
	}
	return patches, nil
}

// parsePhases accepts an inclusive range "5-9" or a list "4,3,2,1,0".
func parsePhases(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if lo, hi, ok := strings.Cut(s, "-"); ok && lo != "" {
		from, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("phases %q: %w", s, err)
		}
		to, err := strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("phases %q: %w", s, err)
		}
		if to < from || to-from > 9 {
			return nil, fmt.Errorf("phases %q: want a range of 1 to 10 values", s)
		}
		var phases []int64
		for v := from; v <= to; v++ {
			phases = append(phases, v)
		}
		return phases, nil
	}
	phases, err := parseValues(s)
	if err != nil {
		return nil, err
	}
	if len(phases) == 0 {
		return nil, fmt.Errorf("no phases given")
	}
	return phases, nil
}
