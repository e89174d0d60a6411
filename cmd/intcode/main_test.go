package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t      *testing.T
	dir    string
	config string
}

func newCLI(t *testing.T) *cli {
	dir := t.TempDir()
	c := &cli{t: t, dir: dir, config: filepath.Join(dir, "intcode.toml")}
	body := fmt.Sprintf("[store]\npath = %q\n", filepath.Join(dir, "programs"))
	require.NoError(t, os.WriteFile(c.config, []byte(body), 0o644))
	return c
}

func (c *cli) file(name, body string) string {
	path := filepath.Join(c.dir, name)
	require.NoError(c.t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func (c *cli) exec(args ...string) (string, error) {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", c.config}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	c := newCLI(t)
	echo := c.file("echo.ic", "3,0,4,0,99\n")
	out, err := c.exec("run", echo, "--input", "7")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)

	out, err = c.exec("run", c.file("day2.ic", "1,9,10,3,2,3,11,0,99,30,40,50"), "--dump")
	require.NoError(t, err)
	assert.Equal(t, "3500,9,10,70,2,3,11,0,99,30,40,50\n", out)

	out, err = c.exec("run", c.file("patch.ic", "1,0,0,0,99"), "--patch", "1=4,2=4", "--dump")
	require.NoError(t, err)
	assert.Equal(t, "198,4,4,0,99\n", out)
}

func TestRunCommandASCII(t *testing.T) {
	c := newCLI(t)
	echo := c.file("echo.ic", "3,100,4,100,1008,100,10,101,1006,101,0,99")
	out, err := c.exec("run", echo, "--ascii", "--input", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)
}

func TestRunCommandErrors(t *testing.T) {
	c := newCLI(t)
	_, err := c.exec("run", c.file("in.ic", "3,0,99"))
	assert.ErrorContains(t, err, "InvalidInputError")

	_, err = c.exec("run", c.file("bad.ic", "1,x"))
	assert.ErrorContains(t, err, "ProgramParseError")

	_, err = c.exec("run", "no-such-program")
	assert.ErrorContains(t, err, "ProgramNotFound")

	_, err = c.exec("run", c.file("ok.ic", "99"), "--patch", "1")
	assert.ErrorContains(t, err, "addr=value")
}

func TestAmplifyCommand(t *testing.T) {
	c := newCLI(t)
	linear := c.file("amp.ic", "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0")
	out, err := c.exec("amplify", linear)
	require.NoError(t, err)
	assert.Equal(t, "max signal 43210 with phases [4 3 2 1 0]\n", out)

	out, err = c.exec("amplify", linear, "--order", "4,3,2,1,0")
	require.NoError(t, err)
	assert.Equal(t, "signal 43210\n", out)

	out, err = c.exec("amplify", linear, "--report")
	require.NoError(t, err)
	assert.Contains(t, out, "amp-a phase=4")

	loop := c.file("loop.ic", "3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26,27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5")
	out, err = c.exec("amplify", loop, "--feedback", "--phases", "5-9")
	require.NoError(t, err)
	assert.Equal(t, "max signal 139629729 with phases [9 8 7 6 5]\n", out)

	chart := filepath.Join(c.dir, "sweep.html")
	_, err = c.exec("amplify", linear, "--phases", "0-2", "--chart", chart)
	require.NoError(t, err)
	html, err := os.ReadFile(chart)
	require.NoError(t, err)
	assert.Contains(t, string(html), "best order 210 signal 210")
}

func TestDisasmCommand(t *testing.T) {
	c := newCLI(t)
	out, err := c.exec("disasm", c.file("p.ic", "1002,4,3,4,33"))
	require.NoError(t, err)
	assert.Equal(t, "     0  mul [4], 3, [4]\n     4  data 33\n", out)
}

func TestStoreCommands(t *testing.T) {
	c := newCLI(t)
	out, err := c.exec("store", "add", "echo", c.file("echo.ic", "3,0,4,0,99"))
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	assert.Equal(t, "echo", fields[0])
	hash := fields[1]

	out, err = c.exec("store", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "echo")

	out, err = c.exec("store", "show", hash)
	require.NoError(t, err)
	assert.Equal(t, "3,0,4,0,99\n", out)

	out, err = c.exec("store", "show", "echo", "--disasm")
	require.NoError(t, err)
	assert.Contains(t, out, "in [0]")

	out, err = c.exec("run", "echo", "--input", "5")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)

	_, err = c.exec("store", "rm", "echo")
	require.NoError(t, err)
	_, err = c.exec("store", "show", "echo")
	assert.ErrorContains(t, err, "ProgramNotFound")
}

func TestScriptCommand(t *testing.T) {
	c := newCLI(t)
	adder := c.file("adder.ic", "3,20,3,21,1,20,21,22,4,22,99")
	driver := c.file("driver.js", "exchange(1, 40, 2)[0]")
	out, err := c.exec("script", adder, driver)
	require.NoError(t, err)
	assert.Equal(t, "=> 42\n", out)
}

func TestCheckCommand(t *testing.T) {
	c := newCLI(t)
	path := c.file("vectors.json", `[
  {"name": "echo", "program": "3,0,4,0,99", "inputs": [4]},
  {"name": "closed", "program": "3,0,99"}
]`)
	out, err := c.exec("check", path, "--record")
	require.NoError(t, err)
	assert.Equal(t, "recorded 2 vectors\n", out)

	out, err = c.exec("check", path)
	require.NoError(t, err)
	assert.Equal(t, "2/2 vectors passed\n", out)

	bad := c.file("bad.json", `{"name": "echo", "program": "3,0,4,0,99", "inputs": [4],
  "expected": {"outputs": [5], "state": "exited"}}`)
	out, err = c.exec("check", bad)
	assert.ErrorContains(t, err, "1 vectors failed")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "0/1 vectors passed")
}

// lockedBuffer is written by the readline goroutine and the output printer.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (c *cli) console(stdin string, args ...string) (string, error) {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out := &lockedBuffer{}
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", c.config, "console", "--history", ""}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(out)
	cmd.SetErr(out)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestConsoleCommand(t *testing.T) {
	c := newCLI(t)
	adder := c.file("adder.ic", "3,20,3,21,1,20,21,22,4,22,99")
	out, err := c.console("1,x\n40, 2\n", adder)
	require.NoError(t, err)
	assert.Contains(t, out, "intcode console started")
	assert.Contains(t, out, "ProgramParseError")
	assert.Contains(t, out, "< 42")
	assert.Contains(t, out, "halted after 5 steps")
}

func TestConsoleCommandASCII(t *testing.T) {
	c := newCLI(t)
	echo := c.file("echo.ic", "3,100,4,100,1008,100,10,101,1006,101,0,99")
	out, err := c.console("hi\nexit\n", echo, "--ascii")
	require.NoError(t, err)
	assert.Contains(t, out, "hi\n")
	assert.Contains(t, out, "halted after")
}

func TestConsoleInputClosedEarly(t *testing.T) {
	c := newCLI(t)
	adder := c.file("adder.ic", "3,20,3,21,1,20,21,22,4,22,99")
	out, err := c.console("1\nexit\n", adder)
	assert.True(t, errors.Is(err, vmerrors.ErrInvalidInput), "%v", err)
	assert.Contains(t, out, "input closed at pc 2")
}

func TestVersionCommand(t *testing.T) {
	out, err := newCLI(t).exec("version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "intcode dev (commit "), out)
}

func TestLogLevelHelpParses(t *testing.T) {
	usage := newRootCmd().PersistentFlags().Lookup("log-level").Usage
	_, list, ok := strings.Cut(usage, ": ")
	require.True(t, ok, usage)
	for _, level := range strings.Split(list, ", ") {
		_, err := newCLI(t).exec("--log-level", level, "version")
		assert.NoError(t, err, level)
	}
}

func TestBadLogLevel(t *testing.T) {
	_, err := newCLI(t).exec("--log-level", "loud", "version")
	assert.ErrorContains(t, err, "log.level")
}

func TestParseHelpers(t *testing.T) {
	phases, err := parsePhases("5-9")
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6, 7, 8, 9}, phases)

	phases, err = parsePhases("4, 3,2")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 2}, phases)

	_, err = parsePhases("9-5")
	assert.Error(t, err)
	_, err = parsePhases("")
	assert.Error(t, err)

	patches, err := parsePatches("1=12, 2=2")
	require.NoError(t, err)
	assert.Equal(t, [][2]int64{{1, 12}, {2, 2}}, patches)

	values, err := parseValues(" ")
	require.NoError(t, err)
	assert.Empty(t, values)
}
