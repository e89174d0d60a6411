package host

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalSweep(t *testing.T) {
	p := program(t, "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0")
	sweep, err := SignalSweep(testContext(t), p, []int64{0, 1, 2}, 0, false)
	require.NoError(t, err)
	require.Len(t, sweep, 6)
	assert.Equal(t, []int64{0, 1, 2}, sweep[0].Phases)
	assert.Equal(t, int64(12), sweep[0].Output)

	best := sweep.Best()
	assert.Equal(t, []int64{2, 1, 0}, best.Phases)
	assert.Equal(t, int64(210), best.Output)
}

func TestSweepBestTies(t *testing.T) {
	s := Sweep{{Phases: []int64{1}, Output: 5}, {Phases: []int64{2}, Output: 5}}
	assert.Equal(t, []int64{1}, s.Best().Phases)
	assert.Equal(t, SweepPoint{}, Sweep(nil).Best())
}

func TestRenderChart(t *testing.T) {
	s := Sweep{{Phases: []int64{0, 1}, Output: 10}, {Phases: []int64{1, 0}, Output: 1}}
	var buf bytes.Buffer
	require.NoError(t, s.RenderChart(&buf, "amplifier sweep"))
	html := buf.String()
	assert.Contains(t, html, "amplifier sweep")
	assert.Contains(t, html, "best order 01 signal 10")
	assert.Contains(t, html, "echarts")
}
