package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ps2serial/pkg/adapter"
	"github.com/robotalks/ps2serial/pkg/ps2"
	"github.com/robotalks/ps2serial/pkg/serialmouse"
)

func newScriptPlayer(t *testing.T, s *Script) *Player {
	board := NewBoard(s.BoardConfig())
	conf := adapter.NewConfig()
	conf.BitSpin, conf.ResponseSpin = 1000, 1000
	ctrl := conf.NewController(board.Hardware())
	require.NoError(t, ctrl.Init())
	return NewPlayer(board, ctrl)
}

func TestScriptFile(t *testing.T) {
	s, err := LoadScript("testdata/wheel.yaml")
	require.NoError(t, err)
	require.True(t, s.Mouse.Wheel)
	require.Equal(t, serialmouse.Jumpers{Wheel: true}, s.BoardConfig().Jumpers)
	require.Len(t, s.Steps, 4)

	p := newScriptPlayer(t, s)
	require.NoError(t, p.Play(s))
	require.Equal(t, serialmouse.WheelMouse, p.Host.Mode)
}

func TestScriptExpectFailure(t *testing.T) {
	s, err := ParseScript([]byte(`
jumpers:
  twoButton: true
steps:
  - move: {dx: 5, dy: 5}
    wait: 100ms
    expect:
      dx: 6
      dy: -5
`))
	require.NoError(t, err)
	p := newScriptPlayer(t, s)
	err = p.Play(s)
	var eerr *ExpectError
	require.ErrorAs(t, err, &eerr)
	require.Equal(t, 0, eerr.Step)
	require.Equal(t, "motion", eerr.What)
	require.Equal(t, Motion{DX: 5, DY: -5}, eerr.Got)
}

func TestParseScriptErrors(t *testing.T) {
	testCases := []struct {
		name string
		in   string
	}{
		{name: "bad yaml", in: "steps: ["},
		{name: "unknown button", in: "steps:\n  - press: [fourth]\n"},
		{name: "bad duration", in: "steps:\n  - wait: soon\n"},
		{name: "unknown expected button", in: "steps:\n  - expect: {buttons: [x]}\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScript([]byte(tc.in))
			require.Error(t, err)
		})
	}
}

func TestParseButtons(t *testing.T) {
	b, err := ParseButtons([]string{"left", "M", "Right"})
	require.NoError(t, err)
	require.Equal(t, ps2.ButtonsAll, b)
}
