package sh

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/ps2serial/pkg/ps2"
	"github.com/robotalks/ps2serial/pkg/sim"
)

// DeviceInfo is printed by InfoCmd.
type DeviceInfo struct {
	State string `json:"state"`
	Mode  string `json:"mode"`
	ID    byte   `json:"id"`
	Wheel bool   `json:"wheel"`
}

func buttonsCmd(fn func(m *sim.Mouse, b ps2.Buttons)) func(c *ishell.Context) {
	return MustHaveMouse(func(c *ishell.Context, m *sim.Mouse) {
		b, err := sim.ParseButtons(c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		fn(m, b)
		Print(c, nil)
	})
}

var (
	// MoveCmd moves the simulated mouse.
	MoveCmd = ishell.Cmd{
		Name:    "move",
		Aliases: []string{"m"},
		Help:    "DX DY [WHEEL], positive DY is up",
		Func: MustHaveMouse(func(c *ishell.Context, m *sim.Mouse) {
			v, err := intArgs(c.Args, 2, 3)
			if err != nil {
				c.Err(err)
				return
			}
			v = append(v, 0)
			m.Move(v[0], v[1], v[2])
			Print(c, nil)
		}),
	}

	// PressCmd presses buttons.
	PressCmd = ishell.Cmd{
		Name:    "press",
		Aliases: []string{"p"},
		Help:    "left|right|middle ...",
		Func: buttonsCmd(func(m *sim.Mouse, b ps2.Buttons) {
			m.SetButtons(m.Buttons() | b)
		}),
	}

	// ReleaseCmd releases buttons.
	ReleaseCmd = ishell.Cmd{
		Name:    "release",
		Aliases: []string{"r"},
		Help:    "left|right|middle ...",
		Func: buttonsCmd(func(m *sim.Mouse, b ps2.Buttons) {
			m.SetButtons(m.Buttons() &^ b)
		}),
	}

	// ClickCmd presses and releases buttons.
	ClickCmd = ishell.Cmd{
		Name:    "click",
		Aliases: []string{"c"},
		Help:    "left|right|middle ...",
		Func: buttonsCmd(func(m *sim.Mouse, b ps2.Buttons) {
			prev := m.Buttons()
			m.SetButtons(prev | b)
			m.SetButtons(prev &^ b)
		}),
	}

	// RTSCmd toggles the host ready line.
	RTSCmd = ishell.Cmd{
		Name: "rts",
		Help: "request a handshake",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Target.Board.Ready.Toggle()
			Print(c, nil)
		},
	}

	// InfoCmd prints controller state and mode.
	InfoCmd = ishell.Cmd{
		Name:    "info",
		Aliases: []string{"i"},
		Func: func(c *ishell.Context) {
			ctrl := ShellFrom(c).Target.Ctrl
			info := DeviceInfo{State: ctrl.State().String()}
			err := ShellFrom(c).Do(func(*ps2.CommandChannel) error {
				dev := ctrl.Device()
				info.Mode, info.ID, info.Wheel = ctrl.Mode().String(), dev.ID, dev.Wheel
				return nil
			})
			if err != nil {
				c.Err(err)
				return
			}
			Print(c, info)
		},
	}

	// SettingsCmd reads back the device settings.
	SettingsCmd = ishell.Cmd{
		Name:    "settings",
		Aliases: []string{"status", "s"},
		Func: func(c *ishell.Context) {
			DoCommand(c, func(ch *ps2.CommandChannel) (interface{}, error) {
				return ch.Settings()
			})
		},
	}

	// RateCmd sets the sample rate.
	RateCmd = ishell.Cmd{
		Name: "rate",
		Help: "SAMPLES_PER_SECOND",
		Func: func(c *ishell.Context) {
			v, err := intArgs(c.Args, 1, 1)
			if err != nil {
				c.Err(err)
				return
			}
			DoCommand(c, func(ch *ps2.CommandChannel) (interface{}, error) {
				return nil, ch.SetSampleRate(byte(v[0]))
			})
		},
	}

	// ResolutionCmd sets the resolution.
	ResolutionCmd = ishell.Cmd{
		Name: "resolution",
		Help: "0-3",
		Func: func(c *ishell.Context) {
			v, err := intArgs(c.Args, 1, 1)
			if err != nil {
				c.Err(err)
				return
			}
			DoCommand(c, func(ch *ps2.CommandChannel) (interface{}, error) {
				return nil, ch.SetResolution(byte(v[0]))
			})
		},
	}

	// ScalingCmd switches 2:1 scaling.
	ScalingCmd = ishell.Cmd{
		Name: "scaling",
		Help: "on|off",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("expect on or off"))
				return
			}
			on, err := parseOnOff(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			DoCommand(c, func(ch *ps2.CommandChannel) (interface{}, error) {
				return nil, ch.SetScaling(on)
			})
		},
	}

	// StatsCmd prints the controller counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Func: func(c *ishell.Context) {
			ctrl := ShellFrom(c).Target.Ctrl
			DoCommand(c, func(*ps2.CommandChannel) (interface{}, error) {
				return ctrl.Stats(), nil
			})
		},
	}

	// SerialCmd prints and clears the bytes the host received.
	SerialCmd = ishell.Cmd{
		Name: "serial",
		Func: func(c *ishell.Context) {
			data := ShellFrom(c).Target.Board.Serial.Take()
			Print(c, fmt.Sprintf("% x", data))
		},
	}
)
