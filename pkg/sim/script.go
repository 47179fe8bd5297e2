package sim

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/ps2serial/pkg/adapter"
	"github.com/robotalks/ps2serial/pkg/ps2"
	"github.com/robotalks/ps2serial/pkg/serialmouse"
)

// DefaultStep is the board time between controller polls in scripts.
const DefaultStep = time.Millisecond

// Script is a scenario replayed against a board.
type Script struct {
	Mouse   MouseConfig `yaml:"mouse"`
	Jumpers struct {
		TwoButton bool `yaml:"twoButton"`
		Wheel     bool `yaml:"wheel"`
	} `yaml:"jumpers"`
	Steps []Step `yaml:"steps"`
}

// Step is one scenario action. Fields are applied in declaration order.
type Step struct {
	Move    *Motion       `yaml:"move,omitempty"`
	Press   []string      `yaml:"press,omitempty"`
	Release []string      `yaml:"release,omitempty"`
	RTS     bool          `yaml:"rts,omitempty"`
	Wait    time.Duration `yaml:"wait,omitempty"`
	Expect  *Expect       `yaml:"expect,omitempty"`
}

// Motion is a relative mouse movement in device orientation.
type Motion struct {
	DX    int `yaml:"dx"`
	DY    int `yaml:"dy"`
	Wheel int `yaml:"wheel"`
}

// Expect checks what the host received since the previous check. Motion is
// summed in host orientation (positive dy is down).
type Expect struct {
	Ident   string   `yaml:"ident,omitempty"`
	Buttons []string `yaml:"buttons"`
	DX      int      `yaml:"dx"`
	DY      int      `yaml:"dy"`
	Wheel   int      `yaml:"wheel"`
}

// ExpectError reports a failed expectation.
type ExpectError struct {
	Step int
	What string
	Want interface{}
	Got  interface{}
}

// Error implements error.
func (e *ExpectError) Error() string {
	return fmt.Sprintf("step %d: %s: want %v, got %v", e.Step, e.What, e.Want, e.Got)
}

// ParseScript decodes a YAML scenario.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	for n, step := range s.Steps {
		for _, names := range [][]string{step.Press, step.Release} {
			if _, err := ParseButtons(names); err != nil {
				return nil, fmt.Errorf("step %d: %w", n, err)
			}
		}
		if step.Expect != nil {
			if _, err := ParseButtons(step.Expect.Buttons); err != nil {
				return nil, fmt.Errorf("step %d: %w", n, err)
			}
		}
	}
	return &s, nil
}

// LoadScript reads a YAML scenario from a file.
func LoadScript(fn string) (*Script, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

// BoardConfig returns the board the scenario runs on.
func (s *Script) BoardConfig() BoardConfig {
	return BoardConfig{
		Mouse: s.Mouse,
		Jumpers: serialmouse.Jumpers{
			TwoButton: s.Jumpers.TwoButton,
			Wheel:     s.Jumpers.Wheel,
		},
	}
}

// ParseButtons converts button names (left, right, middle) to a bitset.
func ParseButtons(names []string) (b ps2.Buttons, err error) {
	for _, name := range names {
		switch strings.ToLower(name) {
		case "left", "l":
			b |= ps2.ButtonLeft
		case "right", "r":
			b |= ps2.ButtonRight
		case "middle", "m":
			b |= ps2.ButtonMiddle
		default:
			return 0, fmt.Errorf("unknown button %q", name)
		}
	}
	return
}

// Player replays scripts and collects what the host receives.
type Player struct {
	Board *Board
	Ctrl  *adapter.Controller
	Host  HostMouse
	Step  time.Duration

	ident   []byte
	buttons ps2.Buttons
	motion  Motion
}

// NewPlayer creates a Player for a controller running on board.
func NewPlayer(board *Board, ctrl *adapter.Controller) *Player {
	return &Player{Board: board, Ctrl: ctrl, Step: DefaultStep}
}

// Collect feeds received serial bytes to the host decoder.
func (p *Player) Collect() {
	for _, b := range p.Board.Serial.Take() {
		ev, ok := p.Host.Feed(b)
		if !ok {
			continue
		}
		if ev.Ident != 0 {
			p.ident = append(p.ident, ev.Ident)
			continue
		}
		p.buttons = ev.Buttons
		p.motion.DX += ev.DX
		p.motion.DY += ev.DY
		p.motion.Wheel += ev.Wheel
	}
}

// Play runs all steps of s.
func (p *Player) Play(s *Script) error {
	for n, step := range s.Steps {
		if err := p.play(n, &step); err != nil {
			return err
		}
	}
	return nil
}

func (p *Player) play(n int, step *Step) error {
	m := p.Board.Mouse
	if step.Move != nil && m != nil {
		m.Move(step.Move.DX, step.Move.DY, step.Move.Wheel)
	}
	if len(step.Press) > 0 && m != nil {
		b, _ := ParseButtons(step.Press)
		m.SetButtons(m.Buttons() | b)
	}
	if len(step.Release) > 0 && m != nil {
		b, _ := ParseButtons(step.Release)
		m.SetButtons(m.Buttons() &^ b)
	}
	if step.RTS {
		p.Collect()
		p.Host.Reset()
		p.ident = nil
		p.Board.Ready.Toggle()
	}
	if step.Wait > 0 {
		p.Board.RunFor(p.Ctrl, step.Wait, p.Step)
	}
	p.Collect()
	if step.Expect != nil {
		return p.check(n, step.Expect)
	}
	return nil
}

func (p *Player) check(n int, e *Expect) error {
	defer func() {
		p.motion = Motion{}
		p.ident = nil
	}()
	if e.Ident != "" && string(p.ident) != e.Ident {
		return &ExpectError{Step: n, What: "ident", Want: e.Ident, Got: string(p.ident)}
	}
	want, _ := ParseButtons(e.Buttons)
	if p.buttons != want {
		return &ExpectError{Step: n, What: "buttons", Want: want, Got: p.buttons}
	}
	motion := Motion{DX: e.DX, DY: e.DY, Wheel: e.Wheel}
	if p.motion != motion {
		return &ExpectError{Step: n, What: "motion", Want: motion, Got: p.motion}
	}
	return nil
}
