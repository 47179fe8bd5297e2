// Package sh provides the interactive shell of the simulator.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/ps2serial/pkg/adapter"
	"github.com/robotalks/ps2serial/pkg/ps2"
	"github.com/robotalks/ps2serial/pkg/sim"
)

// Target is what the shell drives: the simulated mouse and host, and the
// controller between them.
type Target struct {
	Board *sim.Board
	Ctrl  *adapter.Controller
}

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	Timeout     time.Duration

	Shell  *ishell.Shell
	Target Target
}

const (
	shellKey       = "$shell"
	defaultTimeout = time.Second
)

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&MoveCmd,
		&PressCmd,
		&ReleaseCmd,
		&ClickCmd,
		&RTSCmd,
		&InfoCmd,
		&SettingsCmd,
		&RateCmd,
		&ResolutionCmd,
		&ScalingCmd,
		&StatsCmd,
		&SerialCmd,
	}
)

// SetupFlags registers the shell flags.
func SetupFlags() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell on target.
func New(target Target) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     defaultTimeout,
		Shell:       ishell.New(),
		Target:      target,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("ps2sim > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustHaveMouse wraps command func requiring a mouse on the PS/2 port.
func MustHaveMouse(fn func(c *ishell.Context, m *sim.Mouse)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		m := ShellFrom(c).Target.Board.Mouse
		if m == nil {
			c.Err(fmt.Errorf("no mouse attached"))
			return
		}
		fn(c, m)
	}
}

// Do runs fn on the controller loop and waits for the result.
func (s *Shell) Do(fn func(*ps2.CommandChannel) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	return s.Target.Ctrl.Do(ctx, fn)
}

// DoCommand runs fn on the controller loop and prints its result.
func DoCommand(c *ishell.Context, fn func(*ps2.CommandChannel) (interface{}, error)) error {
	s := ShellFrom(c)
	var res interface{}
	err := s.Do(func(ch *ps2.CommandChannel) (err error) {
		res, err = fn(ch)
		return
	})
	if err != nil {
		c.Err(err)
		return err
	}
	return Print(c, res)
}

// Print prints v in the selected output format. A nil v prints OK.
func Print(c *ishell.Context, v interface{}) error {
	if ShellFrom(c).OutputJSON {
		if v == nil {
			v = map[string]string{}
		}
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return err
		}
		c.Println(string(out))
		return nil
	}
	if v == nil {
		c.Println("OK")
		return nil
	}
	c.Printf("%+v\n", v)
	return nil
}

func intArgs(args []string, least, most int) ([]int, error) {
	if len(args) < least || len(args) > most {
		return nil, fmt.Errorf("expect %d to %d arguments", least, most)
	}
	vals := make([]int, len(args))
	for n, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", arg)
		}
		vals[n] = v
	}
	return vals, nil
}

func parseOnOff(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "2:1", "true", "1":
		return true, nil
	case "off", "1:1", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expect on or off: %q", arg)
}

// Run runs the shell: the args as a single command, or interactively.
func (s *Shell) Run(args ...string) error {
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if !s.Interactive {
		return fmt.Errorf("command expected")
	}
	s.Shell.Run()
	return nil
}
