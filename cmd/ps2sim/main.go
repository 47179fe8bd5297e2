// Command ps2sim runs the adapter against a simulated PS/2 mouse.
package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ps2serial/pkg/adapter"
	"github.com/robotalks/ps2serial/pkg/cli/sh"
	"github.com/robotalks/ps2serial/pkg/diag"
	"github.com/robotalks/ps2serial/pkg/framework"
	"github.com/robotalks/ps2serial/pkg/hostserial"
	"github.com/robotalks/ps2serial/pkg/ps2"
	"github.com/robotalks/ps2serial/pkg/sim"
	"github.com/robotalks/ps2serial/pkg/telemetry"
)

const startTimeout = 5 * time.Second

var (
	boardConf  sim.BoardConfig
	portName   string
	scriptFile string
)

func init() {
	adapter.Default().PollInterval = time.Millisecond
	adapter.SetupFlags()
	telemetry.SetupFlags()
	sh.SetupFlags()
	flag.BoolVar(&boardConf.Mouse.Wheel, "wheel", boardConf.Mouse.Wheel, "Simulate a wheel mouse.")
	flag.BoolVar(&boardConf.NoMouse, "no-mouse", boardConf.NoMouse, "Leave the PS/2 port empty.")
	flag.BoolVar(&boardConf.Jumpers.TwoButton, "two-button", boardConf.Jumpers.TwoButton, "Set the two-button jumper.")
	flag.BoolVar(&boardConf.Jumpers.Wheel, "wheel-jumper", boardConf.Jumpers.Wheel, "Set the wheel jumper.")
	flag.StringVar(&portName, "port", portName, "Mirror the serial output to this RS-232 port.")
	flag.StringVar(&scriptFile, "script", scriptFile, "Replay a YAML scenario on a virtual clock and exit.")
}

func newController(board *sim.Board) *adapter.Controller {
	ctrl := adapter.Default().NewController(board.Hardware())
	ctrl.Log = diag.NewLogger("adapter")
	ctrl.Monitor = &diag.LogMonitor{Log: ctrl.Log}
	return ctrl
}

func playScript(fn string) error {
	script, err := sim.LoadScript(fn)
	if err != nil {
		return err
	}
	board := sim.NewBoard(script.BoardConfig())
	ctrl := newController(board)
	if err := ctrl.Init(); err != nil {
		return err
	}
	player := sim.NewPlayer(board, ctrl)
	player.Host.Mode = ctrl.Mode()
	if err := player.Play(script); err != nil {
		return err
	}
	fmt.Printf("%s: %d steps OK\n", fn, len(script.Steps))
	return nil
}

func applyCommand(board *sim.Board) telemetry.CommandHandler {
	return func(cmd *telemetry.MouseCommand) error {
		if cmd.RTS {
			board.Ready.Toggle()
		}
		if board.Mouse == nil {
			return errors.New("no mouse attached")
		}
		if cmd.SetButtons {
			board.Mouse.SetButtons(ps2.Buttons(cmd.Buttons) & ps2.ButtonsAll)
		}
		if cmd.DX != 0 || cmd.DY != 0 || cmd.Wheel != 0 {
			board.Mouse.Move(int(cmd.DX), int(cmd.DY), int(cmd.Wheel))
		}
		return nil
	}
}

func statsLoop(ctrl *adapter.Controller, pub *telemetry.Publisher, interval time.Duration) framework.Runnable {
	return framework.NamedRun("stats", framework.RunFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
			err := ctrl.Do(ctx, func(*ps2.CommandChannel) error {
				pub.PublishStats(ctrl.Stats())
				return nil
			})
			if err != nil && !errors.Is(err, adapter.ErrNotStreaming) {
				return err
			}
		}
	}))
}

func waitStreaming(ctrl *adapter.Controller) error {
	deadline := time.Now().Add(startTimeout)
	for time.Now().Before(deadline) {
		switch ctrl.State() {
		case adapter.Streaming:
			return nil
		case adapter.Failed:
			return errors.New("adapter failed to start")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return errors.New("adapter start timeout")
}

func run() error {
	board := sim.NewRealtimeBoard(boardConf)
	ctrl := newController(board)
	runner := framework.NewRunner().HandleSignals()
	monitors := diag.Monitors{ctrl.Monitor}

	if portName != "" {
		port, err := hostserial.Open(portName, adapter.Default().ExtraStopBit)
		if err != nil {
			return fmt.Errorf("open %s: %w", portName, err)
		}
		board.Serial.OnByte = port.Feed
		runner.Go(port)
	}

	if conf := telemetry.Default(); conf.Enabled() {
		link, err := conf.Dial()
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		glog.Infof("telemetry %s as %s", conf.URL, conf.ID())
		pub := telemetry.NewPublisher(conf.ID(), link)
		monitors = append(monitors, pub)
		if r, ok := link.(framework.Runnable); ok {
			runner.Go(r)
		}
		runner.Go(pub, telemetry.NewCommandServer(link, applyCommand(board)))
		if conf.StatsInterval > 0 {
			runner.Go(statsLoop(ctrl, pub, conf.StatsInterval))
		}
	}
	ctrl.Monitor = monitors

	runner.Go(framework.NamedRun("board", board), framework.NamedRun("adapter", ctrl))

	shell := sh.New(sh.Target{Board: board, Ctrl: ctrl})
	if args := flag.Args(); len(args) > 0 || shell.Interactive {
		err := waitStreaming(ctrl)
		if err == nil {
			err = shell.Run(args...)
		}
		runner.Stop()
		if werr := runner.Wait(); err == nil {
			err = werr
		}
		return err
	}
	return runner.Wait()
}

func main() {
	flag.Parse()
	var err error
	if scriptFile != "" {
		err = playScript(scriptFile)
	} else {
		err = run()
	}
	glog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
