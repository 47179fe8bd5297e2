package telemetry

import (
	"context"
	"errors"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/ps2serial/pkg/framework"
)

// CommandHandler applies a remote mouse command.
type CommandHandler func(*MouseCommand) error

// CommandServer reads MouseCommands from a PacketReader.
type CommandServer struct {
	Reader  PacketReader
	Handler CommandHandler
}

// NewCommandServer creates a CommandServer.
func NewCommandServer(r PacketReader, h CommandHandler) *CommandServer {
	return &CommandServer{Reader: r, Handler: h}
}

// Name implements Named.
func (s *CommandServer) Name() string {
	return "commands"
}

// Run implements Runnable. A Reader which is also an io.Closer is closed
// to stop it.
func (s *CommandServer) Run(ctx context.Context) error {
	var onCancel func()
	if closer, ok := s.Reader.(io.Closer); ok {
		onCancel = func() { closer.Close() }
	}
	return framework.RunWithContextCancel(ctx, onCancel, s.serve)
}

func (s *CommandServer) serve() error {
	for {
		pkt, err := s.Reader.ReadPacket()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.Dispatch(pkt); err != nil {
			glog.Warningf("command: %v", err)
		}
	}
}

// Dispatch decodes one packet and applies it. Events are ignored.
func (s *CommandServer) Dispatch(pkt []byte) error {
	env, err := DecodeEnvelope(pkt)
	if err != nil {
		return err
	}
	if env.IsEvent() {
		return nil
	}
	msg, err := env.Decode()
	if err != nil {
		return err
	}
	cmd, ok := msg.(*MouseCommand)
	if !ok {
		return &ErrUnknownType{TypeID: env.TypeID}
	}
	return s.Handler(cmd)
}
