package busd

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
	"github.com/srg/bluem/internal/bluem"
	"github.com/srg/bluem/internal/objtree"
)

// Bus kinds accepted by Connect besides a literal bus address
const (
	SessionBus = "session"
	SystemBus  = "system"
)

// Connect opens a connection to the session or system bus, or to an
// explicit address such as "unix:path=/run/bluem.sock".
func Connect(bus string, opts ...dbus.ConnOption) (*dbus.Conn, error) {
	var (
		conn *dbus.Conn
		err  error
	)
	switch bus {
	case SessionBus, "":
		conn, err = dbus.ConnectSessionBus(opts...)
	case SystemBus:
		conn, err = dbus.ConnectSystemBus(opts...)
	default:
		conn, err = dbus.Connect(bus, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s bus: %w", bus, err)
	}
	return conn, nil
}

// ErrNameTaken is returned by Serve when another connection owns the name
var ErrNameTaken = errors.New("bus name already taken")

// Server publishes a started stack under a well-known name
type Server struct {
	stack  *bluem.Stack
	bus    string
	name   string
	logger *logrus.Logger
}

// NewServer creates a server for stack. bus is as for Connect.
func NewServer(stack *bluem.Stack, bus, name string, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{stack: stack, bus: bus, name: name, logger: logger}
}

// Serve connects, claims the name and serves until ctx is done.
// Losing the name race is an error.
func (s *Server) Serve(ctx context.Context) error {
	handler := NewHandler(ctx, s.stack.Dispatcher(), s.logger)
	conn, err := Connect(s.bus, dbus.WithHandler(handler))
	if err != nil {
		return err
	}
	defer conn.Close()

	cancel := s.stack.Broadcaster().Subscribe(NewSignalEmitter(conn, objtree.Root, s.logger))
	defer cancel()

	reply, err := conn.RequestName(s.name, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request name %s: %w", s.name, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("%w: %s on the %s bus", ErrNameTaken, s.name, s.bus)
	}

	s.logger.WithFields(logrus.Fields{
		"bus":  s.bus,
		"name": s.name,
	}).Info("Serving mock stack")

	<-ctx.Done()
	s.logger.Info("Shutting down bus server")
	return nil
}
