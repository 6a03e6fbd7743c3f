package testutils

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/bluem/internal/bluem"
	"github.com/stretchr/testify/suite"
)

// MockStackSuite provides a started mock stack and an event recorder per test.
//
// Usage:
//
//	type ConnectSuite struct {
//	    testutils.MockStackSuite
//	}
//
//	func TestConnectSuite(t *testing.T) {
//	    suite.Run(t, new(ConnectSuite))
//	}
//
// Tests that need non-default options set s.Options before calling
// s.MockStackSuite.SetupTest().
type MockStackSuite struct {
	suite.Suite

	Logger   *logrus.Logger
	Options  *bluem.Options
	Stack    *bluem.Stack
	Recorder *EventRecorder
	Ctx      context.Context

	cancel      context.CancelFunc
	unsubscribe func()
}

// SetupSuite creates the shared logger
func (s *MockStackSuite) SetupSuite() {
	s.Logger = logrus.New()
	s.Logger.SetLevel(logrus.DebugLevel)
}

// SetupTest starts a fresh stack with a deterministic address source
func (s *MockStackSuite) SetupTest() {
	opts := bluem.DefaultOptions()
	if s.Options != nil {
		opts = *s.Options
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(1, 2))
	}

	stack, err := bluem.New(opts, s.Logger)
	s.Require().NoError(err, "MUST build stack")

	s.Ctx, s.cancel = context.WithTimeout(context.Background(), 30*time.Second)
	s.Require().NoError(stack.Start(s.Ctx), "MUST start stack")

	s.Stack = stack
	s.Recorder = &EventRecorder{}
	s.unsubscribe = stack.Broadcaster().Subscribe(s.Recorder)
}

// TearDownTest stops the stack and resets per-test state
func (s *MockStackSuite) TearDownTest() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.Stack != nil {
		s.Stack.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.Stack = nil
	s.Options = nil
}
