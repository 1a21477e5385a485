package impmock_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/toejough/impmock"
	"github.com/toejough/impmock/match"
)

// TestConnectionMock_StateMachine drives a hand-written adapter through a
// connect/query/close lifecycle using state-guarded setups.
func TestConnectionMock_StateMachine(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	conn := newConnectionMock(t, impmock.Strict)

	conn.engine.AddSetup(impmock.NewSetup(openID, "Open").TransitionsTo("open"))
	conn.engine.InState("open", func() {
		conn.engine.AddSetup(impmock.NewSetup(queryID, "Query", HavePrefix("SELECT")).
			Returns(returns(3)).
			Raises("Queried", "SELECT"))
		conn.engine.AddSetup(impmock.NewSetup(closeID, "Close").TransitionsTo("closed"))
	})

	_, err := conn.Query("SELECT 1")
	g.Expect(err).To(MatchError(impmock.ErrStrictBehavior), "queries before Open are unmatched")

	g.Expect(conn.Open()).To(Succeed())

	rows, err := conn.Query("SELECT 1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rows).To(Equal(3))
	g.Expect(conn.events).To(Equal([]string{"Queried"}))

	g.Expect(conn.Close()).To(Succeed())

	state, _ := conn.engine.CurrentState()
	g.Expect(state).To(Equal("closed"))

	g.Expect(conn.engine.CreateVerification(queryID, "Query", match.BeAny).Called(impmock.Exactly(2))).To(Succeed())
	g.Expect(impmock.VerifyInOrder(
		conn.engine.CreateVerification(openID, "Open").InOrder(impmock.Once),
		conn.engine.CreateVerification(closeID, "Close").InOrder(impmock.Once),
	)).To(Succeed())

	impmock.Finish(t)
}

// TestConnectionMock_AutoMockedSession verifies registered factories back loose auto-mocks.
func TestConnectionMock_AutoMockedSession(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	conn := newConnectionMock(t, impmock.Loose)

	first, err := conn.Session()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(first).NotTo(BeNil())

	second, err := conn.Session()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(second).To(BeIdenticalTo(first))

	rows, err := first.Query("SELECT 1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(rows).To(BeZero())
}

// TestConnectionMock_BehaviorError verifies behaviors can fail the call.
func TestConnectionMock_BehaviorError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	errRefused := errors.New("connection refused")
	conn := newConnectionMock(t, impmock.Strict)
	conn.engine.AddSetup(impmock.NewSetup(openID, "Open").Returns(impmock.BehaviorFunc(func([]any) (any, error) {
		return nil, errRefused
	})))

	g.Expect(conn.Open()).To(MatchError(errRefused))

	_, inState := conn.engine.CurrentState()
	g.Expect(inState).To(BeFalse())
}

const (
	openID = iota
	queryID
	closeID
	sessionID
)

type Connection interface {
	Close() error
	Open() error
	Query(sql string) (int, error)
	Session() (Connection, error)
}

//nolint:gochecknoinits // generated adapters register their factory at init
func init() {
	impmock.RegisterFactory[Connection](func(mode impmock.Mode) impmock.MockHandle {
		conn := &connectionMock{engine: impmock.NewEngine(mode)}

		return impmock.MockHandle{Object: conn, Engine: conn.engine}
	})
}

// connectionMock is shaped like a generated adapter.
type connectionMock struct {
	engine *impmock.Engine
	events []string
}

func newConnectionMock(t *testing.T, mode impmock.Mode) *connectionMock {
	t.Helper()

	conn := &connectionMock{}
	conn.engine = impmock.New(t, mode, impmock.WithName(t.Name()), impmock.WithRaiser(conn))

	return conn
}

func (c *connectionMock) Close() error {
	_, err := c.engine.HandleCall(closeID, "Close", nil)

	return err
}

func (c *connectionMock) Open() error {
	_, err := c.engine.HandleCall(openID, "Open", nil)

	return err
}

func (c *connectionMock) Query(sql string) (int, error) {
	reply, err := impmock.HandleCallWithReturn(c.engine, queryID, "Query", []any{sql}, 0)

	return reply.Value, err
}

func (c *connectionMock) RaiseEvent(name string, _ []any) {
	c.events = append(c.events, name)
}

func (c *connectionMock) Session() (Connection, error) {
	reply, err := impmock.HandleCallWithReturn[Connection](c.engine, sessionID, "Session", nil, nil)

	return reply.Value, err
}

func returns(value any) impmock.Behavior {
	return impmock.BehaviorFunc(func([]any) (any, error) { return value, nil })
}
