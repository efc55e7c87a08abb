package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/TilePad/tilepad-plugin-obs-studio/internal/obs"
)

const (
	DefaultRetryInterval  = 10 * time.Second
	DefaultConnectTimeout = 5 * time.Second
)

// ErrNotConnected is returned by Execute when no connection is held.
// Callers treat it as a silent no-op, not a failure.
var ErrNotConnected = errors.New("not connected to obs")

// Conn is an open, authenticated connection to OBS.
type Conn interface {
	Close() error
}

// Dialer opens a new authenticated connection to OBS.
type Dialer interface {
	Dial(ctx context.Context, auth Auth) (Conn, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, auth Auth) (Conn, error)

func (f DialerFunc) Dial(ctx context.Context, auth Auth) (Conn, error) {
	return f(ctx, auth)
}

// Observer receives every lifecycle state transition. Implementations
// must not block; send failures are their own problem.
type Observer interface {
	StateChanged(State)
}

// retryTask is the handle to the single background reconnect loop.
type retryTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Session owns the single OBS connection and its lifecycle. The connection
// is only ever touched while connMu is held, which makes connect attempts
// and command execution mutually exclusive.
type Session struct {
	dialer Dialer

	connMu sync.Mutex
	conn   Conn

	mu       sync.Mutex
	state    State
	auth     *Auth
	observer Observer
	persist  func(Auth)
	retry    *retryTask

	retryInterval  time.Duration
	connectTimeout time.Duration
}

func New(dialer Dialer, retryInterval, connectTimeout time.Duration) *Session {
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	return &Session{
		dialer:         dialer,
		state:          Initial,
		retryInterval:  retryInterval,
		connectTimeout: connectTimeout,
	}
}

// SetObserver replaces the current observer. A nil observer is allowed;
// transitions are then unobserved.
func (s *Session) SetObserver(o Observer) {
	s.mu.Lock()
	s.observer = o
	s.mu.Unlock()
}

// SetPersist sets the callback invoked with the credentials after every
// successful connect, so the host can store them for future loads.
func (s *Session) SetPersist(fn func(Auth)) {
	s.mu.Lock()
	s.persist = fn
	s.mu.Unlock()
}

// State returns the current lifecycle state. Always available, even while
// a connect attempt is in flight.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	ob := s.observer
	s.mu.Unlock()

	if ob != nil {
		ob.StateChanged(st)
	}
}

// Configure applies credentials delivered by the host. Missing or invalid
// credentials fall back to NotConnected. A connect failure other than an
// auth rejection arms the background retry loop.
func (s *Session) Configure(auth *Auth) {
	if auth == nil || !auth.valid() {
		s.mu.Lock()
		s.cancelRetryLocked()
		s.mu.Unlock()
		s.dropConn()
		s.setState(NotConnected)
		return
	}

	if err := s.connect(*auth, false); err != nil && !obs.IsAuthFailure(err) {
		s.queueRetry(*auth)
	}
}

// RequestReconnect handles an explicit connect request from the inspector.
// Credentials are persisted back to the host on success (inside connect).
func (s *Session) RequestReconnect(auth Auth) {
	if !auth.valid() {
		return
	}
	if err := s.connect(auth, false); err != nil && !obs.IsAuthFailure(err) {
		s.queueRetry(auth)
	}
}

// Execute runs fn against the live connection. The connection mutex is
// held for the whole call, so commands never interleave with each other
// or with a reconnect. Returns ErrNotConnected without running fn when no
// connection is held.
func (s *Session) Execute(fn func(Conn) error) error {
	s.connMu.Lock()
	conn := s.conn
	if conn == nil {
		s.connMu.Unlock()
		return ErrNotConnected
	}

	err := fn(conn)
	if err == nil {
		s.connMu.Unlock()
		return nil
	}

	switch {
	case obs.IsAuthFailure(err):
		s.conn = nil
		s.connMu.Unlock()
		conn.Close()
		s.setState(InvalidAuth)

	case obs.IsConnLost(err):
		s.conn = nil
		s.connMu.Unlock()
		conn.Close()
		s.setState(NotConnected)

		s.mu.Lock()
		auth := s.auth
		s.mu.Unlock()
		if auth != nil {
			s.queueRetry(*auth)
		}

	default:
		// Command-local failure, the connection itself is fine.
		s.connMu.Unlock()
		log.Printf("obs command failed: %v", err)
	}

	return err
}

// Close stops the retry loop and drops any open connection.
func (s *Session) Close() {
	s.mu.Lock()
	task := s.retry
	s.cancelRetryLocked()
	s.mu.Unlock()

	if task != nil {
		<-task.done
	}
	s.dropConn()
}

// connect performs a single connect attempt. Non-retry attempts are no-ops
// while already Connecting or Connected, and cancel the retry loop first.
func (s *Session) connect(auth Auth, retry bool) error {
	if retry {
		s.setState(RetryConnecting)
	} else {
		switch s.State() {
		case Connecting, Connected:
			return nil
		}

		s.mu.Lock()
		s.cancelRetryLocked()
		s.mu.Unlock()

		s.setState(Connecting)
	}

	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn != nil {
		// A concurrent attempt won the race; re-assert its result.
		s.setState(Connected)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.connectTimeout)
	defer cancel()

	conn, err := s.dialer.Dial(ctx, auth)
	if err != nil {
		if obs.IsAuthFailure(err) {
			s.setState(InvalidAuth)
		} else {
			s.setState(ConnectError)
		}
		log.Printf("failed to connect to obs at %s:%d: %v", auth.Host, auth.Port, err)
		return err
	}

	s.conn = conn

	s.mu.Lock()
	a := auth
	s.auth = &a
	persist := s.persist
	s.mu.Unlock()

	if persist != nil {
		persist(auth)
	}

	s.setState(Connected)
	return nil
}

// queueRetry starts the background reconnect loop. Starting while one is
// already registered is a no-op.
func (s *Session) queueRetry(auth Auth) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retry != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := &retryTask{cancel: cancel, done: make(chan struct{})}
	s.retry = task

	go s.retryLoop(ctx, task, auth)
}

// retryLoop reattempts the connection at a fixed interval until it
// succeeds or the credentials are rejected. Cancellation only aborts
// iterations that have not started yet.
func (s *Session) retryLoop(ctx context.Context, task *retryTask, auth Auth) {
	defer close(task.done)

	for {
		err := s.connect(auth, true)
		if err == nil || obs.IsAuthFailure(err) {
			s.clearRetry(task)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retryInterval):
		}

		if ctx.Err() != nil {
			return
		}
	}
}

// clearRetry removes the retry slot, but only if it still holds task:
// a cancelled loop must not clobber its replacement.
func (s *Session) clearRetry(task *retryTask) {
	s.mu.Lock()
	if s.retry == task {
		s.retry = nil
	}
	s.mu.Unlock()
}

func (s *Session) cancelRetryLocked() {
	if s.retry == nil {
		return
	}
	s.retry.cancel()
	s.retry = nil
}

func (s *Session) dropConn() {
	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()
}
