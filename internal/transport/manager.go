package transport

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/morselive/internal/loop"
	"github.com/verte-zerg/morselive/internal/protocol"
)

// State is the connection lifecycle state.
type State int

// Connection states.
const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Defaults for Options.
const (
	DefaultRetryDelay  = 2 * time.Second
	DefaultDialTimeout = 5 * time.Second
	DefaultSendBuffer  = 32
)

// Loop messages. Each carries the generation of the attempt that produced it;
// messages from a superseded attempt are ignored.
type (
	dialedMsg struct {
		gen  uint64
		conn Conn
		err  error
	}
	frameMsg struct {
		gen  uint64
		data []byte
	}
	droppedMsg struct {
		gen uint64
		err error
	}
	redialMsg struct {
		gen uint64
	}
)

// Options configures a Manager.
type Options struct {
	URL         string
	Dialer      Dialer
	Loop        loop.Loop
	Logger      *zap.Logger
	RetryDelay  time.Duration
	DialTimeout time.Duration
	SendBuffer  int
}

// Hooks are invoked on the loop goroutine.
type Hooks struct {
	OnOpen  func()
	OnFrame func(data []byte)
	OnDown  func()
	OnState func(State)
}

// Manager owns the connection lifecycle. All methods except the goroutines it
// starts itself must be called from the loop goroutine.
type Manager struct {
	opts  Options
	hooks Hooks
	log   *zap.Logger

	state      State
	gen        uint64
	attempt    string
	link       *link
	cancelDial context.CancelFunc
	redial     loop.Cancel
	closed     bool
}

// NewManager returns a disconnected Manager.
func NewManager(opts Options, hooks Hooks) *Manager {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultDialTimeout
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = DefaultSendBuffer
	}
	if opts.Dialer == nil {
		opts.Dialer = WSDialer{HandshakeTimeout: opts.DialTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		opts:  opts,
		hooks: hooks,
		log:   logger.With(zap.String("url", opts.URL)),
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	return m.state
}

// Connect starts a new connection attempt, detaching any previous transport
// and cancelling a pending reconnect first.
func (m *Manager) Connect() {
	if m.closed {
		return
	}
	m.detach()
	m.gen++
	m.attempt = uuid.NewString()
	m.setState(Connecting)

	gen := m.gen
	ctx, cancel := context.WithTimeout(context.Background(), m.opts.DialTimeout)
	m.cancelDial = cancel
	m.log.Debug("dialing", zap.String("attempt", m.attempt), zap.Uint64("gen", gen))
	go func() {
		conn, err := m.opts.Dialer.Dial(ctx, m.opts.URL)
		cancel()
		m.opts.Loop.Post(dialedMsg{gen: gen, conn: conn, err: err})
	}()
}

// Send writes msg if connected and silently drops it otherwise.
func (m *Manager) Send(msg protocol.Outbound) bool {
	if m.state != Connected || m.link == nil {
		m.log.Debug("send dropped", zap.Stringer("msg", msg), zap.Stringer("state", m.state))
		return false
	}
	data, err := protocol.Encode(msg)
	if err != nil {
		m.log.Warn("encode failed", zap.Error(err))
		return false
	}
	select {
	case m.link.out <- data:
		return true
	default:
		m.log.Warn("send buffer full", zap.Stringer("msg", msg))
		return false
	}
}

// Handle applies a transport message. It reports whether msg belonged to the
// transport.
func (m *Manager) Handle(msg any) bool {
	switch msg := msg.(type) {
	case dialedMsg:
		m.handleDialed(msg)
	case frameMsg:
		if msg.gen == m.gen && m.hooks.OnFrame != nil {
			m.hooks.OnFrame(msg.data)
		}
	case droppedMsg:
		if msg.gen != m.gen || m.closed {
			return true
		}
		m.log.Info("connection lost", zap.String("attempt", m.attempt), zap.Error(msg.err))
		m.down()
	case redialMsg:
		if msg.gen != m.gen || m.closed {
			return true
		}
		m.redial = nil
		m.Connect()
	default:
		return false
	}
	return true
}

// Close tears the transport down for good. No reconnect is scheduled.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	m.detach()
	m.closed = true
	m.gen++
	m.setState(Disconnected)
}

func (m *Manager) handleDialed(msg dialedMsg) {
	if msg.gen != m.gen || m.closed {
		if msg.conn != nil {
			_ = msg.conn.Close()
		}
		return
	}
	m.cancelDial = nil
	if msg.err != nil {
		m.log.Info("dial failed", zap.String("attempt", m.attempt), zap.Error(msg.err))
		m.down()
		return
	}
	m.link = startLink(msg.conn, msg.gen, m.opts.SendBuffer, m.opts.Loop)
	m.log.Info("connected", zap.String("attempt", m.attempt))
	m.setState(Connected)
	if m.hooks.OnOpen != nil {
		m.hooks.OnOpen()
	}
}

func (m *Manager) down() {
	if m.link != nil {
		m.link.close()
		m.link = nil
	}
	m.setState(Disconnected)
	if m.hooks.OnDown != nil {
		m.hooks.OnDown()
	}
	m.scheduleRedial()
}

func (m *Manager) scheduleRedial() {
	if m.closed || m.redial != nil {
		return
	}
	m.redial = m.opts.Loop.After(m.opts.RetryDelay, redialMsg{gen: m.gen})
}

func (m *Manager) detach() {
	if m.redial != nil {
		m.redial()
		m.redial = nil
	}
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	if m.link != nil {
		m.link.close()
		m.link = nil
	}
}

func (m *Manager) setState(s State) {
	if m.state == s {
		return
	}
	m.state = s
	if m.hooks.OnState != nil {
		m.hooks.OnState(s)
	}
}

// link runs the reader and writer goroutines of one transport.
type link struct {
	conn Conn
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func startLink(conn Conn, gen uint64, buffer int, l loop.Loop) *link {
	lk := &link{
		conn: conn,
		out:  make(chan []byte, buffer),
		done: make(chan struct{}),
	}
	go lk.writeLoop()
	go func() {
		for {
			data, err := conn.ReadMessage()
			if err != nil {
				lk.close()
				l.Post(droppedMsg{gen: gen, err: err})
				return
			}
			l.Post(frameMsg{gen: gen, data: data})
		}
	}()
	return lk
}

func (lk *link) writeLoop() {
	for {
		select {
		case data := <-lk.out:
			if err := lk.conn.WriteMessage(data); err != nil {
				lk.close()
				return
			}
		case <-lk.done:
			return
		}
	}
}

func (lk *link) close() {
	lk.once.Do(func() {
		close(lk.done)
		_ = lk.conn.Close()
	})
}
