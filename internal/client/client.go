// Package client ties the connection, router, tone engine and session mirror
// into one live-session context. Every method runs on the program loop.
package client

import (
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/morselive/internal/heatmap"
	"github.com/verte-zerg/morselive/internal/input"
	"github.com/verte-zerg/morselive/internal/loop"
	"github.com/verte-zerg/morselive/internal/model"
	"github.com/verte-zerg/morselive/internal/protocol"
	"github.com/verte-zerg/morselive/internal/router"
	"github.com/verte-zerg/morselive/internal/session"
	"github.com/verte-zerg/morselive/internal/tone"
	"github.com/verte-zerg/morselive/internal/transport"
)

// FlashDuration is how long result feedback stays highlighted.
const FlashDuration = 300 * time.Millisecond

// Flash is the feedback highlight shown after a scored character.
type Flash int

const (
	FlashNone Flash = iota
	FlashCorrect
	FlashWrong
)

type flashResetMsg struct {
	seq uint64
}

// Deps are the collaborators a Client is built from. Nil fields get
// production defaults.
type Deps struct {
	Loop        loop.Loop
	Dialer      transport.Dialer
	ToneFactory tone.Factory
	Logger      *zap.Logger
	Now         func() time.Time
	RetryDelay  time.Duration
}

// Client is the session-client context.
type Client struct {
	cfg  model.Config
	loop loop.Loop
	log  *zap.Logger
	now  func() time.Time

	conn     *transport.Manager
	router   *router.Router
	tone     *tone.Engine
	keyer    *tone.Keyer
	keyboard *input.Keyboard
	gate     input.Gate
	session  *session.State
	cells    []heatmap.Cell

	// Form values sent with the next start command.
	profile int
	speed   int

	// liveKeying is set once the device reports key transitions on the
	// current connection; until then sent patterns drive the keyer.
	liveKeying bool

	flash       Flash
	flashSeq    uint64
	flashCancel loop.Cancel
	disposed    bool
}

// New builds a client for cfg. Optional components are created only when the
// matching capability is set.
func New(cfg model.Config, deps Deps) *Client {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	c := &Client{
		cfg:     cfg,
		loop:    deps.Loop,
		log:     logger,
		now:     now,
		router:  router.New(logger.Named("router")),
		gate:    input.Gate{Mode: cfg.InputMode},
		session: session.New(cfg.Speed, cfg.Profile),
		profile: cfg.Profile,
		speed:   cfg.Speed,
	}
	c.session.HideAnswers = !cfg.ShowAnswers

	if cfg.Capabilities.AudioTone {
		factory := deps.ToneFactory
		if factory == nil {
			command := cfg.ToneCommand
			if len(command) == 0 {
				command = tone.DefaultCommand()
			}
			factory = tone.PipeFactory(command, logger.Named("player"))
		}
		c.tone = tone.NewEngine(factory, logger.Named("tone"))
		if cfg.ToneFrequency > 0 {
			c.tone.SetFrequency(cfg.ToneFrequency)
		}
		if cfg.ToneVolume > 0 {
			c.tone.SetLevel(cfg.ToneVolume)
		}
		c.keyer = tone.NewKeyer(c.tone, deps.Loop)
	}
	if cfg.Capabilities.OnscreenKeyboard {
		c.keyboard = &input.Keyboard{}
	}

	c.conn = transport.NewManager(transport.Options{
		URL:        transport.Endpoint(cfg.Host, cfg.Port),
		Dialer:     deps.Dialer,
		Loop:       deps.Loop,
		Logger:     logger.Named("transport"),
		RetryDelay: deps.RetryDelay,
	}, transport.Hooks{
		OnOpen:  c.onOpen,
		OnFrame: c.onFrame,
		OnDown:  c.onDown,
	})
	c.routes()
	return c
}

// Connect starts the connection. Reconnects are automatic.
func (c *Client) Connect() {
	c.conn.Connect()
}

// Dispose closes the connection and releases audio. The client is inert
// afterwards.
func (c *Client) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.conn.Close()
	c.cancelFlash()
	if c.tone != nil {
		c.keyer.Stop()
		if err := c.tone.Dispose(); err != nil {
			c.log.Warn("closing audio", zap.Error(err))
		}
	}
}

// Handle applies a loop message. It reports whether msg belonged to the client.
func (c *Client) Handle(msg any) bool {
	if m, ok := msg.(flashResetMsg); ok {
		if m.seq == c.flashSeq {
			c.flash = FlashNone
			c.flashCancel = nil
		}
		return true
	}
	if c.keyer != nil && c.keyer.Handle(msg) {
		return true
	}
	return c.conn.Handle(msg)
}

// StartClicked resets the local counters and asks the device to start with
// the form's profile and speed. The click also unlocks audio output.
func (c *Client) StartClicked() {
	if c.tone != nil {
		if err := c.tone.Prime(); err != nil {
			c.log.Warn("tone unavailable", zap.Error(err))
		}
	}
	c.session.Reset()
	c.send(protocol.Start(c.profile, c.speed))
}

// StopClicked asks the device to stop.
func (c *Client) StopClicked() {
	c.send(protocol.Stop())
}

// RequestStatus asks the device for a status snapshot.
func (c *Client) RequestStatus() {
	c.send(protocol.RequestStatus())
}

// RequestProbs asks the device for fresh error probabilities.
func (c *Client) RequestProbs() {
	if c.cfg.Capabilities.Heatmap {
		c.send(protocol.RequestProbs())
	}
}

// AdjustSpeed asks the device to change the running session's speed by
// delta WPM, clamped to the device limits. The session speed itself only
// changes when the device reports it.
func (c *Client) AdjustSpeed(delta int) bool {
	if !c.session.Running {
		return false
	}
	target := c.session.Speed + delta
	if target < model.MinSpeed {
		target = model.MinSpeed
	}
	if target > model.MaxSpeed {
		target = model.MaxSpeed
	}
	if target == c.session.Speed {
		return false
	}
	return c.send(protocol.SetSpeed(target))
}

// Key forwards a physical key press. It reports whether a key frame was sent.
func (c *Client) Key(r rune, formFocused bool) bool {
	ch, ok := c.gate.Accept(r, formFocused, c.session.Running)
	if !ok {
		return false
	}
	return c.send(protocol.Key(ch))
}

// KeyboardPress activates the selected on-screen key. The layer toggle only
// changes what is drawn.
func (c *Client) KeyboardPress() bool {
	if c.keyboard == nil {
		return false
	}
	r, ok := c.keyboard.Activate()
	if !ok {
		return false
	}
	if c.cfg.InputMode == input.FreeText && !c.session.Running {
		return false
	}
	return c.send(protocol.Key(r))
}

// SetProfile sets the profile sent with the next start.
func (c *Client) SetProfile(profile int) {
	c.profile = profile
}

// SetSpeed sets the speed sent with the next start.
func (c *Client) SetSpeed(speed int) {
	c.speed = speed
}

// SetHideAnswers toggles whether error entries show the expected character.
func (c *Client) SetHideAnswers(hide bool) {
	c.session.HideAnswers = hide
}

// Config returns the settings the client was built with.
func (c *Client) Config() model.Config {
	return c.cfg
}

// Session returns the live session mirror.
func (c *Client) Session() *session.State {
	return c.session
}

// Connection returns the connection state.
func (c *Client) Connection() transport.State {
	return c.conn.State()
}

// Heatmap returns the cells of the last probability snapshot.
func (c *Client) Heatmap() []heatmap.Cell {
	return c.cells
}

// Keyboard returns the on-screen keyboard, or nil when not enabled.
func (c *Client) Keyboard() *input.Keyboard {
	return c.keyboard
}

// Tone returns the tone engine, or nil when audio is disabled.
func (c *Client) Tone() *tone.Engine {
	return c.tone
}

// Flash returns the current feedback highlight.
func (c *Client) Flash() Flash {
	return c.flash
}

// FormValues returns the profile and speed sent with the next start.
func (c *Client) FormValues() (profile, speed int) {
	return c.profile, c.speed
}

// Dropped returns the number of inbound frames discarded so far.
func (c *Client) Dropped() int {
	return c.router.Dropped()
}

func (c *Client) send(msg protocol.Outbound) bool {
	if c.disposed {
		return false
	}
	return c.conn.Send(msg)
}

func (c *Client) onOpen() {
	c.liveKeying = false
	c.RequestStatus()
}

func (c *Client) onDown() {
	c.silence()
}

func (c *Client) silence() {
	if c.tone != nil {
		c.keyer.Stop()
		c.tone.ForceOff()
	}
}

func (c *Client) onFrame(data []byte) {
	c.router.Dispatch(data)
}

func (c *Client) startFlash(f Flash) {
	c.cancelFlash()
	c.flash = f
	c.flashSeq++
	c.flashCancel = c.loop.After(FlashDuration, flashResetMsg{seq: c.flashSeq})
}

func (c *Client) cancelFlash() {
	if c.flashCancel != nil {
		c.flashCancel()
		c.flashCancel = nil
	}
}
