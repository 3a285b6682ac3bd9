package client

import (
	"github.com/verte-zerg/morselive/internal/heatmap"
	"github.com/verte-zerg/morselive/internal/model"
	"github.com/verte-zerg/morselive/internal/protocol"
)

func (c *Client) routes() {
	r := c.router
	if c.tone != nil {
		r.Handle(protocol.KindMorseElement, c.onMorseElement)
	}
	r.Handle(protocol.KindCharSent, c.onCharSent)
	r.Handle(protocol.KindResult, c.onResult)
	r.Handle(protocol.KindSpeedChange, c.onSpeedChange)
	r.Handle(protocol.KindSession, c.onSession)
	r.Handle(protocol.KindContextLost, c.onContextLost)
	r.Handle(protocol.KindStatus, c.onStatus)
	if c.cfg.Capabilities.Heatmap {
		r.Handle(protocol.KindProbs, c.onProbs)
	}
}

func (c *Client) onMorseElement(msg protocol.Inbound) {
	if !c.liveKeying {
		c.liveKeying = true
		c.keyer.Stop()
	}
	if msg.(protocol.MorseElement).On {
		c.tone.On()
	} else {
		c.tone.Off()
	}
}

func (c *Client) onCharSent(msg protocol.Inbound) {
	m := msg.(protocol.CharSent)
	c.session.ApplyCharSent(m)
	if c.keyer != nil && !c.liveKeying && m.Pattern != "" {
		wpm := c.session.Speed
		if wpm <= 0 {
			wpm = c.speed
		}
		c.keyer.Play(m.Pattern, wpm)
	}
}

func (c *Client) onResult(msg protocol.Inbound) {
	e := c.session.ApplyResult(msg.(protocol.Result))
	if e.Correct {
		c.startFlash(FlashCorrect)
	} else {
		c.startFlash(FlashWrong)
	}
	c.RequestProbs()
}

func (c *Client) onSpeedChange(msg protocol.Inbound) {
	m := msg.(protocol.SpeedChange)
	c.session.ApplySpeedChange(m)
	c.adoptSpeed(m.Speed)
}

func (c *Client) onSession(msg protocol.Inbound) {
	m := msg.(protocol.Session)
	if !m.Started {
		c.session.ApplySessionStopped()
		c.silence()
		return
	}
	c.session.ApplySessionStarted(m.Speed, c.speed, c.now())
	c.adoptSpeed(m.Speed)
	c.RequestProbs()
}

func (c *Client) onContextLost(msg protocol.Inbound) {
	m := msg.(protocol.ContextLost)
	c.session.ApplyContextLost(m)
	c.adoptSpeed(m.Speed)
	c.startFlash(FlashWrong)
}

func (c *Client) onStatus(msg protocol.Inbound) {
	m := msg.(protocol.Status)
	c.session.ApplyStatus(m, c.now())
	c.adoptSpeed(m.Speed)
	if m.HasProfile && model.ValidProfile(m.Profile) {
		c.profile = m.Profile
	}
}

// adoptSpeed copies a device-reported speed into the form so the next start
// resumes where the device left off.
func (c *Client) adoptSpeed(speed int) {
	if model.ValidSpeed(speed) {
		c.speed = speed
	}
}

func (c *Client) onProbs(msg protocol.Inbound) {
	c.cells = heatmap.Cells(msg.(protocol.Probs).Data)
}
