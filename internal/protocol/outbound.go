package protocol

import "fmt"

// Commands understood by the device.
const (
	CmdStart  = "start"
	CmdStop   = "stop"
	CmdStatus = "status"
	CmdProbs  = "probs"
	CmdSpeed  = "speed"
)

// Outbound is a frame sent to the device.
type Outbound struct {
	Type    string `json:"type"`
	Char    string `json:"char,omitempty"`
	Cmd     string `json:"cmd,omitempty"`
	Profile *int   `json:"profile,omitempty"`
	Speed   *int   `json:"speed,omitempty"`
}

// Key builds a key press frame.
func Key(ch rune) Outbound {
	return Outbound{Type: "key", Char: string(ch)}
}

// Start builds a start command.
func Start(profile, speed int) Outbound {
	return Outbound{Type: "command", Cmd: CmdStart, Profile: &profile, Speed: &speed}
}

// Stop builds a stop command.
func Stop() Outbound {
	return Outbound{Type: "command", Cmd: CmdStop}
}

// RequestStatus builds a status request.
func RequestStatus() Outbound {
	return Outbound{Type: "command", Cmd: CmdStatus}
}

// RequestProbs builds a probability table request.
func RequestProbs() Outbound {
	return Outbound{Type: "command", Cmd: CmdProbs}
}

// SetSpeed builds a command changing the speed of a running session.
func SetSpeed(speed int) Outbound {
	return Outbound{Type: "command", Cmd: CmdSpeed, Speed: &speed}
}

// Encode serializes an outbound frame.
func Encode(msg Outbound) ([]byte, error) {
	out, err := codec.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	return out, nil
}

// String renders msg for logs.
func (msg Outbound) String() string {
	if msg.Type == "key" {
		return "key " + msg.Char
	}
	return "command " + msg.Cmd
}
