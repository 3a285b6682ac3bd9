package tone

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	renderInterval = 10 * time.Millisecond
	renderLead     = 20 * time.Millisecond
)

// DefaultCommand plays raw PCM from stdin on the default audio device.
func DefaultCommand() []string {
	return []string{
		"sox", "-q", "--buffer", "1024",
		"-t", "raw",
		"-r", strconv.Itoa(SampleRate),
		"-b", "16",
		"-c", "1",
		"-e", "signed-integer",
		"-",
		"-d",
	}
}

// Player streams a Synth into an external audio process, rendering in real
// time a little ahead of the wall clock.
type Player struct {
	*Synth
	cmd   *exec.Cmd
	stdin io.WriteCloser
	log   *zap.Logger
	stop  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// StartPlayer launches command and begins streaming silence.
func StartPlayer(command []string, logger *zap.Logger) (*Player, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("audio command is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cmd := exec.Command(command[0], command[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("audio stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", command[0], err)
	}
	p := &Player{
		Synth: NewSynth(),
		cmd:   cmd,
		stdin: stdin,
		log:   logger,
		stop:  make(chan struct{}),
	}
	p.wg.Add(1)
	go p.run()
	return p, nil
}

// PipeFactory returns a Factory that starts a Player per call.
func PipeFactory(command []string, logger *zap.Logger) Factory {
	return func() (Graph, error) {
		return StartPlayer(command, logger)
	}
}

func (p *Player) run() {
	defer p.wg.Done()
	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()
	start := time.Now()
	buf := make([]byte, 0, 2*SampleRate/10)
	for {
		due := int64((time.Since(start) + renderLead).Seconds() * SampleRate)
		frames := due - int64(p.CurrentTime()*SampleRate)
		if frames > 0 {
			if limit := int64(cap(buf) / 2); frames > limit {
				frames = limit
			}
			chunk := buf[:frames*2]
			p.Render(chunk)
			if _, err := p.stdin.Write(chunk); err != nil {
				p.log.Warn("audio output closed", zap.Error(err))
				return
			}
		}
		select {
		case <-ticker.C:
		case <-p.stop:
			return
		}
	}
}

// Close stops streaming and waits for the audio process to exit.
func (p *Player) Close() error {
	var err error
	p.once.Do(func() {
		close(p.stop)
		p.wg.Wait()
		if cerr := p.stdin.Close(); cerr != nil {
			err = cerr
		}
		if werr := p.cmd.Wait(); werr != nil && err == nil {
			err = werr
		}
	})
	return err
}
