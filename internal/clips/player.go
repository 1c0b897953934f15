package clips

import (
	"errors"
	"fmt"

	"sfx/internal/synth"
)

var (
	ErrUnknownClip = errors.New("clips: unknown clip")
	ErrEmptyClip   = errors.New("clips: clip has no sound")
)

// BufferPlayer plays a trimmed region of a buffer. *audio.Engine
// satisfies it.
type BufferPlayer interface {
	PlayBuffer(buf *synth.Buffer, startOffset, duration float64)
}

// Player plays clips of one recording by id.
type Player struct {
	out      BufferPlayer
	buf      *synth.Buffer
	manifest Manifest
}

func NewPlayer(out BufferPlayer, buf *synth.Buffer, m Manifest) *Player {
	return &Player{out: out, buf: buf, manifest: m}
}

// Play plays the clip with the given id. Mute and context state are
// enforced by the BufferPlayer.
func (p *Player) Play(id string) error {
	c, ok := p.manifest.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClip, id)
	}
	if c.Empty() {
		return fmt.Errorf("%w: %q", ErrEmptyClip, id)
	}
	p.out.PlayBuffer(p.buf, c.Start, c.End-c.Start)
	return nil
}

// IDs lists the playable clip ids in order.
func (p *Player) IDs() []string {
	ids := make([]string, 0, len(p.manifest))
	for _, c := range p.manifest {
		if !c.Empty() {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
