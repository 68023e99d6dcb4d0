package trace

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"sync"

	"github.com/roach88/laneracer/internal/race"
)

// Recorder accumulates a race digest from rendered snapshots. It satisfies
// loop.Sink.
//
// Thread-safety: all methods are safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	digest  hash.Hash
	lastSeq int64
	frames  int
	keep    bool
	lines   bytes.Buffer
	err     error
}

// NewRecorder returns an empty recorder. When keep is true the canonical
// frames are retained as JSON lines and available from Trace.
func NewRecorder(keep bool) *Recorder {
	d := sha256.New()
	d.Write([]byte(DomainRace))
	d.Write([]byte{0x00})
	return &Recorder{digest: d, keep: keep}
}

// Render folds snap into the digest. The first marshal error sticks and
// later frames are ignored.
func (r *Recorder) Render(snap *race.Snapshot) {
	if snap == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}

	frame := FrameOf(snap, r.lastSeq)
	line, err := MarshalCanonical(frame)
	if err != nil {
		r.err = fmt.Errorf("frame %d: %w", snap.Tick, err)
		return
	}
	r.lastSeq = frame.LastSeq(r.lastSeq)
	r.frames++

	r.digest.Write(line)
	r.digest.Write([]byte{'\n'})
	if r.keep {
		r.lines.Write(line)
		r.lines.WriteByte('\n')
	}
}

// Digest returns the hex digest of every frame recorded so far.
func (r *Recorder) Digest() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	return hex.EncodeToString(r.digest.Sum(nil)), nil
}

// Frames returns how many frames were recorded.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Trace returns the retained JSON lines, or nil unless the recorder keeps
// frames.
func (r *Recorder) Trace() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.keep {
		return nil
	}
	return bytes.Clone(r.lines.Bytes())
}
