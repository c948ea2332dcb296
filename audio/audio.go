// Package audio plays short procedural sound cues for game events.
package audio

import (
	"io"
	"math"
	"time"

	"gridsnake/game"

	"github.com/hajimehoshi/oto/v2"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
)

// Cue identifies a sound effect.
type Cue int

const (
	CueEat Cue = iota
	CueGameOver
	CuePause
	CueResume
)

func (c Cue) String() string {
	switch c {
	case CueEat:
		return "eat"
	case CueGameOver:
		return "game-over"
	case CuePause:
		return "pause"
	case CueResume:
		return "resume"
	default:
		return "unknown"
	}
}

// CuesFor lists the cues caused by moving from prev to next. A nil prev or a
// snapshot of another game produces nothing.
func CuesFor(prev *game.Snapshot, next game.Snapshot) []Cue {
	if prev == nil || prev.ID != next.ID {
		return nil
	}
	var cues []Cue
	if next.Score > prev.Score {
		cues = append(cues, CueEat)
	}
	if next.GameOver && !prev.GameOver {
		cues = append(cues, CueGameOver)
	}
	if next.Paused != prev.Paused {
		if next.Paused {
			cues = append(cues, CuePause)
		} else {
			cues = append(cues, CueResume)
		}
	}
	return cues
}

// Sink plays cues.
type Sink interface {
	Play(Cue)
}

// Watcher turns a stream of snapshots into cues for a Sink.
type Watcher struct {
	sink Sink
	prev *game.Snapshot
}

func NewWatcher(sink Sink) *Watcher {
	return &Watcher{sink: sink}
}

// Observe plays whatever changed since the previous snapshot.
func (w *Watcher) Observe(s game.Snapshot) {
	for _, c := range CuesFor(w.prev, s) {
		w.sink.Play(c)
	}
	w.prev = &s
}

// OtoSink plays cues through the system audio device.
type OtoSink struct {
	ctx    *oto.Context
	ready  chan struct{}
	volume float64
	cache  map[Cue][]byte
}

// NewOtoSink opens the audio device. Cues are rendered once up front.
func NewOtoSink(volume float64) (*OtoSink, error) {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, oto.FormatFloat32LE)
	if err != nil {
		return nil, err
	}
	cache := make(map[Cue][]byte)
	for _, c := range []Cue{CueEat, CueGameOver, CuePause, CueResume} {
		cache[c] = Synthesize(c)
	}
	return &OtoSink{ctx: ctx, ready: ready, volume: clamp(volume, 0, 1), cache: cache}, nil
}

// Play starts c in the background. Cues requested before the device is
// ready are skipped.
func (s *OtoSink) Play(c Cue) {
	select {
	case <-s.ready:
	default:
		return
	}
	samples := s.cache[c]
	if len(samples) == 0 {
		return
	}
	go func() {
		player := s.ctx.NewPlayer(&sampleReader{data: samples})
		player.SetVolume(s.volume)
		player.Play()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		player.Close()
	}()
}

type sampleReader struct {
	data []byte
	pos  int
}

func (r *sampleReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// Synthesize renders c as interleaved stereo float32 little-endian samples.
func Synthesize(c Cue) []byte {
	switch c {
	case CueEat:
		return genEat()
	case CueGameOver:
		return genGameOver()
	case CuePause:
		return genBlip(660, 0.06)
	case CueResume:
		return genBlip(880, 0.06)
	}
	return nil
}

// genEat is a short rising FM pop.
func genEat() []byte {
	n := int(0.09 * SampleRate)
	buf := makeBuf(n)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		p := float64(i) / float64(n)
		env := adsr(p, 0.01, 0.5, 0.0, 0.1)
		freq := 480 + 720*p
		s := fm(t, freq, 2.0, 3.5*env) * env * 0.5
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

// genGameOver is a descending three-note figure.
func genGameOver() []byte {
	n := int(0.75 * SampleRate)
	notes := []struct{ freq, onset float64 }{
		{329.63, 0.00},
		{261.63, 0.14},
		{220.00, 0.28},
	}
	mix := make([]float64, n)
	for _, note := range notes {
		start := int(note.onset * SampleRate)
		for i := start; i < n; i++ {
			t := float64(i) / SampleRate
			np := float64(i-start) / float64(n-start)
			env := adsr(np, 0.008, 0.25, 0.3, 0.45)
			freq := note.freq * (1 - np*0.025)
			mix[i] += fm(t, freq, 2.0, 2.0*env) * env * 0.32
		}
	}
	buf := makeBuf(n)
	for i, s := range mix {
		putStereoF32(buf, i, softSat(s))
	}
	return buf
}

func genBlip(freq, dur float64) []byte {
	n := int(dur * SampleRate)
	buf := makeBuf(n)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		env := adsr(float64(i)/float64(n), 0.02, 0.3, 0.4, 0.3)
		putStereoF32(buf, i, math.Sin(2*math.Pi*freq*t)*env*0.3)
	}
	return buf
}

// makeBuf allocates a stereo float32 buffer for n frames.
func makeBuf(n int) []byte { return make([]byte, n*8) }

// putStereoF32 writes a [-1,1] sample to both channels of frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	for ch := 0; ch < ChannelCount; ch++ {
		o := i*8 + ch*4
		buf[o] = byte(v)
		buf[o+1] = byte(v >> 8)
		buf[o+2] = byte(v >> 16)
		buf[o+3] = byte(v >> 24)
	}
}

// adsr returns the envelope at normalized progress in [0,1].
func adsr(progress, attack, decay, sustain, release float64) float64 {
	switch {
	case progress < attack:
		return progress / attack
	case progress < attack+decay:
		return 1.0 - (progress-attack)/decay*(1.0-sustain)
	case progress < 1.0-release:
		return sustain
	default:
		return sustain * (1.0 - (progress-(1.0-release))/release)
	}
}

func fm(t, carrier, modRatio, modIdx float64) float64 {
	mod := math.Sin(2 * math.Pi * carrier * modRatio * t)
	return math.Sin(2*math.Pi*carrier*t + modIdx*mod)
}

// softSat keeps samples inside [-1,1] without hard clipping.
func softSat(x float64) float64 {
	if x > 1.0 {
		return 1.0 - 0.5/x
	}
	if x < -1.0 {
		return -1.0 + 0.5/(-x)
	}
	return x - x*x*x/3.0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
