package studio

import (
	"sync"

	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

// Observer is notified after every render with the new graphic, or with
// ok=false when the render produced nothing.
type Observer func(g qrcode.Graphic, ok bool)

type options struct {
	renderer  Renderer
	observers []Observer
	lazy      bool
	initial   State
}

// Option configures a Studio.
type Option func(*options)

// WithRenderer replaces PreviewRenderer.
func WithRenderer(r Renderer) Option {
	return func(o *options) {
		if r != nil {
			o.renderer = r
		}
	}
}

// WithObserver registers fn to run after every render.
func WithObserver(fn Observer) Option {
	return func(o *options) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

// WithLazyRender skips the render done by New. Until Render is called the
// studio holds no graphic.
func WithLazyRender() Option {
	return func(o *options) { o.lazy = true }
}

// WithState starts from s instead of DefaultState. An invalid size falls
// back to DefaultSize. Reset still restores the defaults.
func WithState(s State) Option {
	return func(o *options) {
		if !s.Size.Valid() {
			s.Size = DefaultSize
		}
		o.initial = s
	}
}

// Studio holds the form state and the graphic derived from it.
// It is safe for concurrent use.
//
// Every write renders inside the same critical section, so readers never
// see new fields next to an old graphic. Observers run outside the lock,
// one render at a time and in render order; a render overtaken by a newer
// one before its turn is not delivered. Observers must not call the
// Studio's setters.
type Studio struct {
	mu        sync.RWMutex
	state     State
	graphic   qrcode.Graphic
	rendered  bool
	seq       uint64
	renderer  Renderer
	observers []Observer

	notifyMu sync.Mutex
	notified uint64
}

// New creates a Studio with default state and renders it once unless
// WithLazyRender is given.
func New(opts ...Option) *Studio {
	o := options{renderer: PreviewRenderer(), initial: DefaultState()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Studio{
		state:     o.initial,
		renderer:  o.renderer,
		observers: o.observers,
	}
	if !o.lazy {
		s.Render()
	}
	return s
}

// SetText replaces the encoded text and re-renders.
func (s *Studio) SetText(text string) {
	s.update(func(st *State) { st.Text = text })
}

// SetColor replaces the foreground color and re-renders.
func (s *Studio) SetColor(color string) {
	s.update(func(st *State) { st.Color = color })
}

// SetSize replaces the export size. The graphic does not depend on it, so
// nothing is re-rendered.
func (s *Studio) SetSize(size Size) error {
	if !size.Valid() {
		return ErrUnsupportedSize
	}
	s.mu.Lock()
	s.state.Size = size
	s.mu.Unlock()
	return nil
}

// Reset restores all fields to their defaults and re-renders in one step.
func (s *Studio) Reset() {
	s.update(func(st *State) { *st = DefaultState() })
}

// Render recomputes the graphic from the current text and color.
func (s *Studio) Render() {
	s.update(nil)
}

func (s *Studio) update(fn func(*State)) {
	s.mu.Lock()
	if fn != nil {
		fn(&s.state)
	}
	g, ok, seq := s.renderLocked()
	s.mu.Unlock()

	s.notify(seq, g, ok)
}

func (s *Studio) renderLocked() (qrcode.Graphic, bool, uint64) {
	g, err := s.renderer.Render(s.state.Text, s.state.Color)
	ok := err == nil && !g.IsZero()
	if ok {
		s.graphic = g
	} else {
		s.graphic = qrcode.Graphic{}
	}
	s.rendered = true
	s.seq++
	return s.graphic, ok, s.seq
}

func (s *Studio) notify(seq uint64, g qrcode.Graphic, ok bool) {
	if len(s.observers) == 0 {
		return
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if seq <= s.notified {
		return
	}
	s.notified = seq

	for _, fn := range s.observers {
		fn(g, ok)
	}
}

// State returns a consistent snapshot of the form fields.
func (s *Studio) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Graphic returns the displayed graphic. It reports false before the first
// render and after a render that failed.
func (s *Studio) Graphic() (qrcode.Graphic, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graphicLocked()
}

func (s *Studio) graphicLocked() (qrcode.Graphic, bool) {
	if !s.rendered || s.graphic.IsZero() {
		return qrcode.Graphic{}, false
	}
	return s.graphic, true
}

// ExportSize returns the raster export dimension in pixels.
func (s *Studio) ExportSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(s.state.Size)
}

// ExportSnapshot returns the displayed graphic together with the export
// size it is paired with at this instant.
func (s *Studio) ExportSnapshot() (qrcode.Graphic, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.graphicLocked()
	return g, int(s.state.Size), ok
}
