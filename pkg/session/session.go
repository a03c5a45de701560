// Package session manages live layout sessions for the HTTP server.
//
// A session owns one running simulation together with its drag and hover
// controllers. Clients create a session from a graph, advance it tick by
// tick, dispatch pointer events and fetch the current scene. Sessions expire
// after a period without use.
//
// # Usage
//
//	m := session.NewManager(session.DefaultTTL)
//	s, err := m.Create(g, simCfg, forceCfg)
//	_ = s.Dispatch(interact.Event{Kind: interact.DragStart, Node: "A"})
//	scene, err := s.Tick(10)
//	m.Delete(s.ID)
//
// Every operation on a Session takes its mutex, so concurrent requests for
// the same session are serialized while different sessions run in parallel.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interact"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// Default durations and limits.
const (
	// DefaultTTL is how long an unused session survives.
	DefaultTTL = 30 * time.Minute

	// MaxTicksPerRequest bounds a single Tick call.
	MaxTicksPerRequest = 1000
)

// Session is a live simulation.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	expiresAt time.Time
	engine    *sim.Engine
	drag      *interact.Drag
	highlight *interact.Highlighter
	queue     *interact.Queue
	palette   *render.Palette
}

// Info summarizes a session.
type Info struct {
	ID        string    `json:"id"`
	Nodes     int       `json:"nodes"`
	Links     int       `json:"links"`
	Ticks     int       `json:"ticks"`
	Alpha     float64   `json:"alpha"`
	State     string    `json:"state"`
	Dragging  int       `json:"dragging"`
	Hovered   string    `json:"hovered,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// New starts a simulation on g. The session takes ownership of g.
func New(g *graph.Graph, cfg sim.Config, fcfg force.Config) (*Session, error) {
	if err := fcfg.Validate(); err != nil {
		return nil, err
	}
	engine, err := sim.New(g, force.NewDefaultRegistry(fcfg, cfg.Width, cfg.Height), cfg)
	if err != nil {
		return nil, err
	}

	drag := interact.NewDrag(engine, cfg.ReheatTarget)
	highlight := interact.NewHighlighter(g)
	palette := render.NewPalette()
	palette.Seed(g.Groups())

	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		expiresAt: now,
		engine:    engine,
		drag:      drag,
		highlight: highlight,
		queue:     interact.NewQueue(drag, highlight),
		palette:   palette,
	}, nil
}

// Tick advances the simulation by up to n ticks and returns the resulting
// scene. A stopped simulation does not advance.
func (s *Session) Tick(n int) (render.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 0 || n > MaxTicksPerRequest {
		return render.Scene{}, errs.New(errs.ErrCodeInvalidInput, "ticks must be within [0, %d], got %d", MaxTicksPerRequest, n)
	}
	if err := s.checkLive(); err != nil {
		return render.Scene{}, err
	}
	for i := 0; i < n && s.engine.State() == sim.Running; i++ {
		if _, err := s.engine.Tick(); err != nil {
			return render.Scene{}, err
		}
	}
	return s.sceneLocked(), nil
}

// Dispatch applies pointer events in order. Processing continues past a
// failing event; the returned error joins every failure.
func (s *Session) Dispatch(events ...interact.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLive(); err != nil {
		return err
	}
	s.queue.Push(events...)
	return s.queue.Drain()
}

// Scene returns the current frame.
func (s *Session) Scene() (render.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLive(); err != nil {
		return render.Scene{}, err
	}
	return s.sceneLocked(), nil
}

func (s *Session) sceneLocked() render.Scene {
	return render.NewScene(s.engine.Layout(), s.palette, s.highlight)
}

// Layout returns the current positions.
func (s *Session) Layout() graph.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Layout()
}

// Reheat warms a stopped or cooled simulation back up. It raises alpha
// rather than alphaTarget, so the layout settles again on its own.
func (s *Session) Reheat() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLive(); err != nil {
		return err
	}
	s.engine.Restart(0)
	return nil
}

// Stop pauses the simulation.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLive(); err != nil {
		return err
	}
	s.drag.Cancel()
	s.engine.Stop()
	return nil
}

// Close invalidates the simulation. Every later call fails.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Invalidate()
}

// Info returns a summary of the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.engine.Graph()
	state := s.engine.State().String()
	if s.engine.Invalidated() {
		state = "invalidated"
	}
	return Info{
		ID:        s.ID,
		Nodes:     g.NodeCount(),
		Links:     g.LinkCount(),
		Ticks:     s.engine.Ticks(),
		Alpha:     s.engine.Alpha(),
		State:     state,
		Dragging:  s.drag.Active(),
		Hovered:   s.highlight.Emphasis().Node,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.expiresAt,
	}
}

func (s *Session) checkLive() error {
	if s.engine.Invalidated() {
		return errs.New(errs.ErrCodeInvalidated, "session %s is closed", s.ID)
	}
	return nil
}

func (s *Session) touch(until time.Time) {
	s.mu.Lock()
	s.expiresAt = until
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.After(s.expiresAt)
}
