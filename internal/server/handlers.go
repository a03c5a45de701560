package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interact"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/session"
)

// contentTypes maps artifact formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
}

// =============================================================================
// Request types
// =============================================================================

// layoutRequest is the body of /v1/layout, /v1/render and /v1/sessions.
// Sim and Forces are partial overlays on the server defaults.
type layoutRequest struct {
	Graph    json.RawMessage `json:"graph" validate:"required"`
	Width    float64         `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height   float64         `json:"height,omitempty" validate:"omitempty,gt=0"`
	MaxTicks int             `json:"max_ticks,omitempty" validate:"omitempty,min=0,max=100000"`
	Seed     uint64          `json:"seed,omitempty"`
	Sim      json.RawMessage `json:"sim,omitempty"`
	Forces   json.RawMessage `json:"forces,omitempty"`
	Refresh  bool            `json:"refresh,omitempty"`

	Formats []string `json:"formats,omitempty" validate:"omitempty,dive,oneof=svg png pdf json dot"`
	Engine  string   `json:"engine,omitempty" validate:"omitempty,oneof=native graphviz"`
	Labels  bool     `json:"labels,omitempty"`
	Hover   bool     `json:"hover,omitempty"`
	Scale   float64  `json:"scale,omitempty" validate:"omitempty,gt=0,lte=8"`
	Title   string   `json:"title,omitempty" validate:"max=200"`
}

// graph parses the embedded graph document.
func (req *layoutRequest) graph() (*graph.Graph, error) {
	return graph.UnmarshalGraph(req.Graph)
}

// options merges req over base. Unset fields keep the base value.
func (req *layoutRequest) options(base pipeline.Options) (pipeline.Options, error) {
	opts := base
	if req.Width > 0 {
		opts.Width = req.Width
	}
	if req.Height > 0 {
		opts.Height = req.Height
	}
	if req.MaxTicks > 0 {
		opts.MaxTicks = req.MaxTicks
	}
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}
	opts.Refresh = req.Refresh

	if len(req.Sim) > 0 {
		c := base.SimConfig()
		if err := json.Unmarshal(req.Sim, &c); err != nil {
			return opts, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode sim")
		}
		opts.Sim = &c
	}
	if len(req.Forces) > 0 {
		c := base.ForceConfig()
		if err := json.Unmarshal(req.Forces, &c); err != nil {
			return opts, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode forces")
		}
		opts.Forces = &c
	}

	if len(req.Formats) > 0 {
		opts.Formats = req.Formats
	}
	if req.Engine != "" {
		opts.Engine = req.Engine
	}
	opts.Labels = opts.Labels || req.Labels
	opts.Hover = opts.Hover || req.Hover
	if req.Scale > 0 {
		opts.Scale = req.Scale
	}
	if req.Title != "" {
		opts.Title = req.Title
	}
	return opts, nil
}

type tickRequest struct {
	Ticks *int `json:"ticks,omitempty" validate:"omitempty,min=0,max=1000"`
}

type eventsRequest struct {
	Events []interact.Event `json:"events" validate:"required,min=1,max=256,dive"`
}

// =============================================================================
// Response types
// =============================================================================

type layoutResponse struct {
	GraphHash string            `json:"graph_hash,omitempty"`
	Layout    graph.Layout      `json:"layout"`
	Cached    bool              `json:"cached"`
	Artifacts map[string][]byte `json:"artifacts,omitempty"`
}

type eventsResponse struct {
	Scene  render.Scene `json:"scene"`
	Errors []errorItem  `json:"errors,omitempty"`
}

type errorItem struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// =============================================================================
// Batch handlers
// =============================================================================

// handleLayout settles a graph. With formats it also renders them and
// returns the artifacts base64-encoded.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	g, opts, err := s.prepare(&req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if len(req.Formats) == 0 {
		hash, _ := pipeline.HashGraph(g)
		layout, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), g, opts)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, layoutResponse{
			GraphHash: hash,
			Layout:    layout,
			Cached:    hit,
		})
		return
	}

	if err := requireConverter(opts.Formats); err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := s.runner.Execute(r.Context(), g, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		GraphHash: result.GraphHash,
		Layout:    result.Layout,
		Cached:    result.CacheInfo.LayoutHit,
		Artifacts: result.Artifacts,
	})
}

// handleRender settles a graph and writes a single artifact as the raw
// response body.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}

	var req layoutRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	req.Formats = []string{format}
	g, opts, err := s.prepare(&req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := requireConverter(opts.Formats); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), g, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Graph-Hash", result.GraphHash)
	w.Header().Set("X-Layout-Cached", strconv.FormatBool(result.CacheInfo.LayoutHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// prepare parses the graph and validates the merged options.
func (s *Server) prepare(req *layoutRequest) (*graph.Graph, pipeline.Options, error) {
	g, err := req.graph()
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	opts, err := req.options(s.defaults)
	if err != nil {
		return nil, opts, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, opts, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, opts, err
	}
	opts.Logger = s.logger
	return g, opts, nil
}

// requireConverter rejects raster formats when rsvg-convert is missing.
func requireConverter(formats []string) error {
	for _, f := range formats {
		if (f == pipeline.FormatPNG || f == pipeline.FormatPDF) && !render.Available() {
			return errs.New(errs.ErrCodeUnsupported, "%s output is not available on this server", f)
		}
	}
	return nil
}

// =============================================================================
// Session handlers
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := req.graph()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts, err := req.options(s.defaults)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := opts.ValidateForLayout(); err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.sessions.Create(g, opts.SimConfig(), opts.ForceConfig())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("session created", "id", sess.ID, "nodes", g.NodeCount(), "links", g.LinkCount())
	writeJSON(w, http.StatusCreated, sess.Info())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.sessions.List()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTick advances a session. An empty body advances one tick.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req tickRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	n := 1
	if req.Ticks != nil {
		n = *req.Ticks
	}
	scene, err := sess.Tick(n)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

// handleEvents dispatches pointer events. Events that fail are reported
// alongside the resulting scene; the others still apply.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req eventsRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	dispatchErr := sess.Dispatch(req.Events...)
	if errs.Is(dispatchErr, errs.ErrCodeInvalidated) {
		s.fail(w, r, dispatchErr)
		return
	}
	scene, err := sess.Scene()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{
		Scene:  scene,
		Errors: errorItems(dispatchErr),
	})
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	scene, err := sess.Scene()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

// handleSessionSVG renders the current frame. ?labels=true adds node labels.
func (s *Server) handleSessionSVG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	scene, err := sess.Scene()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var opts []render.SVGOption
	if labels, _ := strconv.ParseBool(r.URL.Query().Get("labels")); labels {
		opts = append(opts, render.WithLabels())
	}
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatSVG])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(render.RenderSVG(scene, opts...))
}

func (s *Server) handleReheat(w http.ResponseWriter, r *http.Request) {
	s.control(w, r, (*session.Session).Reheat)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.control(w, r, (*session.Session).Stop)
}

// control runs a state change on the addressed session and returns its info.
func (s *Server) control(w http.ResponseWriter, r *http.Request, op func(*session.Session) error) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := op(sess); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Info())
}

// session looks up the {id} route parameter, writing a 404 when it is
// unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

// errorItems flattens a joined dispatch error.
func errorItems(err error) []errorItem {
	if err == nil {
		return nil
	}
	var list []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		list = joined.Unwrap()
	} else {
		list = []error{err}
	}
	items := make([]errorItem, 0, len(list))
	for _, e := range list {
		code := errs.GetCode(e)
		if code == "" {
			code = errs.ErrCodeInternal
		}
		items = append(items, errorItem{Code: code, Message: errs.UserMessage(e)})
	}
	return items
}
