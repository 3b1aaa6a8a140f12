package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kafei-ai/treeflow/pkg/errors"
	"github.com/kafei-ai/treeflow/pkg/observability"
	"github.com/kafei-ai/treeflow/pkg/pipeline"
	"github.com/kafei-ai/treeflow/pkg/project"
	"github.com/kafei-ai/treeflow/pkg/render"
)

// =============================================================================
// Request Bodies
// =============================================================================

type createSessionRequest struct {
	Paths       []string `json:"paths"`
	ProjectID   string   `json:"projectId"`
	Expanded    []string `json:"expanded"`
	ExpandDepth int      `json:"expandDepth"`
}

type toggleRequest struct {
	NodeID string `json:"nodeId"`
}

type pathsRequest struct {
	Paths []string `json:"paths"`
}

type layoutRequest struct {
	Paths       []string `json:"paths"`
	Expanded    []string `json:"expanded"`
	ExpandDepth int      `json:"expandDepth"`
	ExpandAll   bool     `json:"expandAll"`

	// Render only.
	Format string `json:"format"`
	Engine string `json:"engine"`
}

type projectRequest struct {
	Paths    []string `json:"paths"`
	Expanded []string `json:"expanded"`
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.len(),
	})
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}

	paths, expanded, follow := req.Paths, req.Expanded, false
	switch {
	case req.ProjectID != "":
		p, err := s.loadProject(r, req.ProjectID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		paths = p.Paths
		if len(expanded) == 0 {
			expanded = p.Expanded
		}
	case req.Paths == nil:
		paths, follow = s.watchedPaths(), true
	}
	if err := errors.ValidatePathList(paths); err != nil {
		s.writeError(w, r, err)
		return
	}

	seed := s.layout
	seed.Expanded = expanded
	seed.ExpandDepth = req.ExpandDepth
	if err := seed.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := newSession(s.layout, s.logger)
	sess.follow.Store(follow)

	sess.mu.Lock()
	if _, err := sess.orch.PathsReplaced(paths); err != nil {
		sess.mu.Unlock()
		s.writeError(w, r, err)
		return
	}
	if len(seed.Expanded) > 0 || seed.ExpandDepth > 0 {
		sess.orch.SetExpansion(seed.Seed(sess.orch.Tree()))
	}
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	s.sessions.add(sess)
	s.logger.Info("session created", "session", sess.id, "paths", len(snap.Paths), "follow", follow)
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.mu.Lock()
	snap := sess.snapshotLocked()
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.get(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sessions.remove(id)
	s.logger.Info("session deleted", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req toggleRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.NodeID == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "nodeId is required"))
		return
	}

	sess.mu.Lock()
	g := sess.orch.Toggle(req.NodeID)
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleReplacePaths(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req pathsRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidatePathList(req.Paths); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess.mu.Lock()
	g, err := sess.orch.PathsReplaced(req.Paths)
	sess.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.follow.Store(false)
	writeJSON(w, http.StatusOK, g)
}

// =============================================================================
// Stateless Layout and Render
// =============================================================================

func (s *Server) layoutOptions(req layoutRequest) pipeline.Options {
	opts := s.layout
	opts.Expanded = req.Expanded
	opts.ExpandDepth = req.ExpandDepth
	opts.ExpandAll = req.ExpandAll
	opts.Logger = s.logger
	return opts
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, hit, err := s.runner.Layout(r.Context(), req.Paths, s.layoutOptions(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, _, err := s.runner.Layout(r.Context(), req.Paths, s.layoutOptions(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, hit, err := s.runner.Render(r.Context(), l, render.Options{Format: req.Format, Engine: req.Engine})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	w.Header().Set("Content-Type", contentType(req.Format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
}

func contentType(format string) string {
	switch format {
	case render.FormatJSON:
		return "application/json"
	case render.FormatDOT:
		return "text/vnd.graphviz"
	case render.FormatPNG:
		return "image/png"
	case render.FormatPDF:
		return "application/pdf"
	default:
		return "image/svg+xml"
	}
}

// =============================================================================
// Projects
// =============================================================================

func (s *Server) loadProject(r *http.Request, id string) (project.Project, error) {
	if s.store == nil {
		return project.Project{}, errors.New(errors.ErrCodeUnsupported, "no project store configured")
	}
	return s.store.Get(r.Context(), id)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no project store configured"))
		return
	}
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"projects": ids})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.loadProject(r, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProject(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no project store configured"))
		return
	}
	var req projectRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.store.Put(r.Context(), project.Project{
		ID:       chi.URLParam(r, "id"),
		Paths:    req.Paths,
		Expanded: req.Expanded,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no project store configured"))
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Event Stream
// =============================================================================

// streamEvent names the SSE event carrying a published graph.
const streamEvent = "graph"

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stream, err := newEventStream(w)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ch, ok := sess.subscribe()
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeSessionNotFound, "session %q closed", sess.id))
		return
	}
	defer sess.unsubscribe(ch)

	ctx := r.Context()
	observability.HTTP().OnStream(ctx, sess.id, 1)
	defer observability.HTTP().OnStream(ctx, sess.id, -1)

	sess.mu.Lock()
	current := sess.orch.Graph()
	sess.mu.Unlock()

	stream.start()
	if err := stream.sendGraph(current); err != nil {
		return
	}
	s.logger.Debug("stream opened", "session", sess.id)

	ticker := time.NewTicker(s.cfg.KeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("stream closed by client", "session", sess.id)
			return
		case data, ok := <-ch:
			if !ok {
				s.logger.Debug("stream ended", "session", sess.id)
				return
			}
			if err := stream.send(streamEvent, data); err != nil {
				s.logger.Debug("stream write failed", "session", sess.id, "err", err)
				return
			}
		case <-ticker.C:
			if err := stream.keepAlive(); err != nil {
				s.logger.Debug("keepalive failed", "session", sess.id, "err", err)
				return
			}
		}
	}
}
