package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/daniacca/genelab/internal/lab"
	"github.com/daniacca/genelab/internal/lab/notifiers"
)

// extractSessionID extracts the session ID from a path like "/sessions/{id}/..."
// Returns the session ID and the remaining path, or empty string if not found
func extractSessionID(path string) (lab.SessionID, string) {
	if !strings.HasPrefix(path, "/sessions/") {
		return "", ""
	}
	rest := strings.TrimPrefix(path, "/sessions/")

	idx := strings.Index(rest, "/")
	if idx == -1 {
		return lab.SessionID(rest), ""
	}
	return lab.SessionID(rest[:idx]), rest[idx:]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
	}
}

// writeSnapshot refuses to serve a snapshot that breaks the session
// invariants; that is a controller bug, not a client error.
func (s *Server) writeSnapshot(w http.ResponseWriter, status int, snap lab.Snapshot) {
	if err := lab.ValidateSnapshot(snap, s.rules); err != nil {
		s.logger.Errorf("Invalid snapshot: %v", err)
		http.Error(w, "invalid session state: "+err.Error(), http.StatusInternalServerError)
		return
	}
	data, err := lab.EncodeSnapshotJSON(snap)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// /sessions/{id}/...
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id, rest := extractSessionID(r.URL.Path)
	if id == "" {
		http.Error(w, "session ID is required in path: /sessions/{id}", http.StatusBadRequest)
		return
	}

	switch {
	case rest == "" && r.Method == http.MethodPost:
		s.handleCreateSession(w, id)
	case rest == "" && r.Method == http.MethodDelete:
		s.handleDeleteSession(w, id)
	case rest == "/state" && r.Method == http.MethodGet:
		s.handleGetState(w, id)
	case rest == "/actions" && r.Method == http.MethodPost:
		s.handleAction(w, r, id)
	case rest == "/simulate" && r.Method == http.MethodPost:
		s.handleSimulate(w, id)
	case rest == "/sequence" && r.Method == http.MethodPost:
		s.handleSequence(w, r, id)
	case rest == "/drug" && r.Method == http.MethodPost:
		s.handleDrug(w, r, id)
	case rest == "" || rest == "/state" || rest == "/actions" || rest == "/simulate" || rest == "/sequence" || rest == "/drug":
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// POST /sessions/{id}
// Creates a session in the menu phase
func (s *Server) handleCreateSession(w http.ResponseWriter, id lab.SessionID) {
	ctrl, err := s.sessions.CreateSession(id)
	if err != nil {
		if errors.Is(err, lab.ErrSessionExists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, "cannot create session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeSnapshot(w, http.StatusCreated, ctrl.Snapshot())
}

// DELETE /sessions/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, id lab.SessionID) {
	if err := s.sessions.DeleteSession(id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("session deleted"))
}

// GET /sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ids := s.sessions.ListSessions()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": out})
}

func (s *Server) session(w http.ResponseWriter, id lab.SessionID) (*lab.Controller, bool) {
	ctrl, ok := s.sessions.GetSession(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
	}
	return ctrl, ok
}

// GET /sessions/{id}/state
func (s *Server) handleGetState(w http.ResponseWriter, id lab.SessionID) {
	ctrl, ok := s.session(w, id)
	if !ok {
		return
	}
	s.writeSnapshot(w, http.StatusOK, ctrl.Snapshot())
}

// POST /sessions/{id}/actions
// Body: { "type": "start_mode", "mode": "genetic_modification" }
type actionRequest struct {
	Type   lab.ActionType `json:"type"`
	Mode   lab.Phase      `json:"mode"`
	Points int            `json:"points"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, id lab.SessionID) {
	defer r.Body.Close()

	ctrl, ok := s.session(w, id)
	if !ok {
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		http.Error(w, "action type is required", http.StatusBadRequest)
		return
	}

	state, err := ctrl.Dispatch(lab.Action{Type: req.Type, Mode: req.Mode, Points: req.Points})
	if err != nil {
		s.writeControllerError(w, err)
		return
	}
	s.logger.Debugf("Action dispatched: session_id=%s type=%s phase=%s level=%d", id, req.Type, state.Phase, state.Level)
	writeJSON(w, http.StatusOK, state)
}

// POST /sessions/{id}/simulate
// Starts a simulation; the verdict arrives later as a simulation_completed event
func (s *Server) handleSimulate(w http.ResponseWriter, id lab.SessionID) {
	ctrl, ok := s.session(w, id)
	if !ok {
		return
	}

	seq, err := ctrl.Simulate()
	if err != nil {
		s.writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]uint64{"simulation_seq": seq})
}

// POST /sessions/{id}/sequence
// Body: { "op": "edit", "position": 3, "nucleotide": "G" }
type sequenceRequest struct {
	Op         string `json:"op"`
	Position   int    `json:"position"`
	Nucleotide string `json:"nucleotide"`
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request, id lab.SessionID) {
	defer r.Body.Close()

	ctrl, ok := s.session(w, id)
	if !ok {
		return
	}

	var req sequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	nucleotide := func() (lab.Nucleotide, bool) {
		n, ok := lab.ParseNucleotide(req.Nucleotide)
		if !ok {
			http.Error(w, "invalid nucleotide: "+strconv.Quote(req.Nucleotide), http.StatusBadRequest)
		}
		return n, ok
	}

	var view lab.SequenceView
	switch req.Op {
	case "select":
		n, ok := nucleotide()
		if !ok {
			return
		}
		view = ctrl.SelectNucleotide(n)
	case "cursor":
		view = ctrl.SetEditPosition(req.Position)
	case "edit":
		n, ok := nucleotide()
		if !ok {
			return
		}
		view = ctrl.EditNucleotide(req.Position, n)
	case "insert":
		n, ok := nucleotide()
		if !ok {
			return
		}
		view = ctrl.InsertNucleotide(n)
	case "delete":
		view = ctrl.DeleteNucleotide(req.Position)
	case "toggle_rna":
		view = ctrl.ToggleRNA()
	case "reset":
		view = ctrl.ResetSequence()
	default:
		http.Error(w, "unknown sequence op: "+req.Op, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// POST /sessions/{id}/drug
// Body: { "op": "add", "component_id": "benzene_ring" }
type drugRequest struct {
	Op          string `json:"op"`
	ComponentID string `json:"component_id"`
	Index       int    `json:"index"`
	Target      string `json:"target"`
}

func (s *Server) handleDrug(w http.ResponseWriter, r *http.Request, id lab.SessionID) {
	defer r.Body.Close()

	ctrl, ok := s.session(w, id)
	if !ok {
		return
	}

	var req drugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	var view lab.DrugView
	switch req.Op {
	case "add":
		if _, err := ctrl.AddComponent(req.ComponentID); err != nil {
			msg := "unknown component: " + req.ComponentID
			if suggestions := s.catalog.ClosestComponentIDs(req.ComponentID); len(suggestions) > 0 {
				msg += " (did you mean " + strings.Join(suggestions, ", ") + "?)"
			}
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		view = ctrl.DrugView()
	case "remove":
		view = ctrl.RemoveComponent(req.Index)
	case "select":
		view = ctrl.SelectComponent(req.ComponentID)
	case "target":
		view = ctrl.SetBindingTarget(req.Target)
	case "clear":
		view = ctrl.ClearDrug()
	default:
		http.Error(w, "unknown drug op: "+req.Op, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) writeControllerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lab.ErrSimulationInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, lab.ErrSessionClosed):
		http.Error(w, err.Error(), http.StatusGone)
	case errors.Is(err, lab.ErrNotInActiveMode), errors.Is(err, lab.ErrInvalidAction):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GET /levels/{mode}?difficulty=easy
// GET /levels/{mode}/{n}
func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/levels/"), "/"), "/")
	if len(parts) == 1 && parts[0] != "" {
		mode := lab.Phase(parts[0])
		if s.catalog.LevelCount(mode) == 0 {
			http.Error(w, "no levels for mode: "+parts[0], http.StatusNotFound)
			return
		}
		levels := s.catalog.Levels(mode)
		if d := r.URL.Query().Get("difficulty"); d != "" {
			levels = s.catalog.LevelsByDifficulty(mode, lab.Difficulty(d))
		}
		writeJSON(w, http.StatusOK, map[string]any{"levels": levels})
		return
	}
	if len(parts) != 2 {
		http.Error(w, "expected path: /levels/{mode}/{n}", http.StatusBadRequest)
		return
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		http.Error(w, "invalid level number: "+parts[1], http.StatusBadRequest)
		return
	}
	level, ok := s.catalog.LevelData(lab.Phase(parts[0]), n)
	if !ok {
		http.Error(w, "level not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, level)
}

// GET /pathogens?type=virus&difficulty=hard
// GET /pathogens/{id}
func (s *Server) handlePathogens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if id := strings.TrimPrefix(r.URL.Path, "/pathogens/"); id != r.URL.Path && id != "" {
		p, ok := s.catalog.PathogenByID(id)
		if !ok {
			msg := "pathogen not found: " + id
			if suggestions := s.catalog.ClosestPathogenIDs(id); len(suggestions) > 0 {
				msg += " (did you mean " + strings.Join(suggestions, ", ") + "?)"
			}
			http.Error(w, msg, http.StatusNotFound)
			return
		}
		resp := map[string]any{
			"pathogen":        p,
			"optimal_targets": s.catalog.FindOptimalTargets(p),
		}
		if q := r.URL.Query().Get("interventions"); q != "" {
			var interventions []string
			for _, iv := range strings.Split(q, ",") {
				if iv = strings.TrimSpace(iv); iv != "" {
					interventions = append(interventions, iv)
				}
			}
			resp["resistance"] = s.catalog.CalculatePathogenResistance(p, interventions)
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	pathogens := s.catalog.Pathogens()
	if t := r.URL.Query().Get("type"); t != "" {
		pathogens = s.catalog.PathogensByType(lab.PathogenType(t))
	}
	if d := r.URL.Query().Get("difficulty"); d != "" {
		filtered := pathogens[:0:0]
		for _, p := range pathogens {
			if p.Difficulty == lab.Difficulty(d) {
				filtered = append(filtered, p)
			}
		}
		pathogens = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{"pathogens": pathogens})
}

// GET /components
func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"components": s.catalog.Components()})
}

// GET /notifiers
// List all registered notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, r *http.Request) {
	ids := s.notifierMgr.ListNotifiers()
	list := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		if notifier, ok := s.notifierMgr.GetNotifier(id); ok {
			list = append(list, map[string]string{
				"id":   id,
				"type": notifier.Type(),
			})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifiers": list})
}

// POST /notifiers
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://...", "events": ["level_completed"] } }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier lab.Notifier
	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := notifiers.NewWebhookNotifier(req.ID, url)

		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}
		if events, ok := req.Config["events"].([]any); ok {
			types := make([]lab.EventType, 0, len(events))
			for _, e := range events {
				if eStr, ok := e.(string); ok {
					types = append(types, lab.EventType(eStr))
				}
			}
			wh.SetEvents(types...)
		}
		notifier = wh
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.RegisterNotifier(notifier); err != nil {
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Infof("Notifier registered: id=%s type=%s", req.ID, req.Type)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}
	if notifierID == websocketNotifierID {
		http.Error(w, "the websocket notifier cannot be removed", http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}

// routes builds the HTTP handler for every endpoint
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/sessions", s.handleListSessions)
	mux.HandleFunc("/sessions/", s.handleSession)
	mux.HandleFunc("/levels/", s.handleLevel)
	mux.HandleFunc("/pathogens", s.handlePathogens)
	mux.HandleFunc("/pathogens/", s.handlePathogens)
	mux.HandleFunc("/components", s.handleComponents)
	mux.Handle("/ws", s.websocket)

	mux.HandleFunc("/notifiers", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.handleListNotifiers(w, r)
		case http.MethodPost:
			s.handleRegisterNotifier(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/notifiers/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleUnregisterNotifier(w, r)
	})

	return mux
}
