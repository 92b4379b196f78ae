package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/daniacca/genelab/internal/content"
	"github.com/daniacca/genelab/internal/lab"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, delay time.Duration) *Server {
	t.Helper()
	srv := NewServer(NewLogger("error"), content.MustLoad(), lab.ControllerConfig{
		Rules:           lab.DefaultRules(),
		SimulationDelay: delay,
	})
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		path string
		id   lab.SessionID
		rest string
	}{
		{"/sessions/abc", "abc", ""},
		{"/sessions/abc/state", "abc", "/state"},
		{"/sessions/", "", ""},
		{"/other/abc", "", ""},
	}
	for _, tt := range tests {
		id, rest := extractSessionID(tt.path)
		if id != tt.id || rest != tt.rest {
			t.Errorf("extractSessionID(%q) = (%q, %q), expected (%q, %q)", tt.path, id, rest, tt.id, tt.rest)
		}
	}
}

func TestServer_Health(t *testing.T) {
	h := newTestServer(t, time.Second).routes()
	w := do(t, h, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("Expected 200 ok, got %d %q", w.Code, w.Body.String())
	}
}

func TestServer_SessionLifecycle(t *testing.T) {
	srv := newTestServer(t, time.Second)
	h := srv.routes()

	w := do(t, h, http.MethodPost, "/sessions/s1", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var snap lab.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("Failed to parse snapshot: %v", err)
	}
	if snap.State.Phase != lab.PhaseMenu || snap.State.Level != 1 {
		t.Errorf("Expected menu at level 1, got %s at %d", snap.State.Phase, snap.State.Level)
	}

	if w := do(t, h, http.MethodPost, "/sessions/s1", ""); w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for duplicate session, got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/sessions", "")
	var list map[string][]string
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to parse session list: %v", err)
	}
	if len(list["sessions"]) != 1 || list["sessions"][0] != "s1" {
		t.Errorf("Expected [s1], got %v", list["sessions"])
	}

	if w := do(t, h, http.MethodDelete, "/sessions/s1", ""); w.Code != http.StatusOK {
		t.Errorf("Expected status 200 on delete, got %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/sessions/s1/state", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}
	if w := do(t, h, http.MethodPut, "/sessions/s1/state", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestServer_LevelCapClampedToContent(t *testing.T) {
	srv := NewServer(NewLogger("error"), content.MustLoad(), lab.ControllerConfig{
		Rules:           lab.Rules{LevelCap: 15},
		SimulationDelay: time.Second,
	})
	t.Cleanup(func() { _ = srv.Close() })
	if srv.rules.LevelCap != 10 {
		t.Fatalf("Expected level cap 10, got %d", srv.rules.LevelCap)
	}

	h := srv.routes()
	do(t, h, http.MethodPost, "/sessions/c1", "")
	do(t, h, http.MethodPost, "/sessions/c1/actions", `{"type":"start_mode","mode":"genetic_modification"}`)
	for i := 0; i < 14; i++ {
		do(t, h, http.MethodPost, "/sessions/c1/actions", `{"type":"next_level"}`)
	}

	w := do(t, h, http.MethodGet, "/sessions/c1/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var snap lab.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("Failed to parse snapshot: %v", err)
	}
	if snap.State.Phase != lab.PhaseMenu || snap.State.Level != 10 {
		t.Errorf("Expected menu at level 10, got %s at %d", snap.State.Phase, snap.State.Level)
	}
}

func TestServer_WriteSnapshotRejectsInvalid(t *testing.T) {
	srv := newTestServer(t, time.Second)

	w := httptest.NewRecorder()
	srv.writeSnapshot(w, http.StatusOK, lab.Snapshot{SessionID: "x", State: lab.GameState{Level: 0}})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "level 0") {
		t.Errorf("Expected level error, got %q", w.Body.String())
	}
}

func TestServer_ActionsAndSimulate(t *testing.T) {
	srv := newTestServer(t, time.Hour)
	h := srv.routes()
	do(t, h, http.MethodPost, "/sessions/p1", "")

	if w := do(t, h, http.MethodPost, "/sessions/p1/simulate", ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 when simulating from the menu, got %d", w.Code)
	}

	w := do(t, h, http.MethodPost, "/sessions/p1/actions", `{"type":"start_mode","mode":"drug_discovery"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var state lab.GameState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("Failed to parse state: %v", err)
	}
	if state.Phase != lab.PhaseDrugDiscovery {
		t.Errorf("Expected phase drug_discovery, got %s", state.Phase)
	}

	w = do(t, h, http.MethodPost, "/sessions/p1/simulate", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]uint64
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["simulation_seq"] != 1 {
		t.Errorf("Expected simulation_seq 1, got %d", resp["simulation_seq"])
	}

	if w := do(t, h, http.MethodPost, "/sessions/p1/simulate", ""); w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 while a simulation is in flight, got %d", w.Code)
	}

	if w := do(t, h, http.MethodPost, "/sessions/p1/actions", `{"type":"begin_simulation"}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for an internal action, got %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/sessions/p1/actions", `{`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for invalid json, got %d", w.Code)
	}
}

func TestServer_SequenceOps(t *testing.T) {
	h := newTestServer(t, time.Second).routes()
	do(t, h, http.MethodPost, "/sessions/g1", "")

	w := do(t, h, http.MethodPost, "/sessions/g1/sequence", `{"op":"edit","position":0,"nucleotide":"g"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var view lab.SequenceView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("Failed to parse view: %v", err)
	}
	if view.Bases[0] != lab.Guanine {
		t.Errorf("Expected G at position 0, got %s", view.Bases[0])
	}
	if view.EditPosition == nil || *view.EditPosition != 0 {
		t.Errorf("Expected edit position 0, got %v", view.EditPosition)
	}

	if w := do(t, h, http.MethodPost, "/sessions/g1/sequence", `{"op":"insert","nucleotide":"X"}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for invalid nucleotide, got %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/sessions/g1/sequence", `{"op":"splice"}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown op, got %d", w.Code)
	}

	w = do(t, h, http.MethodPost, "/sessions/g1/sequence", `{"op":"toggle_rna"}`)
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("Failed to parse view: %v", err)
	}
	if !view.IsRNA {
		t.Error("Expected RNA mode after toggle")
	}
}

func TestServer_DrugOps(t *testing.T) {
	h := newTestServer(t, time.Second).routes()
	do(t, h, http.MethodPost, "/sessions/d1", "")

	w := do(t, h, http.MethodPost, "/sessions/d1/drug", `{"op":"add","component_id":"enzyme_inhibitor"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var view lab.DrugView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("Failed to parse view: %v", err)
	}
	if len(view.Components) != 1 || view.Components[0].CatalogID != "enzyme_inhibitor" {
		t.Fatalf("Expected one enzyme_inhibitor, got %+v", view.Components)
	}
	if view.Components[0].ID == "enzyme_inhibitor" {
		t.Error("Expected instance ID to differ from the catalog ID")
	}

	w = do(t, h, http.MethodPost, "/sessions/d1/drug", `{"op":"add","component_id":"enzyme_inhibiter"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown component, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "enzyme_inhibitor") {
		t.Errorf("Expected suggestion in body, got %q", w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/sessions/d1/drug", `{"op":"remove","index":0}`)
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("Failed to parse view: %v", err)
	}
	if len(view.Components) != 0 {
		t.Errorf("Expected empty drug, got %d components", len(view.Components))
	}
}

func TestServer_ContentEndpoints(t *testing.T) {
	h := newTestServer(t, time.Second).routes()

	w := do(t, h, http.MethodGet, "/levels/genetic_modification/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var level lab.LevelData
	if err := json.Unmarshal(w.Body.Bytes(), &level); err != nil {
		t.Fatalf("Failed to parse level: %v", err)
	}
	if level.Name != "Simple Bacterial Resistance" {
		t.Errorf("Expected 'Simple Bacterial Resistance', got %q", level.Name)
	}
	if w := do(t, h, http.MethodGet, "/levels/genetic_modification/99", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/levels/drug_discovery/one", ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/levels/drug_discovery?difficulty=hard", "")
	var levels map[string][]lab.LevelData
	if err := json.Unmarshal(w.Body.Bytes(), &levels); err != nil {
		t.Fatalf("Failed to parse levels: %v", err)
	}
	if len(levels["levels"]) != 5 {
		t.Errorf("Expected 5 hard drug levels, got %d", len(levels["levels"]))
	}
	if w := do(t, h, http.MethodGet, "/levels/tutorial", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/pathogens?type=virus", "")
	var pathogens map[string][]lab.PathogenData
	if err := json.Unmarshal(w.Body.Bytes(), &pathogens); err != nil {
		t.Fatalf("Failed to parse pathogens: %v", err)
	}
	if len(pathogens["pathogens"]) != 3 {
		t.Errorf("Expected 3 viruses, got %d", len(pathogens["pathogens"]))
	}

	w = do(t, h, http.MethodGet, "/pathogens/ecolli", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ecoli") {
		t.Errorf("Expected suggestion 'ecoli', got %q", w.Body.String())
	}
	if w := do(t, h, http.MethodGet, "/pathogens/mrsa", ""); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/pathogens/hiv_1?interventions=pol%20inhibitor,", "")
	var detail map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("Failed to parse pathogen: %v", err)
	}
	// two pol mechanisms, 0.9 + 0.7, capped
	if detail["resistance"] != 1.0 {
		t.Errorf("Expected resistance 1, got %v", detail["resistance"])
	}
	w = do(t, h, http.MethodGet, "/pathogens/hiv_1", "")
	if strings.Contains(w.Body.String(), "resistance") {
		t.Errorf("Expected no resistance without interventions, got %s", w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/components", "")
	var comps map[string][]lab.DrugComponent
	if err := json.Unmarshal(w.Body.Bytes(), &comps); err != nil {
		t.Fatalf("Failed to parse components: %v", err)
	}
	if len(comps["components"]) != 6 {
		t.Errorf("Expected 6 components, got %d", len(comps["components"]))
	}
}

func TestServer_Notifiers(t *testing.T) {
	h := newTestServer(t, time.Second).routes()

	w := do(t, h, http.MethodPost, "/notifiers", `{"type":"webhook","id":"hook","config":{"url":"http://localhost:1/x","events":["level_completed"]}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := do(t, h, http.MethodPost, "/notifiers", `{"type":"webhook","id":"hook2","config":{}}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without URL, got %d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/notifiers", `{"type":"carrier-pigeon","id":"p"}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown type, got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/notifiers", "")
	var resp map[string][]map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse notifiers: %v", err)
	}
	if len(resp["notifiers"]) != 2 {
		t.Errorf("Expected websocket and webhook notifiers, got %v", resp["notifiers"])
	}

	if w := do(t, h, http.MethodDelete, "/notifiers/websocket", ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 removing the websocket notifier, got %d", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/notifiers/hook", ""); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/notifiers/hook", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// winLevelOne edits the starter strand into ATGCGATCG, which carries the
// target sequence and both conserved loci of genetic level 1.
func winLevelOne(t *testing.T, h http.Handler, session string) {
	t.Helper()
	base := "/sessions/" + session
	do(t, h, http.MethodPost, base+"/actions", `{"type":"start_mode","mode":"genetic_modification"}`)
	do(t, h, http.MethodPost, base+"/sequence", `{"op":"edit","position":8,"nucleotide":"G"}`)
	for range 7 {
		do(t, h, http.MethodPost, base+"/sequence", `{"op":"delete","position":9}`)
	}
	if w := do(t, h, http.MethodPost, base+"/simulate", ""); w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServer_ProgressWebhook(t *testing.T) {
	received := make(chan lab.Event, 10)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev lab.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err == nil {
			received <- ev
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	srv := newTestServer(t, 10*time.Millisecond)
	if err := srv.RegisterProgressWebhook(hook.URL); err != nil {
		t.Fatalf("Failed to register webhook: %v", err)
	}
	h := srv.routes()
	do(t, h, http.MethodPost, "/sessions/w1", "")
	winLevelOne(t, h, "w1")

	var completed *lab.Event
	unlocked := map[lab.AchievementID]bool{}
	timeout := time.After(5 * time.Second)
	for completed == nil || !unlocked[lab.AchievementFirstSuccess] {
		select {
		case ev := <-received:
			switch ev.Type {
			case lab.EventLevelCompleted:
				completed = &ev
			case lab.EventAchievementUnlocked:
				if ev.Achievement != nil {
					unlocked[ev.Achievement.ID] = true
				}
			default:
				t.Errorf("Webhook received filtered event type %s", ev.Type)
			}
		case <-timeout:
			t.Fatalf("Timed out waiting for webhook events, completed=%v unlocked=%v", completed != nil, unlocked)
		}
	}

	if completed.SessionID != "w1" || completed.LevelScore == nil {
		t.Errorf("Expected level_completed for w1 with a score, got %+v", completed)
	}

	w := do(t, h, http.MethodGet, "/sessions/w1/state", "")
	var snap lab.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("Failed to parse snapshot: %v", err)
	}
	if !snap.State.LevelComplete || snap.Stats.LevelsCompleted != 1 {
		t.Errorf("Expected level complete with 1 completion, got %+v / %+v", snap.State, snap.Stats)
	}
}

func TestServer_WebSocketEvents(t *testing.T) {
	srv := newTestServer(t, time.Second)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=ws1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	defer conn.Close()

	// registration is asynchronous
	deadline := time.Now().Add(2 * time.Second)
	for srv.websocket.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Post(ts.URL+"/sessions/ws1", "application/json", nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	resp.Body.Close()
	resp, err = http.Post(ts.URL+"/sessions/ws1/actions", "application/json",
		strings.NewReader(`{"type":"start_mode","mode":"tutorial"}`))
	if err != nil {
		t.Fatalf("Failed to dispatch action: %v", err)
	}
	resp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev lab.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	if ev.Type != lab.EventStateChanged || ev.SessionID != "ws1" || ev.Phase != lab.PhaseTutorial {
		t.Errorf("Expected state_changed to tutorial for ws1, got %+v", ev)
	}
}

func TestResolveConfig_Precedence(t *testing.T) {
	env := map[string]string{
		"GENELAB_ADDR":        ":9090",
		"GENELAB_LOG_LEVEL":   "debug",
		"GENELAB_LEVEL_CAP":   "7",
		"GENELAB_SEED":        "42",
		"GENELAB_WEBHOOK_URL": "http://progress.local/hook",
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := resolveConfig(fs, []string{"-addr", ":7070", "-simulation-delay", "500ms"}, func(k string) string { return env[k] })

	if cfg.Addr != ":7070" {
		t.Errorf("Expected flag to win for addr, got %s", cfg.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level from env, got %s", cfg.LogLevel)
	}
	if cfg.LevelCap != 7 || cfg.Seed != 42 {
		t.Errorf("Expected level cap 7 and seed 42, got %d and %d", cfg.LevelCap, cfg.Seed)
	}
	if cfg.SimulationDelay != 500*time.Millisecond {
		t.Errorf("Expected 500ms delay, got %s", cfg.SimulationDelay)
	}
	if cfg.VerdictMode != lab.VerdictModeDomain {
		t.Errorf("Expected default verdict mode, got %s", cfg.VerdictMode)
	}
	if cfg.WebhookURL != "http://progress.local/hook" {
		t.Errorf("Expected webhook URL from env, got %s", cfg.WebhookURL)
	}
}

func TestResolveConfig_InvalidValuesFallBack(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := resolveConfig(fs, []string{"-level-cap", "many", "-simulation-delay", "-1s"}, func(string) string { return "" })
	if cfg.LevelCap != 0 {
		t.Errorf("Expected level cap fallback 0, got %d", cfg.LevelCap)
	}
	if cfg.SimulationDelay != lab.DefaultSimulationDelay {
		t.Errorf("Expected default delay, got %s", cfg.SimulationDelay)
	}
}

func TestLoadRulesFile(t *testing.T) {
	rules, err := loadRulesFile("")
	if err != nil || rules != lab.DefaultRules() {
		t.Fatalf("Expected default rules, got %+v, %v", rules, err)
	}

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("level_cap: 7\nfailure_points: -10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rules, err = loadRulesFile(path)
	if err != nil {
		t.Fatalf("loadRulesFile: %v", err)
	}
	if rules.LevelCap != 7 || rules.FailurePoints != -10 {
		t.Errorf("Expected overrides applied, got %+v", rules)
	}
	if rules.SuccessPoints != 100 || rules.TutorialSteps != 8 {
		t.Errorf("Expected untouched defaults, got %+v", rules)
	}

	if _, err := loadRulesFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(bad, []byte("level_cap: -3\n"), 0o644)
	if _, err := loadRulesFile(bad); err == nil {
		t.Error("Expected error for negative level cap")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
		"bogus":   LogLevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %s, expected %s", in, got, want)
		}
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLoggerTo(&buf, "warn")

	l.Debugf("hidden %d", 1)
	l.Infof("hidden %d", 2)
	l.Warnf("cap lowered to %d", 10)
	l.Errorf("boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "genelab: WARN cap lowered to 10") {
		t.Errorf("Expected warn line, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "genelab: ERROR boom") {
		t.Errorf("Expected error line, got %q", lines[1])
	}
}

func TestLogger_FatalfExits(t *testing.T) {
	var buf bytes.Buffer
	l := newLoggerTo(&buf, "error")
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatalf("no content in %s", "dir")

	if code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "genelab: FATAL no content in dir") {
		t.Errorf("Expected fatal line, got %q", buf.String())
	}
}
