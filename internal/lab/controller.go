package lab

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrSimulationInFlight = errors.New("a simulation is already in flight")
	ErrNotInActiveMode    = errors.New("simulation requires genetic_modification or drug_discovery mode")
	ErrSessionClosed      = errors.New("session is closed")
	ErrUnknownComponent   = errors.New("unknown drug component")
	ErrInvalidAction      = errors.New("action cannot be dispatched directly")
)

// Content is the read side of the level, organism and component tables.
type Content interface {
	LevelData(mode Phase, n int) (LevelData, bool)
	// LevelCount is the size of a mode's level table, 0 when it has none.
	LevelCount(mode Phase) int
	OrganismFor(target string) OrganismData
	Component(id string) (DrugComponent, bool)
}

type ControllerConfig struct {
	Rules           Rules
	SimulationDelay time.Duration
	TickInterval    time.Duration
	Verdicts        VerdictSource
	Clock           Clock
	Logger          Logger
	Events          EventSink
}

const (
	DefaultSimulationDelay = 2 * time.Second
	DefaultTickInterval    = time.Second
)

func (cfg ControllerConfig) withDefaults() ControllerConfig {
	cfg.Rules = cfg.Rules.normalized()
	if cfg.SimulationDelay <= 0 {
		cfg.SimulationDelay = DefaultSimulationDelay
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.Verdicts == nil {
		cfg.Verdicts = DomainVerdicts{}
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	cfg.Logger = orNoOp(cfg.Logger)
	return cfg
}

// Controller owns one session: its game state, the strand and drug being
// worked on, the player's stats and achievements. It runs the elapsed-time
// ticker while a level is being played and resolves simulations after the
// configured delay. All methods are safe for concurrent use.
type Controller struct {
	id      SessionID
	cfg     ControllerConfig
	content Content

	mu           sync.Mutex
	state        GameState
	seq          *Sequence
	drug         *Drug
	stats        PlayerStats
	achievements *AchievementTracker
	phaseStop    chan struct{}
	closed       bool
	wg           sync.WaitGroup
}

// NewController creates a session in the menu. Nothing runs until a mode
// is started.
func NewController(id SessionID, content Content, cfg ControllerConfig) *Controller {
	cfg = cfg.withDefaults()
	c := &Controller{
		id:        id,
		cfg:       cfg,
		content:   content,
		state:     NewGameState(),
		seq:       NewSequence(),
		drug:      NewDrug(),
		phaseStop: make(chan struct{}),
	}
	c.achievements = NewModeAchievementTracker(cfg.Clock,
		c.LevelCap(PhaseGeneticModification), c.LevelCap(PhaseDrugDiscovery))
	return c
}

// LevelCap is the last playable level of mode: the configured cap, lowered
// to the size of the mode's level table.
func (c *Controller) LevelCap(mode Phase) int {
	return c.rulesFor(mode).LevelCap
}

func (c *Controller) rulesFor(mode Phase) Rules {
	rules := c.cfg.Rules
	if c.content == nil {
		return rules
	}
	if n := c.content.LevelCount(mode); n > 0 && n < rules.LevelCap {
		rules.LevelCap = n
	}
	return rules
}

func (c *Controller) ID() SessionID { return c.id }

// State returns a copy of the current game state.
func (c *Controller) State() GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Stats() PlayerStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Controller) Achievements() []Achievement {
	return c.achievements.All()
}

// Dispatch applies a player action. Simulation bookkeeping actions are
// internal and rejected here; use Simulate.
func (c *Controller) Dispatch(a Action) (GameState, error) {
	switch a.Type {
	case ActionBeginSimulation, ActionResolveSimulation, ActionCompleteLevel:
		return c.State(), ErrInvalidAction
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state, ErrSessionClosed
	}

	prev := c.state
	c.applyLocked(a)

	if a.Type == ActionTutorialComplete && prev.Phase == PhaseTutorial {
		c.stats.TutorialCompleted = true
		for _, ach := range c.achievements.CheckTutorial(c.stats) {
			c.unlockedLocked(ach)
		}
	}
	return c.state, nil
}

// StartMode enters a play mode or the tutorial at level 1 with a zero score.
func (c *Controller) StartMode(mode Phase) (GameState, error) {
	return c.Dispatch(Action{Type: ActionStartMode, Mode: mode})
}

// GoToMenu resets the session state and leaves the current phase.
func (c *Controller) GoToMenu() (GameState, error) {
	return c.Dispatch(Action{Type: ActionGoToMenu})
}

// NextLevel advances one level, or returns to the menu after the last one.
func (c *Controller) NextLevel() (GameState, error) {
	return c.Dispatch(Action{Type: ActionNextLevel})
}

func (c *Controller) ResetLevel() (GameState, error) {
	return c.Dispatch(Action{Type: ActionResetLevel})
}

func (c *Controller) UpdateScore(points int) (GameState, error) {
	return c.Dispatch(Action{Type: ActionUpdateScore, Points: points})
}

// applyLocked reduces the action into the state and restarts the phase
// lifecycle when the phase changes or a mode is (re)started.
func (c *Controller) applyLocked(a Action) {
	prev := c.state
	c.state = Reduce(prev, a, c.rulesFor(prev.Phase))

	restarted := a.Type == ActionStartMode && c.state.Phase == a.Mode
	if c.state.Phase != prev.Phase || restarted {
		c.restartPhaseLocked()
	}
	if c.state != prev {
		s := c.state
		c.publishLocked(Event{Type: EventStateChanged, State: &s})
	}
}

// restartPhaseLocked cancels everything bound to the current phase and
// starts the ticker when the new phase is playable.
func (c *Controller) restartPhaseLocked() {
	close(c.phaseStop)
	c.phaseStop = make(chan struct{})
	if c.state.Phase.Playable() {
		c.wg.Add(1)
		go c.runTicker(c.phaseStop)
	}
	c.cfg.Logger.Debugf("session %s entered phase %s", c.id, c.state.Phase)
}

func (c *Controller) runTicker(stop <-chan struct{}) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			select {
			case <-stop:
				c.mu.Unlock()
				return
			default:
			}
			c.applyLocked(Action{Type: ActionTick})
			c.mu.Unlock()
		}
	}
}

// Simulate starts a simulation of the current strand or drug. Only one may
// be in flight; its verdict lands after the configured delay unless the
// phase is left first. It returns the simulation sequence number.
func (c *Controller) Simulate() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrSessionClosed
	}
	if !c.state.Phase.Playable() {
		return 0, ErrNotInActiveMode
	}
	if c.state.IsSimulating {
		return 0, ErrSimulationInFlight
	}

	c.applyLocked(Action{Type: ActionBeginSimulation})
	seq := c.state.SimulationSeq
	in := c.simulationInputLocked()

	c.wg.Add(1)
	go c.resolveAfter(seq, in, c.phaseStop)

	c.cfg.Logger.Debugf("session %s simulation %d started: mode=%s level=%d", c.id, seq, in.Mode, c.state.Level)
	return seq, nil
}

func (c *Controller) simulationInputLocked() SimulationInput {
	in := SimulationInput{
		Mode:       c.state.Phase,
		Sequence:   c.seq.Bases(),
		Components: c.drug.Components(),
		EditType:   EditCRISPR,
	}
	if c.content != nil {
		in.Level, in.HasLevel = c.content.LevelData(c.state.Phase, c.state.Level)
		if in.HasLevel {
			in.Organism = c.content.OrganismFor(in.Level.TargetOrganism)
		}
	}
	return in
}

func (c *Controller) resolveAfter(seq uint64, in SimulationInput, stop <-chan struct{}) {
	defer c.wg.Done()

	timer := time.NewTimer(c.cfg.SimulationDelay)
	defer timer.Stop()
	select {
	case <-stop:
		c.cfg.Logger.Debugf("session %s simulation %d abandoned", c.id, seq)
		return
	case <-timer.C:
	}

	verdict, result := c.cfg.Verdicts.Verdict(in)

	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-stop:
		return
	default:
	}
	if !c.state.IsSimulating || c.state.SimulationSeq != seq {
		return
	}

	c.applyLocked(Action{Type: ActionResolveSimulation, Seq: seq, Verdict: verdict, Result: result})
	c.publishLocked(Event{Type: EventSimulationCompleted, Verdict: verdict, Result: result})
	c.cfg.Logger.Infof("session %s simulation %d resolved: verdict=%s", c.id, seq, verdict)

	if result != nil && in.HasLevel && in.Level.Meets(*result) {
		c.completeLevelLocked(in, *result)
	}
}

func (c *Controller) completeLevelLocked(in SimulationInput, result SimulationResult) {
	if c.state.LevelComplete {
		return
	}
	optimal := IsOptimal(in)
	attempts := c.state.Attempts
	elapsed := c.state.TimeElapsed
	breakdown := CalculateLevelScore(result.Effectiveness, elapsed, attempts, len(result.SideEffects), in.Level.Difficulty, optimal)

	c.applyLocked(Action{Type: ActionCompleteLevel, LevelScore: &breakdown})
	if !c.state.LevelComplete {
		return
	}

	c.stats.RecordCompletion(in.Mode, result.Effectiveness, breakdown, elapsed, attempts, len(result.SideEffects))
	newly := c.achievements.Check(c.stats, CompletedLevel{
		Score:       breakdown,
		TimeElapsed: elapsed,
		SideEffects: len(result.SideEffects),
		Alternative: hasReference(in.Level) && !optimal,
		Difficulty:  in.Level.Difficulty,
		Attempts:    attempts,
	})
	c.stats.AchievementsUnlocked = c.achievements.UnlockedCount()

	c.publishLocked(Event{Type: EventLevelCompleted, LevelScore: &breakdown, Result: &result, GlobalScore: GlobalScore(c.stats)})
	c.cfg.Logger.Infof("session %s completed %s level %d: total=%d", c.id, in.Mode, in.Level.ID, breakdown.TotalScore)
	for _, a := range newly {
		c.unlockedLocked(a)
	}
}

func (c *Controller) unlockedLocked(a Achievement) {
	c.stats.AchievementsUnlocked = c.achievements.UnlockedCount()
	c.publishLocked(Event{Type: EventAchievementUnlocked, Achievement: &a, GlobalScore: GlobalScore(c.stats)})
	c.cfg.Logger.Infof("session %s unlocked achievement %s", c.id, a.ID)
}

func hasReference(l LevelData) bool {
	return l.TargetSequence != "" || len(l.RequiredComponents) > 0
}

// IsOptimal reports whether the attempt used the level's reference
// solution: the target sequence is present in the strand, or every required
// component is in the drug.
func IsOptimal(in SimulationInput) bool {
	switch in.Mode {
	case PhaseGeneticModification:
		if in.Level.TargetSequence == "" {
			return false
		}
		strand := toDNA(joinBases(in.Sequence))
		return strings.Contains(strand, toDNA(in.Level.TargetSequence))
	case PhaseDrugDiscovery:
		if len(in.Level.RequiredComponents) == 0 {
			return false
		}
		have := make(map[string]bool, len(in.Components))
		for _, comp := range in.Components {
			have[comp.CatalogID] = true
		}
		for _, id := range in.Level.RequiredComponents {
			if !have[id] {
				return false
			}
		}
		return true
	}
	return false
}

func toDNA(s string) string {
	return strings.ReplaceAll(strings.ToUpper(s), "U", "T")
}

func (c *Controller) publishLocked(ev Event) {
	if c.cfg.Events == nil {
		return
	}
	ev.SessionID = c.id
	ev.Timestamp = c.cfg.Clock.Now().Unix()
	ev.Phase = c.state.Phase
	ev.Level = c.state.Level
	ev.Score = c.state.Score
	c.cfg.Events.Publish(ev)
}

// Close stops the ticker, abandons any pending simulation and waits for the
// session goroutines to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.phaseStop)
	c.mu.Unlock()
	c.wg.Wait()
}

// Sequence mutators.

func (c *Controller) SelectNucleotide(n Nucleotide) SequenceView {
	return c.withSequence(func(s *Sequence) { s.Select(n) })
}

func (c *Controller) SetEditPosition(pos int) SequenceView {
	return c.withSequence(func(s *Sequence) { s.SetCursor(pos) })
}

func (c *Controller) EditNucleotide(pos int, n Nucleotide) SequenceView {
	return c.withSequence(func(s *Sequence) { s.Edit(pos, n) })
}

func (c *Controller) InsertNucleotide(n Nucleotide) SequenceView {
	return c.withSequence(func(s *Sequence) { s.Insert(n) })
}

func (c *Controller) DeleteNucleotide(pos int) SequenceView {
	return c.withSequence(func(s *Sequence) { s.Delete(pos) })
}

func (c *Controller) ToggleRNA() SequenceView {
	return c.withSequence(func(s *Sequence) { s.ToggleRNA() })
}

func (c *Controller) ResetSequence() SequenceView {
	return c.withSequence(func(s *Sequence) { s.Reset() })
}

func (c *Controller) withSequence(fn func(*Sequence)) SequenceView {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.seq)
	return c.seq.View()
}

// Drug mutators.

// AddComponent appends a new instance of the catalog component.
func (c *Controller) AddComponent(catalogID string) (DrugComponent, error) {
	if c.content == nil {
		return DrugComponent{}, ErrUnknownComponent
	}
	comp, ok := c.content.Component(catalogID)
	if !ok {
		return DrugComponent{}, ErrUnknownComponent
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drug.Add(comp), nil
}

func (c *Controller) RemoveComponent(index int) DrugView {
	return c.withDrug(func(d *Drug) { d.Remove(index) })
}

func (c *Controller) SelectComponent(catalogID string) DrugView {
	return c.withDrug(func(d *Drug) { d.Select(catalogID) })
}

func (c *Controller) SetBindingTarget(target string) DrugView {
	return c.withDrug(func(d *Drug) { d.SetBindingTarget(target) })
}

func (c *Controller) ClearDrug() DrugView {
	return c.withDrug(func(d *Drug) { d.Clear() })
}

func (c *Controller) DrugView() DrugView {
	return c.withDrug(func(*Drug) {})
}

func (c *Controller) SequenceView() SequenceView {
	return c.withSequence(func(*Sequence) {})
}

func (c *Controller) withDrug(fn func(*Drug)) DrugView {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.drug)
	return c.drug.View()
}
