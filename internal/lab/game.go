package lab

// Phase is the top level screen the player is on.
type Phase string

const (
	PhaseMenu                Phase = "menu"
	PhaseGeneticModification Phase = "genetic_modification"
	PhaseDrugDiscovery       Phase = "drug_discovery"
	PhaseTutorial            Phase = "tutorial"
	PhaseLeaderboard         Phase = "leaderboard"
)

// Playable reports whether levels are played in this phase.
func (p Phase) Playable() bool {
	return p == PhaseGeneticModification || p == PhaseDrugDiscovery
}

func (p Phase) startable() bool {
	return p.Playable() || p == PhaseTutorial
}

type Verdict string

const (
	VerdictNone    Verdict = ""
	VerdictSuccess Verdict = "success"
	VerdictPartial Verdict = "partial"
	VerdictFailure Verdict = "failure"
)

// Rules are the tunable constants of the state machine.
type Rules struct {
	LevelCap      int `yaml:"level_cap" json:"level_cap"`
	TutorialSteps int `yaml:"tutorial_steps" json:"tutorial_steps"`
	SuccessPoints int `yaml:"success_points" json:"success_points"`
	PartialPoints int `yaml:"partial_points" json:"partial_points"`
	FailurePoints int `yaml:"failure_points" json:"failure_points"`
}

// DefaultRules plays all ten levels of each table.
func DefaultRules() Rules {
	return Rules{
		LevelCap:      10,
		TutorialSteps: 8,
		SuccessPoints: 100,
		PartialPoints: 50,
		FailurePoints: -25,
	}
}

func (r Rules) normalized() Rules {
	d := DefaultRules()
	if r.LevelCap < 1 {
		r.LevelCap = d.LevelCap
	}
	if r.TutorialSteps < 1 {
		r.TutorialSteps = d.TutorialSteps
	}
	return r
}

func (r Rules) delta(v Verdict) int {
	switch v {
	case VerdictSuccess:
		return r.SuccessPoints
	case VerdictPartial:
		return r.PartialPoints
	case VerdictFailure:
		return r.FailurePoints
	}
	return 0
}

// GameState is the whole state of one play session's state machine.
type GameState struct {
	Phase          Phase             `json:"phase"`
	Level          int               `json:"level"`
	Score          int               `json:"score"`
	TimeElapsed    int               `json:"time_elapsed"`
	TutorialStep   int               `json:"tutorial_step"`
	IsSimulating   bool              `json:"is_simulating"`
	SimulationSeq  uint64            `json:"simulation_seq"`
	LastVerdict    Verdict           `json:"last_verdict,omitempty"`
	LastResult     *SimulationResult `json:"last_result,omitempty"`
	Attempts       int               `json:"attempts"`
	LevelComplete  bool              `json:"level_complete"`
	LastLevelScore *ScoreBreakdown   `json:"last_level_score,omitempty"`
}

// NewGameState is the state at process start.
func NewGameState() GameState {
	return GameState{Phase: PhaseMenu, Level: 1}
}

type ActionType string

const (
	ActionStartMode         ActionType = "start_mode"
	ActionGoToMenu          ActionType = "go_to_menu"
	ActionNextLevel         ActionType = "next_level"
	ActionResetLevel        ActionType = "reset_level"
	ActionUpdateScore       ActionType = "update_score"
	ActionTick              ActionType = "tick"
	ActionBeginSimulation   ActionType = "begin_simulation"
	ActionResolveSimulation ActionType = "resolve_simulation"
	ActionCompleteLevel     ActionType = "complete_level"
	ActionShowLeaderboard   ActionType = "show_leaderboard"
	ActionTutorialNext      ActionType = "tutorial_next"
	ActionTutorialPrev      ActionType = "tutorial_prev"
	ActionTutorialSkip      ActionType = "tutorial_skip"
	ActionTutorialComplete  ActionType = "tutorial_complete"
	ActionEndGame           ActionType = "end_game"
)

// Action is an input to Reduce. Only the fields the type needs are read.
type Action struct {
	Type       ActionType        `json:"type"`
	Mode       Phase             `json:"mode,omitempty"`
	Points     int               `json:"points,omitempty"`
	Seq        uint64            `json:"seq,omitempty"`
	Verdict    Verdict           `json:"verdict,omitempty"`
	Result     *SimulationResult `json:"result,omitempty"`
	LevelScore *ScoreBreakdown   `json:"level_score,omitempty"`
}

// Reduce applies one action and returns the next state. It has no side
// effects; unknown or inapplicable actions return s unchanged.
func Reduce(s GameState, a Action, rules Rules) GameState {
	rules = rules.normalized()
	next := s

	switch a.Type {
	case ActionStartMode:
		if !a.Mode.startable() {
			return s
		}
		next.Phase = a.Mode
		next.Level = 1
		next.Score = 0
		next.TimeElapsed = 0
		next.LastVerdict = VerdictNone
		next.LastResult = nil
		next.IsSimulating = false
		next.clearLevel()

	case ActionGoToMenu:
		next = NewGameState()
		next.SimulationSeq = s.SimulationSeq

	case ActionEndGame:
		next.Phase = PhaseMenu

	case ActionShowLeaderboard:
		next.Phase = PhaseLeaderboard

	case ActionNextLevel:
		if !s.Phase.Playable() {
			return s
		}
		if s.Level >= rules.LevelCap {
			next.Phase = PhaseMenu
			break
		}
		next.Level = s.Level + 1
		next.TimeElapsed = 0
		next.LastVerdict = VerdictNone
		next.LastResult = nil
		next.clearLevel()

	case ActionResetLevel:
		next.TimeElapsed = 0
		next.LastVerdict = VerdictNone
		next.LastResult = nil
		next.LevelComplete = false
		next.LastLevelScore = nil

	case ActionUpdateScore:
		next.Score = max(0, s.Score+a.Points)

	case ActionTick:
		if !s.Phase.Playable() {
			return s
		}
		next.TimeElapsed = s.TimeElapsed + 1

	case ActionBeginSimulation:
		if !s.Phase.Playable() || s.IsSimulating {
			return s
		}
		next.IsSimulating = true
		next.SimulationSeq = s.SimulationSeq + 1
		next.Attempts = s.Attempts + 1

	case ActionResolveSimulation:
		if !s.IsSimulating || a.Seq != s.SimulationSeq {
			return s
		}
		next.IsSimulating = false
		next.LastVerdict = a.Verdict
		next.LastResult = a.Result
		next.Score = max(0, s.Score+rules.delta(a.Verdict))

	case ActionCompleteLevel:
		if !s.Phase.Playable() || s.LevelComplete || a.LevelScore == nil {
			return s
		}
		next.LevelComplete = true
		ls := *a.LevelScore
		next.LastLevelScore = &ls
		next.Score = max(0, s.Score+ls.TotalScore)

	case ActionTutorialNext:
		next.TutorialStep = clampInt(s.TutorialStep+1, 0, rules.TutorialSteps-1)

	case ActionTutorialPrev:
		next.TutorialStep = clampInt(s.TutorialStep-1, 0, rules.TutorialSteps-1)

	case ActionTutorialSkip, ActionTutorialComplete:
		next.Phase = PhaseMenu
		next.TutorialStep = 0

	default:
		return s
	}

	// leaving a phase abandons any pending simulation
	if next.Phase != s.Phase {
		next.IsSimulating = false
	}
	return next
}

func (s *GameState) clearLevel() {
	s.Attempts = 0
	s.LevelComplete = false
	s.LastLevelScore = nil
}
