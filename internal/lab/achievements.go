package lab

import (
	"sync"
	"time"
)

type AchievementID string

const (
	AchievementFirstSuccess     AchievementID = "first_success"
	AchievementPerfectScore     AchievementID = "perfect_score"
	AchievementSpeedRunner      AchievementID = "speed_runner"
	AchievementNoSideEffects    AchievementID = "no_side_effects"
	AchievementGeneticMaster    AchievementID = "genetic_master"
	AchievementDrugDiscoverer   AchievementID = "drug_discoverer"
	AchievementScientist        AchievementID = "scientist"
	AchievementCreativeSolution AchievementID = "creative_solution"
	AchievementPersistence      AchievementID = "persistence"
	AchievementTeacher          AchievementID = "teacher"
)

type Achievement struct {
	ID          AchievementID `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Unlocked    bool          `json:"unlocked"`
	UnlockedAt  *time.Time    `json:"unlocked_at,omitempty"`
}

// CompletedLevel describes the attempt being checked for achievements.
type CompletedLevel struct {
	Score       ScoreBreakdown
	TimeElapsed int
	SideEffects int
	Alternative bool
	Difficulty  Difficulty
	Attempts    int
}

const (
	cleanLevelsNeeded    = 5
	persistenceAttempts  = 10
	speedRunnerSeconds   = 120
	defaultLevelsPerMode = 7
)

// modeLevels is how many levels count as "all levels" of each mode.
type modeLevels struct {
	genetic int
	drug    int
}

type achievementRule struct {
	Achievement
	unlocks func(s PlayerStats, c CompletedLevel, n modeLevels) bool
}

func catalog() []achievementRule {
	return []achievementRule{
		{
			Achievement{ID: AchievementFirstSuccess, Name: "First Success", Description: "Complete your first level successfully", Icon: "🎯"},
			func(s PlayerStats, _ CompletedLevel, _ modeLevels) bool { return s.LevelsCompleted >= 1 },
		},
		{
			Achievement{ID: AchievementPerfectScore, Name: "Perfect Score", Description: "Achieve maximum score on any level", Icon: "⭐"},
			func(_ PlayerStats, c CompletedLevel, _ modeLevels) bool {
				return c.Score.TotalScore >= MaxScore(DifficultyHard)
			},
		},
		{
			Achievement{ID: AchievementSpeedRunner, Name: "Speed Runner", Description: "Complete a level in under 2 minutes", Icon: "⚡"},
			func(_ PlayerStats, c CompletedLevel, _ modeLevels) bool { return c.TimeElapsed < speedRunnerSeconds },
		},
		{
			Achievement{ID: AchievementNoSideEffects, Name: "No Side Effects", Description: "Complete 5 levels without any side effects", Icon: "💚"},
			func(s PlayerStats, _ CompletedLevel, _ modeLevels) bool {
				return s.NoSideEffectLevels >= cleanLevelsNeeded
			},
		},
		{
			Achievement{ID: AchievementGeneticMaster, Name: "Genetic Master", Description: "Complete all genetic modification levels", Icon: "🧬"},
			func(s PlayerStats, _ CompletedLevel, n modeLevels) bool { return s.GeneticLevelsCompleted >= n.genetic },
		},
		{
			Achievement{ID: AchievementDrugDiscoverer, Name: "Drug Discoverer", Description: "Complete all drug discovery levels", Icon: "💊"},
			func(s PlayerStats, _ CompletedLevel, n modeLevels) bool { return s.DrugLevelsCompleted >= n.drug },
		},
		{
			Achievement{ID: AchievementScientist, Name: "Scientist", Description: "Complete both game modes", Icon: "👩‍🔬"},
			func(s PlayerStats, _ CompletedLevel, n modeLevels) bool {
				return s.GeneticLevelsCompleted >= n.genetic && s.DrugLevelsCompleted >= n.drug
			},
		},
		{
			Achievement{ID: AchievementCreativeSolution, Name: "Creative Solution", Description: "Find an alternative solution to a level", Icon: "🎨"},
			func(_ PlayerStats, c CompletedLevel, _ modeLevels) bool { return c.Alternative },
		},
		{
			Achievement{ID: AchievementPersistence, Name: "Persistence", Description: "Complete a hard level after 10+ attempts", Icon: "💪"},
			func(_ PlayerStats, c CompletedLevel, _ modeLevels) bool {
				return c.Difficulty == DifficultyHard && c.Attempts >= persistenceAttempts
			},
		},
		{
			Achievement{ID: AchievementTeacher, Name: "Teacher", Description: "Complete the tutorial perfectly", Icon: "📚"},
			func(s PlayerStats, _ CompletedLevel, _ modeLevels) bool { return s.TutorialCompleted },
		},
	}
}

// AchievementTracker holds one player's achievement state. Unlocks are
// permanent and stamped with the time they were first detected.
type AchievementTracker struct {
	mu     sync.Mutex
	rules  []achievementRule
	clock  Clock
	levels modeLevels
}

// NewAchievementTracker creates a tracker where both modes have
// levelsPerMode levels; values < 1 fall back to 7.
func NewAchievementTracker(clock Clock, levelsPerMode int) *AchievementTracker {
	return NewModeAchievementTracker(clock, levelsPerMode, levelsPerMode)
}

// NewModeAchievementTracker creates a tracker with separate level counts for
// genetic modification and drug discovery.
func NewModeAchievementTracker(clock Clock, geneticLevels, drugLevels int) *AchievementTracker {
	if clock == nil {
		clock = RealClock{}
	}
	if geneticLevels < 1 {
		geneticLevels = defaultLevelsPerMode
	}
	if drugLevels < 1 {
		drugLevels = defaultLevelsPerMode
	}
	return &AchievementTracker{
		rules:  catalog(),
		clock:  clock,
		levels: modeLevels{genetic: geneticLevels, drug: drugLevels},
	}
}

// Check evaluates every locked achievement and returns only the ones this
// call unlocked.
func (t *AchievementTracker) Check(stats PlayerStats, level CompletedLevel) []Achievement {
	t.mu.Lock()
	defer t.mu.Unlock()

	newly := make([]Achievement, 0)
	for i := range t.rules {
		r := &t.rules[i]
		if r.Unlocked || !r.unlocks(stats, level, t.levels) {
			continue
		}
		now := t.clock.Now()
		r.Unlocked = true
		r.UnlockedAt = &now
		newly = append(newly, r.Achievement)
	}
	return newly
}

// CheckTutorial is run when the tutorial is finished; only the tutorial
// achievement can unlock outside a level completion.
func (t *AchievementTracker) CheckTutorial(stats PlayerStats) []Achievement {
	t.mu.Lock()
	defer t.mu.Unlock()

	newly := make([]Achievement, 0)
	for i := range t.rules {
		r := &t.rules[i]
		if r.Unlocked || r.ID != AchievementTeacher || !r.unlocks(stats, CompletedLevel{}, t.levels) {
			continue
		}
		now := t.clock.Now()
		r.Unlocked = true
		r.UnlockedAt = &now
		newly = append(newly, r.Achievement)
	}
	return newly
}

// All returns the catalog with current unlock state.
func (t *AchievementTracker) All() []Achievement {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Achievement, 0, len(t.rules))
	for _, r := range t.rules {
		out = append(out, r.Achievement)
	}
	return out
}

// UnlockedCount returns how many achievements are unlocked.
func (t *AchievementTracker) UnlockedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, r := range t.rules {
		if r.Unlocked {
			n++
		}
	}
	return n
}
