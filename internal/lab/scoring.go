package lab

import "math"

// ScoreBreakdown itemises the points awarded for a completed level. Bonuses
// are never negative and Penalties is never positive.
type ScoreBreakdown struct {
	BaseScore       int `json:"base_score"`
	TimeBonus       int `json:"time_bonus"`
	EfficiencyBonus int `json:"efficiency_bonus"`
	AccuracyBonus   int `json:"accuracy_bonus"`
	CreativityBonus int `json:"creativity_bonus"`
	Penalties       int `json:"penalties"`
	TotalScore      int `json:"total_score"`
}

const maxEfficientAttempts = 5

// MaxScore is the base score ceiling for a difficulty. Unknown difficulties
// score as easy.
func MaxScore(d Difficulty) int {
	switch d {
	case DifficultyMedium:
		return 750
	case DifficultyHard:
		return 1000
	}
	return 500
}

// TargetTime is the par completion time in seconds.
func TargetTime(d Difficulty) int {
	switch d {
	case DifficultyMedium:
		return 600
	case DifficultyHard:
		return 900
	}
	return 300
}

// CalculateLevelScore converts a completed attempt into points.
func CalculateLevelScore(effectiveness float64, timeElapsed, attempts, sideEffects int, difficulty Difficulty, isOptimal bool) ScoreBreakdown {
	base := int(math.Round(effectiveness * float64(MaxScore(difficulty))))

	target := TargetTime(difficulty)
	timeRatio := math.Max(0, float64(target-timeElapsed)/float64(target))
	timeBonus := int(math.Round(timeRatio * 200))

	effRatio := math.Max(0, float64(maxEfficientAttempts-attempts)/maxEfficientAttempts)
	efficiencyBonus := int(math.Round(effRatio * 150))

	accuracyBonus := 100
	if sideEffects > 0 {
		accuracyBonus = max(0, 100-25*sideEffects)
	}

	creativityBonus := 0
	if isOptimal {
		creativityBonus = 200
	}

	penalties := -30 * sideEffects
	if timeElapsed > 2*target {
		penalties -= 100
	}
	if attempts > maxEfficientAttempts {
		penalties -= 50 * (attempts - maxEfficientAttempts)
	}

	total := base + timeBonus + efficiencyBonus + accuracyBonus + creativityBonus + penalties

	return ScoreBreakdown{
		BaseScore:       base,
		TimeBonus:       max(0, timeBonus),
		EfficiencyBonus: max(0, efficiencyBonus),
		AccuracyBonus:   max(0, accuracyBonus),
		CreativityBonus: creativityBonus,
		Penalties:       min(0, penalties),
		TotalScore:      max(0, total),
	}
}

// PlayerStats is the cumulative record achievements and ranking read from.
type PlayerStats struct {
	TotalScore             int     `json:"total_score"`
	LevelsCompleted        int     `json:"levels_completed"`
	GeneticLevelsCompleted int     `json:"genetic_levels_completed"`
	DrugLevelsCompleted    int     `json:"drug_levels_completed"`
	PerfectScores          int     `json:"perfect_scores"`
	FastCompletions        int     `json:"fast_completions"`
	NoSideEffectLevels     int     `json:"no_side_effect_levels"`
	TotalAttempts          int     `json:"total_attempts"`
	TutorialCompleted      bool    `json:"tutorial_completed"`
	AchievementsUnlocked   int     `json:"achievements_unlocked"`
	AverageEffectiveness   float64 `json:"average_effectiveness"`
}

const fastCompletionSeconds = 120

// RecordCompletion folds one completed level into the stats.
func (s *PlayerStats) RecordCompletion(mode Phase, effectiveness float64, breakdown ScoreBreakdown, timeElapsed, attempts, sideEffects int) {
	prev := s.LevelsCompleted
	s.LevelsCompleted++
	switch mode {
	case PhaseGeneticModification:
		s.GeneticLevelsCompleted++
	case PhaseDrugDiscovery:
		s.DrugLevelsCompleted++
	}
	if breakdown.TotalScore >= MaxScore(DifficultyHard) {
		s.PerfectScores++
	}
	if timeElapsed < fastCompletionSeconds {
		s.FastCompletions++
	}
	if sideEffects == 0 {
		s.NoSideEffectLevels++
	}
	s.TotalAttempts += attempts
	s.TotalScore += breakdown.TotalScore
	s.AverageEffectiveness = (s.AverageEffectiveness*float64(prev) + effectiveness) / float64(s.LevelsCompleted)
}

// GlobalScore is the leaderboard ranking value.
func GlobalScore(s PlayerStats) int {
	return s.TotalScore +
		100*s.LevelsCompleted +
		250*s.AchievementsUnlocked +
		int(math.Round(500*s.AverageEffectiveness))
}
