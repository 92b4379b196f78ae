package lab

import "testing"

func TestCalculateLevelScore_Perfect(t *testing.T) {
	got := CalculateLevelScore(1.0, 0, 0, 0, DifficultyHard, true)
	want := ScoreBreakdown{
		BaseScore:       1000,
		TimeBonus:       200,
		EfficiencyBonus: 150,
		AccuracyBonus:   100,
		CreativityBonus: 200,
		Penalties:       0,
		TotalScore:      1650,
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestCalculateLevelScore_Penalties(t *testing.T) {
	got := CalculateLevelScore(0.5, 700, 8, 2, DifficultyEasy, false)

	if got.BaseScore != 250 {
		t.Errorf("Expected base 250, got %d", got.BaseScore)
	}
	if got.TimeBonus != 0 || got.EfficiencyBonus != 0 {
		t.Errorf("Expected no time or efficiency bonus, got %d / %d", got.TimeBonus, got.EfficiencyBonus)
	}
	if got.AccuracyBonus != 50 {
		t.Errorf("Expected accuracy 50, got %d", got.AccuracyBonus)
	}
	// 2 side effects, over twice the par time, 3 attempts over the limit
	if got.Penalties != -60-100-150 {
		t.Errorf("Expected penalties -310, got %d", got.Penalties)
	}
	if got.TotalScore != 0 {
		t.Errorf("Expected total floored at 0, got %d", got.TotalScore)
	}
}

func TestCalculateLevelScore_Monotonic(t *testing.T) {
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		prev := -1
		for i := 0; i <= 10; i++ {
			total := CalculateLevelScore(float64(i)/10, 100, 2, 0, d, false).TotalScore
			if total < prev {
				t.Errorf("%s: total decreased from %d to %d as effectiveness rose", d, prev, total)
			}
			prev = total
		}

		prev = 1 << 30
		for elapsed := 0; elapsed <= 2000; elapsed += 50 {
			total := CalculateLevelScore(0.8, elapsed, 2, 0, d, false).TotalScore
			if total > prev {
				t.Errorf("%s: total rose from %d to %d as time grew", d, prev, total)
			}
			prev = total
		}

		prev = 1 << 30
		for attempts := 0; attempts <= 12; attempts++ {
			total := CalculateLevelScore(0.8, 100, attempts, 0, d, false).TotalScore
			if total > prev {
				t.Errorf("%s: total rose from %d to %d as attempts grew", d, prev, total)
			}
			prev = total
		}
	}
}

func TestMaxScoreAndTargetTime(t *testing.T) {
	if MaxScore("unknown") != 500 || TargetTime("unknown") != 300 {
		t.Error("Expected unknown difficulty to score as easy")
	}
	if MaxScore(DifficultyMedium) != 750 || TargetTime(DifficultyHard) != 900 {
		t.Error("Unexpected difficulty table")
	}
}

func TestPlayerStats_RecordCompletion(t *testing.T) {
	var s PlayerStats
	s.RecordCompletion(PhaseGeneticModification, 0.8, ScoreBreakdown{TotalScore: 1100}, 60, 2, 0)
	s.RecordCompletion(PhaseDrugDiscovery, 0.6, ScoreBreakdown{TotalScore: 400}, 300, 3, 1)

	if s.LevelsCompleted != 2 || s.GeneticLevelsCompleted != 1 || s.DrugLevelsCompleted != 1 {
		t.Errorf("Unexpected completion counts %+v", s)
	}
	if s.TotalScore != 1500 || s.TotalAttempts != 5 {
		t.Errorf("Expected total 1500 and 5 attempts, got %d and %d", s.TotalScore, s.TotalAttempts)
	}
	if s.PerfectScores != 1 || s.FastCompletions != 1 || s.NoSideEffectLevels != 1 {
		t.Errorf("Unexpected counters %+v", s)
	}
	if !approx(s.AverageEffectiveness, 0.7) {
		t.Errorf("Expected average effectiveness 0.7, got %f", s.AverageEffectiveness)
	}

	s.AchievementsUnlocked = 2
	// 1500 + 2*100 + 2*250 + round(0.7*500)
	if got := GlobalScore(s); got != 2550 {
		t.Errorf("Expected global score 2550, got %d", got)
	}
}
