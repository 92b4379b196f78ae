package lab

import (
	"encoding/json"
	"fmt"
)

// Snapshot is a read-only, point-in-time view of a session for the
// presentation layer.
type Snapshot struct {
	SessionID    SessionID     `json:"session_id"`
	State        GameState     `json:"state"`
	Sequence     SequenceView  `json:"sequence"`
	Drug         DrugView      `json:"drug"`
	Level        *LevelData    `json:"level,omitempty"`
	QuickVerdict Verdict       `json:"quick_verdict,omitempty"`
	Stats        PlayerStats   `json:"stats"`
	Achievements []Achievement `json:"achievements"`
	GlobalScore  int           `json:"global_score"`
}

// Snapshot captures the whole session under one lock.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		SessionID:    c.id,
		State:        c.state,
		Sequence:     c.seq.View(),
		Drug:         c.drug.View(),
		Stats:        c.stats,
		Achievements: c.achievements.All(),
		GlobalScore:  GlobalScore(c.stats),
	}
	if c.content != nil {
		if l, ok := c.content.LevelData(c.state.Phase, c.state.Level); ok {
			snap.Level = &l
		}
	}
	switch c.state.Phase {
	case PhaseGeneticModification:
		snap.QuickVerdict = QuickSequenceVerdict(c.seq.String())
	case PhaseDrugDiscovery:
		snap.QuickVerdict = QuickDrugVerdict(c.drug.components)
	}
	return snap
}

// ValidateSnapshot checks the invariants every snapshot must hold.
func ValidateSnapshot(s Snapshot, rules Rules) error {
	rules = rules.normalized()
	if s.SessionID == "" {
		return fmt.Errorf("snapshot has empty session ID")
	}
	if s.State.Score < 0 {
		return fmt.Errorf("session %s has negative score %d", s.SessionID, s.State.Score)
	}
	if s.State.Level < 1 || s.State.Level > rules.LevelCap {
		return fmt.Errorf("session %s level %d outside [1,%d]", s.SessionID, s.State.Level, rules.LevelCap)
	}
	if s.State.TutorialStep < 0 || s.State.TutorialStep >= rules.TutorialSteps {
		return fmt.Errorf("session %s tutorial step %d outside [0,%d)", s.SessionID, s.State.TutorialStep, rules.TutorialSteps)
	}
	if len(s.Sequence.Bases) == 0 {
		return fmt.Errorf("session %s has an empty sequence", s.SessionID)
	}
	return nil
}

func EncodeSnapshotJSON(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}
