package journal

import "time"

// #region records

// RunRecord is one game session in the journal: its identity, its seed, and
// its terminal outcome once finished.
type RunRecord struct {
	RunID         string
	Seed          string
	EngineVersion string
	RivalsJSON    string // opaque rival roster, "null" when none
	CreatedAt     time.Time

	// Set by FinishRun; zero until the run completes.
	FinishedAt  time.Time
	FinalDigest string
	FinalTurn   int
	GameOver    bool
	Victory     bool
}

// Finished reports whether the run has been closed out.
func (r RunRecord) Finished() bool { return !r.FinishedAt.IsZero() }

// TurnRecord is one executed turn: the player's inputs, the headline
// outcomes, the digest after the turn, and the full snapshot as JSON.
type TurnRecord struct {
	RunID           string
	Turn            int
	Actions         []string
	ResolvedEvents  []string
	Choices         map[string]string // event id → chosen option
	PapersPublished int
	DoomValue       float64
	Digest          string
	SnapshotJSON    string
	CreatedAt       time.Time
}

// #endregion records
