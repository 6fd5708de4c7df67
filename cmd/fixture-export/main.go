// fixture-export turns a journaled run into a standalone replay fixture:
// the rebuilt script plus the recorded digests as expectations. The fixture
// verifies with the replay tool without needing the journal database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/torvik/doomloop/internal/journal"
	"github.com/torvik/doomloop/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to journal database")
	runID := flag.String("run", "", "run id to export (default latest)")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/journal.db --out path/to/fixture.json [--run id]")
		os.Exit(2)
	}

	if err := run(*dbPath, *runID, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath, runID, outPath string) error {
	store, err := journal.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	var rec journal.RunRecord
	if runID != "" {
		rec, err = store.GetRun(runID)
	} else {
		rec, err = store.LatestRun()
	}
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}

	log, err := store.TurnLog(rec.RunID)
	if err != nil {
		return fmt.Errorf("load turn log: %w", err)
	}
	if len(log) == 0 {
		return fmt.Errorf("run %s has no journaled turns", rec.RunID)
	}

	fixture := replay.Fixture{
		Description:    fmt.Sprintf("run %s (seed %q)", rec.RunID, rec.Seed),
		Script:         replay.Script{Seed: rec.Seed},
		ExpectedDigest: rec.FinalDigest,
	}
	if rec.RivalsJSON != "" {
		if err := json.Unmarshal([]byte(rec.RivalsJSON), &fixture.Script.Rivals); err != nil {
			return fmt.Errorf("unmarshal rivals: %w", err)
		}
	}
	for _, t := range log {
		fixture.Script.Turns = append(fixture.Script.Turns, replay.TurnScript{
			Actions: t.Actions,
			Choices: t.Choices,
		})
		out := replay.ExpectedOutcome{Turn: t.Turn, Digest: t.Digest}
		if t.Turn == rec.FinalTurn && rec.GameOver {
			out.GameOver = true
			out.Victory = rec.Victory
		}
		fixture.ExpectedOutcomes = append(fixture.ExpectedOutcomes, out)
	}

	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}

	fmt.Printf("exported %d turns from run %s to %s\n", len(log), rec.RunID, outPath)
	return nil
}

// #endregion export
