// inspect reads a journal database: lists recorded runs, or dumps one
// run's turn log with resource trajectories from the stored snapshots.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/torvik/doomloop/internal/journal"
	"github.com/torvik/doomloop/internal/risk"
	"github.com/torvik/doomloop/internal/sim"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to journal database")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/journal.db [--last N] [--run id] [--json]")
		os.Exit(2)
	}

	store, err := journal.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open journal: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *runID != "" {
		err = runDetailMode(store, *runID, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID       string `json:"run_id"`
	Seed        string `json:"seed"`
	Engine      string `json:"engine_version"`
	CreatedAt   string `json:"created_at"`
	FinalTurn   int    `json:"final_turn"`
	Outcome     string `json:"outcome"`
	FinalDigest string `json:"final_digest,omitempty"`
}

func runListMode(store *journal.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[i] = listRow{
			RunID:       r.RunID,
			Seed:        r.Seed,
			Engine:      r.EngineVersion,
			CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z"),
			FinalTurn:   r.FinalTurn,
			Outcome:     outcome(r),
			FinalDigest: r.FinalDigest,
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-16s  %-16s  %5s  %-10s  %-18s  %s\n",
		"Run", "Seed", "Turns", "Outcome", "Digest", "Time")
	fmt.Printf("%s\n", strings.Repeat("-", 92))
	for _, r := range rows {
		fmt.Printf("%-16s  %-16s  %5d  %-10s  %-18s  %s\n",
			shortID(r.RunID), truncate(r.Seed, 16), r.FinalTurn, r.Outcome,
			shortID(r.FinalDigest), r.CreatedAt)
	}
	return nil
}

func outcome(r journal.RunRecord) string {
	switch {
	case !r.Finished():
		return "open"
	case r.Victory:
		return "victory"
	case r.GameOver:
		return "defeat"
	default:
		return "abandoned"
	}
}

// #endregion list-mode

// #region detail-mode

type detailRow struct {
	Turn       int      `json:"turn"`
	Actions    []string `json:"actions"`
	Events     []string `json:"events,omitempty"`
	Papers     int      `json:"papers_published,omitempty"`
	Doom       float64  `json:"doom_value"`
	Currency   float64  `json:"currency"`
	Reputation float64  `json:"reputation"`
	Digest     string   `json:"digest"`
}

func runDetailMode(store *journal.Store, runID string, jsonOut bool) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	log, err := store.TurnLog(runID)
	if err != nil {
		return err
	}
	riskLog, err := store.RiskHistory(runID)
	if err != nil {
		return err
	}

	rows := make([]detailRow, len(log))
	for i, rec := range log {
		row := detailRow{
			Turn:    rec.Turn,
			Actions: rec.Actions,
			Events:  rec.ResolvedEvents,
			Papers:  rec.PapersPublished,
			Doom:    rec.DoomValue,
			Digest:  rec.Digest,
		}
		var snap sim.Snapshot
		if err := json.Unmarshal([]byte(rec.SnapshotJSON), &snap); err == nil {
			row.Currency = snap.Currency
			row.Reputation = snap.Reputation
		}
		rows[i] = row
	}

	if jsonOut {
		return printJSON(struct {
			RunID       string              `json:"run_id"`
			Seed        string              `json:"seed"`
			Outcome     string              `json:"outcome"`
			Turns       []detailRow         `json:"turns"`
			RiskHistory []risk.HistoryEntry `json:"risk_history,omitempty"`
		}{run.RunID, run.Seed, outcome(run), rows, riskLog})
	}

	fmt.Printf("Run:     %s\n", run.RunID)
	fmt.Printf("Seed:    %s\n", run.Seed)
	fmt.Printf("Engine:  %s\n", run.EngineVersion)
	fmt.Printf("Outcome: %s (turn %d)\n", outcome(run), run.FinalTurn)
	if run.FinalDigest != "" {
		fmt.Printf("Digest:  %s\n", run.FinalDigest)
	}

	fmt.Printf("\n%-5s  %7s  %9s  %5s  %-18s  %s\n",
		"Turn", "Doom", "Currency", "Rep", "Digest", "Actions")
	fmt.Printf("%s\n", strings.Repeat("-", 84))
	for _, r := range rows {
		line := strings.Join(r.Actions, " ")
		if len(r.Events) > 0 {
			line += " [" + strings.Join(r.Events, " ") + "]"
		}
		fmt.Printf("%-5d  %7.2f  %9.0f  %5.0f  %-18s  %s\n",
			r.Turn, r.Doom, r.Currency, r.Reputation, shortID(r.Digest), line)
	}

	if len(riskLog) > 0 {
		fmt.Printf("\nRisk history:\n")
		for _, e := range riskLog {
			fmt.Printf("  turn %-4d %-22s %+7.2f  %s\n", e.Turn, e.Pool, e.Delta, e.Source)
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 16 {
		return id[:16]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-1] + "…"
	}
	return s
}

// #endregion output
