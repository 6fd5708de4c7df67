// simrun plays games: interactively from stdin, or unattended from a
// recorded script. Every executed turn can be journaled to SQLite so the
// session is verifiable later with the replay tool.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/torvik/doomloop/internal/events"
	"github.com/torvik/doomloop/internal/journal"
	"github.com/torvik/doomloop/internal/replay"
	"github.com/torvik/doomloop/internal/risk"
	"github.com/torvik/doomloop/internal/sim"
	"github.com/torvik/doomloop/internal/turn"
)

// #region config

// envConfig carries the environment-sourced defaults; flags override.
type envConfig struct {
	DBPath string `env:"DOOMLOOP_DB"`
	Seed   string `env:"DOOMLOOP_SEED" envDefault:"default"`
}

// #endregion config

// #region main

func main() {
	_ = godotenv.Load()

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}

	seed := flag.String("seed", cfg.Seed, "session seed")
	dbPath := flag.String("db", cfg.DBPath, "journal database path (empty disables journaling)")
	scriptPath := flag.String("script", "", "fixture JSON to run unattended")
	turns := flag.Int("turns", 0, "unattended turns with no actions (smoke mode)")
	rival := flag.Float64("rival", 0, "register a rival with this aggression")
	flag.Parse()

	var store *journal.Store
	if *dbPath != "" {
		var err error
		store, err = journal.Open(*dbPath)
		if err != nil {
			log.Fatalf("open journal: %v", err)
		}
		defer store.Close()
	}

	switch {
	case *scriptPath != "":
		os.Exit(runScriptFile(*scriptPath, store))
	case *turns > 0:
		os.Exit(runScript(scriptFor(*seed, *turns, *rival), store))
	default:
		os.Exit(runInteractive(*seed, *rival, store))
	}
}

// scriptFor builds an all-reserve script: N turns, no actions, default
// event choices. Useful for smoke runs and digest sampling.
func scriptFor(seed string, turns int, rival float64) replay.Script {
	script := replay.Script{Seed: seed, Turns: make([]replay.TurnScript, turns)}
	if rival > 0 {
		script.Rivals = []replay.RivalScript{{Name: "rival", Aggression: rival}}
	}
	return script
}

// #endregion main

// #region scripted

func runScriptFile(path string, store *journal.Store) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load script: %v\n", err)
		return 2
	}
	return runScript(f.Script, store)
}

func runScript(script replay.Script, store *journal.Store) int {
	result := replay.Run(script, turn.DefaultConfig())

	for _, out := range result.Turns {
		printTurn(out)
	}
	fmt.Printf("\nfinal digest: %s\n", result.FinalDigest)
	printOutcome(result.GameOver, result.Victory)

	if store != nil {
		if err := journalRun(store, script, result); err != nil {
			fmt.Fprintf(os.Stderr, "journal: %v\n", err)
			return 2
		}
	}
	return 0
}

// journalRun records a finished scripted run, turn by turn.
func journalRun(store *journal.Store, script replay.Script, result replay.RunResult) error {
	rivalsJSON, err := json.Marshal(script.Rivals)
	if err != nil {
		return err
	}
	run, err := store.CreateRun(script.Seed, turn.EngineVersion, string(rivalsJSON))
	if err != nil {
		return err
	}
	finalTurn := 0
	for i, out := range result.Turns {
		var choices map[string]string
		if i < len(script.Turns) {
			choices = script.Turns[i].Choices
		}
		snap, err := json.Marshal(out.Snapshot)
		if err != nil {
			return err
		}
		if err := store.AppendTurn(journal.TurnRecord{
			RunID:           run.RunID,
			Turn:            out.Turn,
			Actions:         out.Executed,
			ResolvedEvents:  out.ResolvedEvents,
			Choices:         choices,
			PapersPublished: out.PapersPublished,
			DoomValue:       out.DoomValue,
			Digest:          out.Digest,
			SnapshotJSON:    string(snap),
		}); err != nil {
			return err
		}
		if err := store.AppendRiskHistory(run.RunID, turnEntries(out.Snapshot.RiskSystem.History, out.Turn)); err != nil {
			return err
		}
		finalTurn = out.Turn
	}
	if err := store.FinishRun(run.RunID, result.FinalDigest, finalTurn, result.GameOver, result.Victory); err != nil {
		return err
	}
	fmt.Printf("journaled run %s\n", run.RunID)
	return nil
}

// turnEntries filters a cumulative risk history down to one turn's rows.
func turnEntries(history []risk.HistoryEntry, turn int) []risk.HistoryEntry {
	var out []risk.HistoryEntry
	for _, e := range history {
		if e.Turn == turn {
			out = append(out, e)
		}
	}
	return out
}

// #endregion scripted

// #region interactive

func runInteractive(seed string, rival float64, store *journal.Store) int {
	m := turn.NewManager(seed, turn.DefaultConfig())
	if rival > 0 {
		m.AddRival(&turn.SimpleRival{Name: "rival", Aggression: rival})
	}

	var run journal.RunRecord
	if store != nil {
		rivalsJSON := ""
		if rival > 0 {
			b, _ := json.Marshal([]replay.RivalScript{{Name: "rival", Aggression: rival}})
			rivalsJSON = string(b)
		}
		var err error
		run, err = store.CreateRun(seed, turn.EngineVersion, rivalsJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "journal: %v\n", err)
			return 2
		}
	}

	fmt.Printf("doomloop session (seed %q). Actions: %s\n", seed,
		strings.Join(turn.DefaultCatalog().ActionIDs(), ", "))
	fmt.Println("Enter action ids separated by spaces, or nothing to reserve. 'quit' exits.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		start := m.StartTurn()
		if !start.Success {
			fmt.Fprintf(os.Stderr, "start turn: %s\n", start.Reason)
			break
		}
		printStatus(m.State(), start)

		choices := make(map[string]string)
		resolved, ok := resolveInteractive(m, scanner, start.PendingEvents, choices)
		if !ok {
			break // stdin closed mid-event
		}

		fmt.Printf("[turn %d] actions (%d points)> ", start.Turn, m.State().ActionPoints)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			break
		}
		for _, id := range strings.Fields(line) {
			if res := m.QueueAction(id); !res.Success {
				fmt.Printf("  %s: %s\n", id, res.Reason)
			}
		}

		exec := m.ExecuteTurn()
		if !exec.Success {
			fmt.Fprintf(os.Stderr, "execute turn: %s\n", exec.Reason)
			break
		}
		fmt.Printf("  doom %.2f (%+.2f), papers +%d, digest %s\n",
			exec.Doom.NewValue, exec.Doom.TotalChange, exec.PapersPublished, m.Digest()[:16])

		if store != nil {
			snap, _ := json.Marshal(m.State().Snapshot())
			if err := store.AppendTurn(journal.TurnRecord{
				RunID:           run.RunID,
				Turn:            start.Turn,
				Actions:         exec.Executed,
				ResolvedEvents:  resolved,
				Choices:         choices,
				PapersPublished: exec.PapersPublished,
				DoomValue:       exec.Doom.NewValue,
				Digest:          m.Digest(),
				SnapshotJSON:    string(snap),
			}); err != nil {
				fmt.Fprintf(os.Stderr, "journal: %v\n", err)
			}
			if err := store.AppendRiskHistory(run.RunID, turnEntries(m.State().Risk.History(), start.Turn)); err != nil {
				fmt.Fprintf(os.Stderr, "journal: %v\n", err)
			}
		}

		if exec.GameOver {
			printOutcome(true, exec.Victory)
			break
		}
	}

	if store != nil {
		s := m.State()
		if err := store.FinishRun(run.RunID, m.Digest(), s.Turn, s.GameOver, s.Victory); err != nil {
			fmt.Fprintf(os.Stderr, "journal: %v\n", err)
			return 2
		}
		fmt.Printf("journaled run %s\n", run.RunID)
	}
	return 0
}

// resolveInteractive walks the pending events, prompting for a choice each
// time. Returns the resolved event ids and false if stdin closed.
func resolveInteractive(m *turn.Manager, scanner *bufio.Scanner, pending []events.Event, choices map[string]string) ([]string, bool) {
	var resolved []string
	for _, ev := range pending {
		fmt.Printf("\n!! %s: %s\n", ev.Name, ev.Description)
		choice := ""
		if len(ev.Choices) > 0 {
			for i, c := range ev.Choices {
				fmt.Printf("  %d) %s\n", i+1, c.Label)
			}
			fmt.Print("choice> ")
			if !scanner.Scan() {
				return resolved, false
			}
			choice = ev.Choices[0].ID
			for i, c := range ev.Choices {
				if strings.TrimSpace(scanner.Text()) == fmt.Sprintf("%d", i+1) {
					choice = c.ID
				}
			}
		}
		if res := m.ResolveEvent(ev.ID, choice); !res.Success {
			fmt.Printf("  resolve failed: %s\n", res.Reason)
			continue
		}
		choices[ev.ID] = choice
		resolved = append(resolved, ev.ID)
	}
	return resolved, true
}

// #endregion interactive

// #region output

func printStatus(s *sim.State, start turn.StartResult) {
	fmt.Printf("\n=== turn %d ===\n", start.Turn)
	fmt.Printf("  currency %.0f | compute %.0f | research %.1f | papers %.0f | reputation %.0f | doom %.2f\n",
		s.Resource(events.ResourceCurrency), s.Resource(events.ResourceCompute),
		s.Resource(events.ResourceResearch), s.Resource(events.ResourcePapers),
		s.Resource(events.ResourceReputation), s.Resource(events.ResourceDoom))
	fmt.Printf("  staff %d | action points %d\n", s.TotalStaff(), start.ActionPoints)
}

func printTurn(out replay.TurnOutcome) {
	fmt.Printf("turn %3d | doom %6.2f | papers +%d | actions %v", out.Turn, out.DoomValue, out.PapersPublished, out.Executed)
	if len(out.ResolvedEvents) > 0 {
		fmt.Printf(" | events %v", out.ResolvedEvents)
	}
	fmt.Println()
}

func printOutcome(gameOver, victory bool) {
	switch {
	case gameOver && victory:
		fmt.Println("VICTORY: the hazard reached zero.")
	case gameOver:
		fmt.Println("DEFEAT: the lab lost control.")
	default:
		fmt.Println("session ended without a terminal state.")
	}
}

// #endregion output
