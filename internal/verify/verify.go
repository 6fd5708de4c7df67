// Package verify maintains the cumulative verification hash chain.
//
// Every externally observable transition of a game run — actions executed,
// events resolved, turn boundaries — is folded into a running SHA-256
// accumulator. Two runs with the same seed and the same ordered facts
// produce the same digest; any divergence (non-determinism, tampering,
// reordering) yields a different digest with overwhelming probability.
//
// Facts are serialized canonically before hashing: fixed field order,
// map keys sorted, floats formatted with strconv.FormatFloat(v, 'g', -1, 64).
// The serialization is versioned via the tag passed to Start so the chain
// stays reproducible across releases.
package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// #region tracker

// Tracker is the per-run hash accumulator. It holds no game state of its
// own; the digest is a strict function of (seed, version, ordered facts).
// A Tracker belongs to exactly one running game instance.
type Tracker struct {
	digest  [sha256.Size]byte
	started bool
	debug   bool
	facts   []string
}

// New creates an idle tracker. Call Start before recording facts.
func New() *Tracker {
	return &Tracker{}
}

// NewDebug creates a tracker that additionally retains every raw fact
// string in memory, for diffing two diverging runs.
func NewDebug() *Tracker {
	return &Tracker{debug: true}
}

// #endregion tracker

// #region lifecycle

// Start resets the accumulator to an initial value derived from the seed
// and the engine version tag.
func (t *Tracker) Start(seed, version string) {
	t.digest = sha256.Sum256([]byte("start|seed=" + seed + "|version=" + version))
	t.started = true
	t.facts = nil
	if t.debug {
		t.facts = append(t.facts, "start|seed="+seed+"|version="+version)
	}
}

// Stop finalizes the tracker. The digest remains readable; further
// recording is ignored until the next Start.
func (t *Tracker) Stop() {
	t.started = false
}

// Digest returns the current accumulator as a hex string without
// mutating it.
func (t *Tracker) Digest() string {
	return hex.EncodeToString(t.digest[:])
}

// Facts returns the retained raw facts. Empty unless built with NewDebug.
func (t *Tracker) Facts() []string {
	return t.facts
}

// #endregion lifecycle

// #region record

// RecordAction folds an executed action and its resource deltas into the
// chain. Deltas are keyed by resource name and serialized in sorted order.
func (t *Tracker) RecordAction(turn int, actionID string, deltas map[string]float64) {
	t.fold("action|turn=" + strconv.Itoa(turn) + "|id=" + actionID + "|" + canonicalMap(deltas))
}

// RecordEvent folds a resolved event and the chosen option into the chain.
func (t *Tracker) RecordEvent(turn int, eventID, choiceID string, deltas map[string]float64) {
	t.fold("event|turn=" + strconv.Itoa(turn) + "|id=" + eventID + "|choice=" + choiceID + "|" + canonicalMap(deltas))
}

// RecordTurnStart folds a turn-start boundary: the new turn number and the
// identifiers of any events that gated it.
func (t *Tracker) RecordTurnStart(turn int, pendingEventIDs []string) {
	t.fold("turn_start|turn=" + strconv.Itoa(turn) + "|pending=" + strings.Join(pendingEventIDs, ","))
}

// RecordTurnEnd folds a turn-end boundary and the key state fields into
// the chain. The draw counter is included so two runs whose random
// consumption diverged are caught at the first turn boundary after the
// divergence even if their visible state happens to agree.
func (t *Tracker) RecordTurnEnd(turn int, fields map[string]float64, draws uint64) {
	t.fold("turn_end|turn=" + strconv.Itoa(turn) + "|draws=" + strconv.FormatUint(draws, 10) + "|" + canonicalMap(fields))
}

// fold advances the chain: digest' = SHA-256(digest || fact).
func (t *Tracker) fold(fact string) {
	if !t.started {
		return
	}
	h := sha256.New()
	h.Write(t.digest[:])
	h.Write([]byte(fact))
	copy(t.digest[:], h.Sum(nil))
	if t.debug {
		t.facts = append(t.facts, fact)
	}
}

// #endregion record

// #region canonical

// canonicalMap serializes a float map as "k=v;k=v" with keys sorted, the
// fixed order the chain's cross-run reproducibility depends on.
func canonicalMap(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(m[k], 'g', -1, 64))
	}
	return b.String()
}

// #endregion canonical
