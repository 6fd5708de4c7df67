package verify

import "testing"

// 1. Two trackers fed identical ordered facts produce identical digests.
func TestDeterminism(t *testing.T) {
	a := New()
	b := New()
	a.Start("t1", "v1")
	b.Start("t1", "v1")

	for _, tr := range []*Tracker{a, b} {
		tr.RecordTurnStart(1, nil)
		tr.RecordAction(1, "fundraise", map[string]float64{"currency": 20000})
		tr.RecordAction(1, "research_safety", map[string]float64{"research": 8, "doom": -1.5})
		tr.RecordTurnEnd(1, map[string]float64{"doom": 24.2, "currency": 120000}, 7)
	}

	if a.Digest() != b.Digest() {
		t.Fatalf("digests diverged:\n%s\n%s", a.Digest(), b.Digest())
	}
}

// 2. Reordering two facts changes the digest.
func TestOrderSensitivity(t *testing.T) {
	a := New()
	b := New()
	a.Start("t1", "v1")
	b.Start("t1", "v1")

	a.RecordAction(1, "fundraise", nil)
	a.RecordAction(1, "hire_safety", nil)

	b.RecordAction(1, "hire_safety", nil)
	b.RecordAction(1, "fundraise", nil)

	if a.Digest() == b.Digest() {
		t.Fatal("digest must be order sensitive")
	}
}

// 3. Different seeds or versions produce different initial accumulators.
func TestSeedAndVersionBindDigest(t *testing.T) {
	a := New()
	b := New()
	c := New()
	a.Start("t1", "v1")
	b.Start("t2", "v1")
	c.Start("t1", "v2")

	if a.Digest() == b.Digest() {
		t.Error("different seeds should produce different digests")
	}
	if a.Digest() == c.Digest() {
		t.Error("different versions should produce different digests")
	}
}

// Digest reads must not mutate the accumulator.
func TestDigestIsPureRead(t *testing.T) {
	tr := New()
	tr.Start("t1", "v1")
	tr.RecordAction(1, "reserve", nil)

	d1 := tr.Digest()
	d2 := tr.Digest()
	if d1 != d2 {
		t.Fatal("Digest mutated the accumulator")
	}
}

// Recording before Start or after Stop is ignored.
func TestRecordOutsideLifecycle(t *testing.T) {
	tr := New()
	tr.RecordAction(1, "fundraise", nil) // not started yet

	tr.Start("t1", "v1")
	base := tr.Digest()

	tr.Stop()
	tr.RecordAction(1, "fundraise", nil)
	if tr.Digest() != base {
		t.Fatal("recording after Stop must not advance the chain")
	}
}

// Draw counts are part of the turn-end fact.
func TestDrawCountChangesDigest(t *testing.T) {
	a := New()
	b := New()
	a.Start("t1", "v1")
	b.Start("t1", "v1")

	a.RecordTurnEnd(1, nil, 5)
	b.RecordTurnEnd(1, nil, 6)

	if a.Digest() == b.Digest() {
		t.Fatal("diverging draw counts must diverge the digest")
	}
}

// Map serialization must be key-order independent.
func TestCanonicalMapOrder(t *testing.T) {
	a := New()
	b := New()
	a.Start("t1", "v1")
	b.Start("t1", "v1")

	// Same logical deltas, inserted in different order.
	m1 := map[string]float64{}
	m1["currency"] = 1
	m1["doom"] = 2
	m2 := map[string]float64{}
	m2["doom"] = 2
	m2["currency"] = 1

	a.RecordAction(1, "x", m1)
	b.RecordAction(1, "x", m2)

	if a.Digest() != b.Digest() {
		t.Fatal("canonical serialization must not depend on map insertion order")
	}
}

// Debug trackers retain raw facts; plain trackers do not.
func TestDebugFactLog(t *testing.T) {
	d := NewDebug()
	d.Start("t1", "v1")
	d.RecordAction(1, "fundraise", nil)
	if len(d.Facts()) != 2 { // start + action
		t.Fatalf("expected 2 retained facts, got %d", len(d.Facts()))
	}

	p := New()
	p.Start("t1", "v1")
	p.RecordAction(1, "fundraise", nil)
	if len(p.Facts()) != 0 {
		t.Fatal("plain tracker should not retain facts")
	}
}
