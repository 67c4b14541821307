package alert

// tracker remembers which item identities have already been evaluated for
// one source, so only genuinely new items trigger analysis.
type tracker struct {
	seen        map[string]struct{}
	initialized bool
}

func newTracker() tracker {
	return tracker{seen: make(map[string]struct{})}
}

// filterNew diffs a full snapshot against the seen-set, parameterized by an
// identity extractor. Every identity in the snapshot is recorded as seen.
//
// On the first snapshot ever observed, the set is seeded with every identity
// and seeded=true is returned with no fresh items: data that existed before
// the dashboard opened must not flood the log (cold-start suppression).
// Malformed or empty snapshots simply yield an empty fresh set.
func filterNew[T any](t *tracker, snapshot []T, identity func(T) string) (fresh []T, seeded bool) {
	if !t.initialized {
		for _, item := range snapshot {
			t.seen[identity(item)] = struct{}{}
		}
		t.initialized = true
		return nil, true
	}

	for _, item := range snapshot {
		id := identity(item)
		if _, ok := t.seen[id]; ok {
			continue
		}
		t.seen[id] = struct{}{}
		fresh = append(fresh, item)
	}
	return fresh, false
}
