package alert

// RollingWindow bounds the per-account engagement history.
const RollingWindow = 20

// spikeFactor is how far above its own baseline a post must land to count
// as viral: engagement at or beyond 3x the account's rolling average.
const spikeFactor = 3

// rollingWindow holds the most recent engagement scores for one account
// and their running average. The average is always the arithmetic mean of
// the stored history, recomputed on push, so it is exactly reproducible
// from the history contents.
type rollingWindow struct {
	history []int
	avg     float64
}

// push appends a score, truncates to the most recent RollingWindow
// entries, and recomputes the mean.
func (w *rollingWindow) push(score int) {
	w.history = append(w.history, score)
	if len(w.history) > RollingWindow {
		w.history = w.history[len(w.history)-RollingWindow:]
	}

	sum := 0
	for _, s := range w.history {
		sum += s
	}
	w.avg = float64(sum) / float64(len(w.history))
}

// observeEngagement records a post's engagement against its account's
// history and returns the average as it stood before this post. Spike
// detection compares against that prior baseline; the history itself
// must include the post that caused the spike.
func (e *Engine) observeEngagement(handle string, engagement int) (priorAvg float64) {
	w, ok := e.accounts[handle]
	if !ok {
		w = &rollingWindow{}
		e.accounts[handle] = w
	}
	priorAvg = w.avg
	w.push(engagement)
	return priorAvg
}

// isSpike reports whether engagement qualifies as viral against a prior
// average. Accounts with no baseline (avg 0) never spike.
func isSpike(engagement int, priorAvg float64) bool {
	return priorAvg > 0 && float64(engagement) >= spikeFactor*priorAvg
}
