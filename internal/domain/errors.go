package domain

import "errors"

// Engine error kinds. None of these is fatal: every one degrades to a SKIP
// for the current event, surfaced only through the logged reason field.
var (
	// ErrInsufficientHistory means the window holds fewer candles than the
	// indicator floor. The caller waits for more data.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrRateLimited means the cooldown or a daily cap blocked the call.
	ErrRateLimited = errors.New("rate-limited")

	// ErrEscalationLimited means the daily escalation cap is exhausted.
	ErrEscalationLimited = errors.New("escalation-limited")

	// ErrMalformedVerdict means the analysis response was unparseable or
	// carried an out-of-range confidence. Never retried for the same event.
	ErrMalformedVerdict = errors.New("malformed verdict")

	// ErrAnalysisTransport means the analysis collaborator was unreachable
	// or timed out. Never retried for the same event.
	ErrAnalysisTransport = errors.New("analysis transport failure")

	// ErrDecisionInProgress means a funnel instance was still awaiting its
	// analysis response when a new proximity event arrived. New events are
	// dropped: a stale scalping decision is worthless.
	ErrDecisionInProgress = errors.New("decision in progress")
)
