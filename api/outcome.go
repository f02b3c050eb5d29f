package api

// Outcome classifies how a pipeline call ended.
type Outcome int

const (
	// OutcomeOK is a 2xx on the first attempt.
	OutcomeOK Outcome = iota
	// OutcomeRetried means a refresh happened and the request was re-issued
	// once; the returned error (if any) comes from that retry.
	OutcomeRetried
	// OutcomeTerminal means the refresh failed and the session was expired.
	OutcomeTerminal
	// OutcomeFailed is any other failure propagated without a retry.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRetried:
		return "retried"
	case OutcomeTerminal:
		return "terminal"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
