package auth

// Recorder receives authorization and refresh observations.
type Recorder interface {
	RecordDecision(authorized bool)
	// RecordBypass counts a request admitted by the test bypass without any
	// token or cache check.
	RecordBypass()
	RecordRefresh(reason string, success bool, identities int)
}

type noopRecorder struct{}

func (noopRecorder) RecordDecision(bool)             {}
func (noopRecorder) RecordBypass()                   {}
func (noopRecorder) RecordRefresh(string, bool, int) {}
