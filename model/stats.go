package model

// EngineStats is a point-in-time snapshot of the engine counters, used by
// the status command and the scheduled reports.
type EngineStats struct {
	MessagesProcessed int64 `json:"messages_processed"`
	JoinsProcessed    int64 `json:"joins_processed"`
	ThreatsDetected   int64 `json:"threats_detected"`
	ActionsTaken      int64 `json:"actions_taken"`
	RaidsDetected     int64 `json:"raids_detected"`
	DegradedEvents    int64 `json:"degraded_events"`
	JudgeCalls        int64 `json:"judge_calls"`
}
