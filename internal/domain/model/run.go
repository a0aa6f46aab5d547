package model

// RunCaseResult is one visible test case's outcome as shown to the user.
// StatusID carries the judge service's numeric code the frontend keys on.
type RunCaseResult struct {
	Stdin          string  `json:"stdin"`
	ExpectedOutput string  `json:"expected_output"`
	Stdout         string  `json:"stdout"`
	StatusID       int     `json:"status_id"`
	Status         string  `json:"status"`
	TimeMs         float64 `json:"time_ms"`
	MemoryKb       int     `json:"memory_kb"`
}

// RunResult is the transient outcome of a "run" request. It is cached with a
// TTL rather than persisted; running examples never affects solved-state.
type RunResult struct {
	ID        string          `json:"id"`
	Success   bool            `json:"success"`
	TestCases []RunCaseResult `json:"testCases"`
	Runtime   float64         `json:"runtime"` // seconds, worst case
	Memory    int             `json:"memory"`  // KB, worst case
}
