package judge

import (
	"strings"

	"judgeflow/internal/domain/model"
)

// Status is the closed outcome vocabulary of the pipeline. The external judge
// service's numeric codes are translated into it at the client boundary and
// never leak past it.
type Status int

const (
	StatusAccepted Status = iota
	StatusWrongAnswer
	StatusCompileError
	StatusRuntimeError
	StatusTimeLimitExceeded
	StatusMemoryLimitExceeded
	StatusInternalError
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "Accepted"
	case StatusWrongAnswer:
		return "WrongAnswer"
	case StatusCompileError:
		return "CompileError"
	case StatusRuntimeError:
		return "RuntimeError"
	case StatusTimeLimitExceeded:
		return "TimeLimitExceeded"
	case StatusMemoryLimitExceeded:
		return "MemoryLimitExceeded"
	}
	return "InternalError"
}

// Verdict maps a per-case status onto the submission-level verdict vocabulary.
func (s Status) Verdict() model.SubmissionVerdict {
	switch s {
	case StatusAccepted:
		return model.VerdictAccepted
	case StatusWrongAnswer:
		return model.VerdictWrongAnswer
	case StatusCompileError:
		return model.VerdictCompileError
	case StatusRuntimeError:
		return model.VerdictRuntimeError
	case StatusTimeLimitExceeded:
		return model.VerdictTimeLimitExceeded
	case StatusMemoryLimitExceeded:
		return model.VerdictMemoryLimitExceeded
	}
	return model.VerdictInternalError
}

// RemoteID returns the judge-service status id the frontend contract exposes
// (3 = accepted in the service's numbering).
func (s Status) RemoteID() int {
	switch s {
	case StatusAccepted:
		return 3
	case StatusWrongAnswer:
		return 4
	case StatusTimeLimitExceeded:
		return 5
	case StatusCompileError:
		return 6
	case StatusMemoryLimitExceeded:
		return 7
	case StatusRuntimeError:
		return 11
	}
	return 13
}

// statusFromRemote is the translation table for the judge service's status
// vocabulary: 3 accepted, 4 wrong answer, 5 TLE, 6 compile error, 7-12 the
// runtime error family, 13 internal, 14 exec format error.
func statusFromRemote(id int) Status {
	switch {
	case id == 3:
		return StatusAccepted
	case id == 4:
		return StatusWrongAnswer
	case id == 5:
		return StatusTimeLimitExceeded
	case id == 6 || id == 14:
		return StatusCompileError
	case id >= 7 && id <= 12:
		return StatusRuntimeError
	}
	return StatusInternalError
}

// ExecutionRequest is one code+input pair sent to the judge service. Language
// and code are shared across a submission's cases, stdin varies.
type ExecutionRequest struct {
	SourceCode     string
	Language       model.Language
	Stdin          string
	ExpectedOutput string
	TimeLimitMs    int
	MemoryLimitKb  int
}

// ExecutionOutcome is the normalized result of one case. Never mutated after
// the client produces it.
type ExecutionOutcome struct {
	Stdout        string
	Stderr        string
	CompileOutput string
	Status        Status
	TimeMs        float64
	MemoryKb      int
}

// NormalizeOutput strips trailing whitespace per line and trailing blank
// lines, so cosmetic differences do not flip a verdict.
func NormalizeOutput(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// OutputsMatch compares produced and expected output byte-for-byte after
// normalization.
func OutputsMatch(got, want string) bool {
	return NormalizeOutput(got) == NormalizeOutput(want)
}
