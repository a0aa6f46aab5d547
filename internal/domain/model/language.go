package model

import (
	"fmt"
	"strings"
)

// Language is the closed set of languages the judge service accepts.
type Language string

const (
	LangCpp        Language = "cpp"
	LangJava       Language = "java"
	LangJavascript Language = "javascript"
)

// JudgeID returns the numeric language identifier the external judge service
// expects for this language.
func (l Language) JudgeID() int {
	switch l {
	case LangCpp:
		return 54
	case LangJava:
		return 62
	case LangJavascript:
		return 63
	}
	return 0
}

func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpp", "c++":
		return LangCpp, nil
	case "java":
		return LangJava, nil
	case "javascript", "js":
		return LangJavascript, nil
	}
	return "", fmt.Errorf("unsupported language %q", s)
}
