package model

import "testing"

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Language
		wantErr bool
	}{
		{in: "cpp", want: LangCpp},
		{in: "CPP", want: LangCpp},
		{in: "c++", want: LangCpp},
		{in: "java", want: LangJava},
		{in: "javascript", want: LangJavascript},
		{in: "js", want: LangJavascript},
		{in: "python", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLanguage(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLanguage(%q) error = nil, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLanguage(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLanguage(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLanguageJudgeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lang Language
		want int
	}{
		{LangCpp, 54},
		{LangJava, 62},
		{LangJavascript, 63},
	}
	for _, tt := range tests {
		if got := tt.lang.JudgeID(); got != tt.want {
			t.Errorf("%v.JudgeID() = %d, want %d", tt.lang, got, tt.want)
		}
	}
}
