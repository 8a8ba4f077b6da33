package services

import "testing"

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", `{"a":1}`, `{"a":1}`},
		{"JSONFence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"BareFence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"SurroundingWhitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.in); got != tt.want {
				t.Errorf("cleanJSONResponse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
