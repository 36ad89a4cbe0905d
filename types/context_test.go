package types

import "testing"

func TestVersionString(t *testing.T) {
	tests := []struct {
		name     string
		ctx      *AppContext
		expected string
	}{
		{"Nil context", nil, DefaultVersion},
		{"Empty version", &AppContext{}, DefaultVersion},
		{"Set version", &AppContext{Version: "1.2.3"}, "1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.VersionString(); got != tt.expected {
				t.Errorf("VersionString() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
