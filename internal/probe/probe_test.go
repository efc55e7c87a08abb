package probe

import "testing"

func TestIsOBSName(t *testing.T) {
	tests := []struct {
		name string
		obs  bool
	}{
		{"obs", true},
		{"obs64.exe", true},
		{"obs32.exe", true},
		{"OBS64.EXE", true},
		{"obsidian", false},
		{"obs-browser-page", false},
		{"chrome", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isOBSName(tt.name); got != tt.obs {
			t.Errorf("isOBSName(%q) = %v, want %v", tt.name, got, tt.obs)
		}
	}
}
