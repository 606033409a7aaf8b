package display

import "testing"

func TestAccountLabel(t *testing.T) {
	tests := []struct {
		account string
		want    string
	}{
		{"user@example.com", "example"},
		{"billing@shop.example.de", "shop"},
		{"user@localhost", "localhost"},
		{"no-at-sign", "no-at-sign"},
	}

	for _, tt := range tests {
		if got := AccountLabel(tt.account); got != tt.want {
			t.Errorf("AccountLabel(%q) = %q, want %q", tt.account, got, tt.want)
		}
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{120, "120 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}

	for _, tt := range tests {
		if got := HumanSize(tt.size); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
