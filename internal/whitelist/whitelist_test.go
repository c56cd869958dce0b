package whitelist

import (
	"testing"

	"go.uber.org/zap"
)

func TestIsAllowed(t *testing.T) {
	c := NewChecker([]string{".txt", "TEX", " md "}, zap.NewNop())
	tests := map[string]bool{
		"maria_p1.txt":     true,
		"joao.TeX":         true,
		"notes/ana.md":     true,
		"scan.pdf":         false,
		"README":           false,
		"archive.txt.gz":   false,
		"pedro-page-2.TXT": true,
	}
	for name, want := range tests {
		if got := c.IsAllowed(name); got != want {
			t.Errorf("IsAllowed(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestEmptyAllowListAdmitsAll(t *testing.T) {
	c := NewChecker(nil, nil)
	if !c.IsAllowed("anything.bin") {
		t.Errorf("empty allow-list should admit every file")
	}
}
