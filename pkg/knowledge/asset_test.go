package knowledge

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAsset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.txt")
	if err := os.WriteFile(path, []byte("Event guide.\n\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadAsset(path)
	if err != nil {
		t.Fatalf("LoadAsset failed: %v", err)
	}
	if got != "Event guide." {
		t.Errorf("LoadAsset = %q, want trimmed content", got)
	}
}

func TestLoadAssetMissing(t *testing.T) {
	if _, err := LoadAsset(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing asset")
	}
}
