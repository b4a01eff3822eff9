package knowledge

import (
	"fmt"
	"os"
	"strings"
)

// DefaultAssetPath is the location of the static knowledge text that is
// folded into the RAG prompt preamble at startup.
const DefaultAssetPath = "assets/rag-content.txt"

// LoadAsset reads the static knowledge file. The content is loaded once at
// process start and does not change at runtime; a missing or unreadable
// file is a startup error.
func LoadAsset(path string) (string, error) {
	if path == "" {
		path = DefaultAssetPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("knowledge: failed to load asset %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
