package compiler_errors

import (
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

const defaultSourceCacheSize = 128

// SourceCache keeps the lines of recently rendered files.
type SourceCache struct {
	files *lru.Cache
}

func NewSourceCache(size int) *SourceCache {
	files, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return &SourceCache{files: files}
}

// AddSource registers in-memory content for a file, replacing whatever was cached.
func (sc *SourceCache) AddSource(fileName string, text []byte) {
	sc.files.Add(fileName, splitLines(string(text)))
}

// GetLine returns the 1-based line of a file, loading it from disk on a miss.
func (sc *SourceCache) GetLine(fileName string, line int) (string, bool) {
	var lines []string
	if cached, ok := sc.files.Get(fileName); ok {
		lines = cached.([]string)
	} else {
		data, err := os.ReadFile(fileName)
		if err != nil {
			return "", false
		}
		lines = splitLines(string(data))
		sc.files.Add(fileName, lines)
	}

	if line <= 0 || line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
