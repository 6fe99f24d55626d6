package ledger

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"gagyebu/internal/core"
)

// DefaultCategories is offered by the editor when no seed file exists.
var DefaultCategories = []string{
	core.DefaultCategory, "교통", "주거", "통신", "쇼핑", "의료", "문화", "급여", "용돈", "기타",
}

// LoadCategories reads seed_categories.txt from dir, one category per line.
// Blank lines and lines starting with # are skipped. Falls back to
// DefaultCategories when the file is missing or empty.
func LoadCategories(dir string) []string {
	cats := readLines(filepath.Join(dir, "seed_categories.txt"))
	if len(cats) == 0 {
		return append([]string(nil), DefaultCategories...)
	}
	return cats
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe keeps the first occurrence of each value, preserving input order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
