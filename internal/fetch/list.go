package fetch

import (
	"bufio"
	"os"
	"strings"
)

// ReadList reads a text file of archive URLs, one per line, and returns the
// non-empty, non-comment lines in order. Lines starting with '#' after
// whitespace trimming are comments. This lets operators maintain hand-picked
// backfill lists with blank separators and notes.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
