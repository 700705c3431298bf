// Package files manages the .rscscanignore file: one directory glob per line,
// blank lines and # comments skipped.
package files

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFile is the per-project ignore file name.
const IgnoreFile = ".rscscanignore"

// LoadIgnore returns the globs listed in dir/.rscscanignore. A missing file
// yields no globs and no error.
func LoadIgnore(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, IgnoreFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
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
	return out, sc.Err()
}

// AppendIgnore ensures pattern is listed in dir/.rscscanignore, creating the
// file if needed. It reports whether the file changed.
func AppendIgnore(dir, pattern string) (bool, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false, errors.New("empty pattern")
	}
	existing, err := LoadIgnore(dir)
	if err != nil {
		return false, err
	}
	for _, p := range existing {
		if p == pattern {
			return false, nil
		}
	}
	path := filepath.Join(dir, IgnoreFile)
	prefix := ""
	if b, err := os.ReadFile(path); err == nil && len(b) > 0 && b[len(b)-1] != '\n' {
		prefix = "\n"
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return false, err
	}
	defer f.Close()
	if _, err := f.WriteString(prefix + pattern + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// JoinGlobs merges a comma-separated glob list with extra globs.
func JoinGlobs(list string, extra []string) string {
	parts := make([]string, 0, len(extra)+1)
	if s := strings.TrimSpace(list); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts, extra...)
	return strings.Join(parts, ",")
}
