package detectors

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// Markers are literal substrings signalling server-only code or a direct
// server-bridge import.
var Markers = []string{
	`"use server"`,
	`'use server'`,
	ServerBridgePackage,
}

var codeExtensions = map[string]bool{
	".js":  true,
	".jsx": true,
	".ts":  true,
	".tsx": true,
	".mjs": true,
	".cjs": true,
}

// IsCodeFile reports whether name has a recognised code extension. The
// comparison ignores case.
func IsCodeFile(name string) bool {
	return codeExtensions[strings.ToLower(filepath.Ext(name))]
}

// ScanMarkers tests the full content for any marker and returns the first
// one found in Markers order. Binary content never matches.
func ScanMarkers(content []byte) (string, bool) {
	if looksBinary(content) {
		return "", false
	}
	for _, m := range Markers {
		if bytes.Contains(content, []byte(m)) {
			return m, true
		}
	}
	return "", false
}

// HasMarkers reads path and reports whether it contains a marker. The read
// error is returned so callers decide how to treat unreadable files.
func HasMarkers(path string) (bool, error) {
	m, err := FileMarker(path)
	return m != "", err
}

// FileMarker reads path and returns the first marker it contains, or "" when
// it has none.
func FileMarker(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	m, _ := ScanMarkers(b)
	return m, nil
}

func looksBinary(b []byte) bool {
	const sniff = 800
	n := sniff
	if len(b) < n {
		n = len(b)
	}
	return bytes.IndexByte(b[:n], 0) >= 0
}
