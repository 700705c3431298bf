package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rscscan/rscscan/internal/detectors"
	"github.com/rscscan/rscscan/internal/types"
)

func analyzeDir(t *testing.T, dir string) types.Verdict {
	t.Helper()
	return Analyze(context.Background(), NewWalker(), types.ScanTarget{Path: dir, Label: "."})
}

func TestAnalyze_NoManifest(t *testing.T) {
	v := analyzeDir(t, t.TempDir())
	assert.False(t, v.HasManifest)
	assert.False(t, v.Vulnerable)
	assert.Equal(t, ReasonNoManifest, v.Reason)
}

func TestAnalyze_InvalidManifest(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "package.json", `{"dependencies": {"next": `)
	mustWrite(t, dir, "app/actions.ts", `"use server"`)
	v := analyzeDir(t, dir)
	assert.True(t, v.HasManifest)
	assert.False(t, v.Vulnerable, "an invalid manifest is never flagged")
	assert.Equal(t, ReasonInvalidManifest, v.Reason)
}

func TestAnalyze_DependencyIndicators(t *testing.T) {
	cases := []struct {
		name     string
		manifest string
		rule     string
		reason   string
	}{
		{"framework", `{"dependencies":{"next":"14.2.1"}}`, detectors.RuleFramework, "depends on next 14.2.1 (server components framework)"},
		{"bridge dev dep", `{"devDependencies":{"react-server-dom-webpack":"^19.0.0"}}`, detectors.RuleServerBridge, "depends on react-server-dom-webpack ^19.0.0"},
		{"react 19", `{"dependencies":{"react":"^19.0.0"}}`, detectors.RuleReactMajor, "depends on react ^19.0.0 (major >= 19)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			mustWrite(t, dir, "package.json", tc.manifest)
			v := analyzeDir(t, dir)
			assert.True(t, v.HasManifest)
			assert.True(t, v.Vulnerable)
			assert.Equal(t, tc.rule, v.Rule)
			assert.Equal(t, tc.reason, v.Reason)
			assert.Equal(t, "package.json", v.Evidence)
		})
	}
}

func TestAnalyze_OldReactWithoutMarkers(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "package.json", `{"dependencies":{"react":"18.3.0"}}`)
	mustWrite(t, dir, "src/index.js", `import React from "react";`)
	v := analyzeDir(t, dir)
	assert.True(t, v.HasManifest)
	assert.False(t, v.Vulnerable)
	assert.Equal(t, ReasonNoIndicators, v.Reason)
	assert.Empty(t, v.Rule)
}

func TestAnalyze_SourceMarker(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "package.json", `{"dependencies":{"react":"18.3.0"}}`)
	mustWrite(t, dir, "src/actions.ts", "'use server'\nexport async function save() {}\n")
	v := analyzeDir(t, dir)
	assert.True(t, v.Vulnerable)
	assert.Equal(t, detectors.RuleSourceMarker, v.Rule)
	assert.Equal(t, "src/actions.ts", v.Evidence)
	assert.Contains(t, v.Reason, "src/actions.ts")
	assert.Contains(t, v.Reason, "'use server'")
}

func TestAnalyze_MarkersIgnoredOutsideCodeFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "package.json", `{"dependencies":{}}`)
	mustWrite(t, dir, "README.md", `"use server"`)
	mustWrite(t, dir, "node_modules/x/index.js", `"use server"`)
	mustWrite(t, dir, "dist/server.js", `require("react-server-dom-webpack")`)
	v := analyzeDir(t, dir)
	assert.False(t, v.Vulnerable)
	assert.Equal(t, ReasonNoIndicators, v.Reason)
}

func TestAnalyze_UnreadableFileCountsAsUnmarked(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "package.json", `{"dependencies":{"react":"18.2.0"}}`)
	mustWrite(t, dir, "src/actions.ts", `"use server"`)

	orig := fileMarker
	fileMarker = func(name string) (string, error) {
		if filepath.Base(name) == "actions.ts" {
			return "", os.ErrPermission
		}
		return orig(name)
	}
	t.Cleanup(func() { fileMarker = orig })

	v := analyzeDir(t, dir)
	assert.False(t, v.Vulnerable)
	assert.Equal(t, ReasonNoIndicators, v.Reason)
}

func TestFirstMarkedFile(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "lib/plain.js", "export const x = 1")
	mustWrite(t, dir, "lib/bridge.mjs", `import { renderToPipeableStream } from "react-server-dom-webpack/server";`)

	rel, marker, ok := FirstMarkedFile(context.Background(), NewWalker(), dir)
	require.True(t, ok)
	assert.Equal(t, "lib/bridge.mjs", rel)
	assert.Equal(t, "react-server-dom-webpack", marker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, ok = FirstMarkedFile(ctx, NewWalker(), dir)
	assert.False(t, ok)
}

func TestCheckRoot(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "file.txt", "x")
	assert.NoError(t, CheckRoot(dir))
	assert.True(t, errors.Is(CheckRoot(filepath.Join(dir, "missing")), ErrRootNotFound))
	assert.True(t, errors.Is(CheckRoot(filepath.Join(dir, "file.txt")), ErrRootNotFound))
}

func TestFirstMarkedFile_GlobsAnchoredAtBase(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, root, "packages/web/fixtures/actions.js", `"use server"`)
	target := filepath.Join(root, "packages", "web")

	w := NewWalker()
	w.Globs = ParseGlobs("packages/web/fixtures")

	_, _, ok := FirstMarkedFile(context.Background(), w.Anchored(root), target)
	assert.False(t, ok, "glob relative to the scan root prunes the fixtures dir")

	rel, _, ok := FirstMarkedFile(context.Background(), w.Anchored(target), target)
	assert.True(t, ok, "anchored at the target the same glob does not match")
	assert.Equal(t, "fixtures/actions.js", rel)
}
