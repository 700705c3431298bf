package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rscscan/rscscan/internal/report"
	"github.com/rscscan/rscscan/internal/types"
)

func labels(vs []types.Verdict) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Target.Label)
	}
	return out
}

func byLabel(t *testing.T, vs []types.Verdict, label string) types.Verdict {
	t.Helper()
	for _, v := range vs {
		if v.Target.Label == label {
			return v
		}
	}
	t.Fatalf("no verdict labelled %q in %v", label, labels(vs))
	return types.Verdict{}
}

func treeConfig(t *testing.T, dir string) Config {
	t.Helper()
	r, err := TreeRoot(dir)
	require.NoError(t, err)
	return Config{Roots: []Root{r}, Sorted: true}
}

func TestScan_ChildRootsFrameworkAndEmptyLib(t *testing.T) {
	base := t.TempDir()
	mustWrite(t, base, "app/package.json", `{"dependencies":{"next":"14.2.1"}}`)
	mustWrite(t, base, "lib/readme.txt", "nothing here")

	roots, err := ChildRoots(base, "", DefaultExclusions())
	require.NoError(t, err)
	require.Len(t, roots, 2)

	rep, err := Scan(context.Background(), Config{Roots: roots})
	require.NoError(t, err)
	require.Len(t, rep.Verdicts, 2)
	assert.Equal(t, 1, rep.VulnerableCount)

	app := byLabel(t, rep.Verdicts, "app")
	assert.True(t, app.HasManifest)
	assert.True(t, app.Vulnerable)
	assert.Contains(t, app.Reason, "14.2.1")

	lib := byLabel(t, rep.Verdicts, "lib")
	assert.False(t, lib.HasManifest)
	assert.False(t, lib.Vulnerable)
	assert.Equal(t, ReasonNoManifestUnderRoot, lib.Reason)

	assert.Equal(t, report.ExitVulnerable, report.ExitCode(rep))
}

func TestScan_NestedManifestsAreSeparateTargets(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "package.json", `{"dependencies":{"react":"18.3.0"}}`)
	mustWrite(t, dir, "packages/web/package.json", `{"dependencies":{"next":"15.0.0"}}`)
	mustWrite(t, dir, "packages/web/node_modules/next/package.json", `{"dependencies":{"react":"19.0.0"}}`)
	mustWrite(t, dir, "packages/ui/package.json", `{"dependencies":{}}`)

	res, err := ScanWithStats(context.Background(), treeConfig(t, dir))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Targets)
	assert.Equal(t, []string{".", "packages/ui", "packages/web"}, labels(res.Report.Verdicts))
	assert.Equal(t, 1, res.Report.VulnerableCount)
	assert.Equal(t, ReasonNoIndicators, byLabel(t, res.Report.Verdicts, ".").Reason)
	assert.True(t, byLabel(t, res.Report.Verdicts, "packages/web").Vulnerable)
	assert.False(t, res.Partial)
}

func TestScan_RootWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "src/index.js", `"use server"`)
	mustWrite(t, dir, "node_modules/next/package.json", `{}`)

	rep, err := Scan(context.Background(), treeConfig(t, dir))
	require.NoError(t, err)
	require.Len(t, rep.Verdicts, 1)
	v := rep.Verdicts[0]
	assert.Equal(t, ".", v.Target.Label)
	assert.False(t, v.HasManifest)
	assert.False(t, v.Vulnerable)
	assert.Equal(t, ReasonNoManifestUnderRoot, v.Reason)
	assert.Equal(t, report.ExitClean, report.ExitCode(rep))
}

func TestScan_MissingRoot(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "file.txt", "x")

	_, err := Scan(context.Background(), Config{Roots: []Root{{Path: filepath.Join(dir, "missing"), Name: "missing"}}})
	assert.True(t, errors.Is(err, ErrRootNotFound))

	_, err = TreeRoot(filepath.Join(dir, "file.txt"))
	assert.True(t, errors.Is(err, ErrRootNotFound))

	_, err = ChildRoots(filepath.Join(dir, "missing"), "", DefaultExclusions())
	assert.True(t, errors.Is(err, ErrRootNotFound))
}

func TestScan_OneMissingRootFailsBeforeTraversal(t *testing.T) {
	good := t.TempDir()
	mustWrite(t, good, "package.json", `{"dependencies":{"next":"14.0.0"}}`)
	res, err := ScanWithStats(context.Background(), Config{Roots: []Root{
		{Path: good, Name: "good"},
		{Path: filepath.Join(good, "nope"), Name: "nope"},
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRootNotFound))
	assert.Empty(t, res.Report.Verdicts)
	assert.Zero(t, res.Targets)
}

func TestScan_NoRoots(t *testing.T) {
	rep, err := Scan(context.Background(), Config{})
	require.NoError(t, err)
	assert.Empty(t, rep.Verdicts)
	assert.Zero(t, rep.VulnerableCount)
}

func TestScan_Idempotent(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "a/package.json", `{"dependencies":{"react":"^19.1.0"}}`)
	mustWrite(t, dir, "b/package.json", `{"dependencies":{"react":"17.0.2"}}`)
	mustWrite(t, dir, "b/src/server.tsx", `'use server'`)
	mustWrite(t, dir, "c/package.json", `{"dependencies":{"react":"18.0.0"}}`)

	cfg := treeConfig(t, dir)
	cfg.Sorted = false
	first, err := Scan(context.Background(), cfg)
	require.NoError(t, err)
	second, err := Scan(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, first.VulnerableCount)
	assert.Equal(t, first.VulnerableCount, second.VulnerableCount)
	assert.Equal(t, report.Fingerprint(first), report.Fingerprint(second))
}

func TestScan_ThreadsDoNotChangeOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		mustWrite(t, dir, name+"/package.json", `{"dependencies":{"react":"18.3.0"}}`)
	}
	mustWrite(t, dir, "d/index.js", `import x from "react-server-dom-webpack/client"`)

	cfg := treeConfig(t, dir)
	cfg.Threads = 1
	serial, err := Scan(context.Background(), cfg)
	require.NoError(t, err)
	cfg.Threads = 8
	parallel, err := Scan(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, labels(serial.Verdicts))
	assert.Equal(t, serial, parallel)
}

func TestScan_AllFoldersMode(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "package.json", `{"dependencies":{"next":"13.4.0"}}`)
	mustWrite(t, dir, "src/components/button.jsx", "export default 1")
	mustWrite(t, dir, "build/out.js", "")

	cfg := treeConfig(t, dir)
	cfg.Mode = ModeAllFolders
	res, err := ScanWithStats(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{".", "src", "src/components"}, labels(res.Report.Verdicts))
	assert.True(t, res.Report.Verdicts[0].Vulnerable)
	for _, v := range res.Report.Verdicts[1:] {
		assert.False(t, v.HasManifest)
		assert.Equal(t, ReasonNoManifest, v.Reason)
	}
}

func TestScan_CustomExclusions(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "fixtures/app/package.json", `{"dependencies":{"next":"14.0.0"}}`)
	mustWrite(t, dir, "build/package.json", `{"dependencies":{"react":"18.0.0"}}`)

	cfg := treeConfig(t, dir)
	cfg.Exclusions = NewExclusionSet("fixtures")
	rep, err := Scan(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"build"}, labels(rep.Verdicts))
	assert.Zero(t, rep.VulnerableCount)
}

func TestScan_ExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "examples/demo/package.json", `{"dependencies":{"next":"14.0.0"}}`)
	mustWrite(t, dir, "app/package.json", `{"dependencies":{"react":"18.0.0"}}`)

	cfg := treeConfig(t, dir)
	cfg.ExcludeGlobs = "examples"
	rep, err := Scan(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, labels(rep.Verdicts))
}

func TestScan_ExcludeGlobAppliesToSourceScan(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "packages/web/package.json", `{"dependencies":{"react":"18.3.0"}}`)
	mustWrite(t, dir, "packages/web/fixtures/actions.js", `"use server"`)
	mustWrite(t, dir, "packages/web/src/index.js", "export {}")

	cfg := treeConfig(t, dir)
	cfg.ExcludeGlobs = "packages/web/fixtures"
	rep, err := Scan(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, rep.Verdicts, 1)
	assert.Zero(t, rep.VulnerableCount)
	assert.Equal(t, ReasonNoIndicators, rep.Verdicts[0].Reason)

	cfg.ExcludeGlobs = ""
	rep, err = Scan(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.VulnerableCount)
}

func TestScan_CancelledContextIsPartial(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "package.json", `{"dependencies":{"next":"14.0.0"}}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := ScanWithStats(ctx, treeConfig(t, dir))
	require.NoError(t, err)
	assert.True(t, res.Partial)
	assert.Empty(t, res.Report.Verdicts)
}

func TestWordPressRoots(t *testing.T) {
	content := t.TempDir()
	mustWrite(t, content, "plugins/shop/package.json", `{"dependencies":{"react":"19.0.0"}}`)
	mustWrite(t, content, "plugins/forms/readme.txt", "")
	mustWrite(t, content, "plugins/hello.php", "<?php")
	mustWrite(t, content, "themes/dark/assets/package.json", `{"dependencies":{"react":"18.2.0"}}`)
	mustWrite(t, content, "uploads/x/package.json", `{"dependencies":{"next":"14.0.0"}}`)

	roots, err := WordPressRoots(content, DefaultExclusions())
	require.NoError(t, err)
	names := make([]string, 0, len(roots))
	for _, r := range roots {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"plugins/forms", "plugins/shop", "themes/dark"}, names)

	rep, err := Scan(context.Background(), Config{Roots: roots, Sorted: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"plugins/forms", "plugins/shop", "themes/dark/assets"}, labels(rep.Verdicts))
	assert.Equal(t, 1, rep.VulnerableCount)
	assert.Equal(t, ReasonNoManifestUnderRoot, byLabel(t, rep.Verdicts, "plugins/forms").Reason)

	_, err = WordPressRoots(filepath.Join(content, "uploads"), DefaultExclusions())
	assert.True(t, errors.Is(err, ErrRootNotFound))
}

func TestRootLabel(t *testing.T) {
	r := Root{Path: filepath.FromSlash("/srv/site"), Name: "."}
	assert.Equal(t, ".", r.Label(r.Path))
	assert.Equal(t, "a/b", r.Label(filepath.Join(r.Path, "a", "b")))

	p := Root{Path: filepath.FromSlash("/srv/wp/plugins/shop"), Name: "plugins/shop"}
	assert.Equal(t, "plugins/shop", p.Target().Label)
	assert.True(t, strings.HasPrefix(p.Label(filepath.Join(p.Path, "js")), "plugins/shop/"))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "manifests", ModeManifests.String())
	assert.Equal(t, "all-folders", ModeAllFolders.String())
}
