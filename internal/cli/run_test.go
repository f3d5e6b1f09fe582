package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/hdf2obs/internal/config"
	"github.com/mmr-tortoise/hdf2obs/internal/model"
	"github.com/mmr-tortoise/hdf2obs/internal/obs"
)

// TestRunUpdate_MissingHDF verifies the exit-1 contract for a missing
// mandatory -H flag, checked before any external tool is touched.
func TestRunUpdate_MissingHDF(t *testing.T) {
	err := runUpdate(context.Background(), &updateFlags{dist: "tumbleweed"})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	assert.Contains(t, cliErr.Message, "-H")
}

// TestRunUpdate_UnknownDistribution verifies the exit-1 contract for an
// unsupported -d value.
func TestRunUpdate_UnknownDistribution(t *testing.T) {
	err := runUpdate(context.Background(), &updateFlags{hdf: "board.hdf", dist: "debian"})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	assert.Contains(t, err.Error(), "unknown distribution")
}

// TestRequiredTools_LocalVsContainer verifies the preflight tool set:
// the vendor tool requirement flips to docker when an EDA image is
// configured, and osc is only required for OBS-touching commands.
func TestRequiredTools_LocalVsContainer(t *testing.T) {
	cfg := config.Default()

	bins := func(tools []toolCheck) []string {
		var out []string
		for _, tool := range tools {
			out = append(out, tool.Bin)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"unzip", "xz", "xsct", "osc"}, bins(requiredTools(cfg, true)))
	assert.ElementsMatch(t, []string{"unzip", "xz", "xsct"}, bins(requiredTools(cfg, false)))

	cfg.EDAImage = "registry.example.com/eda/xsct:2019.2"
	assert.ElementsMatch(t, []string{"unzip", "xz", "docker", "osc"}, bins(requiredTools(cfg, true)))
}

// TestPreflight_MissingTool verifies the message and exit-1 code when a
// required binary cannot be found.
func TestPreflight_MissingTool(t *testing.T) {
	cfg := config.Default()
	cfg.XsctBin = "definitely-not-a-real-binary-ae41"

	_, err := preflight(cfg, false)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	assert.Contains(t, cliErr.Message, "definitely-not-a-real-binary-ae41")
}

// writeStubOsc writes a fake osc binary that records every invocation
// to the file named by $OSC_LOG. Its checkout subcommand creates the
// package directory the way a real checkout would.
func writeStubOsc(t *testing.T) string {
	t.Helper()
	script := `#!/bin/sh
cat >/dev/null
echo "$@" >> "$OSC_LOG"
if [ "$1" = checkout ]; then mkdir -p "$2/$3"; fi
exit 0
`
	path := filepath.Join(t.TempDir(), "osc")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// publishFixture sets up a work directory with one compressed fsbl
// artifact, a stub osc client, and a pre-created package checkout, so
// the tests can seed the checkout before publishing.
func publishFixture(t *testing.T) (osc *obs.Client, workDir string, design *model.HardwareDesign, artifacts []model.Artifact, pkgDir, logPath string) {
	t.Helper()

	workDir = t.TempDir()
	logPath = filepath.Join(workDir, "osc.log")
	t.Setenv("OSC_LOG", logPath)

	artifactPath := filepath.Join(workDir, model.ArtifactFSBL.FileName()+".xz")
	require.NoError(t, os.WriteFile(artifactPath, []byte("fsbl payload"), 0o644))
	sum, err := fileSHA256(artifactPath)
	require.NoError(t, err)

	design = &model.HardwareDesign{Name: "zcu102", Device: "xczu9eg", HDFPath: "board.hdf"}
	artifacts = []model.Artifact{{Kind: model.ArtifactFSBL, Path: artifactPath, SHA256: sum}}

	const project = "home:alice:hardware:mpsoc"
	pkgDir = filepath.Join(workDir, "co", project, model.ArtifactFSBL.PackageName())
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))

	return obs.NewClient(writeStubOsc(t), "", nil), workDir, design, artifacts, pkgDir, logPath
}

func oscLog(t *testing.T, logPath string) string {
	t.Helper()
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	return string(data)
}

// TestPublishArtifacts_SkipsUnchanged verifies that a package whose
// checkout already holds byte-identical content is neither added nor
// committed, so repeated runs stay free of empty-diff commits.
func TestPublishArtifacts_SkipsUnchanged(t *testing.T) {
	osc, workDir, design, artifacts, pkgDir, logPath := publishFixture(t)
	dest := filepath.Join(pkgDir, filepath.Base(artifacts[0].Path))
	require.NoError(t, copyFile(artifacts[0].Path, dest))

	committed, err := publishArtifacts(context.Background(), osc, workDir, "home:alice:hardware:mpsoc", design, artifacts, false)
	require.NoError(t, err)

	assert.Empty(t, committed)
	log := oscLog(t, logPath)
	assert.Contains(t, log, "meta pkg", "package meta is still maintained")
	assert.Contains(t, log, "checkout")
	assert.NotContains(t, log, "add ")
	assert.NotContains(t, log, "commit")
}

// TestPublishArtifacts_ForceRecommits verifies that force bypasses the
// unchanged-content check and commits anyway.
func TestPublishArtifacts_ForceRecommits(t *testing.T) {
	osc, workDir, design, artifacts, pkgDir, logPath := publishFixture(t)
	dest := filepath.Join(pkgDir, filepath.Base(artifacts[0].Path))
	require.NoError(t, copyFile(artifacts[0].Path, dest))

	committed, err := publishArtifacts(context.Background(), osc, workDir, "home:alice:hardware:mpsoc", design, artifacts, true)
	require.NoError(t, err)

	assert.Equal(t, []string{model.ArtifactFSBL.PackageName()}, committed)
	log := oscLog(t, logPath)
	assert.Contains(t, log, "add "+filepath.Base(dest))
	assert.Contains(t, log, "commit -m Update fsbl from board.hdf")
}

// TestPublishArtifacts_CommitsChanged verifies that stale checkout
// content is replaced and committed without force.
func TestPublishArtifacts_CommitsChanged(t *testing.T) {
	osc, workDir, design, artifacts, pkgDir, logPath := publishFixture(t)
	dest := filepath.Join(pkgDir, filepath.Base(artifacts[0].Path))
	require.NoError(t, os.WriteFile(dest, []byte("previous payload"), 0o644))

	committed, err := publishArtifacts(context.Background(), osc, workDir, "home:alice:hardware:mpsoc", design, artifacts, false)
	require.NoError(t, err)

	assert.Equal(t, []string{model.ArtifactFSBL.PackageName()}, committed)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "fsbl payload", string(data), "checkout content is replaced")
	assert.Contains(t, oscLog(t, logPath), "commit")
}

// TestCopyFile verifies the copy helper round trip and overwrite.
func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	require.NoError(t, os.WriteFile(src, []byte("artifact bytes"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("stale, longer content"), 0o644))

	require.NoError(t, copyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "artifact bytes", string(data), "destination is truncated, not appended")
}

// TestFileSHA256 verifies the digest helper against a known vector.
func TestFileSHA256(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	sum, err := fileSHA256(path)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)

	_, err = fileSHA256(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
