package dts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleDTS resembles the top-level source the vendor generator emits:
// pre-CCF clock include and no version prologue.
const sampleDTS = `#include "zynqmp.dtsi"
#include "zynqmp-clk.dtsi"
/ {
	model = "ZynqMP ZCU102";
};
`

// TestApply_BothRules verifies both fixups land: the ccf clock include
// and the dts-v1 prologue.
func TestApply_BothRules(t *testing.T) {
	patched, matched := Apply(sampleDTS, DefaultRules())

	assert.Equal(t, 2, matched)
	assert.Contains(t, patched, `#include "zynqmp-clk-ccf.dtsi"`)
	assert.NotContains(t, patched, `#include "zynqmp-clk.dtsi"`+"\n")
	assert.True(t, strings.HasPrefix(patched, "/dts-v1/;\n"),
		"patched source must start with the version prologue")
}

// TestApply_ProloguePrepended verifies that a generated source lacking
// the /dts-v1/; line gains it as the very first line.
func TestApply_ProloguePrepended(t *testing.T) {
	src := "#include \"zynqmp.dtsi\"\n/ {\n};\n"
	patched, matched := Apply(src, DefaultRules())

	assert.Equal(t, 1, matched, "only the prologue rule should match")
	assert.True(t, strings.HasPrefix(patched, "/dts-v1/;\n"))
	assert.Equal(t, 1, strings.Count(patched, "/dts-v1/;"))
}

// TestApply_Idempotent verifies that re-applying the rules to already
// patched text changes nothing.
func TestApply_Idempotent(t *testing.T) {
	once, _ := Apply(sampleDTS, DefaultRules())
	twice, matched := Apply(once, DefaultRules())

	assert.Equal(t, once, twice)
	assert.Equal(t, 0, matched, "no rule should match patched text")
	assert.Equal(t, 1, strings.Count(twice, "/dts-v1/;"))
}

// TestApply_NoMatch verifies untouched passthrough for sources that
// already carry the prologue and the expected include.
func TestApply_NoMatch(t *testing.T) {
	src := "/dts-v1/;\n#include \"zynqmp-clk-ccf.dtsi\"\n"
	patched, matched := Apply(src, DefaultRules())

	assert.Equal(t, src, patched)
	assert.Equal(t, 0, matched)
}

// TestPatchFile verifies the in-place file patching round trip.
func TestPatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system-top.dts")
	require.NoError(t, os.WriteFile(path, []byte(sampleDTS), 0o644))

	matched, err := PatchFile(path, DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, 2, matched)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "zynqmp-clk-ccf.dtsi")
	assert.True(t, strings.HasPrefix(string(data), "/dts-v1/;\n"))
}

// TestPatchFile_Missing verifies the error path for a missing source.
func TestPatchFile_Missing(t *testing.T) {
	_, err := PatchFile(filepath.Join(t.TempDir(), "nope.dts"), DefaultRules())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read device tree")
}
