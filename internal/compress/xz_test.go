package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestArgs pins the xz invocation contract: threaded, maximum
// compression, forced overwrite, file last.
func TestArgs(t *testing.T) {
	args := Args("/tmp/work/fsbl/zynqmp_fsbl.elf")

	assert.Equal(t, []string{"-T0", "-9", "-f", "/tmp/work/fsbl/zynqmp_fsbl.elf"}, args)
}
