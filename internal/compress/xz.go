// Package compress shrinks the generated artifacts with the xz tool
// before they are checked into OBS. Compression shells out rather than
// linking an LZMA implementation: the multi-threaded encoder in the xz
// tool is the behavior the packaging pipeline is defined against.
package compress

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/hdf2obs/internal/model"
)

// XZ compresses one file in place, producing path + ".xz" and removing
// the original (xz's default). Returns the compressed file path.
//
// Flags: -T0 uses all cores, -9 maximum compression (artifacts are small,
// the time cost is negligible), -f overwrites a stale .xz from an earlier
// aborted run.
func XZ(ctx context.Context, xzBin, path string) (string, error) {
	cmd := exec.CommandContext(ctx, xzBin, Args(path)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to compress %s: %s", path, strings.TrimSpace(string(output))), err)
	}
	return path + ".xz", nil
}

// Args returns the argument list for compressing path. Split out so the
// invocation contract is testable without an xz binary.
func Args(path string) []string {
	return []string{"-T0", "-9", "-f", path}
}
