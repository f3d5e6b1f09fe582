package eda

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/hdf2obs/internal/model"
)

// Runner generates board artifacts by feeding rendered Tcl batch scripts
// to the vendor tool. Exactly one of the two execution modes is active:
// a local xsct binary, or a container image carrying the vendor tools.
type Runner struct {
	// XsctBin is the local vendor tool binary. Ignored when Image is set.
	XsctBin string

	// Image is the EDA container image. When non-empty, scripts run
	// inside a container with WorkDir bind-mounted at /work.
	Image string

	// DTRepo is the device-tree generator repository checkout on the
	// host, required for the devicetree artifact.
	DTRepo string

	// WorkDir is the run's temporary directory. Scripts and artifact
	// output directories are created beneath it.
	WorkDir string

	// Log receives progress messages; nil disables them.
	Log func(format string, args ...interface{})
}

// Generate builds one artifact kind from the unpacked design and returns
// the absolute path of the produced artifact file.
//
// Each invocation is independent: the tool is started once per artifact,
// sequentially, mirroring the fixed three-step generation loop.
func (r *Runner) Generate(ctx context.Context, design *model.HardwareDesign, kind model.ArtifactKind) (string, error) {
	outDir := filepath.Join(r.WorkDir, kind.String())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", model.WrapCLIError(model.ExitEDAFailed,
			fmt.Sprintf("failed to create output directory for %s", kind), err)
	}

	// Inside the container the work dir is visible at /work, so every
	// path in the script has to be translated before rendering.
	hdfPath := design.HDFPath
	scriptOutDir := outDir
	dtRepo := r.DTRepo
	if r.Image != "" {
		hdfPath = containerPath(r.WorkDir, design.HDFPath)
		scriptOutDir = containerPath(r.WorkDir, outDir)
		dtRepo = containerDTRepo
	}

	script, err := RenderScript(kind, hdfPath, scriptOutDir, dtRepo)
	if err != nil {
		return "", model.WrapCLIError(model.ExitEDAFailed,
			fmt.Sprintf("failed to prepare %s batch script", kind), err)
	}

	scriptPath := filepath.Join(r.WorkDir, kind.String()+".tcl")
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		return "", model.WrapCLIError(model.ExitEDAFailed,
			fmt.Sprintf("failed to write %s batch script", kind), err)
	}

	r.logf("Generating %s (processor %s)...", kind, kind.Processor())

	if r.Image != "" {
		err = r.runInContainer(ctx, scriptPath)
	} else {
		err = r.runLocal(ctx, scriptPath)
	}
	if err != nil {
		return "", err
	}

	return findArtifact(outDir, kind)
}

// runLocal feeds the batch script to a locally installed xsct.
func (r *Runner) runLocal(ctx context.Context, scriptPath string) error {
	cmd := exec.CommandContext(ctx, r.XsctBin, scriptPath)
	cmd.Dir = r.WorkDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return model.WrapCLIError(model.ExitEDAFailed,
			fmt.Sprintf("%s %s failed: %s", r.XsctBin, filepath.Base(scriptPath),
				tail(string(output))), err)
	}
	return nil
}

// findArtifact locates the produced artifact file below the output
// directory. generate_app writes the ELF either under the app name or as
// executable.elf depending on tool version, and the device-tree target
// writes a small source tree; a walk keeps both layouts working.
func findArtifact(outDir string, kind model.ArtifactKind) (string, error) {
	want := kind.FileName()
	var found string

	err := filepath.WalkDir(outDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		base := filepath.Base(path)
		if base == want || (found == "" && kind != model.ArtifactDeviceTree && base == "executable.elf") {
			found = path
			if base == want {
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return "", model.WrapCLIError(model.ExitEDAFailed,
			fmt.Sprintf("failed to scan %s output", kind), err)
	}
	if found == "" {
		return "", model.NewCLIError(model.ExitEDAFailed,
			fmt.Sprintf("vendor tool finished but produced no %s (expected %s under %s)", kind, want, outDir))
	}

	// Normalize the vendor's executable.elf name to the canonical one so
	// downstream packaging sees a stable file name.
	if filepath.Base(found) != want {
		normalized := filepath.Join(filepath.Dir(found), want)
		if err := os.Rename(found, normalized); err != nil {
			return "", model.WrapCLIError(model.ExitEDAFailed,
				fmt.Sprintf("failed to rename %s artifact", kind), err)
		}
		found = normalized
	}
	return found, nil
}

// tail returns the last few lines of tool output for error messages.
// xsct is chatty; the failure reason is almost always at the end.
func tail(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Log != nil {
		r.Log(format, args...)
	}
}
