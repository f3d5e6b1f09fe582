package model

import (
	"fmt"
	"strings"
)

// Distribution identifies the target openSUSE/SLE distribution that the
// generated OBS project builds against. The distribution selects which
// base project the build repository points at and which bootloader
// packages are linked into the project.
type Distribution string

const (
	// DistTumbleweed targets openSUSE Tumbleweed (openSUSE:Factory:ARM).
	DistTumbleweed Distribution = "tumbleweed"

	// DistSLES15 targets SUSE Linux Enterprise Server 15.
	DistSLES15 Distribution = "sles15"

	// DistLeap15 targets openSUSE Leap 15.
	DistLeap15 Distribution = "leap15"
)

// String returns the string representation of the Distribution.
// This satisfies fmt.Stringer for CLI output and logging.
func (d Distribution) String() string {
	return string(d)
}

// IsValid checks whether the Distribution is one of the supported values.
func (d Distribution) IsValid() bool {
	switch d {
	case DistTumbleweed, DistSLES15, DistLeap15:
		return true
	default:
		return false
	}
}

// ParseDistribution converts a string to a Distribution.
// Returns an error if the string does not name a supported distribution;
// the CLI maps that error to exit code 1.
func ParseDistribution(s string) (Distribution, error) {
	dist := Distribution(strings.ToLower(s))
	if !dist.IsValid() {
		return "", fmt.Errorf("unknown distribution %q (valid: tumbleweed, sles15, leap15)", s)
	}
	return dist, nil
}

// ArtifactKind identifies one of the three build artifacts generated from
// the hardware description file by the vendor batch tool.
//
// The generation pipeline iterates over the fixed list returned by
// AllArtifactKinds; there is no conditional selection of artifacts.
type ArtifactKind string

const (
	// ArtifactFSBL is the first-stage bootloader, compiled for the
	// Cortex-A53 application processor (psu_cortexa53_0).
	ArtifactFSBL ArtifactKind = "fsbl"

	// ArtifactPMUFW is the platform management unit firmware, compiled
	// for the MicroBlaze-based PMU core (psu_pmu_0).
	ArtifactPMUFW ArtifactKind = "pmufw"

	// ArtifactDeviceTree is the generated device-tree source describing
	// the programmable-logic configuration of the design.
	ArtifactDeviceTree ArtifactKind = "devicetree"
)

// AllArtifactKinds returns the artifact kinds in generation order.
// The order is fixed: bootloader first, firmware second, device tree last.
func AllArtifactKinds() []ArtifactKind {
	return []ArtifactKind{ArtifactFSBL, ArtifactPMUFW, ArtifactDeviceTree}
}

// String returns the string representation of the ArtifactKind.
func (k ArtifactKind) String() string {
	return string(k)
}

// IsValid checks whether the ArtifactKind is one of the three known kinds.
func (k ArtifactKind) IsValid() bool {
	switch k {
	case ArtifactFSBL, ArtifactPMUFW, ArtifactDeviceTree:
		return true
	default:
		return false
	}
}

// FileName returns the canonical output file name the vendor tool produces
// for this artifact kind, relative to the artifact's output directory.
func (k ArtifactKind) FileName() string {
	switch k {
	case ArtifactFSBL:
		return "zynqmp_fsbl.elf"
	case ArtifactPMUFW:
		return "pmufw.elf"
	case ArtifactDeviceTree:
		return "system-top.dts"
	default:
		return ""
	}
}

// PackageName returns the OBS package name that carries this artifact.
func (k ArtifactKind) PackageName() string {
	switch k {
	case ArtifactFSBL:
		return "zynqmp-fsbl"
	case ArtifactPMUFW:
		return "zynqmp-pmufw"
	case ArtifactDeviceTree:
		return "zynqmp-devicetree"
	default:
		return ""
	}
}

// Processor returns the vendor tool processor target used when generating
// this artifact. The device tree is generated against the application
// processor as well, which matches the vendor's device_tree BSP.
func (k ArtifactKind) Processor() string {
	switch k {
	case ArtifactPMUFW:
		return "psu_pmu_0"
	default:
		return "psu_cortexa53_0"
	}
}

// HardwareDesign describes the design metadata read from the sysdef.xml
// manifest inside the hardware description file container.
type HardwareDesign struct {
	// Name is the top-level design name (e.g., "design_1_wrapper").
	Name string `json:"name"`

	// Device is the target part (e.g., "xczu9eg").
	Device string `json:"device"`

	// Family is the device family reported by the EDA tool
	// (e.g., "zynquplus").
	Family string `json:"family"`

	// Board is the vendor board identifier, empty for custom boards.
	Board string `json:"board,omitempty"`

	// HDFPath is the absolute path to the original .hdf file.
	HDFPath string `json:"hdfPath"`

	// UnpackedDir is the temporary directory the container was
	// extracted into. Removed when the run finishes.
	UnpackedDir string `json:"-"`
}

// Artifact is one generated and compressed build product ready to be
// checked into its OBS package.
type Artifact struct {
	// Kind identifies which of the three products this is.
	Kind ArtifactKind `json:"kind"`

	// Path is the absolute path of the compressed artifact file.
	Path string `json:"path"`

	// SHA256 is the hex digest of the compressed file, used to skip
	// commits when the package already carries identical content.
	SHA256 string `json:"sha256"`
}

// BuildResult summarizes a completed run for text/JSON output.
type BuildResult struct {
	// Project is the OBS project that was created or updated.
	// Empty when only local generation was requested.
	Project string `json:"project,omitempty"`

	// Distribution is the distribution the project builds against.
	// Empty for generate-only runs.
	Distribution Distribution `json:"distribution,omitempty"`

	// Design is the hardware design the artifacts were generated from.
	Design HardwareDesign `json:"design"`

	// Artifacts lists the generated artifacts in generation order.
	Artifacts []Artifact `json:"artifacts"`

	// Committed lists the packages that received a new commit.
	// Unchanged packages are skipped unless force was requested.
	Committed []string `json:"committed,omitempty"`
}

// ExitCode defines the CLI process exit codes.
//
// The contract for code 1 is fixed: missing mandatory input, an unknown
// option or distribution, and a missing external tool all exit 1 with a
// human-readable message. The remaining codes classify later pipeline
// failures for scripting callers.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError covers usage errors, unknown distributions,
	// missing external tools, and any otherwise unclassified failure.
	ExitGeneralError ExitCode = 1

	// ExitHDFInvalid indicates the hardware description file is missing,
	// unreadable, or not a valid container.
	ExitHDFInvalid ExitCode = 2

	// ExitEDAFailed indicates the vendor batch tool exited non-zero.
	ExitEDAFailed ExitCode = 3

	// ExitOBSFailed indicates an osc invocation failed.
	ExitOBSFailed ExitCode = 4
)

// CLIError is an error that carries an exit code. The CLI layer unwraps
// it in Execute to translate domain failures into process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
