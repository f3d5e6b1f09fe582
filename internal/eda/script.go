package eda

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/mmr-tortoise/hdf2obs/internal/model"
)

// scriptParams is the data handed to the Tcl batch templates.
type scriptParams struct {
	// HDF is the absolute path of the hardware description file.
	HDF string

	// OutDir is the directory the artifact is generated into.
	OutDir string

	// Processor is the target core for the generated software.
	Processor string

	// DTRepo is the device-tree generator repository checkout.
	// Only used by the devicetree template.
	DTRepo string
}

// The batch scripts mirror the vendor's documented hsi flow. generate_app
// compiles the bootloader/firmware ELF in one shot; the device tree goes
// through a software design bound to the device_tree OS from the vendor's
// generator repository.
var (
	appScript = template.Must(template.New("app").Parse(`hsi open_hw_design {{.HDF}}
hsi generate_app -hw [hsi current_hw_design] -os standalone -proc {{.Processor}} -app {{.App}} -compile -sw {{.App}} -dir {{.OutDir}}
exit
`))

	devicetreeScript = template.Must(template.New("devicetree").Parse(`hsi open_hw_design {{.HDF}}
hsi set_repo_path {{.DTRepo}}
hsi create_sw_design device-tree -os device_tree -proc {{.Processor}}
hsi generate_target -dir {{.OutDir}}
exit
`))
)

// appParams extends scriptParams with the vendor application name used by
// generate_app (zynqmp_fsbl or zynqmp_pmufw).
type appParams struct {
	scriptParams
	App string
}

// RenderScript produces the Tcl batch script for one artifact kind.
//
// The devicetree kind requires a device-tree generator repository; a
// missing repo path is rejected here rather than surfacing as an opaque
// Tcl error from the vendor tool.
func RenderScript(kind model.ArtifactKind, hdfPath, outDir, dtRepo string) (string, error) {
	params := scriptParams{
		HDF:       hdfPath,
		OutDir:    outDir,
		Processor: kind.Processor(),
		DTRepo:    dtRepo,
	}

	var sb strings.Builder
	switch kind {
	case model.ArtifactFSBL:
		if err := appScript.Execute(&sb, appParams{params, "zynqmp_fsbl"}); err != nil {
			return "", fmt.Errorf("failed to render fsbl script: %w", err)
		}
	case model.ArtifactPMUFW:
		if err := appScript.Execute(&sb, appParams{params, "zynqmp_pmufw"}); err != nil {
			return "", fmt.Errorf("failed to render pmufw script: %w", err)
		}
	case model.ArtifactDeviceTree:
		if dtRepo == "" {
			return "", fmt.Errorf("device-tree generation requires a deviceTreeRepo in the config")
		}
		if err := devicetreeScript.Execute(&sb, params); err != nil {
			return "", fmt.Errorf("failed to render devicetree script: %w", err)
		}
	default:
		return "", fmt.Errorf("unknown artifact kind %q", kind)
	}

	return sb.String(), nil
}
