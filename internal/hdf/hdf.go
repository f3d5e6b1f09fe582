package hdf

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/hdf2obs/internal/model"
)

// sysdef models the parts of sysdef.xml the tool cares about. The file
// sits at the root of the HDF container and names the design and target
// device. Everything else in the manifest is ignored.
//
// Example:
//
//	<Project Version="2" Path="/path/design_1_wrapper.hdf">
//	  <SystemInfo Name="design_1_wrapper.hwdef" Device="xczu9eg"
//	              Family="zynquplus" BoardName="zcu102"/>
//	</Project>
type sysdef struct {
	XMLName    xml.Name `xml:"Project"`
	SystemInfo struct {
		Name   string `xml:"Name,attr"`
		Device string `xml:"Device,attr"`
		Family string `xml:"Family,attr"`
		Board  string `xml:"BoardName,attr"`
	} `xml:"SystemInfo"`
}

// Validate checks that the path names a readable .hdf file. It does not
// open the container; extraction failures surface from Unpack.
func Validate(path string) error {
	if path == "" {
		return model.NewCLIError(model.ExitGeneralError, "hardware description file is required (-H)")
	}

	info, err := os.Stat(path)
	if err != nil {
		return model.WrapCLIError(model.ExitHDFInvalid,
			fmt.Sprintf("hardware description file not found: %s", path), err)
	}
	if info.IsDir() {
		return model.NewCLIError(model.ExitHDFInvalid,
			fmt.Sprintf("%s is a directory, expected an .hdf file", path))
	}
	if !strings.EqualFold(filepath.Ext(path), ".hdf") {
		return model.NewCLIError(model.ExitHDFInvalid,
			fmt.Sprintf("%s does not look like a hardware description file (expected .hdf)", path))
	}
	return nil
}

// Unpack extracts the HDF container into destDir using the unzip tool and
// returns the design metadata read from the extracted sysdef.xml.
//
// The extraction deliberately shells out instead of using archive/zip:
// vendor containers occasionally carry zip extensions the stdlib reader
// rejects, and the original workflow is defined in terms of the unzip
// tool's behavior.
func Unpack(ctx context.Context, unzipBin, hdfPath, destDir string) (*model.HardwareDesign, error) {
	absHDF, err := filepath.Abs(hdfPath)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitHDFInvalid, "failed to resolve hdf path", err)
	}

	// unzip -o: overwrite without prompting, -q: quiet, -d: target dir.
	cmd := exec.CommandContext(ctx, unzipBin, "-o", "-q", absHDF, "-d", destDir)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitHDFInvalid,
			fmt.Sprintf("failed to extract %s: %s", hdfPath, strings.TrimSpace(string(output))), err)
	}

	design, err := readSysdef(filepath.Join(destDir, "sysdef.xml"))
	if err != nil {
		return nil, err
	}

	design.HDFPath = absHDF
	design.UnpackedDir = destDir
	return design, nil
}

// readSysdef parses the extracted manifest into a HardwareDesign.
func readSysdef(path string) (*model.HardwareDesign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitHDFInvalid,
			"container has no sysdef.xml — not a hardware description file", err)
	}

	var sd sysdef
	if err := xml.Unmarshal(data, &sd); err != nil {
		return nil, model.WrapCLIError(model.ExitHDFInvalid, "failed to parse sysdef.xml", err)
	}

	// The design name in the manifest carries the .hwdef suffix.
	name := strings.TrimSuffix(sd.SystemInfo.Name, filepath.Ext(sd.SystemInfo.Name))
	if name == "" {
		return nil, model.NewCLIError(model.ExitHDFInvalid, "sysdef.xml names no design")
	}

	return &model.HardwareDesign{
		Name:   name,
		Device: sd.SystemInfo.Device,
		Family: sd.SystemInfo.Family,
		Board:  sd.SystemInfo.Board,
	}, nil
}
