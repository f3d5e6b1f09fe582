// check.go implements the "hdf2obs check" subcommand and the tool
// preflight shared with the pipeline commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/hdf2obs/internal/config"
	"github.com/mmr-tortoise/hdf2obs/internal/model"
)

// toolCheck is one preflight entry: the binary to look up and what it
// is used for, for the human-readable report.
type toolCheck struct {
	Bin     string `json:"bin"`
	Purpose string `json:"purpose"`
	Path    string `json:"path,omitempty"`
}

// requiredTools lists the external tools a run needs. The vendor batch
// tool requirement flips to the docker CLI when the config routes EDA
// execution into a container image; OBS-side tools are skipped for
// generate-only runs.
func requiredTools(cfg *config.Config, withOBS bool) []toolCheck {
	tools := []toolCheck{
		{Bin: cfg.UnzipBin, Purpose: "hardware description file extraction"},
		{Bin: cfg.XzBin, Purpose: "artifact compression"},
	}

	if cfg.EDAImage != "" {
		tools = append(tools, toolCheck{Bin: "docker", Purpose: "containerized vendor batch tool (edaImage is set)"})
	} else {
		tools = append(tools, toolCheck{Bin: cfg.XsctBin, Purpose: "vendor batch tool"})
	}

	if withOBS {
		tools = append(tools, toolCheck{Bin: cfg.OscBin, Purpose: "OBS client"})
	}
	return tools
}

// preflight verifies every required tool resolves in PATH. A miss is a
// plain exit-1 error with a message naming the tool, matching the
// original pre-flight contract.
func preflight(cfg *config.Config, withOBS bool) ([]toolCheck, error) {
	tools := requiredTools(cfg, withOBS)

	var missing []string
	for i := range tools {
		path, err := exec.LookPath(tools[i].Bin)
		if err != nil {
			missing = append(missing, tools[i].Bin)
			continue
		}
		tools[i].Path = path
	}

	if len(missing) > 0 {
		return tools, model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("required tool(s) not found in PATH: %s — install them and retry",
				strings.Join(missing, ", ")))
	}
	return tools, nil
}

// NewCheckCommand creates the "check" subcommand: preflight only, with a
// report of which binaries were found where.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that all required external tools are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
			}

			tools, err := preflight(cfg, true)
			if err != nil {
				return err
			}

			if IsJSONOutput() {
				data, _ := json.MarshalIndent(tools, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			fmt.Println("All required tools found:")
			for _, tool := range tools {
				fmt.Printf("  %-8s %s  (%s)\n", tool.Bin, tool.Path, tool.Purpose)
			}
			return nil
		},
	}
}
