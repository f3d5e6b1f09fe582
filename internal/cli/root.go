// Package cli implements the cobra commands for hdf2obs.
//
// The root command runs the whole pipeline: unpack the hardware
// description file, generate the three board artifacts with the vendor
// batch tool, patch the device tree, compress, and create or update the
// OBS project. The generate and check subcommands expose the local half
// of the pipeline and the tool preflight on their own.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/hdf2obs/internal/model"
)

// Global flag variables bound to cobra persistent flags on the root
// command, available in every subcommand.
var (
	// jsonOutput switches successful command output to JSON.
	jsonOutput bool

	// verbose enables the command trace and progress messages on stderr.
	verbose bool
)

// version, commit, and date are set at build time via ldflags and
// injected from the main package.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// Unlike a pure command dispatcher, the root command itself is runnable:
// `hdf2obs -H board.hdf` performs the full OBS update, preserving the
// original single-command flag surface (-H, -p, -d, -f).
func NewRootCommand() *cobra.Command {
	flags := &updateFlags{}

	rootCmd := &cobra.Command{
		Use:   "hdf2obs",
		Short: "Create or update an OBS project from a Zynq MPSoC hardware description file",
		Long: `hdf2obs turns a hardware description file exported by the vendor EDA tool
into an Open Build Service project for the board: it generates the
first-stage bootloader, the PMU firmware, and the device tree with the
vendor batch tool, compresses them, and checks them into per-artifact
OBS packages with the project meta updated to build against the selected
distribution.

Examples:
  hdf2obs -H design_1_wrapper.hdf
  hdf2obs -H board.hdf -p home:alice:zcu102 -d leap15
  hdf2obs -H board.hdf -f`,

		// SilenceUsage prevents cobra from printing usage on every error;
		// SilenceErrors lets Execute format errors itself (text or JSON).
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), flags)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.Flags().StringVarP(&flags.hdf, "hdf", "H", "", "Hardware description file (required)")
	rootCmd.Flags().StringVarP(&flags.project, "project", "p", "", "OBS project (default: home:<user>:hardware:mpsoc)")
	rootCmd.Flags().StringVarP(&flags.dist, "dist", "d", "tumbleweed", "Distribution: tumbleweed, sles15, leap15")
	rootCmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Force regeneration and commit even when artifacts are unchanged")

	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewCheckCommand())

	return rootCmd
}

// Execute runs the root command and translates errors into exit codes.
// CLIError values carry their own code; anything else exits 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error in the format selected by --json.
// Errors always go to stderr; stdout is reserved for command output.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a progress message to stderr when --verbose is set.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
