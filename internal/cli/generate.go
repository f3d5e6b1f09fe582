// generate.go implements the "hdf2obs generate" subcommand: the local
// half of the pipeline, producing compressed artifacts into a directory
// without touching OBS.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/hdf2obs/internal/config"
	"github.com/mmr-tortoise/hdf2obs/internal/hdf"
	"github.com/mmr-tortoise/hdf2obs/internal/model"
)

// generateFlags holds the generate subcommand's flag values.
type generateFlags struct {
	hdf    string // -H: hardware description file
	output string // -o: destination directory for the artifacts
}

// NewGenerateCommand creates the "generate" subcommand.
func NewGenerateCommand() *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the board artifacts locally without updating OBS",
		Long: `Generate the first-stage bootloader, PMU firmware, and device tree from
a hardware description file and place the compressed artifacts in the
output directory. No OBS access is needed or performed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.hdf, "hdf", "H", "", "Hardware description file (required)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", ".", "Output directory for the artifacts")

	return cmd
}

// runGenerate validates inputs, runs the artifact generation in a
// temporary work directory, and moves the results to the output dir.
func runGenerate(ctx context.Context, flags *generateFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
	}

	if err := hdf.Validate(flags.hdf); err != nil {
		return err
	}

	if _, err := preflight(cfg, false); err != nil {
		return err
	}

	outDir, err := filepath.Abs(flags.output)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve output directory", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to create output directory", err)
	}

	workDir, err := os.MkdirTemp("", "hdf2obs-")
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to create work directory", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	design, artifacts, err := generateArtifacts(ctx, cfg, flags.hdf, workDir)
	if err != nil {
		return err
	}

	// Move the compressed artifacts out of the doomed work directory.
	for i := range artifacts {
		dest := filepath.Join(outDir, filepath.Base(artifacts[i].Path))
		if err := copyFile(artifacts[i].Path, dest); err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to place artifact in %s", outDir), err)
		}
		artifacts[i].Path = dest
	}

	printResult(&model.BuildResult{
		Design:    *design,
		Artifacts: artifacts,
	})
	return nil
}
