// run.go implements the root command's pipeline: artifact generation
// followed by the OBS project update.
package cli

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/hdf2obs/internal/compress"
	"github.com/mmr-tortoise/hdf2obs/internal/config"
	"github.com/mmr-tortoise/hdf2obs/internal/dts"
	"github.com/mmr-tortoise/hdf2obs/internal/eda"
	"github.com/mmr-tortoise/hdf2obs/internal/hdf"
	"github.com/mmr-tortoise/hdf2obs/internal/model"
	"github.com/mmr-tortoise/hdf2obs/internal/obs"
)

// updateFlags holds the root command's flag values.
type updateFlags struct {
	hdf     string // -H: hardware description file
	project string // -p: OBS project
	dist    string // -d: distribution
	force   bool   // -f: force regeneration and commit
}

// runUpdate is the orchestration for the root command. The sequence is
// strictly linear and fail-fast; the only cleanup is the deferred
// removal of the temporary work directory.
func runUpdate(ctx context.Context, flags *updateFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
	}

	dist, err := model.ParseDistribution(flags.dist)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid -d flag", err)
	}

	catalog, err := config.LoadCatalog()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "distribution catalog unusable", err)
	}
	target, err := catalog.Target(dist)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "distribution catalog unusable", err)
	}

	if err := hdf.Validate(flags.hdf); err != nil {
		return err
	}

	if _, err := preflight(cfg, true); err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "hdf2obs-")
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to create work directory", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()
	VerboseLog("Work directory: %s", workDir)

	design, artifacts, err := generateArtifacts(ctx, cfg, flags.hdf, workDir)
	if err != nil {
		return err
	}

	osc := obs.NewClient(cfg.OscBin, cfg.APIURL, VerboseLog)

	username, err := osc.Whois(ctx)
	if err != nil {
		return err
	}
	VerboseLog("OBS user: %s", username)

	project := flags.project
	if project == "" {
		project = cfg.ProjectFor(username)
	}
	VerboseLog("OBS project: %s", project)

	if err := updateProject(ctx, osc, project, username, design, target); err != nil {
		return err
	}

	committed, err := publishArtifacts(ctx, osc, workDir, project, design, artifacts, flags.force)
	if err != nil {
		return err
	}

	printResult(&model.BuildResult{
		Project:      project,
		Distribution: dist,
		Design:       *design,
		Artifacts:    artifacts,
		Committed:    committed,
	})
	return nil
}

// generateArtifacts runs the local half of the pipeline: copy the HDF
// into the work directory, unpack it, run the vendor tool once per
// artifact kind, patch the device tree, and compress everything.
//
// The HDF copy is deliberate: with a containerized EDA tool only the
// work directory is bind-mounted, so every path the batch scripts touch
// must live beneath it.
func generateArtifacts(ctx context.Context, cfg *config.Config, hdfPath, workDir string) (*model.HardwareDesign, []model.Artifact, error) {
	localHDF := filepath.Join(workDir, filepath.Base(hdfPath))
	if err := copyFile(hdfPath, localHDF); err != nil {
		return nil, nil, model.WrapCLIError(model.ExitHDFInvalid,
			fmt.Sprintf("failed to copy %s into the work directory", hdfPath), err)
	}

	unpackDir := filepath.Join(workDir, "hw")
	if err := os.MkdirAll(unpackDir, 0o755); err != nil {
		return nil, nil, model.WrapCLIError(model.ExitGeneralError, "failed to create unpack directory", err)
	}

	design, err := hdf.Unpack(ctx, cfg.UnzipBin, localHDF, unpackDir)
	if err != nil {
		return nil, nil, err
	}
	VerboseLog("Design %s (device %s, board %q)", design.Name, design.Device, design.Board)

	runner := &eda.Runner{
		XsctBin: cfg.XsctBin,
		Image:   cfg.EDAImage,
		DTRepo:  cfg.DeviceTreeRepo,
		WorkDir: workDir,
		Log:     VerboseLog,
	}

	var artifacts []model.Artifact
	for _, kind := range model.AllArtifactKinds() {
		path, err := runner.Generate(ctx, design, kind)
		if err != nil {
			return nil, nil, err
		}

		if kind == model.ArtifactDeviceTree {
			matched, err := dts.PatchFile(path, dts.DefaultRules())
			if err != nil {
				return nil, nil, err
			}
			VerboseLog("Patched device tree (%d rule(s) applied)", matched)
		}

		compressed, err := compress.XZ(ctx, cfg.XzBin, path)
		if err != nil {
			return nil, nil, err
		}

		sum, err := fileSHA256(compressed)
		if err != nil {
			return nil, nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to hash %s", compressed), err)
		}

		VerboseLog("Artifact %s ready: %s", kind, filepath.Base(compressed))
		artifacts = append(artifacts, model.Artifact{Kind: kind, Path: compressed, SHA256: sum})
	}

	return design, artifacts, nil
}

// updateProject brings the remote project meta, prjconf, and package
// links up to date. Each meta document goes through a read-modify-write
// cycle so content the tool does not own survives.
func updateProject(ctx context.Context, osc *obs.Client, project, username string, design *model.HardwareDesign, target config.DistTarget) error {
	existing, found, err := osc.GetProjectMeta(ctx, project)
	if err != nil {
		return err
	}

	var meta *obs.ProjectMeta
	if found {
		meta, err = obs.ParseProjectMeta(existing)
		if err != nil {
			return err
		}
		VerboseLog("Updating existing project %s", project)
	} else {
		meta = obs.NewProjectMeta(project, username, design)
		VerboseLog("Creating project %s", project)
	}

	meta.EnsurePerson(username)
	meta.EnsureRepository(target.Repository, target.BaseProject, target.BaseRepository, target.Arch)

	rendered, err := meta.Render()
	if err != nil {
		return err
	}
	if err := osc.SetProjectMeta(ctx, project, rendered); err != nil {
		return err
	}

	conf, _, err := osc.GetPrjconf(ctx, project)
	if err != nil {
		return err
	}
	if merged, changed := obs.MergePrjconf(conf, target.PrjconfLines); changed {
		VerboseLog("Updating prjconf")
		if err := osc.SetPrjconf(ctx, project, merged); err != nil {
			return err
		}
	}

	for _, pkg := range target.LinkPackages {
		VerboseLog("Linking %s from %s", pkg, target.BaseProject)
		if err := osc.Linkpac(ctx, target.BaseProject, pkg, project); err != nil {
			return err
		}
	}

	return nil
}

// publishArtifacts checks each compressed artifact into its package.
// Unchanged content is skipped unless force is set, keeping repeated
// runs from producing empty-diff commits.
func publishArtifacts(ctx context.Context, osc *obs.Client, workDir, project string, design *model.HardwareDesign, artifacts []model.Artifact, force bool) ([]string, error) {
	checkoutDir := filepath.Join(workDir, "co")
	if err := os.MkdirAll(checkoutDir, 0o755); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to create checkout directory", err)
	}

	var committed []string
	for _, artifact := range artifacts {
		pkg := artifact.Kind.PackageName()

		pkgMeta, err := obs.NewPackageMeta(project, artifact.Kind, design).Render()
		if err != nil {
			return nil, err
		}
		if err := osc.SetPackageMeta(ctx, project, pkg, pkgMeta); err != nil {
			return nil, err
		}

		pkgDir, err := osc.Checkout(ctx, checkoutDir, project, pkg)
		if err != nil {
			return nil, err
		}

		dest := filepath.Join(pkgDir, filepath.Base(artifact.Path))
		if !force {
			if sum, err := fileSHA256(dest); err == nil && sum == artifact.SHA256 {
				VerboseLog("Package %s unchanged, skipping commit", pkg)
				continue
			}
		}

		if err := copyFile(artifact.Path, dest); err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to place %s into package %s", filepath.Base(artifact.Path), pkg), err)
		}

		if err := osc.Add(ctx, pkgDir, filepath.Base(dest)); err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("Update %s from %s", artifact.Kind, filepath.Base(design.HDFPath))
		if err := osc.Commit(ctx, pkgDir, msg); err != nil {
			return nil, err
		}

		VerboseLog("Committed %s", pkg)
		committed = append(committed, pkg)
	}

	return committed, nil
}

// printResult outputs the run summary in text or JSON format.
func printResult(result *model.BuildResult) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	if result.Project != "" {
		fmt.Printf("Project %s updated for %s\n", result.Project, result.Distribution)
	} else {
		fmt.Println("Artifacts generated")
	}
	fmt.Printf("  Design:  %s (device %s)\n", result.Design.Name, result.Design.Device)
	fmt.Println("  Artifacts:")
	for _, artifact := range result.Artifacts {
		fmt.Printf("    %-12s %s\n", artifact.Kind, filepath.Base(artifact.Path))
	}
	if result.Project == "" {
		return
	}
	if len(result.Committed) > 0 {
		fmt.Printf("  Committed: %v\n", result.Committed)
	} else {
		fmt.Println("  Committed: nothing (all packages up to date)")
	}
}

// copyFile copies src to dst, creating or truncating dst with 0644.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// fileSHA256 returns the hex digest of a file's contents.
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
