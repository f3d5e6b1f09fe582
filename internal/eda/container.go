// container.go implements the containerized execution mode for the vendor
// batch tool. Sites that do not install the multi-gigabyte EDA suite on
// every build host publish it as a container image instead; when the
// config names such an image, each batch script runs in a fresh container
// with the work directory bind-mounted.
//
// The Docker SDK is used for daemon/image verification (socket detection,
// ping, image lookup), while the actual run goes through "docker run"
// because the CLI handles TTY allocation and image pulls for us.
package eda

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"

	"github.com/mmr-tortoise/hdf2obs/internal/model"
)

// containerWorkDir is where the run's work directory appears inside the
// EDA container.
const containerWorkDir = "/work"

// containerDTRepo is where EDA images bundle the device-tree generator
// repository. Images built for this tool are expected to provide it.
const containerDTRepo = "/opt/device-tree-xlnx"

// daemonPingTimeout bounds the daemon liveness probe.
const daemonPingTimeout = 5 * time.Second

// runInContainer executes one rendered batch script inside the configured
// EDA image. The work directory (scripts, unpacked design, output dirs)
// is bind-mounted read-write at /work.
func (r *Runner) runInContainer(ctx context.Context, scriptPath string) error {
	if err := verifyImage(ctx, r.Image); err != nil {
		return err
	}

	args := []string{
		"run", "--rm",
		"-v", r.WorkDir + ":" + containerWorkDir,
		r.Image,
		"xsct", containerPath(r.WorkDir, scriptPath),
	}

	cmd := exec.CommandContext(ctx, "docker", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return model.WrapCLIError(model.ExitEDAFailed,
			fmt.Sprintf("containerized xsct failed in image %s: %s", r.Image, tail(string(output))), err)
	}
	return nil
}

// containerPath translates a host path under the work directory into its
// in-container location. Paths outside the work directory have no mount
// and cannot be translated; the pipeline copies the HDF into the work
// directory up front to guarantee every relevant path is covered.
func containerPath(workDir, hostPath string) string {
	rel, err := filepath.Rel(workDir, hostPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return hostPath
	}
	return filepath.ToSlash(filepath.Join(containerWorkDir, rel))
}

// verifyImage checks that the Docker daemon is reachable and the EDA
// image is present locally. Failing early with a clear message beats a
// multi-minute implicit pull of an image that may not exist.
func verifyImage(ctx context.Context, ref string) error {
	cli, err := newDockerClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, daemonPingTimeout)
	defer cancel()
	if _, err := cli.Ping(pingCtx); err != nil {
		return model.WrapCLIError(model.ExitEDAFailed,
			"Docker daemon is not responding — is Docker running?", err)
	}

	images, err := cli.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", ref)),
	})
	if err != nil {
		return model.WrapCLIError(model.ExitEDAFailed, "failed to query Docker images", err)
	}
	if len(images) == 0 {
		return model.NewCLIError(model.ExitEDAFailed,
			fmt.Sprintf("EDA image %q not found locally — pull it first", ref))
	}
	return nil
}

// newDockerClient creates a Docker SDK client, honoring DOCKER_HOST and
// falling back to platform socket detection.
func newDockerClient() (*client.Client, error) {
	host := os.Getenv("DOCKER_HOST")
	if host == "" {
		detected, err := detectDockerHost()
		if err != nil {
			return nil, model.WrapCLIError(model.ExitEDAFailed, "Docker socket not found", err)
		}
		host = detected
	}

	cli, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitEDAFailed,
			fmt.Sprintf("failed to create Docker client for host %q", host), err)
	}
	return cli, nil
}

// detectDockerHost probes the platform's known Docker socket locations
// and returns the connection string for the first one that exists.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return detectUnixSocket([]string{"/var/run/docker.sock"})

	case "darwin":
		// Docker Desktop sometimes only creates the per-user socket.
		paths := []string{"/var/run/docker.sock"}
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, home+"/.docker/run/docker.sock")
		}
		return detectUnixSocket(paths)

	case "windows":
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, 1*time.Second)
		if err != nil {
			return "", fmt.Errorf("Docker named pipe not found at %s: %w", pipePath, err)
		}
		conn.Close()
		return "npipe://" + pipePath, nil

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket returns the host URI for the first socket path that
// exists. Existence does not guarantee the daemon answers; Ping does.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v — is Docker running?", paths)
}
