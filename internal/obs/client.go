package obs

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/hdf2obs/internal/model"
)

// Client invokes osc subcommands. It is a thin subprocess wrapper;
// authentication and API routing stay in the user's osc configuration.
type Client struct {
	// OscBin is the osc binary to invoke. Usually just "osc".
	OscBin string

	// APIURL, when non-empty, is passed as osc -A to address a
	// non-default OBS instance.
	APIURL string

	// Log receives the command trace when verbose output is on.
	Log func(format string, args ...interface{})
}

// NewClient creates an osc client.
func NewClient(oscBin, apiURL string, log func(string, ...interface{})) *Client {
	return &Client{OscBin: oscBin, APIURL: apiURL, Log: log}
}

// Whois returns the OBS account name of the configured user, parsed from
// `osc whois` output of the form:
//
//	alice: "Alice Example" <alice@example.com>
func (c *Client) Whois(ctx context.Context) (string, error) {
	output, err := c.run(ctx, "", nil, "whois")
	if err != nil {
		return "", err
	}

	user, _, found := strings.Cut(strings.TrimSpace(output), ":")
	user = strings.TrimSpace(user)
	if !found || user == "" {
		return "", model.NewCLIError(model.ExitOBSFailed,
			fmt.Sprintf("could not parse osc whois output: %q", strings.TrimSpace(output)))
	}
	return user, nil
}

// GetProjectMeta fetches the project meta XML. A project that does not
// exist yet is not an error: found is false and meta is empty, so the
// caller starts its read-modify-write cycle from a fresh template.
func (c *Client) GetProjectMeta(ctx context.Context, project string) (meta string, found bool, err error) {
	output, err := c.run(ctx, "", nil, "meta", "prj", project)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return output, true, nil
}

// SetProjectMeta uploads project meta XML, creating the project when it
// does not exist. The XML is fed through stdin (-F -) so no temp file
// with credentials-adjacent content lands on disk.
func (c *Client) SetProjectMeta(ctx context.Context, project, metaXML string) error {
	_, err := c.run(ctx, "", []byte(metaXML), "meta", "prj", "-F", "-", project)
	return err
}

// GetPrjconf fetches the project configuration text. Like project meta,
// a missing project yields found=false rather than an error.
func (c *Client) GetPrjconf(ctx context.Context, project string) (conf string, found bool, err error) {
	output, err := c.run(ctx, "", nil, "meta", "prjconf", project)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return output, true, nil
}

// SetPrjconf uploads the project configuration text via stdin.
func (c *Client) SetPrjconf(ctx context.Context, project, conf string) error {
	_, err := c.run(ctx, "", []byte(conf), "meta", "prjconf", "-F", "-", project)
	return err
}

// Linkpac links a package from a source project into the target project.
// An already-existing link is fine: osc fails with "already exists", which
// is swallowed because the link being present is the desired state.
func (c *Client) Linkpac(ctx context.Context, srcProject, pkg, dstProject string) error {
	_, err := c.run(ctx, "", nil, "linkpac", srcProject, pkg, dstProject)
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return nil
	}
	return err
}

// SetPackageMeta uploads package meta XML, creating the package when it
// does not exist.
func (c *Client) SetPackageMeta(ctx context.Context, project, pkg, metaXML string) error {
	_, err := c.run(ctx, "", []byte(metaXML), "meta", "pkg", "-F", "-", project, pkg)
	return err
}

// Checkout checks out a package working copy under workDir and returns
// the package directory (workDir/<project>/<package>).
func (c *Client) Checkout(ctx context.Context, workDir, project, pkg string) (string, error) {
	if _, err := c.run(ctx, workDir, nil, "checkout", project, pkg); err != nil {
		return "", err
	}
	return filepath.Join(workDir, project, pkg), nil
}

// Add marks files in a package working copy for addition. Already
// tracked files are skipped by osc itself.
func (c *Client) Add(ctx context.Context, pkgDir string, files ...string) error {
	args := append([]string{"add"}, files...)
	_, err := c.run(ctx, pkgDir, nil, args...)
	return err
}

// Commit commits the package working copy with the given message.
func (c *Client) Commit(ctx context.Context, pkgDir, message string) error {
	_, err := c.run(ctx, pkgDir, nil, "commit", "-m", message)
	return err
}

// run executes osc with the given arguments. dir sets the working
// directory when non-empty; stdin, when non-nil, is fed to the process.
// On failure the stderr tail is folded into the returned CLIError.
func (c *Client) run(ctx context.Context, dir string, stdin []byte, args ...string) (string, error) {
	fullArgs := c.buildArgs(args)

	if c.Log != nil {
		c.Log("osc %s", strings.Join(fullArgs, " "))
	}

	cmd := exec.CommandContext(ctx, c.OscBin, fullArgs...)
	if dir != "" {
		cmd.Dir = dir
	}
	if stdin != nil {
		cmd.Stdin = strings.NewReader(string(stdin))
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("osc %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitOBSFailed, message, err)
	}

	return stdout.String(), nil
}

// buildArgs prepends the -A flag when an API URL override is configured.
// Split out for testability.
func (c *Client) buildArgs(args []string) []string {
	if c.APIURL == "" {
		return args
	}
	return append([]string{"-A", c.APIURL}, args...)
}

// isNotFound reports whether an osc failure is a missing project or
// package (HTTP 404). osc prints the status code on its stderr, which
// run folds into the error message.
func isNotFound(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "404") || strings.Contains(msg, "does not exist")
}
