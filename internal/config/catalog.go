package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/hdf2obs/internal/model"
)

// catalogYAML is the built-in distribution catalog. Keeping it as a YAML
// document rather than Go literals makes the distribution data reviewable
// on its own and easy to extend with further targets.
//
//go:embed catalog.yaml
var catalogYAML []byte

// Catalog describes the supported target distributions.
type Catalog struct {
	// Distributions maps the -d flag value to its description.
	Distributions map[string]DistTarget `yaml:"distributions"`
}

// DistTarget describes how an OBS project is wired for one distribution:
// which base project the build repository layers on, which architecture is
// built, which bootloader packages are linked in, and which prjconf lines
// the project needs.
type DistTarget struct {
	// Repository is the name of the repository created in the project
	// meta (e.g., "standard").
	Repository string `yaml:"repository"`

	// BaseProject is the OBS project the repository path points at
	// (e.g., "openSUSE:Factory:ARM").
	BaseProject string `yaml:"baseProject"`

	// BaseRepository is the repository within BaseProject to layer on.
	BaseRepository string `yaml:"baseRepository"`

	// Arch is the build architecture, aarch64 for all MPSoC targets.
	Arch string `yaml:"arch"`

	// LinkPackages are packages linked from BaseProject into the
	// generated project (bootloader pieces the firmware images need).
	LinkPackages []string `yaml:"linkPackages"`

	// PrjconfLines are lines the project configuration must contain.
	// They are merged into an existing prjconf, never duplicated.
	PrjconfLines []string `yaml:"prjconfLines"`
}

// LoadCatalog parses the embedded distribution catalog.
func LoadCatalog() (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(catalogYAML, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse embedded distribution catalog: %w", err)
	}
	if len(cat.Distributions) == 0 {
		return nil, fmt.Errorf("embedded distribution catalog is empty")
	}
	return &cat, nil
}

// Target returns the catalog entry for a distribution. Every valid
// model.Distribution has an entry; a miss means the catalog and the
// Distribution enum have drifted apart.
func (c *Catalog) Target(dist model.Distribution) (DistTarget, error) {
	target, ok := c.Distributions[dist.String()]
	if !ok {
		return DistTarget{}, fmt.Errorf("distribution %q missing from catalog", dist)
	}
	return target, nil
}
