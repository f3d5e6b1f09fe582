// meta.go defines the OBS meta XML documents and the merge helpers used
// by the read-modify-write cycle. Existing repositories, persons, and
// descriptions that this tool did not create are preserved; only the
// pieces the tool owns are added or updated.
package obs

import (
	"encoding/xml"
	"fmt"

	"github.com/mmr-tortoise/hdf2obs/internal/model"
)

// ProjectMeta models the OBS project meta document:
//
//	<project name="home:alice:hardware:mpsoc">
//	  <title>...</title>
//	  <description>...</description>
//	  <person userid="alice" role="maintainer"/>
//	  <repository name="standard">
//	    <path project="openSUSE:Factory:ARM" repository="standard"/>
//	    <arch>aarch64</arch>
//	  </repository>
//	</project>
type ProjectMeta struct {
	XMLName      xml.Name     `xml:"project"`
	Name         string       `xml:"name,attr"`
	Title        string       `xml:"title"`
	Description  string       `xml:"description"`
	Persons      []Person     `xml:"person"`
	Repositories []Repository `xml:"repository"`
}

// Person is a project role assignment.
type Person struct {
	UserID string `xml:"userid,attr"`
	Role   string `xml:"role,attr"`
}

// Repository is a build repository layered on base project paths.
type Repository struct {
	Name   string     `xml:"name,attr"`
	Paths  []RepoPath `xml:"path"`
	Arches []string   `xml:"arch"`
}

// RepoPath points a repository at a base project's repository.
type RepoPath struct {
	Project    string `xml:"project,attr"`
	Repository string `xml:"repository,attr"`
}

// PackageMeta models the OBS package meta document.
type PackageMeta struct {
	XMLName     xml.Name `xml:"package"`
	Name        string   `xml:"name,attr"`
	Project     string   `xml:"project,attr"`
	Title       string   `xml:"title"`
	Description string   `xml:"description"`
}

// ParseProjectMeta decodes a project meta document fetched via osc.
func ParseProjectMeta(data string) (*ProjectMeta, error) {
	var meta ProjectMeta
	if err := xml.Unmarshal([]byte(data), &meta); err != nil {
		return nil, model.WrapCLIError(model.ExitOBSFailed, "failed to parse project meta XML", err)
	}
	return &meta, nil
}

// NewProjectMeta builds the meta for a project that does not exist yet.
func NewProjectMeta(project, username string, design *model.HardwareDesign) *ProjectMeta {
	return &ProjectMeta{
		Name:  project,
		Title: fmt.Sprintf("Boot firmware for %s", designLabel(design)),
		Description: fmt.Sprintf(
			"Bootloader, PMU firmware and device tree for the %s design (device %s), generated from the vendor hardware description file.",
			design.Name, design.Device),
		Persons: []Person{{UserID: username, Role: "maintainer"}},
	}
}

// EnsurePerson adds a maintainer role for the user unless one is already
// present. Other persons and roles are left alone.
func (m *ProjectMeta) EnsurePerson(username string) {
	for _, p := range m.Persons {
		if p.UserID == username && p.Role == "maintainer" {
			return
		}
	}
	m.Persons = append(m.Persons, Person{UserID: username, Role: "maintainer"})
}

// EnsureRepository adds or updates the build repository for the selected
// distribution. A repository with the same name is updated in place so a
// -d switch retargets the existing repository; repositories under other
// names (for example, a second distribution added by hand) are preserved.
func (m *ProjectMeta) EnsureRepository(name, baseProject, baseRepository, arch string) {
	repo := Repository{
		Name:   name,
		Paths:  []RepoPath{{Project: baseProject, Repository: baseRepository}},
		Arches: []string{arch},
	}

	for i := range m.Repositories {
		if m.Repositories[i].Name == name {
			m.Repositories[i] = repo
			return
		}
	}
	m.Repositories = append(m.Repositories, repo)
}

// Render serializes the project meta with the XML header and indentation
// osc itself uses, keeping server-side diffs readable.
func (m *ProjectMeta) Render() (string, error) {
	out, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", model.WrapCLIError(model.ExitOBSFailed, "failed to serialize project meta", err)
	}
	return xml.Header + string(out) + "\n", nil
}

// NewPackageMeta builds the meta for one artifact package.
func NewPackageMeta(project string, kind model.ArtifactKind, design *model.HardwareDesign) *PackageMeta {
	var title, desc string
	switch kind {
	case model.ArtifactFSBL:
		title = "First-stage bootloader"
		desc = "FSBL built from the hardware description file, runs on psu_cortexa53_0."
	case model.ArtifactPMUFW:
		title = "Platform management unit firmware"
		desc = "PMU firmware built from the hardware description file, runs on psu_pmu_0."
	case model.ArtifactDeviceTree:
		title = "Device tree"
		desc = "Device-tree source generated from the hardware description file."
	}

	return &PackageMeta{
		Name:        kind.PackageName(),
		Project:     project,
		Title:       fmt.Sprintf("%s for %s", title, designLabel(design)),
		Description: desc,
	}
}

// Render serializes the package meta document.
func (m *PackageMeta) Render() (string, error) {
	out, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", model.WrapCLIError(model.ExitOBSFailed, "failed to serialize package meta", err)
	}
	return xml.Header + string(out) + "\n", nil
}

// designLabel prefers the board name over the raw design name for titles.
func designLabel(design *model.HardwareDesign) string {
	if design.Board != "" {
		return design.Board
	}
	return design.Name
}
