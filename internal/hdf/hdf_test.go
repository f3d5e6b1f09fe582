package hdf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/hdf2obs/internal/model"
)

// TestValidate_MissingPath verifies the exit-code-1 contract for the
// missing mandatory -H input.
func TestValidate_MissingPath(t *testing.T) {
	err := Validate("")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	assert.Contains(t, cliErr.Message, "-H")
}

// TestValidate_NotFound verifies that a nonexistent file is classified
// as an invalid HDF, not a usage error.
func TestValidate_NotFound(t *testing.T) {
	err := Validate(filepath.Join(t.TempDir(), "board.hdf"))
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitHDFInvalid, cliErr.Code)
}

// TestValidate_WrongExtension verifies the extension check; the check is
// case-insensitive because the vendor tool writes .HDF on some hosts.
func TestValidate_WrongExtension(t *testing.T) {
	dir := t.TempDir()

	bit := filepath.Join(dir, "design.bit")
	require.NoError(t, os.WriteFile(bit, []byte("x"), 0o644))
	err := Validate(bit)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected .hdf")

	upper := filepath.Join(dir, "design.HDF")
	require.NoError(t, os.WriteFile(upper, []byte("x"), 0o644))
	assert.NoError(t, Validate(upper))
}

// TestValidate_Directory verifies that a directory is rejected.
func TestValidate_Directory(t *testing.T) {
	dir := t.TempDir()
	err := Validate(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

// TestReadSysdef verifies manifest parsing against a representative
// sysdef.xml as written by the vendor tool.
func TestReadSysdef(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysdef.xml")
	content := `<?xml version="1.0" encoding="UTF-8"?>
<Project Version="2" Minor="2" Path="/home/user/project/design_1_wrapper.hdf">
  <SystemInfo Name="design_1_wrapper.hwdef" Device="xczu9eg" Family="zynquplus" BoardName="zcu102" Vendor="xilinx.com"/>
</Project>
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	design, err := readSysdef(path)
	require.NoError(t, err)

	assert.Equal(t, "design_1_wrapper", design.Name, "hwdef suffix is stripped")
	assert.Equal(t, "xczu9eg", design.Device)
	assert.Equal(t, "zynquplus", design.Family)
	assert.Equal(t, "zcu102", design.Board)
}

// TestReadSysdef_Missing verifies that a container without sysdef.xml is
// rejected with the HDF-invalid classification.
func TestReadSysdef_Missing(t *testing.T) {
	_, err := readSysdef(filepath.Join(t.TempDir(), "sysdef.xml"))
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitHDFInvalid, cliErr.Code)
	assert.Contains(t, cliErr.Message, "sysdef.xml")
}

// TestReadSysdef_NoDesignName verifies the empty-manifest guard.
func TestReadSysdef_NoDesignName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysdef.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<Project Version="2"/>`), 0o644))

	_, err := readSysdef(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "names no design")
}
