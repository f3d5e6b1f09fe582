// Package hdf handles the hardware description file exported by the
// vendor EDA tool. An HDF is a zip container holding the hardware
// handoff (.hwdef/bitstream data) plus a sysdef.xml manifest describing
// the design. The package validates the input, extracts the container
// with the unzip tool, and reads the design metadata from the manifest.
package hdf
