// Package eda drives the vendor batch tool (xsct) that turns a hardware
// design into the three board artifacts: first-stage bootloader, platform
// management unit firmware, and device-tree source.
//
// For each artifact kind a small Tcl batch script is rendered from a
// template and fed to xsct, which blocks until the artifact is built.
// The tool either runs from the local installation or, when the config
// names an EDA container image, inside a container with the work
// directory bind-mounted.
package eda
