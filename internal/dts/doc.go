// Package dts post-processes the device-tree source emitted by the
// vendor generator so it builds inside the distribution's device-tree
// packaging. The fixups are ordered text substitutions plus the
// /dts-v1/; version prologue the generator omits.
package dts
