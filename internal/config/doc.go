// Package config loads the hdf2obs tool configuration.
//
// Two sources exist:
//   - an optional user config file in JSONC (JSON with comments), looked
//     up under the XDG config directory, which overrides tool paths and
//     OBS defaults;
//   - the built-in distribution catalog, a YAML document compiled into
//     the binary, describing the supported target distributions.
package config
