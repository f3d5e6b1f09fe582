// Package model defines the domain types shared across the hdf2obs CLI:
// target distributions, artifact kinds, build results, and the CLIError
// type that carries process exit codes.
//
// The types here are transient — nothing is persisted locally. The only
// durable state the tool produces lives in the remote OBS project, which
// is always re-read before being modified.
package model
