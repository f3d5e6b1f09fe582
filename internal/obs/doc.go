// Package obs wraps the OBS command-line client (osc) for the handful of
// operations the tool needs: account lookup, project and package meta
// read-modify-write, package linking, and the checkout/add/commit cycle.
//
// Everything remote goes through osc subprocesses. The OBS HTTP API is
// deliberately not spoken directly — osc owns credentials, API routing,
// and the working-copy format, and reimplementing any of that is out of
// scope for this tool.
package obs
