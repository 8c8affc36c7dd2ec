// Package types defines the core types and interfaces used throughout datadeps.
// This includes the Dependency descriptor, the OneOrMany variant used for
// per-locator parameters, and the FS filesystem interface.
package types
