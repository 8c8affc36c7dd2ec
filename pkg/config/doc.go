// Package config loads datadeps runtime settings and dependency
// manifests.
//
// Settings are read once from the environment and passed explicitly
// through the resolution call chain; nothing in the core consults the
// environment at decision time. Manifests declare dependencies in a
// datadeps.toml (or .yaml) file and feed the registry.
package config
