package datadeps

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Resolve data dependencies to local paths"
	MsgResolveShort    = "Resolve a dependency name to a local path"
	MsgFetchShort      = "Download dependencies without resolving a path"
	MsgListShort       = "List registered data dependencies"
	MsgListLong        = "List displays every registered data dependency and whether a local copy exists."
	MsgPurgeShort      = "Delete the local copy of dependencies"
	MsgInitShort       = "Write a sample dependency manifest"
	MsgCompletionShort = "Generate shell completion script"
	MsgVersionShort    = "Print version information"

	// Status messages
	MsgNoDependencies = "No data dependencies registered."
	MsgFetched        = "✔ %s downloaded to %s\n"
	MsgAlreadyLocal   = "%s is already present at %s (use --force to re-download)\n"
	MsgPurged         = "✔ %s removed from %s\n"
	MsgNoLocalCopy    = "%s has no local copy\n"
	MsgManifestExists = "refusing to overwrite existing manifest at %s"
	MsgWroteManifest  = "Wrote sample manifest to %s\n"

	// Error messages
	MsgErrLoadSettings = "failed to load settings: %w"
	MsgErrLoadManifest = "failed to load manifest: %w"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagManifest   = "Load dependency declarations from a manifest file"
	MsgFlagYes        = "Accept all download terms without prompting"
	MsgFlagNoChecksum = "Skip checksum verification after download"
	MsgFlagForce      = "Re-download even if a local copy exists"
	MsgFlagFormat     = "Output format: term or yaml"
)

// Long messages
const (
	MsgRootLong = `datadeps resolves symbolic dataset names to local file paths.

A dependency that is not present locally is downloaded on first use:
datadeps asks for terms acceptance, fetches the data, verifies its
checksum and runs any post-fetch steps, then returns the local path.
Subsequent resolutions find the local copy and stay offline.`

	MsgResolveLong = `Resolve prints the local path for a dependency name, downloading the
dependency first when no local copy exists.

The name may carry an inner path into the dependency directory:

  datadeps resolve iris/iris.csv`
)
