package datadeps

import (
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/datadeps/pkg/acquire"
	"github.com/arthur-debert/datadeps/pkg/config"
	"github.com/arthur-debert/datadeps/pkg/fetch/httpfetch"
	"github.com/arthur-debert/datadeps/pkg/filesystem"
	"github.com/arthur-debert/datadeps/pkg/paths"
	"github.com/arthur-debert/datadeps/pkg/postfetch"
	"github.com/arthur-debert/datadeps/pkg/registry"
	"github.com/arthur-debert/datadeps/pkg/resolver"
	"github.com/arthur-debert/datadeps/pkg/types"
	"github.com/arthur-debert/datadeps/pkg/ui"
)

// session bundles the pieces every command needs: settings from the
// environment, the dependency registry (with manifest entries merged
// in), and a resolver over the OS filesystem.
type session struct {
	settings *config.Settings
	registry registry.Registry[*types.Dependency]
	fs       types.FS
	resolver *resolver.Resolver
}

func newSession(cmd *cobra.Command) (*session, error) {
	settings, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadSettings, err)
	}

	reg := registry.Dependencies()
	if manifest, _ := cmd.Root().PersistentFlags().GetString("manifest"); manifest != "" {
		deps, err := config.LoadManifest(manifest, httpfetch.Default(), postfetch.Unpack)
		if err != nil {
			return nil, fmt.Errorf(MsgErrLoadManifest, err)
		}
		for _, dep := range deps {
			if err := reg.Register(dep.Name, dep); err != nil {
				return nil, err
			}
		}
	}

	fs := filesystem.NewOS()
	return &session{
		settings: settings,
		registry: reg,
		fs:       fs,
		resolver: resolver.New(reg, fs, ui.Default(), settings),
	}, nil
}

func acquireOptions(cmd *cobra.Command) acquire.Options {
	yes, _ := cmd.Root().PersistentFlags().GetBool("yes")
	skip, _ := cmd.Root().PersistentFlags().GetBool("no-checksum")
	opts := acquire.Options{SkipChecksum: skip}
	if yes {
		accept := true
		opts.Accept = &accept
	}
	return opts
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "resolve <name[/path]>",
		Short:   MsgResolveShort,
		Long:    MsgResolveLong,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			path, err := s.resolver.ResolveWith(cmd.Context(), args[0], acquireOptions(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newFetchCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "fetch <name>...",
		Short:   MsgFetchShort,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			pipeline := acquire.NewPipeline(s.fs, ui.Default(), s.settings)
			opts := acquireOptions(cmd)

			for _, name := range args {
				dep, err := registry.LookupDependency(s.registry, name)
				if err != nil {
					return err
				}
				if dir, ok := paths.Probe(s.fs, s.settings, name); ok {
					if !force {
						fmt.Fprintf(cmd.OutOrStdout(), MsgAlreadyLocal, name, dir)
						continue
					}
					if err := s.fs.RemoveAll(dir); err != nil {
						return err
					}
				}
				dir := paths.TargetDir(s.settings, name)
				if err := pipeline.Acquire(cmd.Context(), dep, dir, opts); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), MsgFetched, name, dir)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}

var (
	listNameStyle    = lipgloss.NewStyle().Bold(true)
	listPresentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	listAbsentStyle  = lipgloss.NewStyle().Faint(true)
)

// listEntry is the machine-readable row emitted by list --format yaml
type listEntry struct {
	Name     string   `yaml:"name"`
	Locators []string `yaml:"locators"`
	Present  bool     `yaml:"present"`
	Path     string   `yaml:"path,omitempty"`
}

func newListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		Long:    MsgListLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}

			names := s.registry.List()
			sort.Strings(names)

			entries := make([]listEntry, 0, len(names))
			for _, name := range names {
				dep, err := registry.LookupDependency(s.registry, name)
				if err != nil {
					return err
				}
				entry := listEntry{Name: name, Locators: dep.Locators}
				if dir, ok := paths.Probe(s.fs, s.settings, name); ok {
					entry.Present = true
					entry.Path = dir
				}
				entries = append(entries, entry)
			}

			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				return yaml.NewEncoder(out).Encode(entries)
			case "term":
				if len(entries) == 0 {
					fmt.Fprintln(out, MsgNoDependencies)
					return nil
				}
				for _, entry := range entries {
					status := listAbsentStyle.Render("not downloaded")
					if entry.Present {
						status = listPresentStyle.Render(entry.Path)
					}
					fmt.Fprintf(out, "%s  %s\n", listNameStyle.Render(entry.Name), status)
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q, want term or yaml", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "term", MsgFlagFormat)
	return cmd
}

func newPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "purge <name>...",
		Short:   MsgPurgeShort,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			for _, name := range args {
				if _, err := registry.LookupDependency(s.registry, name); err != nil {
					return err
				}
				dir, ok := paths.Probe(s.fs, s.settings, name)
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), MsgNoLocalCopy, name)
					continue
				}
				if err := s.fs.RemoveAll(dir); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), MsgPurged, name, dir)
			}
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "init [path]",
		Short:   MsgInitShort,
		GroupID: "misc",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "datadeps.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf(MsgManifestExists, path)
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			if err := config.WriteSampleManifest(f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgWroteManifest, path)
			return nil
		},
	}
}
