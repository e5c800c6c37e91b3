// pattern: Imperative Shell
package cli

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"aaosbuild/internal/config"
	"aaosbuild/internal/manifest"
)

// RegisterManifestCommands registers commands for listing and checking manifests.
func RegisterManifestCommands(group *Group, env *Env) {
	group.AddCommand(&Command{
		Name:    "list",
		Summary: "List built-in and user manifests",
		Usage:   "Usage: aaosbuild manifest list",
		Run: func(args []string) error {
			for _, name := range manifest.Builtins() {
				fmt.Fprintf(env.stdout(), "%s (built-in)\n", name)
			}
			dir := config.ManifestsDir(env.ConfigDir)
			names, err := config.ListManifests(dir)
			if err != nil {
				return fmt.Errorf("list manifests in %s: %w", dir, err)
			}
			for _, name := range names {
				fmt.Fprintln(env.stdout(), name)
			}
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:    "show",
		Summary: "Print a manifest as YAML",
		Usage:   "Usage: aaosbuild manifest show [name-or-path]",
		Run: func(args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("usage: aaosbuild manifest show [name-or-path]")
			}
			ref := env.manifestRef()
			if len(args) == 1 {
				ref = config.ResolveManifest(env.ConfigDir, args[0])
			}
			m, err := manifest.Load(ref)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(env.stdout())
			enc.SetIndent(2)
			if err := enc.Encode(m); err != nil {
				return err
			}
			return enc.Close()
		},
	})

	group.AddCommand(&Command{
		Name:    "check",
		Summary: "Validate a manifest file",
		Usage:   "Usage: aaosbuild manifest check <name-or-path>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: aaosbuild manifest check <name-or-path>")
			}
			m, err := manifest.Load(config.ResolveManifest(env.ConfigDir, args[0]))
			if err != nil {
				return err
			}
			if _, err := m.Tree(); err != nil {
				return err
			}
			fmt.Fprintf(env.stdout(), "%s: %d projects ok\n", m.RootName, len(m.Projects))
			return nil
		},
	})
}
