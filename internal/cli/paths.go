// pattern: Imperative Shell
package cli

import (
	"fmt"
)

// RegisterPathsCommands registers the locations derived from the output root.
func RegisterPathsCommands(group *Group, env *Env) {
	group.AddCommand(&Command{
		Name:    "cmake",
		Summary: "Print the CMake staging directory of a project",
		Usage:   "Usage: aaosbuild paths cmake <gradle-path>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: aaosbuild paths cmake <gradle-path>")
			}
			r, err := env.Resolve()
			if err != nil {
				return err
			}
			n, err := r.node(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(env.stdout(), r.Builder.CMakeStagingDir(n.Name))
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:    "m2repo",
		Summary: "Print the local Maven repository used for publishing",
		Usage:   "Usage: aaosbuild paths m2repo",
		Run: func(args []string) error {
			r, err := env.Resolve()
			if err != nil {
				return err
			}
			fmt.Fprintln(env.stdout(), r.Builder.LocalMavenRepo())
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:    "stubs",
		Summary: "Print the system SDK stubs jar for an SDK version",
		Usage:   "Usage: aaosbuild paths stubs <sdk>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: aaosbuild paths stubs <sdk>")
			}
			// The stubs live in the checkout, wherever OUT_DIR points.
			r, err := env.withoutOutDir().Resolve()
			if err != nil {
				return err
			}
			jar, err := r.Builder.SystemStubsJar(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(env.stdout(), jar)
			return nil
		},
	})
}
