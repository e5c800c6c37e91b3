// pattern: Imperative Shell
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"aaosbuild/internal/layout"
	"aaosbuild/internal/project"
	"aaosbuild/internal/render"
	"aaosbuild/internal/watch"
)

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(version string, env *Env) *App {
	app := NewApp(version)
	if env.Stderr != nil {
		app.Stderr = env.Stderr
	}

	app.AddCommand(&Command{
		Name:    "root",
		Summary: "Print the checkout root of the build",
		Usage:   "Usage: aaosbuild root [--json]",
		Run: func(args []string) error {
			return runRootCommand(env, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "outdir",
		Summary: "Print the build directory of a project",
		Usage:   "Usage: aaosbuild outdir <gradle-path>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: aaosbuild outdir <gradle-path>")
			}
			r, err := env.Resolve()
			if err != nil {
				return err
			}
			n, err := r.node(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(env.stdout(), r.Builder.BuildDir(project.RelativePath(n)))
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "layout",
		Summary: "Print the build directory of every project as JSON",
		Usage:   "Usage: aaosbuild layout",
		Run: func(args []string) error {
			r, err := env.Resolve()
			if err != nil {
				return err
			}
			return layout.Encode(env.stdout(), layout.Compute(r.Tree, r.Builder))
		},
	})

	app.AddCommand(&Command{
		Name:    "tree",
		Summary: "Show the project hierarchy with build directories",
		Usage:   "Usage: aaosbuild tree",
		Run: func(args []string) error {
			r, err := env.Resolve()
			if err != nil {
				return err
			}
			return render.Tree(env.stdout(), r.Tree, r.Builder, render.NewPalette(env.Config.Theme))
		},
	})

	app.AddCommand(&Command{
		Name:    "emit",
		Summary: "Write layout.json under the Gradle build output",
		Usage:   "Usage: aaosbuild emit [-o/--output path] [--timeout 10s]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("emit", flag.ContinueOnError)
			output := fs.StringP("output", "o", "", "layout file (default: <out>/aaos-apps-gradle-build/layout.json)")
			timeout := fs.Duration("timeout", 10*time.Second, "how long to wait for the layout lock")
			if err := fs.Parse(args); err != nil {
				return fmt.Errorf("usage: aaosbuild emit [-o/--output path] [--timeout 10s]")
			}

			ctx, cancel := context.WithTimeout(context.Background(), *timeout)
			defer cancel()
			path, changed, err := emitLayout(ctx, env, *output)
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(env.stdout(), "wrote %s\n", path)
			} else {
				fmt.Fprintf(env.stdout(), "%s is up to date\n", path)
			}
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "watch",
		Summary: "Rewrite layout.json whenever the checkout changes",
		Usage:   "Usage: aaosbuild watch [-o/--output path] [--debounce 200ms] [--poll 30s]",
		Run: func(args []string) error {
			fs := flag.NewFlagSet("watch", flag.ContinueOnError)
			output := fs.StringP("output", "o", "", "layout file (default: <out>/aaos-apps-gradle-build/layout.json)")
			debounce := fs.Duration("debounce", 200*time.Millisecond, "quiet period before recomputing")
			poll := fs.Duration("poll", 30*time.Second, "recompute interval when no events arrive")
			if err := fs.Parse(args); err != nil {
				return fmt.Errorf("usage: aaosbuild watch [-o/--output path] [--debounce 200ms] [--poll 30s]")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					cancel()
				case <-ctx.Done():
				}
			}()

			err := runWatch(ctx, env, *output, *debounce, *poll)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: aaosbuild version",
		Run: func(args []string) error {
			fmt.Fprintln(env.stdout(), version)
			return nil
		},
	})

	RegisterPathsCommands(app.AddGroup("paths", "Print derived build locations"), env)
	RegisterManifestCommands(app.AddGroup("manifest", "Inspect build manifests"), env)

	return app
}

// runRootCommand runs root discovery regardless of OUT_DIR.
func runRootCommand(env *Env, args []string) error {
	fs := flag.NewFlagSet("root", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print the full resolution as JSON")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("usage: aaosbuild root [--json]")
	}

	r, err := env.withoutOutDir().Resolve()
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(env.stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Root     string `json:"root"`
			FellBack bool   `json:"fell_back"`
			Entry    string `json:"entry"`
		}{r.Settings.RepoRoot, r.Settings.FellBack, r.Entry.Name})
	}
	fmt.Fprintln(env.stdout(), r.Settings.RepoRoot)
	return nil
}

// node finds a project by Gradle path, adding it to the tree when the
// manifest does not declare it.
func (r *Resolved) node(path string) (*project.Node, error) {
	if n, ok := r.Tree.Lookup(path); ok {
		return n, nil
	}
	return r.Tree.Include(path, "")
}

func emitLayout(ctx context.Context, env *Env, output string) (string, bool, error) {
	r, err := env.Resolve()
	if err != nil {
		return "", false, err
	}
	path := output
	if path == "" {
		path = layout.DefaultPath(r.Builder)
	}
	changed, err := layout.Write(ctx, path, layout.Compute(r.Tree, r.Builder))
	if err != nil {
		return path, false, err
	}
	return path, changed, nil
}

func runWatch(ctx context.Context, env *Env, output string, debounce, poll time.Duration) error {
	r, err := env.Resolve()
	if err != nil {
		return err
	}
	logger := env.logs().For("watch")

	recompute := func(ctx context.Context) error {
		lockCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		path, changed, err := emitLayout(lockCtx, env, output)
		if err != nil {
			return err
		}
		if changed {
			logger.Info("layout written", "path", path)
			fmt.Fprintf(env.stdout(), "wrote %s\n", path)
		}
		return nil
	}

	w, err := watch.New(watch.Options{
		ProjectDir:   r.ProjectDir,
		ManifestPath: r.ManifestPath,
		Debounce:     debounce,
		PollInterval: poll,
	}, recompute, logger)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
