// pattern: Functional Core
package cli

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// Command represents a single CLI command with its metadata and handler.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Run     func(args []string) error
}

// Group represents a group of related commands.
type Group struct {
	Name     string
	Summary  string
	Commands map[string]*Command
}

// App is the top-level CLI application with groups and ungrouped commands.
type App struct {
	groups   map[string]*Group
	commands map[string]*Command
	order    []string
	version  string

	// Stderr receives help and error output. Defaults to os.Stderr.
	Stderr io.Writer
	// ExitFunc is called with a non-zero code when a command fails.
	// Defaults to os.Exit. Overridable for testing.
	ExitFunc func(int)
}

// NewApp creates a new CLI application with the given version.
func NewApp(version string) *App {
	return &App{
		groups:   make(map[string]*Group),
		commands: make(map[string]*Command),
		version:  version,
		Stderr:   os.Stderr,
		ExitFunc: os.Exit,
	}
}

// AddGroup creates and registers a new command group.
func (a *App) AddGroup(name, summary string) *Group {
	g := &Group{
		Name:     name,
		Summary:  summary,
		Commands: make(map[string]*Command),
	}
	a.groups[name] = g
	return g
}

// AddCommand registers an ungrouped (top-level) command. Help lists
// ungrouped commands in registration order.
func (a *App) AddCommand(cmd *Command) {
	if _, ok := a.commands[cmd.Name]; !ok {
		a.order = append(a.order, cmd.Name)
	}
	a.commands[cmd.Name] = cmd
}

// AddCommand registers a command in the group.
func (g *Group) AddCommand(cmd *Command) {
	g.Commands[cmd.Name] = cmd
}

// Execute dispatches the CLI arguments to the appropriate command. A failing
// command has its error printed as "error: ..." followed by ExitFunc(1).
func (a *App) Execute(args []string) {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		a.PrintHelp(a.Stderr)
		return
	}

	cmdName := args[0]

	if cmd, ok := a.commands[cmdName]; ok {
		a.run(cmd, args[1:])
		return
	}

	if group, ok := a.groups[cmdName]; ok {
		if len(args) < 2 || args[1] == "help" || args[1] == "--help" || args[1] == "-h" {
			group.PrintHelp(a.Stderr)
			return
		}
		if cmd, ok := group.Commands[args[1]]; ok {
			a.run(cmd, args[2:])
			return
		}
		group.PrintHelp(a.Stderr)
		a.ExitFunc(1)
		return
	}

	fmt.Fprintf(a.Stderr, "error: unknown command %q\n\n", cmdName)
	a.PrintHelp(a.Stderr)
	a.ExitFunc(1)
}

func (a *App) run(cmd *Command, args []string) {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			fmt.Fprintf(a.Stderr, "%s\n", cmd.Usage)
			return
		}
	}
	if err := cmd.Run(args); err != nil {
		fmt.Fprintf(a.Stderr, "error: %v\n", err)
		a.ExitFunc(1)
	}
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: aaosbuild [options] <command>\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, name := range a.order {
		cmd := a.commands[name]
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}

	if len(a.groups) > 0 {
		fmt.Fprintf(w, "\nCommand Groups:\n")
		for _, name := range slices.Sorted(maps.Keys(a.groups)) {
			group := a.groups[name]
			fmt.Fprintf(w, "  %-10s %s\n", group.Name, group.Summary)
		}
	}

	fmt.Fprintf(w, "\nUse \"aaosbuild <group> help\" for group details.\n\n")
	fmt.Fprintf(w, "Options:\n")
}

// PrintHelp prints help for a specific group.
func (g *Group) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: aaosbuild %s <command>\n\n", g.Name)
	fmt.Fprintf(w, "Commands:\n")
	for _, name := range slices.Sorted(maps.Keys(g.Commands)) {
		cmd := g.Commands[name]
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintf(w, "\nUse \"aaosbuild %s <command> --help\" for command details.\n", g.Name)
}
