// pattern: Imperative Shell
package main

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"aaosbuild/internal/cli"
	"aaosbuild/internal/config"
	"aaosbuild/internal/logging"
	"aaosbuild/internal/rootfind"
)

var version = "dev"

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config directory (default: ~/.config/aaosbuild)")
	projectDir := flag.StringP("project-dir", "C", "", "root project directory (default: current directory)")
	manifestRef := flag.StringP("manifest", "m", "", "build manifest name or path (default: aaos-apps)")
	entry := flag.String("entry", "", "entry point: "+strings.Join(entryPointNames(), ", "))
	logLevel := flag.String("log-level", "", "override the configured log level")

	env := &cli.Env{}

	flag.Usage = func() {
		app := cli.BuildApp(version, env)
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	cfg, err := loadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logManager, err := newLogManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	env.ConfigDir = *configDir
	env.ProjectDir = *projectDir
	env.ManifestRef = *manifestRef
	env.EntryName = *entry
	env.Config = cfg
	env.Logs = logManager

	app := cli.BuildApp(version, env)
	app.ExitFunc = func(code int) {
		_ = logManager.Close()
		os.Exit(code)
	}
	app.Execute(flag.Args())
	_ = logManager.Close()
}

// loadConfig loads the configuration from the specified directory or default location.
func loadConfig(configDir string) (config.Config, error) {
	if configDir != "" {
		return config.LoadFromDir(configDir)
	}
	return config.Load()
}

func newLogManager(cfg config.Config) (*logging.Manager, error) {
	return logging.NewManager(logging.Config{
		FilePath:   cfg.ResolvePath(cfg.LogFile),
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Level:      cfg.LogLevel,
	})
}

func entryPointNames() []string {
	var names []string
	for _, ep := range rootfind.EntryPoints() {
		names = append(names, ep.Name)
	}
	return names
}
