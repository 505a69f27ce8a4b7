// Package main provides the holerabbit agent CLI.
//
// Holerabbit is a browsing-session tracking agent for the Mycelica
// knowledge backend. It correlates browser navigation events into
// research sessions and serves the message API the extension UI
// talks to.
package main

import (
	"flag"
	"fmt"
	"os"
)

// version is set during build time.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the main application logic.
func run() error {
	// Define global flags.
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "show version information")

	// Parse command.
	flag.Parse()

	// Handle version flag.
	if *showVersion {
		fmt.Printf("holerabbit %s\n", version)
		return nil
	}

	// The -config flag outranks the environment.
	if *configPath == "" {
		*configPath = os.Getenv("HOLERABBIT_CONFIG")
	}

	// Get command.
	args := flag.Args()
	if len(args) == 0 {
		return showUsage()
	}

	command := args[0]

	switch command {
	case "run":
		return runAgentCommand(*configPath, args[1:])
	case "status":
		return runStatusCommand(*configPath)
	case "config":
		return runConfigCommand(*configPath, args[1:])
	case "help":
		return showUsage()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runAgentCommand runs the agent command.
func runAgentCommand(configPath string, args []string) error {
	// Define run-specific flags.
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	listen := fs.String("listen", "", "message API listen address (overrides config)")
	backendURL := fs.String("backend", "", "backend base URL (overrides config)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &agentCommand{
		configPath: configPath,
		listen:     *listen,
		backendURL: *backendURL,
	}

	return cmd.Execute()
}

// runStatusCommand runs the status command.
func runStatusCommand(configPath string) error {
	cmd := &statusCommand{
		configPath: configPath,
	}
	return cmd.Execute()
}

// runConfigCommand runs the config command.
func runConfigCommand(configPath string, args []string) error {
	cmd := &configCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// showUsage displays usage information.
func showUsage() error {
	usage := `Holerabbit - browsing-session tracking agent for Mycelica

Usage:
  holerabbit [flags] <command> [command flags]

Commands:
  run         Run the agent (message API + navigation recorder)
  status      Probe the backend and show the live session
  config      Configuration management (show, path, reset)
  help        Show this help message

Global Flags:
  -config     Path to configuration file
  -version    Show version information

Run Command Flags:
  -listen     Message API listen address (overrides config)
  -backend    Backend base URL (overrides config)

Examples:
  # Run the agent with the default configuration
  holerabbit run

  # Run against a non-default backend
  holerabbit run -backend http://localhost:9876

  # Check backend connectivity and the live session
  holerabbit status

  # Show the effective configuration
  holerabbit config show

  # Show configuration file paths
  holerabbit config path

Version: %s
`

	fmt.Printf(usage, version)
	return nil
}
