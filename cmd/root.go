package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the composio-mcp application
var rootCmd = &cobra.Command{
	Use:   "composio-mcp",
	Short: "MCP server exposing Gmail and LinkedIn tools via Composio",
	Long: `composio-mcp is an MCP (Model Context Protocol) server that exposes
Gmail and LinkedIn capabilities to AI assistants.

All provider operations (sending email, posting to LinkedIn, ...) are
proxied through the Composio aggregator, which also owns the OAuth
connections to the underlying accounts. The only credential this server
needs is a Composio API key.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "composio-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("composio-mcp version %s\n", version)
		},
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
