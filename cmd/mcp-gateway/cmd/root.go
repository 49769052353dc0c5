// Package cmd provides the CLI commands for the MCP gateway.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcpgateway/gateway/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mcp-gateway",
	Short: "MCP Gateway - multi-router MCP aggregation server",
	Long: `MCP Gateway aggregates many MCP routers - native and Wasm-sandboxed -
under one JSON-RPC namespace, reachable over SSE + HTTP POST.

Tools, prompts, and resources are namespaced "<router>_<name>"; clients
discover the installed routers by reading the system_all resource.

Quick start:
  1. Drop Wasm router components into ./wasm
  2. Run: mcp-gateway serve

Configuration:
  Config is loaded from mcp-gateway.yaml in the current directory,
  $HOME/.mcp-gateway/, or /etc/mcp-gateway/.

  Environment variables can override config values with the MCPGATEWAY_ prefix.
  Example: MCPGATEWAY_SERVER_HTTP_ADDR=:9090

Commands:
  serve       Start the gateway server
  router      Inspect Wasm router components
  config      Inspect the gateway configuration
  version     Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./mcp-gateway.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
