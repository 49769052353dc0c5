package main

import "github.com/mcpgateway/gateway/cmd/mcp-gateway/cmd"

func main() {
	cmd.Execute()
}
