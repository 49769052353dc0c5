package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero"

	"github.com/mcpgateway/gateway/internal/config"
)

var routerCmd = &cobra.Command{
	Use:   "router",
	Short: "Inspect Wasm router components",
}

var routerListCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the Wasm components in a directory and their router ids",
	Long: `List every *.wasm file in the given directory (default: the configured
wasm directory) together with the router id it would register under:
the file stem with every underscore stripped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRouterList,
}

var routerValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Compile a Wasm component and report its exports",
	Args:  cobra.ExactArgs(1),
	RunE:  runRouterValidate,
}

func init() {
	routerCmd.AddCommand(routerListCmd)
	routerCmd.AddCommand(routerValidateCmd)
	rootCmd.AddCommand(routerCmd)
}

func runRouterList(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	} else {
		cfg, err := config.LoadConfigRaw()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		dir = cfg.Wasm.Dir
		if dir == "" {
			dir = "wasm"
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %q: %w", dir, err)
	}

	found := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".wasm" {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ".wasm")
		id := strings.ReplaceAll(stem, "_", "")
		fmt.Printf("%-30s router id: %s\n", e.Name(), id)
		found++
	}
	if found == 0 {
		fmt.Printf("no *.wasm components in %s\n", dir)
	}
	return nil
}

func runRouterValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return fmt.Errorf("compile %q: %w", path, err)
	}
	defer compiled.Close(ctx)

	exports := make(map[string]bool)
	for _, def := range compiled.ExportedFunctions() {
		for _, name := range def.ExportNames() {
			exports[name] = true
		}
	}

	required := []string{
		"name", "instructions", "capabilities",
		"list-tools", "list-resources", "list-prompts",
		"call-tool", "read-resource", "get-prompt",
		"allocate", "deallocate",
	}

	fmt.Printf("%s compiles\n", path)
	missing := 0
	for _, name := range required {
		mark := "ok"
		if !exports[name] {
			mark = "MISSING"
			missing++
		}
		fmt.Printf("  %-16s %s\n", name, mark)
	}
	if missing > 0 {
		return fmt.Errorf("%d required export(s) missing", missing)
	}
	return nil
}
