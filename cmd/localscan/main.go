package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/localscan/intel-gateway/app/domain/intel"
	"github.com/localscan/intel-gateway/app/infrastructure/cache"
	"github.com/localscan/intel-gateway/app/utils/logger"
	"github.com/localscan/intel-gateway/config"
	"github.com/localscan/intel-gateway/config/environment_variables"
)

const (
	FlagWait   = "wait"
	FlagOutput = "output"
	FlagCache  = "cache"

	OutputTable = "table"
	OutputJSON  = "json"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "localscan",
		Short:         "Look up corporation, alliance and killboard stats for EVE characters",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger.GetLogger()
			environment_variables.LoadFromEnv()
			return applyCacheBackend(cmd)
		},
	}
	root.PersistentFlags().String(FlagCache, cache.BackendSQLite,
		"cache backend (sqlite|memory|redis|postgres|none); CACHE_BACKEND applies when the flag is not set")
	root.AddCommand(newResolveCommand())
	return root
}

func newResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [names...]",
		Short: "Resolve character names and print one row per character",
		Long: `Resolve character names and print one row per character.

Names are taken from the arguments, or read from stdin one per line when no
arguments are given, so a local chat member list can be piped in directly.
Characters whose lookups have not finished when --wait expires are listed as
unresolved.`,
		Example: strings.TrimSpace(`
localscan resolve "Alice" "Bob"
pbpaste | localscan resolve --wait 1m -o json
`),
		RunE: runResolve,
	}
	cmd.Flags().Duration(FlagWait, 30*time.Second, "how long to wait for lookups to finish")
	cmd.Flags().StringP(FlagOutput, "o", OutputTable, "output format (table|json)")
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	wait, err := cmd.Flags().GetDuration(FlagWait)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString(FlagOutput)
	if err != nil {
		return err
	}
	if output != OutputTable && output != OutputJSON {
		return fmt.Errorf("unknown output format %q", output)
	}

	names, err := readNames(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	scanner, err := CreateScanner()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	scanner.Resolvers.Start(ctx)
	defer scanner.ScanService.Shutdown()

	scan, err := scanner.ScanService.Start(names)
	if err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	if _, err := scanner.ScanService.Wait(waitCtx, scan.ID); err != nil {
		return err
	}

	if output == OutputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(scanOutput{
			Rows:       scan.Rows(),
			Unresolved: scan.Unresolved(),
			Failures:   scan.Failures(),
		})
	}
	renderTable(cmd.OutOrStdout(), scan.Rows())
	if unresolved := scan.Unresolved(); len(unresolved) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "unresolved: %s\n", strings.Join(unresolved, ", "))
	}
	return nil
}

// applyCacheBackend makes the on-disk sqlite cache the CLI default so lookups
// carry over between runs. An explicit flag beats CACHE_BACKEND.
func applyCacheBackend(cmd *cobra.Command) error {
	backend, err := cmd.Flags().GetString(FlagCache)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed(FlagCache) && os.Getenv("CACHE_BACKEND") != "" {
		return nil
	}
	envs := environment_variables.Current()
	envs.CACHE_BACKEND = backend
	environment_variables.Set(envs)
	return nil
}

type scanOutput struct {
	Rows       []intel.PlayerData `json:"rows"`
	Unresolved []string           `json:"unresolved,omitempty"`
	Failures   map[string]string  `json:"failures,omitempty"`
}

func readNames(args []string, stdin io.Reader) ([]string, error) {
	if len(args) > 0 {
		names := intel.NormalizeNames(args)
		if len(names) == 0 {
			return nil, intel.ErrEmptyScan
		}
		return names, nil
	}
	raw, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read names from stdin: %w", err)
	}
	names := intel.ParseNames(string(raw))
	if len(names) == 0 {
		return nil, intel.ErrEmptyScan
	}
	return names, nil
}
