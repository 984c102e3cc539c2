// Command loancalc prints schedules and prices amortizing loans described in
// YAML or JSON loan files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meenmo/loanlib/config"
	"github.com/meenmo/loanlib/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	stdin  io.Reader
	stdout io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return 2
	}
	config.SetConfig(*cfg)

	a := &app{
		cfg:    cfg,
		log:    logger.NewWithWriter(cfg, zerolog.SyncWriter(stderr)),
		stdin:  stdin,
		stdout: stdout,
	}

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "loancalc",
		Short: "loancalc prices amortizing loans",
		Long: `loancalc reads loan files (YAML or JSON) and prints notional schedules,
prices, yields and risk measures. Rates and prices are in percent.

Pass a file path, or "-" (or nothing) to read from stdin.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(a.scheduleCmd(), a.priceCmd(), a.yieldCmd())
	return root
}
