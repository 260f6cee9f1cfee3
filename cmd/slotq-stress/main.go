// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command slotq-stress hammers a slotq queue with concurrent producers and
// consumers and verifies that every item is delivered exactly once.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func newRootCmd() *cobra.Command {
	opts := defaultOptions()
	root := &cobra.Command{
		Use:   "slotq-stress",
		Short: "Stress test the slotq bounded queue",
		Long: `slotq-stress runs producers and consumers against one queue for a fixed
duration or item quota, repeats the run, and fails if any item is lost,
delivered twice, or left in the queue after draining.

Every flag can also be set with a SLOTQ_ environment variable, for example
SLOTQ_PRODUCERS=16. Variables may be kept in a .env file.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.load(cmd); err != nil {
				return err
			}
			return runStress(cmd, opts)
		},
	}
	opts.bind(root)

	root.AddCommand(newGraphCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "slotq-stress %s\n", Version)
			if GitCommit != "unknown" {
				fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", GitCommit)
			}
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
