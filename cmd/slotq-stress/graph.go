// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"code.hybscloud.com/slotq/internal/report"
)

func newGraphCmd() *cobra.Command {
	var jsonFile, out string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render ns/op against worker count from a session file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := report.Load(jsonFile)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				return fmt.Errorf("no sessions in %s", jsonFile)
			}
			if err := report.Graph(sessions, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Graph saved to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&jsonFile, "jsonfile", "slotq-results.json", "session file written by --json")
	cmd.Flags().StringVar(&out, "out", "slotq-graph.png", "output image; format follows the extension")
	return cmd
}
