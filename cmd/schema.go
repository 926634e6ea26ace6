// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/telekom/relayprobe/pkg/relay"
)

// NewCmdSchema creates a new schema command
func NewCmdSchema() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the schema of the run report",
		Long:  "Prints the OpenAPI schema of the yaml report written by \"relayprobe run --report\" as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := relay.ReportSchema()
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal schema: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
}
