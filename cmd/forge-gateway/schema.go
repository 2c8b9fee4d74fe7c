package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vilaca/forge-gateway/internal/config"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			schema, err := buildSchema(cfg, zap.NewNop().Sugar(), prometheus.NewRegistry())
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), schema.SDL())
			return err
		},
	}
}
