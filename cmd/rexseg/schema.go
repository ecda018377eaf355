package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/rexseg/internal/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the output JSON schema",
}

var schemaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active output schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		v, err := loadValidator(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(v.Raw()))
		return nil
	},
}

func init() {
	schemaShowCmd.Flags().StringVar(&segmentSchema, "schema", "", "schema file to print instead of the active one")
	schemaCmd.AddCommand(schemaShowCmd)
	rootCmd.AddCommand(schemaCmd)
}
