package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Print the effective reconciliation policy as YAML",
	Long:  "Prints the policy in effect after applying the configured policy file over the built-in defaults. Useful as a starting point for a custom policy file.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pol, err := loadPolicy()
		if err != nil {
			return err
		}

		wrapper := struct {
			Policy any `yaml:"policy"`
		}{Policy: pol}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(wrapper); err != nil {
			return eris.Wrap(err, "encode policy")
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
}
