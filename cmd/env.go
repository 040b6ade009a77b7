// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure-samples/appservice-ai-planner/pkg/environment"
	"github.com/azure-samples/appservice-ai-planner/pkg/output"
	"github.com/azure-samples/appservice-ai-planner/pkg/provision"
	"github.com/spf13/cobra"
)

func newEnvCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "env",
		Short: "Work with the exported environment values.",
	}

	root.AddCommand(newEnvGetValuesCmd())

	return root
}

func newEnvGetValuesCmd() *cobra.Command {
	flags := &planFlags{}
	var outputFormat string
	var writeEnvFile string

	cmd := &cobra.Command{
		Use:   "get-values",
		Short: "Evaluate the deployment and print only the exported values.",
		Long: heredoc.Doc(`
			Evaluate the deployment and print only the exported values.

			These are the environment variables the chatbot application reads at
			runtime. Every key of the contract is always present; values for disabled
			subsystems are empty. Use --write-env to also persist them to a .env file.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			dctx, params, err := flags.resolveInputs(cmd.Flags())
			if err != nil {
				return err
			}

			result, err := provision.Evaluate(dctx, params)
			if err != nil {
				return err
			}

			if writeEnvFile != "" {
				env := environment.Empty(writeEnvFile)
				env.Values = result.Exports
				if err := env.Save(); err != nil {
					return fmt.Errorf("writing %s: %w", writeEnvFile, err)
				}
			}

			formatter, err := output.NewFormatter(outputFormat)
			if err != nil {
				return err
			}

			return formatter.Format(result.Exports, cmd.OutOrStdout(), nil)
		},
	}

	flags.Bind(cmd.Flags())
	cmd.Flags().StringVarP(&outputFormat, "output", "o", string(output.EnvVarsFormat),
		"Output format: dotenv, json or none.")
	cmd.Flags().StringVar(&writeEnvFile, "write-env", "",
		"Also write the values to the given .env file.")

	return cmd
}
