// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package cmd implements the aiplan command line surface.
package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root `aiplan` command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "aiplan",
		Short:         "Resolve the resource plan for the App Service AI chatbot template.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: heredoc.Doc(`
			Resolve the resource plan for the App Service AI chatbot template.

			aiplan evaluates the deployment parameters once and produces a dependency
			ordered resource plan together with the flat set of environment values the
			chatbot application reads at runtime. It makes no cloud calls: hand the plan
			to your deployment engine, and the exported values to the application.`),
	}

	root.PersistentFlags().Bool("debug", false, "Enable debug logging.")

	root.AddCommand(newPlanCmd())
	root.AddCommand(newEnvCmd())
	root.AddCommand(newVersionCmd())

	return root
}
