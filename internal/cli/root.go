package cli

import "github.com/spf13/cobra"

// Execute runs the routedoc CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:           "routedoc",
        Short:         "Generate Swagger documentation from route and model catalogs",
        Long:          "routedoc reads a catalog of remote-method routes and model definitions and writes Swagger 1.2 resource listings and API declarations, with optional Swagger 2.0, OpenAPI 3 and spreadsheet exports.",
        SilenceErrors: true,
        SilenceUsage:  true,
        RunE: func(cmd *cobra.Command, args []string) error {
            return cmd.Help()
        },
    }

    // Convert Cobra flag errors (like unknown flags) into friendly usage errors
    // that also show the command's help text.
    cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
        return usageErrorf("%w\n\n%s", err, c.UsageString())
    })

    cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
    cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")

    g := newGenerateCmd()
    g.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
        return usageErrorf("%w\n\n%s", err, c.UsageString())
    })
    cmd.AddCommand(g)

    i := newInitCmd()
    i.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
        return usageErrorf("%w\n\n%s", err, c.UsageString())
    })
    cmd.AddCommand(i)

    return cmd
}
