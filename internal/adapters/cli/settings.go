package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/kanban-go/internal/application/admin/commands"
	"github.com/andrescamacho/kanban-go/internal/application/admin/queries"
	"github.com/andrescamacho/kanban-go/internal/domain/settings"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

// NewSettingsCommand creates the settings command with subcommands
func NewSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change simulation settings",
		Long: `Settings are named integers with an inclusive range and a stored default.
Running workers and the runner pick up changes on their next cycle.

Examples:
  kanban settings list
  kanban settings get TimeScale
  kanban settings set TimeScale 60
  kanban settings reset`,
	}

	cmd.AddCommand(newSettingsListCommand())
	cmd.AddCommand(newSettingsGetCommand())
	cmd.AddCommand(newSettingsSetCommand())
	cmd.AddCommand(newSettingsResetCommand())

	return cmd
}

func newSettingsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every setting",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendAdmin(cmd, &queries.ListSettingsQuery{})
			if err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), resp.(*queries.ListSettingsResponse).Settings)
			return nil
		},
	}
}

func newSettingsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show one setting",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendAdmin(cmd, &queries.GetSettingQuery{Name: args[0]})
			if err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), resp.(*queries.ListSettingsResponse).Settings)
			return nil
		},
	}
}

func newSettingsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Change one setting within its range",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[1])
			if err != nil {
				return shared.NewValidationError("value", fmt.Sprintf("%q is not an integer", args[1]))
			}

			resp, err := sendAdmin(cmd, &commands.ChangeSettingCommand{Name: args[0], Value: value})
			if err != nil {
				return err
			}
			changed := resp.(*commands.ChangeSettingResponse)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d -> %d\n", changed.Name, changed.Previous, changed.Value)
			return nil
		},
	}
}

func newSettingsResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore every setting to its default",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendAdmin(cmd, &commands.ResetDefaultsCommand{})
			if err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), resp.(*commands.ResetDefaultsResponse).Settings)
			return nil
		},
	}
}

func printSettings(out io.Writer, all []settings.Setting) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Name\tValue\tMin\tMax\tDefault")
	fmt.Fprintln(w, "────\t─────\t───\t───\t───────")
	for _, s := range all {
		marker := ""
		if !s.IsDefault() {
			marker = " *"
		}
		fmt.Fprintf(w, "%s\t%d%s\t%d\t%d\t%d\n", s.Name, s.Value, marker, s.Min, s.Max, s.Default)
	}
	w.Flush()
}
