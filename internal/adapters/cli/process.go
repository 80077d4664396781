package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/kanban-go/internal/application/admin/queries"
)

// NewProcessCommand creates the process command with subcommands
func NewProcessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Inspect registered worker and runner processes",
	}
	cmd.AddCommand(newProcessListCommand())
	return cmd
}

func newProcessListCommand() *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List processes, newest first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendAdmin(cmd, &queries.ListProcessesQuery{Status: status, Limit: limit})
			if err != nil {
				return err
			}
			processes := resp.(*queries.ListProcessesResponse).Processes
			if len(processes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No processes found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKind\tType\tStation\tStatus\tCycles\tExit\tStarted")
			fmt.Fprintln(w, "──\t────\t────\t───────\t──────\t──────\t────\t───────")
			for _, p := range processes {
				station := "-"
				if p.StationID > 0 {
					station = fmt.Sprintf("%d", p.StationID)
				}
				exit := "-"
				if p.ExitCode != nil {
					exit = fmt.Sprintf("%d", *p.ExitCode)
				}
				started := "-"
				if p.StartedAt != nil {
					started = p.StartedAt.Local().Format("2006-01-02 15:04:05")
				}
				workerType := string(p.WorkerType)
				if workerType == "" {
					workerType = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					p.ID, p.Kind, workerType, station, p.Status, p.Cycles, exit, started)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (RUNNING, STOPPED, FAILED, EXHAUSTED, ...)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of processes")
	return cmd
}

// NewLogsCommand creates the command printing a process's persisted logs
func NewLogsCommand() *cobra.Command {
	var level string
	var limit int

	cmd := &cobra.Command{
		Use:   "logs <process-id>",
		Short: "Show persisted log lines of a process",
		Long: `Shows log lines written while logging.persist was enabled.

Example:
  kanban logs runner-5c01d9e4 --level ERROR`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendAdmin(cmd, &queries.GetLogsQuery{ProcessID: args[0], Level: level, Limit: limit})
			if err != nil {
				return err
			}
			entries := resp.(*queries.GetLogsResponse).Entries
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No log entries")
				return nil
			}

			out := cmd.OutOrStdout()
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				fmt.Fprintf(out, "%s [%s] %s", e.Timestamp.Local().Format(time.DateTime), e.Level, e.Message)
				if len(e.Metadata) > 0 {
					fmt.Fprintf(out, " %v", e.Metadata)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "Filter by level (DEBUG, INFO, WARNING, ERROR)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of entries")
	return cmd
}
