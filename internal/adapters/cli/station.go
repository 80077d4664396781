package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/kanban-go/internal/application/admin/commands"
	"github.com/andrescamacho/kanban-go/internal/application/admin/queries"
	"github.com/andrescamacho/kanban-go/internal/domain/production"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
	"github.com/andrescamacho/kanban-go/internal/infrastructure/config"
)

// stationAddArgs are the validated flags of "station add"
type stationAddArgs struct {
	WorkerType string `validate:"required,worker_type"`
	Count      int    `validate:"min=1,max=1000"`
	Parts      int    `validate:"min=0"`
}

// NewStationCommand creates the station command with subcommands
func NewStationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "station",
		Short: "Manage the station pool",
		Long: `Stations are the bounded capacity workers lease at startup.
Each worker type has its own pool; a worker finding none free exits with code 3.

Examples:
  kanban station add --type normal --count 4 --parts 25
  kanban station list --type normal
  kanban station release 7
  kanban station release --process worker-normal-a3f8e2b1
  kanban station release --all`,
	}

	cmd.AddCommand(newStationAddCommand())
	cmd.AddCommand(newStationListCommand())
	cmd.AddCommand(newStationReleaseCommand())

	return cmd
}

func newStationAddCommand() *cobra.Command {
	var flags stationAddArgs

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create free stations for a worker type",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.NewValidator().Validate(&flags); err != nil {
				return usageError(err)
			}

			resp, err := sendAdmin(cmd, &commands.AddStationsCommand{
				WorkerType:  flags.WorkerType,
				Count:       flags.Count,
				PartsOnHand: flags.Parts,
			})
			if err != nil {
				return err
			}
			ids := resp.(*commands.AddStationsResponse).StationIDs
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d %s station(s): %v\n", len(ids), flags.WorkerType, ids)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.WorkerType, "type", "", "Worker type: new, normal or experienced")
	cmd.Flags().IntVar(&flags.Count, "count", 1, "Number of stations to add")
	cmd.Flags().IntVar(&flags.Parts, "parts", 25, "Initial parts in each bin")
	return cmd
}

func newStationListCommand() *cobra.Command {
	var workerType string
	var leasedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stations and their leases",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := sendAdmin(cmd, &queries.ListStationsQuery{WorkerType: workerType, LeasedOnly: leasedOnly})
			if err != nil {
				return err
			}
			list := resp.(*queries.ListStationsResponse)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tType\tLeased By\tParts\tUnits\tShortages")
			fmt.Fprintln(w, "──\t────\t─────────\t─────\t─────\t─────────")
			for _, slot := range list.Stations {
				owner := "-"
				if slot.IsLeased() {
					owner = slot.LeasedBy
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n",
					slot.ID, slot.WorkerType, owner, slot.PartsOnHand, slot.UnitsProduced, slot.Shortages)
			}
			w.Flush()

			fmt.Fprintln(cmd.OutOrStdout())
			for _, wt := range production.AllWorkerTypes() {
				if list.Total[wt] == 0 {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d/%d leased\n", wt, list.Leased[wt], list.Total[wt])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&workerType, "type", "", "Only stations of this worker type")
	cmd.Flags().BoolVar(&leasedOnly, "leased", false, "Only leased stations")
	return cmd
}

func newStationReleaseCommand() *cobra.Command {
	var processID string
	var all bool

	cmd := &cobra.Command{
		Use:   "release [station-id]",
		Short: "Free leased stations left behind by stopped workers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			release := &commands.ReleaseStationsCommand{ProcessID: processID, All: all}
			if len(args) == 1 {
				id, err := strconv.Atoi(args[0])
				if err != nil || id < 1 {
					return shared.NewValidationError("station-id", fmt.Sprintf("%q is not a station id", args[0]))
				}
				release.StationID = id
			}

			resp, err := sendAdmin(cmd, release)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Released %d station(s)\n", resp.(*commands.ReleaseStationsResponse).Released)
			return nil
		},
	}

	cmd.Flags().StringVar(&processID, "process", "", "Release every station held by this process")
	cmd.Flags().BoolVar(&all, "all", false, "Release every leased station")
	return cmd
}
