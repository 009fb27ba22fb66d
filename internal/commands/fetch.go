package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"elecprice/internal/coordinator"
	"elecprice/internal/price"
)

const unit = "€/kWh"

func newFetchCommand(opts *options) *cobra.Command {
	var (
		region string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "fetch [--region <city>] [--json]",
		Short: "Runs one acquisition cycle and prints today's prices.",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, now, err := buildCoordinator(opts.cfg)
			if err != nil {
				return err
			}
			if region != "" {
				if err := coord.ValidateRegion(region); err != nil {
					return err
				}
			}

			result := coord.Refresh(cmd.Context(), region)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result, now())
			}
			return writeTable(cmd.OutOrStdout(), result, now())
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "City to fetch prices for (default: the configured region).")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON.")
	return cmd
}

func writeTable(out io.Writer, result coordinator.Result, now time.Time) error {
	fmt.Fprintf(out, "Región: %s\n", result.Region)
	fmt.Fprintf(out, "Fuente: %s\n", result.ProvenanceLabel())
	if result.ErrorMessage != "" {
		fmt.Fprintf(out, "\n%s\n", result.ErrorMessage)
	}
	fmt.Fprintln(out)

	summary := result.Series.Summarize(now)
	fmt.Fprintf(out, "Precio actual: %s %s\n", summary.Current.StringFixed(4), unit)
	if summary.Lowest != nil {
		fmt.Fprintf(out, "Más bajo:      %s %s (%s)\n", summary.Lowest.Price.StringFixed(4), unit, summary.Lowest.Hour.Format("15:04"))
	}
	if summary.Highest != nil {
		fmt.Fprintf(out, "Más alto:      %s %s (%s)\n", summary.Highest.Price.StringFixed(4), unit, summary.Highest.Hour.Format("15:04"))
	}
	fmt.Fprintf(out, "Medio:         %s %s\n\n", summary.Average.StringFixed(4), unit)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Hora\tPrecio (%s)\n", unit)
	for _, r := range result.Series.Records() {
		fmt.Fprintf(tw, "%s\t%s\n", r.Hour.Format("15:04"), r.Price.StringFixed(4))
	}
	return tw.Flush()
}

type fetchOutput struct {
	CycleID         string           `json:"cycle_id"`
	Region          string           `json:"region"`
	Provenance      price.Provenance `json:"provenance"`
	ProvenanceLabel string           `json:"provenance_label"`
	Synthetic       bool             `json:"synthetic"`
	Message         string           `json:"message,omitempty"`
	Summary         price.Summary    `json:"summary"`
	Prices          price.Series     `json:"prices"`
}

func writeJSON(out io.Writer, result coordinator.Result, now time.Time) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(fetchOutput{
		CycleID:         result.CycleID,
		Region:          result.Region,
		Provenance:      result.Provenance,
		ProvenanceLabel: result.ProvenanceLabel(),
		Synthetic:       result.IsSynthetic,
		Message:         result.ErrorMessage,
		Summary:         result.Series.Summarize(now),
		Prices:          result.Series,
	})
}
