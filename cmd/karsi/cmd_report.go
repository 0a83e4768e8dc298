package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/karsidev/karsi/backend"
	"github.com/karsidev/karsi/config"
	"github.com/karsidev/karsi/internal/filter"
	"github.com/karsidev/karsi/normalize"
	"github.com/karsidev/karsi/storage"
)

var (
	reportFormat      string
	reportOutput      string
	reportOffline     bool
	reportApplication string
	reportDepartment  string
	reportProvider    string
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the application savings report",
	Long: `Fetch recommendations from the optimization backend, roll them up
per application and print current cost and projected savings.

With --offline the report is rendered from the last stored snapshot
instead of the live backend.`,
	Example: `  karsi report                       # live savings report
  karsi report --format csv          # export as CSV
  karsi report --department finance  # single department
  karsi report --offline             # from the last snapshot`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "table", "Output format: table, json, csv")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Save report to file")
	reportCmd.Flags().BoolVar(&reportOffline, "offline", false, "Render from the last stored snapshot")
	reportCmd.Flags().StringVar(&reportApplication, "application", "", "Filter by application name")
	reportCmd.Flags().StringVar(&reportDepartment, "department", "", "Filter by department")
	reportCmd.Flags().StringVar(&reportProvider, "provider", "", "Filter by cloud provider")
}

// report is the serializable savings report.
type report struct {
	Applications []normalize.ApplicationRollup `json:"applications"`
	Unassigned   *normalize.ApplicationRollup  `json:"unassigned,omitempty"`
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var rep report
	if reportOffline {
		rep, err = offlineReport(cfg.Storage.Dir)
	} else {
		rep, err = liveReport(cmd, cfg)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reportOutput != "" {
		f, err := os.Create(reportOutput) // #nosec G304 -- path is intentional user input
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	switch reportFormat {
	case "table":
		return renderTable(out, rep)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "csv":
		return renderCSV(out, rep)
	}
	return fmt.Errorf("unknown format %q (want table, json or csv)", reportFormat)
}

func liveReport(cmd *cobra.Command, cfg *config.Config) (report, error) {
	client, err := newBackendClient(cfg)
	if err != nil {
		return report{}, err
	}

	resp, err := client.FetchApplications(cmd.Context(), backend.Filters{
		Application: reportApplication,
		Department:  reportDepartment,
		Provider:    reportProvider,
	})
	if err != nil {
		return report{}, err
	}

	// The backend applies the same filters server-side; filtering again
	// keeps the report correct against backends that ignore them.
	f := filter.New(reportApplication, reportDepartment, reportProvider)
	assigned := f.Apply(resp.Assigned)
	unassigned := f.Apply(resp.Unassigned)

	return report{
		Applications: normalize.RollupApplications(assigned),
		Unassigned:   normalize.ConsolidateUnassigned(unassigned),
	}, nil
}

func offlineReport(dir string) (report, error) {
	store, err := storage.Open(dir)
	if err != nil {
		return report{}, fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	assets, rev, err := store.LatestSnapshot()
	if err != nil {
		return report{}, err
	}
	if rev == 0 {
		return report{}, fmt.Errorf("no snapshot recorded yet, run karsi serve first")
	}

	apps, unassigned := normalize.RollupNormalized(assets)
	return report{Applications: apps, Unassigned: unassigned}, nil
}

func renderTable(out io.Writer, rep report) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "APPLICATION\tDEPARTMENT\tPROVIDER\tASSETS\tCURRENT COST\tPROJECTED SAVINGS")

	var totalCost, totalSavings float64
	for _, r := range reportRows(rep) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%.2f\n",
			r.Name, r.Department, r.Provider, r.Resources.Count(),
			r.TotalCurrentCost, r.TotalProjectedSavings)
		totalCost += r.TotalCurrentCost
		totalSavings += r.TotalProjectedSavings
	}

	fmt.Fprintf(w, "TOTAL\t\t\t\t%.2f\t%.2f\n", totalCost, totalSavings)
	return w.Flush()
}

func renderCSV(out io.Writer, rep report) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"application", "department", "provider", "assets", "current_cost", "projected_savings"}); err != nil {
		return err
	}

	for _, r := range reportRows(rep) {
		record := []string{
			r.Name,
			r.Department,
			r.Provider,
			strconv.Itoa(r.Resources.Count()),
			strconv.FormatFloat(r.TotalCurrentCost, 'f', 2, 64),
			strconv.FormatFloat(r.TotalProjectedSavings, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func reportRows(rep report) []normalize.ApplicationRollup {
	rows := rep.Applications
	if rep.Unassigned != nil {
		rows = append(rows, *rep.Unassigned)
	}
	return rows
}
