package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/importer"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/memory"
	"github.com/warp/payroll-engine/store/sqlite"
)

// options shared by every command; defaults come from config.Load.
type options struct {
	rulesFile string
	year      int
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &options{year: importer.DefaultYear, logLevel: "warn"}
	if cfg, err := config.Load(); err == nil {
		opts.rulesFile = cfg.RulesFile
		opts.year = cfg.ImportYear
	}

	root := &cobra.Command{
		Use:          "payroll",
		Short:        "Shift payroll reports",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			log.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.rulesFile, "rules", opts.rulesFile, "JSON rule file (built-in rules when empty)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level")

	root.AddCommand(newReportCmd(opts), newImportCmd(opts), newPeriodCmd(opts))
	return root
}

// =============================================================================
// REPORT
// =============================================================================

func newReportCmd(opts *options) *cobra.Command {
	var month, input, dbPath, format, out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute the payroll report of one month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (input == "") == (dbPath == "") {
				return fmt.Errorf("exactly one of --input or --db is required")
			}

			engine, err := loadEngine(opts.rulesFile)
			if err != nil {
				return err
			}
			period, err := engine.Rules.Period.PeriodForSelector(month)
			if err != nil {
				return err
			}

			store, closeStore, err := openStore(cmd.Context(), dbPath, input, opts.year)
			if err != nil {
				return err
			}
			defer closeStore()

			shifts, err := store.ListRange(cmd.Context(), period.Start, period.End)
			if err != nil {
				return err
			}
			report, err := engine.GenerateReport(shifts, month)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return render(w, format, report)
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "Payroll month YYYY-MM")
	cmd.Flags().StringVar(&input, "input", "", "Shift file (bulk text or .json)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database instead of --input")
	cmd.Flags().IntVar(&opts.year, "year", opts.year, "Year for bulk-text input")
	cmd.Flags().StringVar(&format, "format", "table", "table, csv, xlsx or json")
	cmd.Flags().StringVar(&out, "out", "", "Write to file instead of stdout")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func render(w io.Writer, format string, report *payroll.Report) error {
	switch strings.ToLower(format) {
	case "table", "":
		return writeTable(w, report)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(api.NewReportDTO(report))
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	return export.Write(w, f, report)
}

// writeTable prints the export layout aligned for a terminal.
func writeTable(w io.Writer, report *payroll.Report) error {
	fmt.Fprintf(w, "Payroll %s %s\n\n", report.Selector, report.Period)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, line := range export.Table(report) {
		fmt.Fprintln(tw, strings.Join(line, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(report.Weeks) > 0 {
		fmt.Fprintln(w)
		for _, wk := range report.Weeks {
			status := fmt.Sprintf("deficit %s", generic.FormatHours(wk.Deficit))
			if wk.IsPartial {
				status = "partial"
			}
			fmt.Fprintf(w, "Week %s: earned %s, %s\n", wk.Sunday, generic.FormatHours(wk.EarnedQuota), status)
		}
	}
	return nil
}

// =============================================================================
// IMPORT
// =============================================================================

func newImportCmd(opts *options) *cobra.Command {
	var input, dbPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add shifts from a bulk-text file to a database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine, err := loadEngine(opts.rulesFile)
			if err != nil {
				return err
			}
			parsed, skipped, err := readShifts(input, opts.year)
			if err != nil {
				return err
			}
			for _, s := range skipped {
				log.WithField("line", s.Line).Warnf("Skipped %q: %s", s.Text, s.Reason)
			}

			store, err := sqlite.New(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			existing, err := store.List(ctx)
			if err != nil {
				return err
			}
			fresh, duplicates := importer.Dedupe(existing, parsed)
			if err := store.SaveBatch(ctx, fresh); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d shifts (%d duplicates, %d skipped lines)\n",
				len(fresh), duplicates, len(skipped))
			if sel, ok := importer.SuggestSelector(engine.Rules.Period, fresh); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Suggested month: %s\n", sel)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Shift file (bulk text or .json)")
	cmd.Flags().StringVar(&dbPath, "db", "payroll.db", "SQLite database")
	cmd.Flags().IntVar(&opts.year, "year", opts.year, "Year for bulk-text input")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// =============================================================================
// PERIOD
// =============================================================================

func newPeriodCmd(opts *options) *cobra.Command {
	var month, date string

	cmd := &cobra.Command{
		Use:   "period",
		Short: "Show the date range of a payroll month",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(opts.rulesFile)
			if err != nil {
				return err
			}
			pc := engine.Rules.Period

			if month == "" {
				d := generic.Today()
				if date != "" {
					if d, err = generic.ParseDate(date); err != nil {
						return err
					}
				}
				month = pc.SelectorFor(d)
			}
			period, err := pc.PeriodForSelector(month)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s to %s\n", month, period.Start, period.End)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "Payroll month YYYY-MM")
	cmd.Flags().StringVar(&date, "date", "", "Find the month containing YYYY-MM-DD")
	cmd.MarkFlagsMutuallyExclusive("month", "date")
	return cmd
}

// =============================================================================
// HELPERS
// =============================================================================

func loadEngine(rulesFile string) (*payroll.Engine, error) {
	rules, err := factory.NewRulesFactory().LoadFile(rulesFile)
	if err != nil {
		return nil, err
	}
	return payroll.NewEngine(rules)
}

// openStore loads --input into an in-memory store, or opens --db.
func openStore(ctx context.Context, dbPath, input string, year int) (payroll.ShiftStore, func(), error) {
	if dbPath != "" {
		store, err := sqlite.New(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}

	shifts, skipped, err := readShifts(input, year)
	if err != nil {
		return nil, nil, err
	}
	for _, s := range skipped {
		log.WithField("line", s.Line).Warnf("Skipped %q: %s", s.Text, s.Reason)
	}
	store := memory.NewMemory()
	if err := store.SaveBatch(ctx, shifts); err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

// shiftFile is the JSON input shape.
type shiftFile struct {
	ID        string             `json:"id"`
	Date      string             `json:"date"`
	Start     string             `json:"start"`
	End       string             `json:"end"`
	Notes     string             `json:"notes"`
	Overrides *payroll.Overrides `json:"overrides"`
}

func readShifts(path string, year int) ([]payroll.ShiftRecord, []importer.SkippedLine, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var raw []shiftFile
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		shifts := make([]payroll.ShiftRecord, 0, len(raw))
		for i, r := range raw {
			date, err := generic.ParseDate(r.Date)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: entry %d: %w", path, i+1, err)
			}
			if err := r.Overrides.Validate(); err != nil {
				return nil, nil, fmt.Errorf("%s: entry %d: %w", path, i+1, err)
			}
			id := r.ID
			if id == "" {
				id = fmt.Sprintf("shift-%d", i+1)
			}
			shifts = append(shifts, payroll.ShiftRecord{
				ID:        payroll.ShiftID(id),
				Date:      date,
				Start:     r.Start,
				End:       r.End,
				Notes:     r.Notes,
				Overrides: r.Overrides,
			})
		}
		return shifts, nil, nil
	}

	res := importer.NewParser(year).Parse(string(b))
	return res.Shifts, res.Skipped, nil
}
