package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/tapmon/internal/domain/cycle"
	apperrors "github.com/yanqian/tapmon/pkg/errors"
)

type predictOptions struct {
	cfg    cycle.Config
	format string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cyclecalc",
		Short:         "Estimate ovulation from menstrual cycle start dates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPredictCmd())
	return root
}

func newPredictCmd() *cobra.Command {
	opts := predictOptions{cfg: cycle.DefaultConfig()}
	cmd := &cobra.Command{
		Use:   "predict [date...]",
		Short: "Predict ovulation, fertile window and next period",
		Long: `Predict ovulation from cycle start dates (YYYY-MM-DD).

Dates are read from the arguments, or one per line from stdin when no
arguments are given. At least two dates are required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dates := args
			if len(dates) == 0 {
				var err error
				if dates, err = readDates(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			return runPredict(cmd.OutOrStdout(), opts, dates)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&opts.cfg.MinCycleDays, "min", cycle.DefaultMinCycleDays, "shortest cycle length counted, in days")
	flags.IntVar(&opts.cfg.MaxCycleDays, "max", cycle.DefaultMaxCycleDays, "longest cycle length counted, in days")
	flags.IntVar(&opts.cfg.LutealPhaseDays, "luteal", cycle.DefaultLutealPhaseDays, "days from ovulation to the next period")
	flags.IntVar(&opts.cfg.FertileWindowDays, "fertile", cycle.DefaultFertileWindowDays, "fertile days before ovulation")
	flags.StringVar(&opts.format, "format", "text", "output format: text or json")
	return cmd
}

func runPredict(out io.Writer, opts predictOptions, dates []string) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q", opts.format)
	}
	estimator, err := cycle.NewEstimator(opts.cfg)
	if err != nil {
		return err
	}
	days, err := cycle.ParseDates(dates)
	if err != nil {
		return errors.New(apperrors.MessageOf(err))
	}
	prediction, err := estimator.Estimate(days)
	if err != nil {
		return err
	}
	view := cycle.NewPredictionView(prediction)

	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	fmt.Fprintf(out, "Cycle lengths:   %s\n", joinInts(view.CycleLengths))
	fmt.Fprintf(out, "Average cycle:   %d days\n", view.AverageCycleLength)
	fmt.Fprintf(out, "Last period:     %s\n", view.LastPeriod)
	fmt.Fprintf(out, "Ovulation:       %s\n", view.OvulationDate)
	fmt.Fprintf(out, "Fertile window:  %s to %s\n", view.FertileWindow.Start, view.FertileWindow.End)
	fmt.Fprintf(out, "Next period:     %s\n", view.NextPeriod)
	return nil
}

func readDates(r io.Reader) ([]string, error) {
	var dates []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
			dates = append(dates, line)
		}
	}
	return dates, scanner.Err()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
