package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"arbitrage-finder/internal/analysis"
	"arbitrage-finder/internal/report"
)

// Report kinds.
const (
	KindProducts   = "products"
	KindServices   = "services"
	KindRealEstate = "realestate"
)

// Report renders one analysis as HTML and optionally CSV and a PNG median chart.
// Without any explicit path the HTML goes to <report.output_dir>/<kind>.html.
func (a *App) Report(ctx context.Context, opts ReportOptions) error {
	if opts.HTMLPath == "" && opts.CSVPath == "" && opts.PNGPath == "" {
		opts.HTMLPath = filepath.Join(a.Config.Report.OutputDir, opts.Kind+".html")
	}

	var (
		doc    report.Document
		groups []analysis.Group
		runID  string
	)
	switch opts.Kind {
	case KindProducts:
		res, err := a.runProducts(ctx, opts.Analysis)
		if err != nil {
			return err
		}
		doc, groups, runID = report.ProductDocument(res), res.ByCountry, res.RunID
	case KindServices:
		res, err := a.runServices(ctx, opts.Analysis)
		if err != nil {
			return err
		}
		doc, groups, runID = report.ServiceDocument(res), res.ByCountry, res.RunID
	case KindRealEstate:
		res, err := a.runRealEstate(ctx, opts.Analysis)
		if err != nil {
			return err
		}
		doc, runID = report.RealEstateDocument(res), res.RunID
	default:
		return fmt.Errorf("unknown report kind %q", opts.Kind)
	}

	if opts.HTMLPath != "" {
		if err := report.WriteHTML(opts.HTMLPath, doc); err != nil {
			return fmt.Errorf("write html report: %w", err)
		}
		a.Logger.Info().Str("run_id", runID).Str("path", opts.HTMLPath).Msg("html report written")
	}

	if opts.CSVPath != "" {
		if len(doc.Sections) == 0 {
			return errors.New("report has no tables")
		}
		if err := report.WriteCSV(opts.CSVPath, doc.Sections[0].Table); err != nil {
			return fmt.Errorf("write csv report: %w", err)
		}
		a.Logger.Info().Str("run_id", runID).Str("path", opts.CSVPath).Msg("csv report written")
	}

	if opts.PNGPath != "" {
		if groups == nil {
			return fmt.Errorf("median chart is not available for %s", opts.Kind)
		}
		if len(groups) == 0 {
			a.Logger.Info().Msg("no groups to chart; png skipped")
			return nil
		}
		if err := report.WriteMedianChart(opts.PNGPath, doc.Title, groups); err != nil {
			return fmt.Errorf("write png chart: %w", err)
		}
		a.Logger.Info().Str("run_id", runID).Str("path", opts.PNGPath).Msg("png chart written")
	}

	return nil
}
