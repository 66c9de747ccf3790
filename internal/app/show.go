package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"arbitrage-finder/internal/analysis"
	"arbitrage-finder/internal/report"
)

// Products runs the product arbitrage analysis and prints the result.
func (a *App) Products(ctx context.Context, opts AnalysisOptions) error {
	res, err := a.runProducts(ctx, opts)
	if err != nil {
		return err
	}
	if opts.JSON {
		return a.printJSON(res)
	}
	return a.printDocument(report.ProductDocument(res), res.RunID, res.MatchedRows, res.SkippedRows, res.MissingCurrencies)
}

// Services runs the service rate analysis and prints the result.
func (a *App) Services(ctx context.Context, opts AnalysisOptions) error {
	res, err := a.runServices(ctx, opts)
	if err != nil {
		return err
	}
	if opts.JSON {
		return a.printJSON(res)
	}
	return a.printDocument(report.ServiceDocument(res), res.RunID, res.MatchedRows, res.SkippedRows, res.MissingCurrencies)
}

// RealEstate ranks gross yields and prints the result.
func (a *App) RealEstate(ctx context.Context, opts AnalysisOptions) error {
	res, err := a.runRealEstate(ctx, opts)
	if err != nil {
		return err
	}
	if opts.JSON {
		return a.printJSON(res)
	}
	return a.printDocument(report.RealEstateDocument(res), res.RunID, res.Rows, res.SkippedRows, res.MissingCurrencies)
}

func (a *App) runProducts(ctx context.Context, opts AnalysisOptions) (*analysis.ProductAnalysisResult, error) {
	params := a.productParams(opts)
	if err := analysis.Validate(params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	aopts, err := a.analysisOptions()
	if err != nil {
		return nil, err
	}
	ds, err := a.loadDataset(ctx)
	if err != nil {
		return nil, err
	}

	res, err := analysis.AnalyzeProducts(ds, params, aopts)
	if err != nil {
		return nil, err
	}
	a.Logger.Info().Str("run_id", res.RunID).
		Str("query", params.Query).
		Int("matched", res.MatchedRows).
		Int("skipped", res.SkippedRows).
		Int("groups", res.TotalGroups).
		Msg("product analysis complete")
	return res, nil
}

func (a *App) runServices(ctx context.Context, opts AnalysisOptions) (*analysis.ServiceAnalysisResult, error) {
	params := analysis.ServiceParams{Query: opts.Query, TopN: a.topN(opts.TopN)}
	if err := analysis.Validate(params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	aopts, err := a.analysisOptions()
	if err != nil {
		return nil, err
	}
	ds, err := a.loadDataset(ctx)
	if err != nil {
		return nil, err
	}

	res, err := analysis.AnalyzeServices(ds, params, aopts)
	if err != nil {
		return nil, err
	}
	a.Logger.Info().Str("run_id", res.RunID).
		Str("query", params.Query).
		Int("matched", res.MatchedRows).
		Int("skipped", res.SkippedRows).
		Int("groups", res.TotalGroups).
		Msg("service analysis complete")
	return res, nil
}

func (a *App) runRealEstate(ctx context.Context, opts AnalysisOptions) (*analysis.RealEstateAnalysisResult, error) {
	params := analysis.RealEstateParams{TopN: a.topN(opts.TopN)}
	if err := analysis.Validate(params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	aopts, err := a.analysisOptions()
	if err != nil {
		return nil, err
	}
	ds, err := a.loadDataset(ctx)
	if err != nil {
		return nil, err
	}

	res, err := analysis.AnalyzeRealEstate(ds, params, aopts)
	if err != nil {
		return nil, err
	}
	a.Logger.Info().Str("run_id", res.RunID).
		Int("rows", res.Rows).
		Int("skipped", res.SkippedRows).
		Msg("real estate analysis complete")
	return res, nil
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *App) printDocument(doc report.Document, runID string, rows, skipped int, missing []string) error {
	fmt.Fprintf(a.Out, "%s\n", doc.Title)
	fmt.Fprintf(a.Out, "run: %s  rows: %d  skipped: %d\n", runID, rows, skipped)
	if len(missing) > 0 {
		fmt.Fprintf(a.Out, "missing FX rates: %s\n", strings.Join(missing, ", "))
	}
	fmt.Fprintf(a.Out, "\n%s\n", doc.Summary)

	for _, section := range doc.Sections {
		fmt.Fprintf(a.Out, "\n== %s ==\n", section.Name)
		if section.Table.Len() == 0 {
			fmt.Fprintln(a.Out, "(no rows)")
			continue
		}
		if err := writeTable(a.Out, section.Table); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(out io.Writer, table report.Table) error {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = sanitizeInline(cell)
		}
		fmt.Fprintln(writer, strings.Join(cells, "\t"))
	}
	return writer.Flush()
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	cleaned = strings.ReplaceAll(cleaned, "\t", " ")
	return cleaned
}
