// Command ledgerbridge converts night-audit report text into accounting
// import rows: it parses the report, resolves source codes against a
// mapping workbook and writes the transformed records as flat CSV.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nightaudit/ledgerbridge/internal/domain/ingest/service"
	"github.com/nightaudit/ledgerbridge/internal/domain/mapping"
	"github.com/nightaudit/ledgerbridge/internal/domain/report"
	"github.com/nightaudit/ledgerbridge/internal/domain/transform"
	"github.com/nightaudit/ledgerbridge/pkg/config"
	"github.com/nightaudit/ledgerbridge/pkg/money"
	"github.com/nightaudit/ledgerbridge/pkg/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		reportPath   = flag.String("report", "", "path to the report text file")
		mappingsPath = flag.String("mappings", "", "path to the mapping workbook (.xlsx) or CSV")
		propertyID   = flag.Int("property", 0, "property id the report belongs to")
		propertyName = flag.String("property-name", "", "property name for the output metadata")
		outPath      = flag.String("o", "", "output CSV path (default stdout)")
		keep         = flag.Bool("keep", false, "store the report and export in the artifact directory")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if *reportPath == "" || *mappingsPath == "" {
		flag.Usage()
		return fmt.Errorf("both -report and -mappings are required")
	}

	resolver, err := loadResolver(*mappingsPath)
	if err != nil {
		return err
	}
	for _, warning := range resolver.Warnings() {
		logger.Warn("mapping table", "warning", warning)
	}
	stats := resolver.Stats()
	logger.Info("mapping table loaded",
		"mappings", stats.TotalMappings,
		"source_codes", stats.DistinctSourceCodes,
		"dropped_rows", stats.DroppedRows)

	text, err := os.ReadFile(*reportPath)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	parserCfg := report.DefaultConfig()
	parserCfg.MinimumAmount = cfg.Parser.MinAmount
	parserCfg.IncludeZeroAmounts = cfg.Parser.IncludeZeroAmounts

	engineCfg := transform.Config{
		ContinueOnError:  cfg.Transform.ContinueOnError,
		MaxErrors:        cfg.Transform.MaxErrors,
		IncludeDebugInfo: cfg.Transform.IncludeDebugInfo,
		ValidationMode:   transform.Mode(cfg.Transform.ValidationMode),
	}

	svc := service.NewService(
		report.NewParser(parserCfg),
		resolver,
		transform.NewEngine(engineCfg, transform.NewRegistry(), logger),
		engineCfg,
		logger,
	)

	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(*reportPath)), ".")
	if fileType == "" {
		fileType = "txt"
	}

	ctx := context.Background()
	result, err := svc.ProcessFile(ctx, *propertyID, *propertyName, fileType, text)
	if err != nil {
		return err
	}

	for _, procErr := range result.Meta.Errors {
		logger.Warn("processing error", "code", procErr.Code, "row", procErr.RowIndex, "message", procErr.Message)
	}
	logger.Info("report processed",
		"run_id", result.Meta.RunID,
		"records", result.Meta.RecordCount,
		"errors", len(result.Meta.Errors),
		"total", money.Display(recordTotal(result), money.USD))

	var out bytes.Buffer
	if err := service.WriteCSV(&out, result); err != nil {
		return err
	}

	if *keep {
		if err := storeArtifacts(ctx, cfg.Storage.Dir, *propertyID, *reportPath, text, out.Bytes(), logger); err != nil {
			return err
		}
	}

	if *outPath == "" {
		_, err = os.Stdout.Write(out.Bytes())
		return err
	}
	if err := os.WriteFile(*outPath, out.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info("export written", "path", *outPath)
	return nil
}

func loadResolver(path string) (*mapping.Resolver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mappings: %w", err)
	}
	defer f.Close()

	var rows []mapping.Row
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = mapping.LoadCSV(f)
	default:
		rows, err = mapping.LoadWorkbook(f)
	}
	if err != nil {
		return nil, err
	}

	return mapping.NewResolver(rows, false)
}

// recordTotal sums the Amount fields across a run's records.
func recordTotal(result *transform.Result) decimal.Decimal {
	total := decimal.Zero
	for _, record := range result.Records {
		raw, ok := record.Fields["Amount"].(string)
		if !ok {
			continue
		}
		if d, err := money.ParseAmount(raw); err == nil {
			total = total.Add(d)
		}
	}
	return total
}

func storeArtifacts(ctx context.Context, dir string, propertyID int, reportPath string, reportText, export []byte, logger *slog.Logger) error {
	store, err := storage.New(&storage.Config{Dir: dir})
	if err != nil {
		return err
	}

	reportInfo, err := store.Save(ctx, propertyID, filepath.Base(reportPath), storage.KindReport, bytes.NewReader(reportText))
	if err != nil {
		return err
	}
	exportInfo, err := store.Save(ctx, propertyID, "export.csv", storage.KindExport, bytes.NewReader(export))
	if err != nil {
		return err
	}

	logger.Info("artifacts stored",
		"report_id", reportInfo.ID,
		"export_id", exportInfo.ID,
		"dir", dir)
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
