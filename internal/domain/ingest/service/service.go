// Package service orchestrates the report pipeline: parse raw report text
// into account lines, resolve each source code against the mapping table,
// and run the transformation engine over the resolved rows.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nightaudit/ledgerbridge/internal/domain/ingest/sniffer"
	"github.com/nightaudit/ledgerbridge/internal/domain/mapping"
	"github.com/nightaudit/ledgerbridge/internal/domain/report"
	"github.com/nightaudit/ledgerbridge/internal/domain/transform"
	"github.com/nightaudit/ledgerbridge/pkg/money"
)

// Canonical row keys produced from a parsed account line. Transformation
// rules and the CSV writer address fields by these names.
const (
	FieldSourceCode    = "source_code"
	FieldTargetCode    = "target_code"
	FieldTargetName    = "target_name"
	FieldDescription   = "description"
	FieldAmount        = "amount"
	FieldPaymentMethod = "payment_method"
	FieldLineNumber    = "line_number"
)

// ReportFile is one report document queued for processing.
type ReportFile struct {
	PropertyID   int
	PropertyName string
	Text         string
}

// Service wires the parser, the mapping resolver and the transformation
// engine into one pipeline.
type Service struct {
	parser   *report.Parser
	resolver *mapping.Resolver
	engine   *transform.Engine
	cfg      transform.Config
	logger   *slog.Logger
}

func NewService(parser *report.Parser, resolver *mapping.Resolver, engine *transform.Engine, cfg transform.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		parser:   parser,
		resolver: resolver,
		engine:   engine,
		cfg:      cfg,
		logger:   logger,
	}
}

// ReportRules is the rule set applied to resolved report rows.
func ReportRules() []transform.Rule {
	return []transform.Rule{
		{SourcePath: FieldSourceCode, TargetField: "SourceCode", DataType: transform.TypeString, Required: true},
		{SourcePath: FieldTargetCode, TargetField: "TargetCode", DataType: transform.TypeString, Required: true},
		{SourcePath: FieldTargetName, TargetField: "TargetName", DataType: transform.TypeString, Transform: transform.KindTrim},
		{SourcePath: FieldDescription, TargetField: "Description", DataType: transform.TypeString, Transform: transform.KindTrim},
		{SourcePath: FieldAmount, TargetField: "Amount", DataType: transform.TypeString, Required: true, Transform: transform.KindCurrency},
		{SourcePath: FieldPaymentMethod, TargetField: "PaymentMethod", DataType: transform.TypeString},
		{SourcePath: FieldLineNumber, TargetField: "LineNumber", DataType: transform.TypeNumber},
	}
}

// ProcessReport runs the full pipeline over one report. Source codes with no
// mapping entry are skipped and surfaced as NO_MAPPING errors in the result
// metadata, or abort the run when the error policy demands it.
func (s *Service) ProcessReport(ctx context.Context, file ReportFile) (*transform.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines, stats := s.parser.ParseWithStats(file.Text)
	s.logger.Info("report parsed",
		"property_id", file.PropertyID,
		"lines_total", stats.LinesTotal,
		"lines_matched", stats.LinesMatched,
		"lines_dropped", stats.LinesDropped)

	rows, misses, err := s.resolveRows(lines, file.PropertyID)
	if err != nil {
		return nil, err
	}

	raw := transform.RawFile{
		PropertyID:   file.PropertyID,
		PropertyName: file.PropertyName,
		FileType:     "txt",
		Content:      transform.Content{Rows: rows},
	}
	result, err := s.engine.Transform(raw, ReportRules())
	if err != nil {
		return nil, fmt.Errorf("failed to transform report for property %d: %w", file.PropertyID, err)
	}

	result.Meta.Errors = append(result.Meta.Errors, misses...)
	return result, nil
}

// ProcessFile routes raw report bytes by their declared type. Line-oriented
// and extracted-text inputs go through the account line parser; tabular
// inputs (a CSV export of the same report data) skip it and resolve their
// rows directly. Content the sniffer cannot shape is rejected.
func (s *Service) ProcessFile(ctx context.Context, propertyID int, propertyName, fileType string, data []byte) (*transform.Result, error) {
	content := sniffer.DetectShape(fileType, data)
	switch {
	case len(content.Rows) > 0:
		return s.processTabular(ctx, propertyID, propertyName, fileType, content.Rows)
	case content.Text != "":
		return s.ProcessReport(ctx, ReportFile{
			PropertyID:   propertyID,
			PropertyName: propertyName,
			Text:         content.Text,
		})
	default:
		return nil, &transform.Error{
			Code:    transform.ErrCodeInvalidFormat,
			Message: fmt.Sprintf("unsupported file type %q", fileType),
		}
	}
}

// processTabular resolves pre-tabulated rows carrying source_code, amount
// and description columns, the same canonical keys the parser path emits.
func (s *Service) processTabular(ctx context.Context, propertyID int, propertyName, fileType string, tableRows []map[string]any) (*transform.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines := make([]report.AccountLine, 0, len(tableRows))
	for i, row := range tableRows {
		code, _ := row[FieldSourceCode].(string)
		if code == "" {
			s.logger.Warn("tabular row without source code skipped", "row", i)
			continue
		}
		amount, err := money.ParseAmount(asRowString(row[FieldAmount]))
		if err != nil {
			s.logger.Warn("tabular row with unparseable amount skipped", "row", i, "error", err)
			continue
		}
		lines = append(lines, report.AccountLine{
			SourceCode:    code,
			Description:   asRowString(row[FieldDescription]),
			Amount:        amount,
			PaymentMethod: report.PaymentMethod(asRowString(row[FieldPaymentMethod])),
			LineNumber:    i + 1,
		})
	}

	rows, misses, err := s.resolveRows(lines, propertyID)
	if err != nil {
		return nil, err
	}

	raw := transform.RawFile{
		PropertyID:   propertyID,
		PropertyName: propertyName,
		FileType:     fileType,
		Content:      transform.Content{Rows: rows},
	}
	result, err := s.engine.Transform(raw, ReportRules())
	if err != nil {
		return nil, fmt.Errorf("failed to transform tabular file for property %d: %w", propertyID, err)
	}

	result.Meta.Errors = append(result.Meta.Errors, misses...)
	return result, nil
}

func asRowString(v any) string {
	s, _ := v.(string)
	return s
}

// ProcessFiles runs ProcessReport over a batch. With ContinueOnError a
// failing report is omitted from the results; without it the first failure
// aborts the batch.
func (s *Service) ProcessFiles(ctx context.Context, files []ReportFile) ([]*transform.Result, error) {
	results := make([]*transform.Result, 0, len(files))
	for _, file := range files {
		result, err := s.ProcessReport(ctx, file)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if s.cfg.ContinueOnError {
				s.logger.Warn("report skipped",
					"property_id", file.PropertyID,
					"error", err)
				continue
			}
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// ConsolidatedLines exposes the parse with credit-card consolidation applied,
// for consumers that want grouped payment-method totals instead of the
// per-method lines.
func (s *Service) ConsolidatedLines(text string) []report.AccountLine {
	return s.parser.ConsolidatedAccountLines(text)
}

// resolveRows attaches target codes and applies multipliers. A resolution
// miss is a data gap in the mapping table: the line is dropped and reported,
// with near-miss codes suggested for diagnosis.
func (s *Service) resolveRows(lines []report.AccountLine, propertyID int) ([]map[string]any, []transform.Error, error) {
	rows := make([]map[string]any, 0, len(lines))
	var misses []transform.Error

	for i, line := range lines {
		m, err := s.resolver.Resolve(line.SourceCode, propertyID)
		if err != nil {
			msg := fmt.Sprintf("no mapping for source code %q (property %d)", line.SourceCode, propertyID)
			if suggestions := s.resolver.Suggest(line.SourceCode, 3); len(suggestions) > 0 {
				msg += ", did you mean " + strings.Join(suggestions, ", ")
			}
			miss := transform.Error{
				Code:     transform.ErrCodeNoMapping,
				RowIndex: i,
				Field:    FieldSourceCode,
				Message:  msg,
			}
			if !s.cfg.ContinueOnError {
				return nil, nil, &miss
			}
			s.logger.Warn("unmapped source code",
				"source_code", line.SourceCode,
				"property_id", propertyID,
				"line_number", line.LineNumber)
			misses = append(misses, miss)
			continue
		}

		rows = append(rows, map[string]any{
			FieldSourceCode:    line.SourceCode,
			FieldTargetCode:    m.TargetCode,
			FieldTargetName:    m.TargetName,
			FieldDescription:   line.Description,
			FieldAmount:        line.Amount.Mul(m.Multiplier).String(),
			FieldPaymentMethod: string(line.PaymentMethod),
			FieldLineNumber:    line.LineNumber,
		})
	}

	return rows, misses, nil
}
