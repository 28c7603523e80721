// Package transform converts raw tabular or line-oriented input rows into
// typed, validated output records driven by declarative field rules. The
// engine runs one linear pass per file under a configurable error policy;
// it holds no mutable state across calls.
package transform

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nightaudit/ledgerbridge/pkg/money"
)

// Engine applies rule sets to raw files.
type Engine struct {
	cfg      Config
	registry *Registry
	logger   *slog.Logger
}

func NewEngine(cfg Config, registry *Registry, logger *slog.Logger) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = DefaultConfig().MaxErrors
	}
	return &Engine{cfg: cfg, registry: registry, logger: logger}
}

// Transform processes one file against its rule set. An empty rule set is a
// configuration gap and fails hard with NO_MAPPING no matter the error
// policy. Row-level failures are governed by ContinueOnError and MaxErrors.
func (e *Engine) Transform(file RawFile, rules []Rule) (*Result, error) {
	if len(rules) == 0 {
		return nil, &Error{
			Code:    ErrCodeNoMapping,
			Message: fmt.Sprintf("no transformation rules for property %d", file.PropertyID),
		}
	}

	result := &Result{
		PropertyID:   file.PropertyID,
		PropertyName: file.PropertyName,
		Meta: ResultMeta{
			RunID:          uuid.New(),
			SourceFileType: file.FileType,
		},
	}

	rows := rowsFromContent(file.Content)
	for i, row := range rows {
		record, rowErr := e.transformRow(i, row, rules)
		if rowErr != nil {
			if !e.cfg.ContinueOnError {
				return nil, rowErr
			}
			result.Meta.Errors = append(result.Meta.Errors, *rowErr)
			e.logger.Warn("row skipped",
				"property_id", file.PropertyID,
				"row", rowErr.RowIndex,
				"code", rowErr.Code,
				"error", rowErr.Message)
			if len(result.Meta.Errors) >= e.cfg.MaxErrors {
				result.Meta.Warnings = append(result.Meta.Warnings,
					fmt.Sprintf("Stopped processing after %d errors", e.cfg.MaxErrors))
				break
			}
			continue
		}
		if e.cfg.IncludeDebugInfo {
			record.Meta.SourceRow = row
		}
		result.Records = append(result.Records, record)
	}

	result.Meta.RecordCount = len(result.Records)
	return result, nil
}

// TransformAll processes files sequentially. With ContinueOnError a failing
// file is omitted from the results; without it the first failure aborts the
// batch.
func (e *Engine) TransformAll(files []RawFile, rulesByProperty map[int][]Rule) ([]*Result, error) {
	results := make([]*Result, 0, len(files))
	for _, file := range files {
		result, err := e.Transform(file, rulesByProperty[file.PropertyID])
		if err != nil {
			if e.cfg.ContinueOnError {
				e.logger.Warn("file skipped",
					"property_id", file.PropertyID,
					"file_type", file.FileType,
					"error", err)
				continue
			}
			return nil, fmt.Errorf("failed to transform file for property %d: %w", file.PropertyID, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (e *Engine) transformRow(index int, row map[string]any, rules []Rule) (Record, *Error) {
	record := Record{
		Fields: make(map[string]any, len(rules)),
		Meta:   RecordMeta{SourceRowIndex: index},
	}

	for _, rule := range rules {
		value := resolvePath(row, rule.SourcePath)

		if value == nil {
			switch {
			case rule.DefaultValue != nil:
				value = rule.DefaultValue
			case rule.Required:
				return Record{}, &Error{
					Code:     ErrCodeValidationError,
					RowIndex: index,
					Field:    rule.TargetField,
					Message:  fmt.Sprintf("Required field %s is null or undefined", rule.SourcePath),
				}
			default:
				continue
			}
		}

		coerced, err := coerceType(value, rule.DataType)
		if err != nil {
			return Record{}, &Error{
				Code:     ErrCodeTransformationError,
				RowIndex: index,
				Field:    rule.TargetField,
				Message:  err.Error(),
			}
		}

		transformed, warning := e.applyTransform(coerced, rule)
		if warning != "" {
			record.Meta.Warnings = append(record.Meta.Warnings, warning)
		}

		for _, violation := range checkValidation(transformed, rule.Validation) {
			if e.cfg.ValidationMode == ModeStrict {
				return Record{}, &Error{
					Code:     ErrCodeValidationError,
					RowIndex: index,
					Field:    rule.TargetField,
					Message:  violation,
				}
			}
			record.Meta.Warnings = append(record.Meta.Warnings,
				fmt.Sprintf("%s: %s", rule.TargetField, violation))
		}

		record.Fields[rule.TargetField] = transformed
	}

	return record, nil
}

// rowsFromContent flattens the tagged union into row maps. Line-oriented
// content becomes one row per line; text with no structured rows yields
// nothing, since raw text extraction happens upstream.
func rowsFromContent(c Content) []map[string]any {
	switch {
	case len(c.Rows) > 0:
		return c.Rows
	case len(c.StructuredData) > 0:
		return c.StructuredData
	case len(c.Lines) > 0:
		rows := make([]map[string]any, len(c.Lines))
		for i, line := range c.Lines {
			rows[i] = map[string]any{"line": line, "line_number": i + 1}
		}
		return rows
	default:
		return nil
	}
}

// resolvePath walks a dot-separated path through nested maps. A missing
// intermediate segment resolves to nil, not an error.
func resolvePath(row map[string]any, path string) any {
	var current any = row
	for _, segment := range strings.Split(path, ".") {
		switch m := current.(type) {
		case map[string]any:
			current = m[segment]
		case map[string]string:
			v, ok := m[segment]
			if !ok {
				return nil
			}
			current = v
		default:
			return nil
		}
	}
	return current
}

func coerceType(value any, dataType DataType) (any, error) {
	switch dataType {
	case TypeNumber:
		return coerceNumber(value)
	case TypeDate:
		return coerceDate(value)
	case TypeBoolean:
		return coerceBoolean(value)
	case TypeString, "":
		return asString(value), nil
	default:
		return nil, fmt.Errorf("unsupported data type %q", dataType)
	}
}

func coerceNumber(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("Cannot convert %v to number", v)
		}
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("Cannot convert %q to number", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("Cannot convert %v to number", value)
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
}

func coerceDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("Cannot convert %q to date", v)
	default:
		return time.Time{}, fmt.Errorf("Cannot convert %v to date", value)
	}
}

func coerceBoolean(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1", "on":
			return true, nil
		case "false", "no", "0", "off":
			return false, nil
		}
		return false, fmt.Errorf("Cannot convert %q to boolean", v)
	default:
		return false, fmt.Errorf("Cannot convert %v to boolean", value)
	}
}

// applyTransform runs the rule's named transformation. Failures inside a
// transformation never reject the row; the value passes through unchanged
// with a warning on the record.
func (e *Engine) applyTransform(value any, rule Rule) (any, string) {
	switch rule.Transform {
	case KindNone:
		return value, ""
	case KindUppercase:
		return strings.ToUpper(asString(value)), ""
	case KindLowercase:
		return strings.ToLower(asString(value)), ""
	case KindTrim:
		return strings.TrimSpace(asString(value)), ""
	case KindCurrency:
		d, err := money.ParseAmount(asString(value))
		if err != nil {
			return value, fmt.Sprintf("%s: cannot format %q as currency", rule.TargetField, asString(value))
		}
		// A "currency" param formats to that currency's fraction digits;
		// without one the canonical two-decimal form applies.
		if code := rule.TransformParams["currency"]; code != "" {
			return d.StringFixed(int32(money.Fraction(code))), ""
		}
		return money.FormatFixed(d), ""
	case KindDateFormat:
		layout := rule.TransformParams["pattern"]
		if layout == "" {
			layout = "2006-01-02"
		}
		t, err := coerceDate(value)
		if err != nil {
			return value, fmt.Sprintf("%s: cannot format %v as date", rule.TargetField, value)
		}
		return t.Format(layout), ""
	case KindCustom:
		name := rule.TransformParams["name"]
		fn, ok := e.registry.Lookup(name)
		if !ok {
			return value, fmt.Sprintf("%s: unknown custom transformation %q", rule.TargetField, name)
		}
		return fn(value), ""
	default:
		return value, fmt.Sprintf("%s: unknown transformation %q", rule.TargetField, rule.Transform)
	}
}

func checkValidation(value any, v *Validation) []string {
	if v == nil {
		return nil
	}

	s := asString(value)
	var violations []string

	if v.MinLength != nil && len(s) < *v.MinLength {
		violations = append(violations, "Value too short")
	}
	if v.MaxLength != nil && len(s) > *v.MaxLength {
		violations = append(violations, "Value too long")
	}
	if v.Pattern != "" {
		re, err := regexp.Compile(v.Pattern)
		if err != nil {
			violations = append(violations, fmt.Sprintf("Invalid validation pattern %q", v.Pattern))
		} else if !re.MatchString(s) {
			violations = append(violations, "Value does not match pattern")
		}
	}
	if len(v.AllowedValues) > 0 {
		allowed := false
		for _, candidate := range v.AllowedValues {
			if s == candidate {
				allowed = true
				break
			}
		}
		if !allowed {
			violations = append(violations, "Value not in allowed list")
		}
	}

	return violations
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
