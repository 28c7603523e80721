package transform

// DataType is the target type a rule coerces its resolved value into.
type DataType string

const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeDate    DataType = "date"
	TypeBoolean DataType = "boolean"
)

// TransformKind names the built-in value transformation applied after
// coercion. KindCustom dispatches through the engine registry by the
// "name" transform parameter.
type TransformKind string

const (
	KindNone       TransformKind = ""
	KindUppercase  TransformKind = "uppercase"
	KindLowercase  TransformKind = "lowercase"
	KindTrim       TransformKind = "trim"
	KindCurrency   TransformKind = "currency"
	KindDateFormat TransformKind = "date_format"
	KindCustom     TransformKind = "custom"
)

// Validation holds the advisory constraints checked after transformation.
// Failures annotate the record, they never reject it on their own.
type Validation struct {
	MinLength     *int
	MaxLength     *int
	Pattern       string
	AllowedValues []string
}

// Rule maps one source path to one typed output field.
type Rule struct {
	SourcePath      string
	TargetField     string
	DataType        DataType
	Required        bool
	DefaultValue    any
	Transform       TransformKind
	TransformParams map[string]string
	Validation      *Validation
}

// Mode selects how validation-constraint failures are treated.
type Mode string

const (
	// ModeLenient records validation failures as warnings on the record.
	ModeLenient Mode = "lenient"
	// ModeStrict promotes validation failures to row-level errors.
	ModeStrict Mode = "strict"
)

// Config governs the engine's error policy.
type Config struct {
	ContinueOnError  bool
	MaxErrors        int
	IncludeDebugInfo bool
	ValidationMode   Mode
}

func DefaultConfig() Config {
	return Config{
		ContinueOnError: true,
		MaxErrors:       100,
		ValidationMode:  ModeLenient,
	}
}
