// Package display renders zapper's service/status/git data for the CLI
// layer: an Options/Formatter/Factory shape covering console, JSON,
// YAML, and table output for services, git repos, and tasks.
package display

// OutputFormat is the desired rendering for a CLI command's output.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatTable   OutputFormat = "table"
)

// Options configures a Formatter's behavior.
type Options struct {
	Format OutputFormat
	Quiet  bool
	Color  bool
}

// ServiceRow is one service's status, as shown by `zapper status`.
type ServiceRow struct {
	Name    string
	Kind    string // "native" or "docker"
	Running bool
	Pid     int
}

// GitRow is one repo's git status, as shown by `zapper git status`.
type GitRow struct {
	Name   string
	Branch string
	Dirty  bool
	Ahead  int
	Behind int
}

// TaskRow is one declared task, as shown by `zapper task list`.
type TaskRow struct {
	Name string
	Desc string
}

// Formatter renders zapper's domain data in one output shape.
type Formatter interface {
	FormatServiceList(rows []ServiceRow) string
	FormatGitList(rows []GitRow) string
	FormatTaskList(rows []TaskRow) string
	FormatData(data interface{}) error

	SetOptions(options Options)
	GetOptions() Options
}

// Factory creates Formatters for a given Options.Format.
type Factory interface {
	CreateFormatter(options Options) Formatter
}

// NewFactory returns the default Factory.
func NewFactory() Factory {
	return &factory{}
}

type factory struct{}

func (f *factory) CreateFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatTable:
		return NewTableFormatter(options)
	case FormatConsole:
		fallthrough
	default:
		return NewConsoleFormatter(options)
	}
}
