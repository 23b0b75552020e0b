package display

import (
	"fmt"
	"strings"
)

// ConsoleFormatter renders plain, unstyled text lines.
type ConsoleFormatter struct {
	options Options
}

// NewConsoleFormatter returns a Formatter that prints plain text.
func NewConsoleFormatter(options Options) Formatter {
	return &ConsoleFormatter{options: options}
}

func (f *ConsoleFormatter) FormatServiceList(rows []ServiceRow) string {
	if len(rows) == 0 {
		return "No services defined."
	}
	var out []string
	out = append(out, fmt.Sprintf("Services (%d):", len(rows)))
	for _, r := range rows {
		state := "stopped"
		if r.Running {
			state = fmt.Sprintf("running (pid %d)", r.Pid)
		}
		out = append(out, fmt.Sprintf("  %-20s %-8s %s", r.Name, r.Kind, state))
	}
	return strings.Join(out, "\n")
}

func (f *ConsoleFormatter) FormatGitList(rows []GitRow) string {
	if len(rows) == 0 {
		return "No git repos configured."
	}
	var out []string
	for _, r := range rows {
		dirty := "clean"
		if r.Dirty {
			dirty = "dirty"
		}
		out = append(out, fmt.Sprintf("  %-20s %-20s %s (+%d/-%d)", r.Name, r.Branch, dirty, r.Ahead, r.Behind))
	}
	return strings.Join(out, "\n")
}

func (f *ConsoleFormatter) FormatTaskList(rows []TaskRow) string {
	if len(rows) == 0 {
		return "No tasks defined."
	}
	var out []string
	for _, r := range rows {
		out = append(out, fmt.Sprintf("  %-20s %s", r.Name, r.Desc))
	}
	return strings.Join(out, "\n")
}

func (f *ConsoleFormatter) FormatData(data interface{}) error {
	switch d := data.(type) {
	case string:
		fmt.Println(d)
	default:
		fmt.Println(PrettyJSON(d))
	}
	return nil
}

func (f *ConsoleFormatter) SetOptions(options Options) { f.options = options }
func (f *ConsoleFormatter) GetOptions() Options        { return f.options }
