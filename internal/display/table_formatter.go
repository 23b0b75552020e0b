package display

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	zstrings "zapper/pkg/strings"
)

// TableFormatter renders rich, colored tables via go-pretty.
type TableFormatter struct {
	options Options
}

// NewTableFormatter returns a Formatter that prints go-pretty tables.
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{options: options}
}

func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) FormatServiceList(rows []ServiceRow) string {
	if len(rows) == 0 {
		return f.emptyMessage("No services defined")
	}

	t := f.createTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("KIND"),
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("PID"),
	})

	for _, r := range rows {
		status := text.FgRed.Sprint("stopped")
		pid := text.FgHiBlack.Sprint("-")
		if r.Running {
			status = text.FgGreen.Sprint("running")
			pid = fmt.Sprintf("%d", r.Pid)
		}
		t.AppendRow(table.Row{text.FgHiCyan.Sprint(r.Name), r.Kind, status, pid})
	}

	var result strings.Builder
	t.SetOutputMirror(&result)
	t.Render()
	result.WriteString(fmt.Sprintf("\n%s %s %s\n", text.FgHiBlue.Sprint("Total:"), text.FgHiWhite.Sprint(len(rows)), text.FgHiBlue.Sprint("services")))
	return result.String()
}

func (f *TableFormatter) FormatGitList(rows []GitRow) string {
	if len(rows) == 0 {
		return f.emptyMessage("No git repos configured")
	}

	t := f.createTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("BRANCH"),
		text.FgHiCyan.Sprint("DIRTY"),
		text.FgHiCyan.Sprint("AHEAD"),
		text.FgHiCyan.Sprint("BEHIND"),
	})
	for _, r := range rows {
		dirty := text.FgGreen.Sprint("clean")
		if r.Dirty {
			dirty = text.FgYellow.Sprint("dirty")
		}
		t.AppendRow(table.Row{text.FgHiCyan.Sprint(r.Name), r.Branch, dirty, r.Ahead, r.Behind})
	}

	var result strings.Builder
	t.SetOutputMirror(&result)
	t.Render()
	return result.String()
}

func (f *TableFormatter) FormatTaskList(rows []TaskRow) string {
	if len(rows) == 0 {
		return f.emptyMessage("No tasks defined")
	}

	t := f.createTable()
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("NAME"), text.FgHiCyan.Sprint("DESCRIPTION")})
	for _, r := range rows {
		t.AppendRow(table.Row{text.FgHiCyan.Sprint(r.Name), zstrings.TruncateDescription(r.Desc, zstrings.DefaultDescriptionMaxLen)})
	}

	var result strings.Builder
	t.SetOutputMirror(&result)
	t.Render()
	return result.String()
}

func (f *TableFormatter) FormatData(data interface{}) error {
	switch d := data.(type) {
	case map[string]interface{}:
		return f.formatObjectData(d)
	case string:
		fmt.Println(d)
	default:
		fmt.Printf("%v\n", d)
	}
	return nil
}

func (f *TableFormatter) formatObjectData(data map[string]interface{}) error {
	t := f.createTable()
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("KEY"), text.FgHiCyan.Sprint("VALUE")})
	for k, v := range data {
		t.AppendRow(table.Row{text.FgHiCyan.Sprint(k), fmt.Sprintf("%v", v)})
	}
	t.SetOutputMirror(os.Stdout)
	t.Render()
	return nil
}

func (f *TableFormatter) emptyMessage(msg string) string {
	return fmt.Sprintf("%s %s\n", text.FgYellow.Sprint("!"), text.FgYellow.Sprint(msg))
}

func (f *TableFormatter) SetOptions(options Options) { f.options = options }
func (f *TableFormatter) GetOptions() Options        { return f.options }
