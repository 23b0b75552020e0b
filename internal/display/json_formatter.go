package display

import (
	"encoding/json"
	"fmt"
)

// JSONFormatter renders structured JSON output.
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter returns a Formatter that prints JSON.
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{options: options}
}

func (f *JSONFormatter) FormatServiceList(rows []ServiceRow) string { return f.marshal(rows) }
func (f *JSONFormatter) FormatGitList(rows []GitRow) string         { return f.marshal(rows) }
func (f *JSONFormatter) FormatTaskList(rows []TaskRow) string       { return f.marshal(rows) }

func (f *JSONFormatter) FormatData(data interface{}) error {
	fmt.Println(f.marshal(data))
	return nil
}

func (f *JSONFormatter) SetOptions(options Options) { f.options = options }
func (f *JSONFormatter) GetOptions() Options        { return f.options }

func (f *JSONFormatter) marshal(data interface{}) string {
	if f.options.Quiet {
		b, err := json.Marshal(data)
		if err != nil {
			return `{"error": "failed to format JSON"}`
		}
		return string(b)
	}
	return PrettyJSON(data)
}
