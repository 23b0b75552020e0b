package display

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter renders YAML output.
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter returns a Formatter that prints YAML.
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{options: options}
}

func (f *YAMLFormatter) FormatServiceList(rows []ServiceRow) string { return f.marshal(rows) }
func (f *YAMLFormatter) FormatGitList(rows []GitRow) string         { return f.marshal(rows) }
func (f *YAMLFormatter) FormatTaskList(rows []TaskRow) string       { return f.marshal(rows) }

func (f *YAMLFormatter) FormatData(data interface{}) error {
	fmt.Print(f.marshal(data))
	return nil
}

func (f *YAMLFormatter) SetOptions(options Options) { f.options = options }
func (f *YAMLFormatter) GetOptions() Options        { return f.options }

func (f *YAMLFormatter) marshal(data interface{}) string {
	b, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Sprintf("error: %q\n", err.Error())
	}
	return string(b)
}
