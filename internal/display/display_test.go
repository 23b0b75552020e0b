package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyJSON_SimpleObject(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", PrettyJSON(map[string]int{"a": 1}))
}

func TestFactory_CreatesExpectedFormatterKind(t *testing.T) {
	factory := NewFactory()

	cases := []struct {
		format OutputFormat
		want   interface{}
	}{
		{FormatConsole, &ConsoleFormatter{}},
		{FormatJSON, &JSONFormatter{}},
		{FormatYAML, &YAMLFormatter{}},
		{FormatTable, &TableFormatter{}},
	}
	for _, c := range cases {
		got := factory.CreateFormatter(Options{Format: c.format})
		assert.IsType(t, c.want, got)
	}
}

func TestConsoleFormatter_FormatServiceList(t *testing.T) {
	f := NewConsoleFormatter(Options{})
	out := f.FormatServiceList([]ServiceRow{{Name: "api", Kind: "native", Running: true, Pid: 123}})
	assert.Contains(t, out, "api")
	assert.Contains(t, out, "123")
}

func TestConsoleFormatter_FormatServiceListEmpty(t *testing.T) {
	f := NewConsoleFormatter(Options{})
	assert.Equal(t, "No services defined.", f.FormatServiceList(nil))
}

func TestJSONFormatter_FormatServiceListIsValidJSON(t *testing.T) {
	f := NewJSONFormatter(Options{Quiet: true})
	out := f.FormatServiceList([]ServiceRow{{Name: "api", Kind: "native"}})
	assert.True(t, strings.HasPrefix(out, "["))
	assert.Contains(t, out, `"Name":"api"`)
}

func TestYAMLFormatter_FormatServiceList(t *testing.T) {
	f := NewYAMLFormatter(Options{})
	out := f.FormatServiceList([]ServiceRow{{Name: "api", Kind: "native"}})
	assert.Contains(t, out, "name: api")
}

func TestTableFormatter_FormatServiceListRendersHeaders(t *testing.T) {
	f := NewTableFormatter(Options{})
	out := f.FormatServiceList([]ServiceRow{{Name: "api", Kind: "native", Running: false}})
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "api")
}

func TestSetAndGetOptions(t *testing.T) {
	f := NewConsoleFormatter(Options{Format: FormatConsole})
	f.SetOptions(Options{Format: FormatConsole, Quiet: true})
	assert.True(t, f.GetOptions().Quiet)
}
