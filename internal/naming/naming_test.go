package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildServiceName(t *testing.T) {
	assert.Equal(t, "zap.myproj.api", BuildServiceName("myproj", "api", ""))
	assert.Equal(t, "zap.myproj.a1b2c3.api", BuildServiceName("myproj", "api", "a1b2c3"))
}

func TestBuildPrefix(t *testing.T) {
	assert.Equal(t, "zap.myproj", BuildPrefix("myproj", ""))
	assert.Equal(t, "zap.myproj.a1b2c3", BuildPrefix("myproj", "a1b2c3"))
}

func TestParseServiceName(t *testing.T) {
	parsed, ok := ParseServiceName("zap.myproj.api")
	require.True(t, ok)
	assert.Equal(t, ParsedName{Project: "myproj", Service: "api"}, parsed)

	parsed, ok = ParseServiceName("zap.myproj.a1b2c3.api")
	require.True(t, ok)
	assert.Equal(t, ParsedName{Project: "myproj", Instance: "a1b2c3", Service: "api"}, parsed)
}

func TestParseServiceName_Invalid(t *testing.T) {
	cases := []string{
		"",
		"api",
		"myproj.api",
		"notzap.myproj.api",
		"zap.myproj.instance.extra.api",
	}
	for _, c := range cases {
		_, ok := ParseServiceName(c)
		assert.False(t, ok, "expected %q to be invalid", c)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, instance := range []string{"", "a1b2c3"} {
		wire := BuildServiceName("myproj", "api", instance)
		parsed, ok := ParseServiceName(wire)
		require.True(t, ok)
		assert.Equal(t, "myproj", parsed.Project)
		assert.Equal(t, "api", parsed.Service)
		assert.Equal(t, instance, parsed.Instance)
	}
}
