package cli

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintVersion(t *testing.T) {
	setFlag(t, &version, "1.2.3")
	setFlag(t, &commit, "abc123")
	setFlag(t, &date, "2026-01-01")

	var buf bytes.Buffer
	printVersion(&buf, false)
	out := buf.String()
	assert.Contains(t, out, "plantdash v1.2.3")
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "built: 2026-01-01")
	assert.Contains(t, out, "go: "+runtime.Version())

	buf.Reset()
	printVersion(&buf, true)
	assert.Equal(t, "1.2.3\n", buf.String())
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"dev", "dev"},
		{"1.0.0", "v1.0.0"},
		{"v1.0.0", "v1.0.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatVersion(tt.in), tt.in)
	}
}

func TestSetVersionInfo(t *testing.T) {
	setFlag(t, &version, version)
	setFlag(t, &commit, commit)
	setFlag(t, &date, date)
	setFlag(t, &rootCmd.Version, rootCmd.Version)

	SetVersionInfo("0.4.0", "deadbeef", "today")
	assert.Equal(t, "0.4.0", GetVersion())
	assert.Equal(t, "v0.4.0", rootCmd.Version)
}
