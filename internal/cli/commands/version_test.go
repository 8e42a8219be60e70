package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/karmatoken/internal/cli/config"
	"github.com/leapstack-labs/karmatoken/internal/cli/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runVersion(t *testing.T, version string) string {
	t.Helper()
	cmd := NewVersionCommand(version, "abc1234", "2024-05-01")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestNewVersionCommand(t *testing.T) {
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	tests := []struct {
		name    string
		version string
		wantOut []string
	}{
		{
			name:    "release",
			version: "0.1.0",
			wantOut: []string{"karmatoken v0.1.0", "commit abc1234, built 2024-05-01", "per 1000", "total supply / 10000"},
		},
		{
			name:    "dev build",
			version: "dev",
			wantOut: []string{"karmatoken vdev"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runVersion(t, tt.version)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestNewVersionCommand_JSON(t *testing.T) {
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	t.Setenv("KARMATOKEN_OUTPUT", "json")

	var info output.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(runVersion(t, "1.2.3")), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc1234", info.Commit)
	assert.Equal(t, uint64(1000), info.TaxDenominator)
	assert.Equal(t, uint64(10_000), info.LimitFloorDivisor)
	assert.NotEmpty(t, info.GoVersion)
}

func TestVersionCommandMetadata(t *testing.T) {
	cmd := NewVersionCommand("test", "", "")
	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Contains(t, cmd.Long, "floor")
}
