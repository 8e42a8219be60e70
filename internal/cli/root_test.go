package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/karmatoken/internal/cli/config"
	"github.com/leapstack-labs/karmatoken/internal/cli/output"
	"github.com/leapstack-labs/karmatoken/internal/cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	deployer = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	user2    = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
)

const projectConfig = `
state_path: state.db
token:
  name: Karma
  symbol: KRM
  supply: "1000000000000000000000000"
  max_tx: "1000000000000000000000"
  max_wallet: "2000000000000000000000"
  karma_deployer: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
`

func writeProject(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cfgPath = testutil.WriteProject(t, projectConfig)
	return filepath.Dir(cfgPath), cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRoot_EndToEnd(t *testing.T) {
	_, cfgPath := writeProject(t)
	base := []string{"--config", cfgPath, "-o", "json"}
	as := func(addr string, args ...string) []string {
		return append(append(append([]string{}, base...), "--as", addr), args...)
	}

	_, err := run(t, append(base, "init")...)
	require.NoError(t, err)

	_, err = run(t, as(deployer, "trading", "enable")...)
	require.NoError(t, err)

	out, err := run(t, as(deployer, "transfer", user2, "12.5", "--units")...)
	require.NoError(t, err)
	var tx output.TxResult
	require.NoError(t, json.Unmarshal([]byte(out), &tx))
	assert.Equal(t, "12500000000000000000", tx.Amount)

	out, err = run(t, append(base, "balance", user2)...)
	require.NoError(t, err)
	var bal []output.BalanceInfo
	require.NoError(t, json.Unmarshal([]byte(out), &bal))
	require.Len(t, bal, 1)
	assert.Equal(t, "12.5", bal[0].Units)

	out, err = run(t, append(base, "history", "--kind", "trading_enabled")...)
	require.NoError(t, err)
	var events []output.EventInfo
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	require.Len(t, events, 1)
	assert.Equal(t, deployer, events[0].Caller)
}

func TestRoot_StateFlag(t *testing.T) {
	dir, cfgPath := writeProject(t)

	_, err := run(t, "--config", cfgPath, "init")
	require.NoError(t, err)

	_, err = run(t, "--config", cfgPath, "--state", filepath.Join(dir, "other.db"), "info")
	assert.ErrorContains(t, err, "karmatoken init")
}

func TestRoot_InvalidConfig(t *testing.T) {
	_, cfgPath := writeProject(t)

	_, err := run(t, "--config", cfgPath, "-o", "yaml", "info")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = run(t, "--config", cfgPath, "--log-level", "loud", "info")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestRoot_VersionAndCompletion(t *testing.T) {
	writeProject(t)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "karmatoken v"+Version)

	out, err = run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "karmatoken")

	_, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestGetConfigAndRenderer_Defaults(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, config.DefaultStateFile, GetConfig(ctx).StatePath)
	assert.NotNil(t, GetRenderer(ctx))
}
