package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/karmatoken/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
deployer: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
token:
  name: Karma
  symbol: KRM
  supply: "1000000000000000000000000"
  max_tx: "1000000000000000000000"
  max_wallet: "2000000000000000000000"
  limited_owner: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
`

func TestLoad_Lifecycle(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "lifecycle.yaml"))
	require.NoError(t, err)

	res, err := Run(context.Background(), sc, testutil.NewTestLogger(t))
	require.NoError(t, err)

	for _, st := range res.Steps {
		assert.True(t, st.Passed, "step %d (%s): %s", st.Index, st.Action, st.Detail)
	}
	assert.True(t, res.Passed())
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", res.Token)
	assert.Equal(t, "0", res.Balances["0x90F79bf6EB2c4f870365E785982E1f101E93b906"])
	assert.Equal(t, "9158135226595044137385", res.Balances["0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"])
}

func TestLoad_DefaultsNameToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launch-day.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o600))

	sc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "launch-day", sc.Name)
	assert.Equal(t, path, sc.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		errSubstr string
	}{
		{
			name:      "malformed yaml",
			doc:       "steps: [",
			errSubstr: "failed to parse scenario",
		},
		{
			name:      "missing deployer",
			doc:       "token: {supply: \"1\"}\n",
			errSubstr: "deployer",
		},
		{
			name:      "missing supply",
			doc:       "deployer: \"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266\"\n",
			errSubstr: "token.supply is required",
		},
		{
			name:      "unknown action",
			doc:       minimal + "steps:\n  - action: mint\n",
			errSubstr: `step 1: unknown action "mint"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestRun_GradesSteps(t *testing.T) {
	doc := minimal + `
steps:
  - action: transfer
    as: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
    to: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
    amount: "5"
  - action: expect_balance
    address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
    amount: "5"
  - action: expect_balance
    address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
    amount: "6"
  - action: enable_trading
    as: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
    expect_error: Only karma deployer
  - action: enable_trading
    as: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
    expect_error: Only karma deployer
  - action: block
    address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
`
	sc, err := Parse([]byte(doc))
	require.NoError(t, err)

	res, err := Run(context.Background(), sc, nil)
	require.NoError(t, err)
	require.Len(t, res.Steps, 6)

	passed := make([]bool, len(res.Steps))
	for i, st := range res.Steps {
		passed[i] = st.Passed
	}
	assert.Equal(t, []bool{true, true, false, true, false, false}, passed)
	assert.Equal(t, 3, res.Failed)
	assert.False(t, res.Passed())
	assert.Contains(t, res.Steps[2].Detail, "balance mismatch")
	assert.Contains(t, res.Steps[4].Detail, "got success")
	assert.Contains(t, res.Steps[5].Detail, "no anti-bot validator")
}

func TestRun_AntiBot(t *testing.T) {
	doc := minimal + `  antibot: "0x000000000000000000000000000000000000b07a"
antibot:
  blocked:
    - "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
steps:
  - action: transfer
    as: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
    to: "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
    amount: "1"
  - action: transfer
    as: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
    to: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
    amount: "1"
  - action: transfer
    as: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
    to: "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
    amount: "1"
    expect_error: "AntiBot: transfer denied"
  - action: unblock
    address: "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
  - action: transfer
    as: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
    to: "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
    amount: "1"
`
	sc, err := Parse([]byte(doc))
	require.NoError(t, err)

	res, err := Run(context.Background(), sc, testutil.NewTestLogger(t))
	require.NoError(t, err)
	for _, st := range res.Steps {
		assert.True(t, st.Passed, "step %d (%s): %s", st.Index, st.Action, st.Detail)
	}
}

func TestRun_SetupErrors(t *testing.T) {
	sc, err := Parse([]byte(minimal + "fund:\n  \"0x70997970C51812dc3A010C7d01b50e0d17dc79C8\": lots\n"))
	require.NoError(t, err)
	_, err = Run(context.Background(), sc, nil)
	assert.ErrorContains(t, err, "invalid amount")

	sc, err = Parse([]byte(`
deployer: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
token:
  name: Karma
  symbol: KRM
  supply: "1000000000000000000000000"
  max_tx: "1"
  max_wallet: "2000000000000000000000"
`))
	require.NoError(t, err)
	_, err = Run(context.Background(), sc, nil)
	assert.ErrorContains(t, err, "maxTxAmount < 0.01%")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sc, err = Parse([]byte(minimal))
	require.NoError(t, err)
	_, err = Run(ctx, sc, nil)
	assert.Error(t, err)
}

func TestRun_ReflectionReachesDistributor(t *testing.T) {
	doc := `
deployer: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
token:
  name: Karma
  symbol: KRM
  supply: "1000000000000000000000000"
  max_tx: "1000000000000000000000"
  max_wallet: "2000000000000000000000"
  marketing_wallet: "0xe422C2757AD02bb90f44cA32976eb2B07086cad0"
  sell_tax: {marketing: 100, reflection: 50}
fund:
  "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266": "100000000000000000000"
steps:
  - action: approve
    as: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
    spender: router
    amount: max
  - action: add_liquidity
    as: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
    amount: "500000000000000000000000"
    eth: "10000000000000000000"
  - action: transfer
    as: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
    to: "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
    amount: "1000000000000000000000"
  - action: enable_trading
    as: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
  - action: approve
    as: "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
    spender: router
    amount: max
  - action: sell
    as: "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
    amount: "100000000000000000000"
  - action: expect_balance
    address: "0xe422C2757AD02bb90f44cA32976eb2B07086cad0"
    amount: "10000000000000000000"
`
	sc, err := Parse([]byte(doc))
	require.NoError(t, err)

	res, err := Run(context.Background(), sc, testutil.NewTestLogger(t))
	require.NoError(t, err)
	for _, st := range res.Steps {
		assert.True(t, st.Passed, "step %d (%s): %s", st.Index, st.Action, st.Detail)
	}
	assert.Equal(t, "5000000000000000000", res.Reflected)
	assert.Equal(t, "900000000000000000000", res.Balances["0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"])
}
