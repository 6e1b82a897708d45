package contracts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetRollup(t *testing.T) {
	cs, err := GetRollup(".")
	require.NoError(t, err)
	require.Len(t, cs, 2)

	// Bridge goes first, vaults are deployed against it.
	require.Equal(t, "Rollup Bridge", cs[0].Name)
	require.Equal(t, "Rollup FeeVault", cs[1].Name)

	for _, c := range cs {
		require.NotEmpty(t, c.NEF.Script, c.Name)
		require.Equal(t, c.Name, c.Manifest.Name)
	}
}

func TestGetByDirCached(t *testing.T) {
	c1, err := GetByDir(feeVaultDir)
	require.NoError(t, err)

	c2, err := GetByDir(feeVaultDir)
	require.NoError(t, err)
	require.Equal(t, c1, c2)
}

func TestGetByDirMissing(t *testing.T) {
	_, err := GetByDir(t.TempDir())
	require.Error(t, err)
}

func TestFeeVaultABI(t *testing.T) {
	c, err := GetByDir(feeVaultDir)
	require.NoError(t, err)

	m := c.Manifest
	for _, method := range []string{
		"withdraw",
		"recipient",
		"minWithdrawalAmount",
		"withdrawalTarget",
		"bridge",
		"totalProcessed",
		"gas",
		"version",
		"update",
		"onNEP17Payment",
	} {
		require.NotNil(t, m.ABI.GetMethod(method, -1), method)
	}

	require.NotNil(t, m.ABI.GetEvent("Withdrawal"))
	require.NotNil(t, m.ABI.GetEvent("WithdrawalX"))
}

func TestBridgeABI(t *testing.T) {
	c, err := GetByDir(bridgeDir)
	require.NoError(t, err)

	m := c.Manifest
	for _, method := range []string{
		"getRelay",
		"getReceipt",
		"iterateRelays",
		"relayCount",
		"finalizeRelay",
		"gas",
		"version",
		"update",
		"onNEP17Payment",
	} {
		require.NotNil(t, m.ABI.GetMethod(method, -1), method)
	}

	require.NotNil(t, m.ABI.GetEvent("Relay"))
	require.NotNil(t, m.ABI.GetEvent("RelayCompleted"))
}
