package tests

import (
	"encoding/json"
	"path"
	"testing"

	"github.com/nspcc-dev/feevault-contract/common"
	"github.com/nspcc-dev/feevault-contract/contracts/feevault/feevaultconst"
	"github.com/nspcc-dev/feevault-contract/contracts/feevault/withdrawtarget"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const (
	feeVaultPath  = "../contracts/feevault"
	nep17RecvPath = "../internal/testcontracts/nep17recv"
	refuserPath   = "../internal/testcontracts/refuser"
)

func deployFeeVaultContract(t *testing.T, e *neotest.Executor, recipient util.Uint160,
	minWithdrawal int64, target withdrawtarget.Type, bridge any) util.Uint160 {
	args := make([]any, 4)
	args[0] = recipient
	args[1] = minWithdrawal
	args[2] = int64(target)
	args[3] = bridge

	c := neotest.CompileFile(t, e.CommitteeHash, feeVaultPath, path.Join(feeVaultPath, "config.yml"))
	e.DeployContract(t, c, args)
	return c.Hash
}

// deployAuxContract deploys one of the auxiliary testing contracts from the
// given source directory.
func deployAuxContract(t *testing.T, e *neotest.Executor, dir string) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, dir, path.Join(dir, "config.yml"))
	e.DeployContract(t, c, nil)
	return c.Hash
}

func TestFeeVaultDeploy(t *testing.T) {
	e := newExecutor(t)
	ctr := neotest.CompileFile(t, e.CommitteeHash, feeVaultPath, path.Join(feeVaultPath, "config.yml"))

	recipient := randomUint160()
	bridge := randomUint160()

	e.DeployContractCheckFAULT(t, ctr,
		[]any{[]byte{1, 2, 3}, int64(100), int64(withdrawtarget.OtherChain), nil},
		"incorrect length of recipient script hash")
	e.DeployContractCheckFAULT(t, ctr,
		[]any{recipient, int64(-1), int64(withdrawtarget.OtherChain), nil},
		"negative minimum withdrawal amount")
	e.DeployContractCheckFAULT(t, ctr,
		[]any{recipient, int64(100), int64(withdrawtarget.SameChain), []byte{1, 2, 3}},
		"incorrect length of bridge contract script hash")
	e.DeployContractCheckFAULT(t, ctr,
		[]any{recipient, int64(100), int64(42), bridge},
		"unknown withdrawal target")

	e.DeployContract(t, ctr, []any{recipient, int64(100), int64(withdrawtarget.SameChain), bridge})

	c := e.CommitteeInvoker(ctr.Hash)
	c.Invoke(t, stackitem.Make(recipient.BytesBE()), "recipient")
	c.Invoke(t, int64(100), "minWithdrawalAmount")
	c.Invoke(t, int64(withdrawtarget.SameChain), "withdrawalTarget")
	c.Invoke(t, stackitem.Make(bridge.BytesBE()), "bridge")
	c.Invoke(t, int64(0), "totalProcessed")
	c.Invoke(t, int64(0), "gas")
	c.Invoke(t, int64(common.Version), "version")

	t.Run("without bridge", func(t *testing.T) {
		e := newExecutor(t)
		c := e.CommitteeInvoker(deployFeeVaultContract(t, e, recipient, 0, withdrawtarget.OtherChain, nil))

		c.Invoke(t, int64(withdrawtarget.OtherChain), "withdrawalTarget")
		c.Invoke(t, int64(0), "minWithdrawalAmount")

		s, err := c.TestInvoke(t, "bridge")
		require.NoError(t, err)
		require.Equal(t, stackitem.Null{}, s.Top().Item())
	})
}

func TestFeeVaultDeposit(t *testing.T) {
	e := newExecutor(t)
	recipient := randomUint160()
	vault := deployFeeVaultContract(t, e, recipient, 100, withdrawtarget.OtherChain, nil)
	c := e.CommitteeInvoker(vault)

	transferGAS(t, e, vault, 100)
	require.EqualValues(t, 100, gasBalance(t, e, vault))
	c.Invoke(t, int64(100), "gas")

	transferGAS(t, e, vault, 23)
	c.Invoke(t, int64(123), "gas")

	t.Run("non-GAS token", func(t *testing.T) {
		neoInvoker := e.CommitteeInvoker(e.NativeHash(t, nativenames.Neo))
		neoInvoker.InvokeFail(t, "ABORT", "transfer", e.CommitteeHash, vault, int64(1), nil)
	})
}

func TestFeeVaultWithdrawBelowThreshold(t *testing.T) {
	e := newExecutor(t)
	recipient := randomUint160()
	vault := deployFeeVaultContract(t, e, recipient, 100, withdrawtarget.OtherChain, nil)
	c := e.CommitteeInvoker(vault)

	transferGAS(t, e, vault, 50)

	cAcc := c.WithSigners(c.NewAccount(t))
	cAcc.InvokeFail(t, "vault holds 50, minimum withdrawal is 100", "withdraw")

	c.Invoke(t, int64(50), "gas")
	c.Invoke(t, int64(0), "totalProcessed")
	require.EqualValues(t, 0, gasBalance(t, e, recipient))
}

func TestFeeVaultWithdrawOtherChain(t *testing.T) {
	e := newExecutor(t)
	recipient := randomUint160()
	vault := deployFeeVaultContract(t, e, recipient, 100, withdrawtarget.OtherChain, nil)
	c := e.CommitteeInvoker(vault)

	transferGAS(t, e, vault, 150)

	acc := c.NewAccount(t)
	cAcc := c.WithSigners(acc)

	h := cAcc.Invoke(t, stackitem.Null{}, "withdraw")
	aer := cAcc.CheckHalt(t, h)

	sender := acc.ScriptHash()
	gasHash := e.NativeHash(t, nativenames.Gas)

	require.Equal(t, 3, len(aer.Events))
	requireEvent(t, aer.Events[0], vault, "Withdrawal",
		stackitem.Make(150), stackitem.Make(recipient.BytesBE()), stackitem.Make(sender.BytesBE()))
	requireEvent(t, aer.Events[1], vault, "WithdrawalX",
		stackitem.Make(150), stackitem.Make(recipient.BytesBE()), stackitem.Make(sender.BytesBE()),
		stackitem.Make(int64(withdrawtarget.OtherChain)))
	requireEvent(t, aer.Events[2], gasHash, "Transfer",
		stackitem.Make(vault.BytesBE()), stackitem.Make(recipient.BytesBE()), stackitem.Make(150))

	c.Invoke(t, int64(0), "gas")
	c.Invoke(t, int64(150), "totalProcessed")
	require.EqualValues(t, 150, gasBalance(t, e, recipient))

	cAcc.InvokeFail(t, "vault holds 0, minimum withdrawal is 100", "withdraw")

	transferGAS(t, e, vault, 100)
	cAcc.Invoke(t, stackitem.Null{}, "withdraw")

	c.Invoke(t, int64(250), "totalProcessed")
	require.EqualValues(t, 250, gasBalance(t, e, recipient))
}

func TestFeeVaultWithdrawSameChain(t *testing.T) {
	e := newExecutor(t)
	recipient := randomUint160()
	bridge := deployBridgeContract(t, e)
	vault := deployFeeVaultContract(t, e, recipient, 100, withdrawtarget.SameChain, bridge)
	c := e.CommitteeInvoker(vault)

	transferGAS(t, e, vault, 150)

	acc := c.NewAccount(t)
	cAcc := c.WithSigners(acc)

	h := cAcc.Invoke(t, stackitem.Null{}, "withdraw")
	aer := cAcc.CheckHalt(t, h)

	sender := acc.ScriptHash()
	gasHash := e.NativeHash(t, nativenames.Gas)
	id := relayID(encodeTestReceipt(1, vault, recipient, 150, feevaultconst.WithdrawMinGas, nil))

	require.Equal(t, 4, len(aer.Events))
	requireEvent(t, aer.Events[0], vault, "Withdrawal",
		stackitem.Make(150), stackitem.Make(recipient.BytesBE()), stackitem.Make(sender.BytesBE()))
	requireEvent(t, aer.Events[1], vault, "WithdrawalX",
		stackitem.Make(150), stackitem.Make(recipient.BytesBE()), stackitem.Make(sender.BytesBE()),
		stackitem.Make(int64(withdrawtarget.SameChain)))
	requireEvent(t, aer.Events[2], gasHash, "Transfer",
		stackitem.Make(vault.BytesBE()), stackitem.Make(bridge.BytesBE()), stackitem.Make(150))
	requireEvent(t, aer.Events[3], bridge, "Relay",
		stackitem.Make(1), stackitem.Make(id), stackitem.Make(vault.BytesBE()),
		stackitem.Make(recipient.BytesBE()), stackitem.Make(150), stackitem.Make(feevaultconst.WithdrawMinGas))

	c.Invoke(t, int64(0), "gas")
	c.Invoke(t, int64(150), "totalProcessed")
	require.EqualValues(t, 150, gasBalance(t, e, bridge))
	require.EqualValues(t, 0, gasBalance(t, e, recipient))

	cBridge := e.CommitteeInvoker(bridge)
	cBridge.Invoke(t, int64(1), "relayCount")

	s, err := cBridge.TestInvoke(t, "getRelay", int64(1))
	require.NoError(t, err)
	requireRelayRecord(t, s.Top().Array(), 1, id, vault, recipient, 150, feevaultconst.WithdrawMinGas, nil, false)
}

func TestFeeVaultWithdrawZeroBalance(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		e := newExecutor(t)
		recipient := randomUint160()
		vault := deployFeeVaultContract(t, e, recipient, 0, withdrawtarget.OtherChain, nil)
		c := e.CommitteeInvoker(vault)

		h := c.Invoke(t, stackitem.Null{}, "withdraw")
		aer := c.CheckHalt(t, h)

		require.Equal(t, 3, len(aer.Events))
		requireEvent(t, aer.Events[0], vault, "Withdrawal",
			stackitem.Make(0), stackitem.Make(recipient.BytesBE()), stackitem.Make(e.CommitteeHash.BytesBE()))
		requireEvent(t, aer.Events[1], vault, "WithdrawalX",
			stackitem.Make(0), stackitem.Make(recipient.BytesBE()), stackitem.Make(e.CommitteeHash.BytesBE()),
			stackitem.Make(int64(withdrawtarget.OtherChain)))

		c.Invoke(t, int64(0), "totalProcessed")
		require.EqualValues(t, 0, gasBalance(t, e, recipient))
	})

	t.Run("via bridge", func(t *testing.T) {
		e := newExecutor(t)
		recipient := randomUint160()
		bridge := deployBridgeContract(t, e)
		vault := deployFeeVaultContract(t, e, recipient, 0, withdrawtarget.SameChain, bridge)
		c := e.CommitteeInvoker(vault)

		h := c.Invoke(t, stackitem.Null{}, "withdraw")
		aer := c.CheckHalt(t, h)
		require.Equal(t, 4, len(aer.Events))

		c.Invoke(t, int64(0), "totalProcessed")

		cBridge := e.CommitteeInvoker(bridge)
		cBridge.Invoke(t, int64(1), "relayCount")

		id := relayID(encodeTestReceipt(1, vault, recipient, 0, feevaultconst.WithdrawMinGas, nil))

		s, err := cBridge.TestInvoke(t, "getRelay", int64(1))
		require.NoError(t, err)
		requireRelayRecord(t, s.Top().Array(), 1, id, vault, recipient, 0, feevaultconst.WithdrawMinGas, nil, false)
	})
}

func TestFeeVaultWithdrawToContract(t *testing.T) {
	e := newExecutor(t)
	recv := deployAuxContract(t, e, nep17RecvPath)
	vault := deployFeeVaultContract(t, e, recv, 100, withdrawtarget.OtherChain, nil)
	c := e.CommitteeInvoker(vault)

	transferGAS(t, e, vault, 150)
	c.Invoke(t, stackitem.Null{}, "withdraw")

	require.EqualValues(t, 150, gasBalance(t, e, recv))

	s, err := e.CommitteeInvoker(recv).TestInvoke(t, "get")
	require.NoError(t, err)

	call := s.Top().Array()
	require.Len(t, call, 3)
	requireBytesItem(t, call[0], vault.BytesBE())
	requireIntItem(t, call[1], 150)
	require.Equal(t, stackitem.Null{}, call[2])
}

func TestFeeVaultWithdrawRollback(t *testing.T) {
	t.Run("refusing recipient", func(t *testing.T) {
		e := newExecutor(t)
		refuser := deployAuxContract(t, e, refuserPath)
		vault := deployFeeVaultContract(t, e, refuser, 100, withdrawtarget.OtherChain, nil)
		c := e.CommitteeInvoker(vault)

		transferGAS(t, e, vault, 150)
		c.InvokeFail(t, "payments are refused", "withdraw")

		c.Invoke(t, int64(150), "gas")
		c.Invoke(t, int64(0), "totalProcessed")
		require.EqualValues(t, 0, gasBalance(t, e, refuser))
	})

	t.Run("refusing bridge", func(t *testing.T) {
		e := newExecutor(t)
		refuser := deployAuxContract(t, e, refuserPath)
		recipient := randomUint160()
		vault := deployFeeVaultContract(t, e, recipient, 100, withdrawtarget.SameChain, refuser)
		c := e.CommitteeInvoker(vault)

		transferGAS(t, e, vault, 150)
		c.InvokeFail(t, "payments are refused", "withdraw")

		c.Invoke(t, int64(150), "gas")
		c.Invoke(t, int64(0), "totalProcessed")
		require.EqualValues(t, 0, gasBalance(t, e, refuser))
	})
}

func TestFeeVaultUpdate(t *testing.T) {
	e := newExecutor(t)
	ctr := neotest.CompileFile(t, e.CommitteeHash, feeVaultPath, path.Join(feeVaultPath, "config.yml"))
	e.DeployContract(t, ctr, []any{randomUint160(), int64(0), int64(withdrawtarget.OtherChain), nil})
	c := e.CommitteeInvoker(ctr.Hash)

	nefBytes, err := ctr.NEF.Bytes()
	require.NoError(t, err)
	manifestBytes, err := json.Marshal(ctr.Manifest)
	require.NoError(t, err)

	c.WithSigners(c.NewAccount(t)).InvokeFail(t, "only committee can update contract",
		"update", nefBytes, manifestBytes, nil)

	c.InvokeFail(t, common.ErrAlreadyUpdated, "update", nefBytes, manifestBytes, nil)
}
