package tests

import (
	"math/rand"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

// newExecutor creates a single-node chain and an executor committing
// transactions on behalf of its validator account.
func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func iteratorToArray(iter *storage.Iterator) []stackitem.Item {
	stackItems := make([]stackitem.Item, 0)
	for iter.Next() {
		stackItems = append(stackItems, iter.Value())
	}
	return stackItems
}

func randomBytes(n int) []byte {
	a := make([]byte, n)
	rand.Read(a) //nolint:staticcheck // SA1019: rand.Read has been deprecated since Go 1.20
	return a
}

func randomUint160() util.Uint160 {
	var u util.Uint160
	copy(u[:], randomBytes(util.Uint160Size))
	return u
}

// gasInvoker returns invoker of the native GAS contract methods signed by the
// committee.
func gasInvoker(t *testing.T, e *neotest.Executor) *neotest.ContractInvoker {
	return e.CommitteeInvoker(e.NativeHash(t, nativenames.Gas))
}

// transferGAS sends amount of GAS from the committee to the given account.
// The transfer must be accepted by the receiver.
func transferGAS(t *testing.T, e *neotest.Executor, to util.Uint160, amount int64) {
	gasInvoker(t, e).Invoke(t, stackitem.NewBool(true), "transfer", e.CommitteeHash, to, amount, nil)
}

// gasBalance reads current GAS balance of the given account from the native
// GAS contract.
func gasBalance(t *testing.T, e *neotest.Executor, acc util.Uint160) int64 {
	res, err := gasInvoker(t, e).TestInvoke(t, "balanceOf", acc)
	require.NoError(t, err)
	return res.Top().BigInt().Int64()
}

func requireIntItem(t *testing.T, itm stackitem.Item, expected int64) {
	v, err := itm.TryInteger()
	require.NoError(t, err)
	require.EqualValues(t, expected, v.Int64())
}

func requireBytesItem(t *testing.T, itm stackitem.Item, expected []byte) {
	b, err := itm.TryBytes()
	require.NoError(t, err)
	require.Equal(t, expected, b)
}

// requireEvent checks that the notification was thrown by the given contract
// with the given name and arguments.
func requireEvent(t *testing.T, ev state.NotificationEvent, contract util.Uint160, name string, args ...stackitem.Item) {
	require.Equal(t, contract, ev.ScriptHash)
	require.Equal(t, name, ev.Name)
	require.Equal(t, stackitem.NewArray(args), ev.Item)
}
