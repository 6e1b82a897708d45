package feevault

import (
	"github.com/nspcc-dev/feevault-contract/common"
	"github.com/nspcc-dev/feevault-contract/contracts/feevault/feevaultconst"
	"github.com/nspcc-dev/feevault-contract/contracts/feevault/withdrawtarget"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// relayRequest is attached as the data argument of a GAS transfer to the
// bridge contract.
type relayRequest struct {
	// Account the bridged funds are addressed to.
	Recipient interop.Hash160
	// Gas allowance for the transfer to be completed on the destination chain.
	MinGas int
	// Optional data forwarded to the recipient as is.
	Payload []byte
}

const (
	recipientKey     = "recipient"
	minWithdrawalKey = "minWithdrawal"
	targetChainKey   = "targetChain"
	bridgeKey        = "bridgeScriptHash"
	processedKey     = "totalProcessed"
)

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		common.AbortWithMessage("fee vault accepts GAS only")
	}
}

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		recipient     interop.Hash160
		minWithdrawal int
		target        int
		bridge        interop.Hash160
	})

	if len(args.recipient) != interop.Hash160Len {
		panic("incorrect length of recipient script hash")
	}

	if args.minWithdrawal < 0 {
		panic("negative minimum withdrawal amount")
	}

	ctx := storage.GetContext()
	target := withdrawtarget.Type(args.target)

	switch target {
	case withdrawtarget.SameChain:
		if len(args.bridge) != interop.Hash160Len {
			panic("incorrect length of bridge contract script hash")
		}

		storage.Put(ctx, bridgeKey, args.bridge)
	case withdrawtarget.OtherChain:
	default:
		panic("unknown withdrawal target")
	}

	storage.Put(ctx, recipientKey, args.recipient)
	storage.Put(ctx, minWithdrawalKey, args.minWithdrawal)
	storage.Put(ctx, targetChainKey, int(target))
	storage.Put(ctx, processedKey, 0)

	runtime.Log("fee vault contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("fee vault contract updated")
}

// Withdraw pays everything the vault has accumulated out to the configured
// recipient. It can be invoked by anyone, but fails unless the vault balance
// has reached the minimum withdrawal amount.
//
// Depending on the withdrawal target, funds either go to the recipient
// account directly or are deposited to the bridge contract together with a
// relay request for the recipient on the destination chain.
//
// It produces Withdrawal and WithdrawalX notifications. WithdrawalX extends
// Withdrawal with the withdrawal target of the vault.
func Withdraw() {
	ctx := storage.GetContext()

	self := runtime.GetExecutingScriptHash()
	value := gas.BalanceOf(self)

	minAmount := storage.Get(ctx, minWithdrawalKey).(int)
	if value < minAmount {
		panic("vault holds " + std.Itoa(value, 10) +
			", minimum withdrawal is " + std.Itoa(minAmount, 10))
	}

	recipient := storage.Get(ctx, recipientKey).(interop.Hash160)
	target := withdrawtarget.Type(storage.Get(ctx, targetChainKey).(int))

	processed := storage.Get(ctx, processedKey).(int)
	storage.Put(ctx, processedKey, processed+value)

	tx := runtime.GetScriptContainer()
	runtime.Notify("Withdrawal", value, recipient, tx.Sender)
	runtime.Notify("WithdrawalX", value, recipient, tx.Sender, int(target))

	switch target {
	case withdrawtarget.SameChain:
		bridge := storage.Get(ctx, bridgeKey).(interop.Hash160)
		req := relayRequest{
			Recipient: recipient,
			MinGas:    feevaultconst.WithdrawMinGas,
			Payload:   []byte{},
		}

		if !gas.Transfer(self, bridge, value, req) {
			panic("failed to transfer funds, aborting")
		}
	case withdrawtarget.OtherChain:
		if !gas.Transfer(self, recipient, value, nil) {
			panic("failed to transfer funds, aborting")
		}
	}
}

// Recipient returns the account the vault forwards accumulated funds to.
func Recipient() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, recipientKey).(interop.Hash160)
}

// MinWithdrawalAmount returns the lowest vault balance Withdraw accepts.
func MinWithdrawalAmount() int {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, minWithdrawalKey).(int)
}

// WithdrawalTarget returns the chain withdrawn funds are destined for.
func WithdrawalTarget() withdrawtarget.Type {
	ctx := storage.GetReadOnlyContext()
	return withdrawtarget.Type(storage.Get(ctx, targetChainKey).(int))
}

// Bridge returns the script hash of the bridge contract the vault deposits
// withdrawn funds to. It is empty if the vault pays the recipient directly.
func Bridge() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, bridgeKey).(interop.Hash160)
}

// TotalProcessed returns the total amount of GAS ever withdrawn from
// the vault.
func TotalProcessed() int {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, processedKey).(int)
}

// Gas returns the amount of GAS stored in the fee vault account.
func Gas() int {
	return gas.BalanceOf(runtime.GetExecutingScriptHash())
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}
