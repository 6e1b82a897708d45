package bridge

import (
	"github.com/nspcc-dev/feevault-contract/common"
	"github.com/nspcc-dev/feevault-contract/internal/proto"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/convert"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/crypto"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

type (
	// RelayRequest is attached as the data argument of a GAS deposit and
	// describes the transfer to be executed on the destination chain.
	RelayRequest struct {
		// Account on the destination chain the deposit is addressed to.
		Recipient interop.Hash160
		// Gas allowance for the transfer to be completed on the destination chain.
		MinGas int
		// Optional data forwarded to the recipient as is.
		Payload []byte
	}

	// Relay is a record the bridge stores per accepted deposit.
	Relay struct {
		// Sequence number of the relay, unique on the chain.
		Seq int
		// Base58 encoded SHA-256 hash of the relay receipt, shared by both
		// chains as the relay identity.
		ID string
		// Account the deposit came from.
		From interop.Hash160
		// Account on the destination chain the deposit is addressed to.
		Recipient interop.Hash160
		// Deposited amount of GAS.
		Amount int
		// Gas allowance for the transfer to be completed on the destination chain.
		MinGas int
		// Optional data forwarded to the recipient as is.
		Payload []byte
		// Whether the relay has been confirmed on the destination chain.
		Completed bool
	}
)

const (
	relaySequenceKey = "relaySequence"

	relayPrefix = 'r'
)

// Protobuf field numbers of the relay receipt message.
const (
	receiptFieldSeq = iota + 1
	receiptFieldFrom
	receiptFieldRecipient
	receiptFieldAmount
	receiptFieldMinGas
	receiptFieldPayload
)

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// Plain transfers are not accepted: every deposit must carry a RelayRequest
// in the data argument.
//
// It produces Relay notification.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		common.AbortWithMessage("bridge accepts GAS only")
	}

	if data == nil {
		common.AbortWithMessage("deposit without a relay request")
	}

	req := data.(RelayRequest)
	if len(req.Recipient) != interop.Hash160Len {
		panic("incorrect length of recipient script hash")
	}

	if req.MinGas <= 0 {
		panic("non positive relay gas allowance")
	}

	if req.Payload == nil {
		req.Payload = []byte{}
	}

	ctx := storage.GetContext()

	rawSeq := storage.Get(ctx, relaySequenceKey)
	seq := 1
	if rawSeq != nil {
		seq = rawSeq.(int) + 1
	}
	storage.Put(ctx, relaySequenceKey, seq)

	r := Relay{
		Seq:       seq,
		From:      from,
		Recipient: req.Recipient,
		Amount:    amount,
		MinGas:    req.MinGas,
		Payload:   req.Payload,
		Completed: false,
	}
	r.ID = std.Base58Encode(crypto.Sha256(encodeReceipt(r)))

	common.SetSerialized(ctx, relayKey(seq), r)

	runtime.Notify("Relay", seq, r.ID, from, req.Recipient, amount, req.MinGas)
}

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	runtime.Log("bridge contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("bridge contract updated")
}

// GetRelay method returns the relay record with the given sequence number.
//
// If the relay doesn't exist, it panics.
func GetRelay(seq int) Relay {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, relayKey(seq))
	if data == nil {
		panic("relay not found")
	}

	return std.Deserialize(data.([]byte)).(Relay)
}

// GetReceipt method returns the protobuf encoded receipt of the relay with
// the given sequence number. SHA-256 hash of the receipt is the relay ID
// shared by both chains.
//
// If the relay doesn't exist, it panics.
func GetReceipt(seq int) []byte {
	return encodeReceipt(GetRelay(seq))
}

// IterateRelays iterates over all relay records of the bridge.
func IterateRelays() iterator.Iterator {
	ctx := storage.GetReadOnlyContext()
	return storage.Find(ctx, []byte{relayPrefix}, storage.ValuesOnly|storage.DeserializeValues)
}

// RelayCount method returns the number of relays accepted by the bridge.
func RelayCount() int {
	ctx := storage.GetReadOnlyContext()
	rawSeq := storage.Get(ctx, relaySequenceKey)
	if rawSeq == nil {
		return 0
	}

	return rawSeq.(int)
}

// FinalizeRelay marks the relay with the given sequence number as completed
// on the destination chain. It can be invoked only by committee.
//
// It produces RelayCompleted notification.
func FinalizeRelay(seq int) {
	common.CheckCommitteeWitness()

	ctx := storage.GetContext()

	data := storage.Get(ctx, relayKey(seq))
	if data == nil {
		panic("relay not found")
	}

	r := std.Deserialize(data.([]byte)).(Relay)
	if r.Completed {
		panic("relay already completed")
	}

	r.Completed = true
	common.SetSerialized(ctx, relayKey(seq), r)

	runtime.Notify("RelayCompleted", seq, r.ID)
}

// Gas returns the amount of GAS locked in the bridge account.
func Gas() int {
	return gas.BalanceOf(runtime.GetExecutingScriptHash())
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// encodeReceipt encodes the protobuf receipt of the given relay. Receipt
// hash is the cross chain identity of the relay, so the encoding must be
// deterministic: fields are emitted in the field number order and empty
// payload is skipped.
func encodeReceipt(r Relay) []byte {
	b := proto.AppendVarintField(nil, receiptFieldSeq, uint64(r.Seq))
	b = proto.AppendBytesField(b, receiptFieldFrom, r.From)
	b = proto.AppendBytesField(b, receiptFieldRecipient, r.Recipient)
	b = proto.AppendVarintField(b, receiptFieldAmount, uint64(r.Amount))
	b = proto.AppendVarintField(b, receiptFieldMinGas, uint64(r.MinGas))
	if len(r.Payload) != 0 {
		b = proto.AppendBytesField(b, receiptFieldPayload, r.Payload)
	}

	return b
}

func relayKey(seq int) []byte {
	return append([]byte{relayPrefix}, convert.ToBytes(seq)...)
}
