// Package bridge contains RPC wrappers for Rollup Bridge contract.
package bridge

import (
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"math/big"
	"unicode/utf8"
)

// BridgeRelay is a contract-specific bridge.Relay type used by its methods.
type BridgeRelay struct {
	Seq *big.Int
	ID string
	From util.Uint160
	Recipient util.Uint160
	Amount *big.Int
	MinGas *big.Int
	Payload []byte
	Completed bool
}

// RelayEvent represents "Relay" event emitted by the contract.
type RelayEvent struct {
	Seq *big.Int
	Id string
	From util.Uint160
	Recipient util.Uint160
	Amount *big.Int
	MinGas *big.Int
}

// RelayCompletedEvent represents "RelayCompleted" event emitted by the contract.
type RelayCompletedEvent struct {
	Seq *big.Int
	Id string
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
	CallAndExpandIterator(contract util.Uint160, method string, maxItems int, params ...any) (*result.Invoke, error)
	TerminateSession(sessionID uuid.UUID) error
	TraverseIterator(sessionID uuid.UUID, iterator *result.Iterator, num int) ([]stackitem.Item, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// Gas invokes `gas` method of contract.
func (c *ContractReader) Gas() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "gas"))
}

// GetReceipt invokes `getReceipt` method of contract.
func (c *ContractReader) GetReceipt(seq *big.Int) ([]byte, error) {
	return unwrap.Bytes(c.invoker.Call(c.hash, "getReceipt", seq))
}

// GetRelay invokes `getRelay` method of contract.
func (c *ContractReader) GetRelay(seq *big.Int) (*BridgeRelay, error) {
	return itemToBridgeRelay(unwrap.Item(c.invoker.Call(c.hash, "getRelay", seq)))
}

// IterateRelays invokes `iterateRelays` method of contract.
func (c *ContractReader) IterateRelays() (uuid.UUID, result.Iterator, error) {
	return unwrap.SessionIterator(c.invoker.Call(c.hash, "iterateRelays"))
}

// IterateRelaysExpanded is similar to IterateRelays (uses the same contract
// method), but can be useful if the server used doesn't support sessions and
// doesn't expand iterators. It creates a script that will get the specified
// number of result items from the iterator right in the VM and return them to
// you. It's only limited by VM stack and GAS available for RPC invocations.
func (c *ContractReader) IterateRelaysExpanded(_numOfIteratorItems int) ([]stackitem.Item, error) {
	return unwrap.Array(c.invoker.CallAndExpandIterator(c.hash, "iterateRelays", _numOfIteratorItems))
}

// RelayCount invokes `relayCount` method of contract.
func (c *ContractReader) RelayCount() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "relayCount"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// FinalizeRelay creates a transaction invoking `finalizeRelay` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) FinalizeRelay(seq *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "finalizeRelay", seq)
}

// FinalizeRelayTransaction creates a transaction invoking `finalizeRelay` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) FinalizeRelayTransaction(seq *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "finalizeRelay", seq)
}

// FinalizeRelayUnsigned creates a transaction invoking `finalizeRelay` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) FinalizeRelayUnsigned(seq *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "finalizeRelay", nil, seq)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(nefFile []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, nefFile, manifest, data)
}

// itemToBridgeRelay converts stack item into *BridgeRelay.
func itemToBridgeRelay(item stackitem.Item, err error) (*BridgeRelay, error) {
	if err != nil {
		return nil, err
	}
	var res = new(BridgeRelay)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of BridgeRelay from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *BridgeRelay) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 8 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	res.Seq, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Seq: %w", err)
	}

	index++
	res.ID, err = func (item stackitem.Item) (string, error) {
		b, err := item.TryBytes()
		if err != nil {
			return "", err
		}
		if !utf8.Valid(b) {
			return "", errors.New("not a UTF-8 string")
		}
		return string(b), nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field ID: %w", err)
	}

	index++
	res.From, err = func (item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field From: %w", err)
	}

	index++
	res.Recipient, err = func (item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field Recipient: %w", err)
	}

	index++
	res.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	index++
	res.MinGas, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field MinGas: %w", err)
	}

	index++
	res.Payload, err = arr[index].TryBytes()
	if err != nil {
		return fmt.Errorf("field Payload: %w", err)
	}

	index++
	res.Completed, err = arr[index].TryBool()
	if err != nil {
		return fmt.Errorf("field Completed: %w", err)
	}

	return nil
}

// RelayEventsFromApplicationLog retrieves a set of all emitted events
// with "Relay" name from the provided [result.ApplicationLog].
func RelayEventsFromApplicationLog(log *result.ApplicationLog) ([]*RelayEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*RelayEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "Relay" {
				continue
			}
			event := new(RelayEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize RelayEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to RelayEvent or
// returns an error if it's not possible to do to so.
func (e *RelayEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 6 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	e.Seq, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Seq: %w", err)
	}

	index++
	e.Id, err = func (item stackitem.Item) (string, error) {
		b, err := item.TryBytes()
		if err != nil {
			return "", err
		}
		if !utf8.Valid(b) {
			return "", errors.New("not a UTF-8 string")
		}
		return string(b), nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field Id: %w", err)
	}

	index++
	e.From, err = func (item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field From: %w", err)
	}

	index++
	e.Recipient, err = func (item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field Recipient: %w", err)
	}

	index++
	e.Amount, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	index++
	e.MinGas, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field MinGas: %w", err)
	}

	return nil
}

// RelayCompletedEventsFromApplicationLog retrieves a set of all emitted events
// with "RelayCompleted" name from the provided [result.ApplicationLog].
func RelayCompletedEventsFromApplicationLog(log *result.ApplicationLog) ([]*RelayCompletedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*RelayCompletedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "RelayCompleted" {
				continue
			}
			event := new(RelayCompletedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize RelayCompletedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to RelayCompletedEvent or
// returns an error if it's not possible to do to so.
func (e *RelayCompletedEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	e.Seq, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Seq: %w", err)
	}

	index++
	e.Id, err = func (item stackitem.Item) (string, error) {
		b, err := item.TryBytes()
		if err != nil {
			return "", err
		}
		if !utf8.Valid(b) {
			return "", errors.New("not a UTF-8 string")
		}
		return string(b), nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field Id: %w", err)
	}

	return nil
}
