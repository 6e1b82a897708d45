package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nspcc-dev/feevault-contract/rpc/bridge"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
)

// wrapper over the Neo RPC client providing blockchain services needed for
// the current command.
type remoteBlockchain struct {
	rpc     *rpcclient.Client
	invoker *invoker.Invoker
}

// newRemoteBlockChain dials Neo RPC server and returns remoteBlockchain based
// on the opened connection. Connection and all requests are done within 15s
// timeout.
func newRemoteBlockChain(blockChainRPCEndpoint string) (*remoteBlockchain, error) {
	c, err := rpcclient.New(context.Background(), blockChainRPCEndpoint, rpcclient.Options{
		DialTimeout:    15 * time.Second,
		RequestTimeout: 15 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		return nil, fmt.Errorf("RPC client init: %w", err)
	}

	return &remoteBlockchain{
		rpc:     c,
		invoker: invoker.New(c, nil),
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

// traverseRelays walks over all relay records of the given Bridge contract
// through an iterator session and passes each of them into f.
// traverseRelays breaks on the first record failed to be decoded and returns
// the error.
func (x *remoteBlockchain) traverseRelays(bridgeContract *bridge.ContractReader, f func(*bridge.BridgeRelay)) error {
	sessionID, iter, err := bridgeContract.IterateRelays()
	if err != nil {
		return fmt.Errorf("open iterator session: %w", err)
	}

	defer func() {
		_ = x.invoker.TerminateSession(sessionID)
	}()

	const batchSize = 100

	for {
		items, err := x.invoker.TraverseIterator(sessionID, &iter, batchSize)
		if err != nil {
			return fmt.Errorf("traverse iterator session '%s': %w", sessionID, err)
		}

		if len(items) == 0 {
			return nil
		}

		for i := range items {
			var r bridge.BridgeRelay

			err = r.FromStackItem(items[i])
			if err != nil {
				return fmt.Errorf("decode relay record: %w", err)
			}

			f(&r)
		}
	}
}
