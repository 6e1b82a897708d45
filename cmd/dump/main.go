package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/nspcc-dev/feevault-contract/rpc/bridge"
	"github.com/nspcc-dev/feevault-contract/rpc/feevault"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	vaultAddress := flag.String("vault", "", "Neo address of the FeeVault contract")

	flag.Parse()

	switch {
	case *neoRPCEndpoint == "":
		log.Fatal("missing Neo RPC endpoint")
	case *vaultAddress == "":
		log.Fatal("missing FeeVault contract address")
	}

	vaultHash, err := address.StringToUint160(*vaultAddress)
	if err != nil {
		log.Fatal(fmt.Errorf("bad FeeVault contract address: %w", err))
	}

	err = _dump(*neoRPCEndpoint, vaultHash)
	if err != nil {
		log.Fatal(err)
	}
}

func _dump(neoBlockchainRPCEndpoint string, vaultHash util.Uint160) error {
	b, err := newRemoteBlockChain(neoBlockchainRPCEndpoint)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	vaultContract := feevault.NewReader(b.invoker, vaultHash)

	version, err := vaultContract.Version()
	if err != nil {
		return fmt.Errorf("read vault version: %w", err)
	}
	recipient, err := vaultContract.Recipient()
	if err != nil {
		return fmt.Errorf("read vault recipient: %w", err)
	}
	minAmount, err := vaultContract.MinWithdrawalAmount()
	if err != nil {
		return fmt.Errorf("read vault minimum withdrawal amount: %w", err)
	}
	balance, err := vaultContract.Gas()
	if err != nil {
		return fmt.Errorf("read vault balance: %w", err)
	}
	processed, err := vaultContract.TotalProcessed()
	if err != nil {
		return fmt.Errorf("read vault total processed amount: %w", err)
	}
	target, err := vaultContract.WithdrawalTarget()
	if err != nil {
		return fmt.Errorf("read vault withdrawal target: %w", err)
	}

	fmt.Printf("FeeVault %s (version %d)\n", address.Uint160ToString(vaultHash), version)
	fmt.Println("  recipient:         ", address.Uint160ToString(recipient))
	fmt.Println("  minimum withdrawal:", fixedn.ToString(minAmount, 8), "GAS")
	fmt.Println("  balance:           ", fixedn.ToString(balance, 8), "GAS")
	fmt.Println("  total processed:   ", fixedn.ToString(processed, 8), "GAS")

	switch {
	case target.Cmp(feevault.TargetOtherChain) == 0:
		fmt.Println("  withdrawal target:  other chain (direct payout)")
		return nil
	case target.Cmp(feevault.TargetSameChain) == 0:
		fmt.Println("  withdrawal target:  same chain (bridged)")
	default:
		return fmt.Errorf("unsupported withdrawal target %v", target)
	}

	bridgeHash, err := vaultContract.Bridge()
	if err != nil {
		return fmt.Errorf("read vault bridge: %w", err)
	}

	return dumpBridge(b, bridgeHash)
}

func dumpBridge(b *remoteBlockchain, bridgeHash util.Uint160) error {
	bridgeContract := bridge.NewReader(b.invoker, bridgeHash)

	balance, err := bridgeContract.Gas()
	if err != nil {
		return fmt.Errorf("read bridge balance: %w", err)
	}
	relayCount, err := bridgeContract.RelayCount()
	if err != nil {
		return fmt.Errorf("read bridge relay count: %w", err)
	}

	fmt.Println("Bridge", address.Uint160ToString(bridgeHash))
	fmt.Println("  locked balance:", fixedn.ToString(balance, 8), "GAS")
	fmt.Println("  relays:        ", relayCount)

	err = b.traverseRelays(bridgeContract, func(r *bridge.BridgeRelay) {
		status := "pending"
		if r.Completed {
			status = "completed"
		}

		fmt.Printf("  relay #%d '%s': %s -> %s, %s GAS, %s\n", r.Seq, r.ID,
			address.Uint160ToString(r.From), address.Uint160ToString(r.Recipient),
			fixedn.ToString(r.Amount, 8), status)
	})
	if err != nil {
		return fmt.Errorf("iterate bridge relays: %w", err)
	}

	return nil
}
