package deploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/nspcc-dev/feevault-contract/contracts/feevault/withdrawtarget"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// representing the rollup fee chain that are required for its deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to the
	// blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// CommonDeployPrm groups common deployment parameters of the smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// BridgeContractPrm groups deployment parameters of the Bridge contract.
type BridgeContractPrm struct {
	Common CommonDeployPrm
}

// VaultPrm groups construction parameters of a single FeeVault contract
// instance.
type VaultPrm struct {
	// Name of the vault instance written into the contract manifest instead of
	// the compiled one, e.g. 'BaseFeeVault'. The on-chain address of the
	// instance is derived from the name, so it must be unique within the
	// deployed suite.
	Name string

	// Account all vault withdrawals are addressed to.
	Recipient util.Uint160

	// Vault balance threshold below which withdrawals are denied, in GAS
	// fractions.
	MinWithdrawalAmount int64

	// Withdrawal route of the vault. Vaults with [withdrawtarget.SameChain]
	// target are bound to the Bridge contract deployed within the same
	// procedure.
	Target withdrawtarget.Type
}

// FeeVaultContractPrm groups deployment parameters of the FeeVault contract
// family: a set of independent instances sharing one compiled unit.
type FeeVaultContractPrm struct {
	Common CommonDeployPrm

	Vaults []VaultPrm
}

// Prm groups all parameters of the rollup fee chain deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy the contracts to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// On-chain addresses of all deployed contracts are derived from it.
	LocalAccount *wallet.Account

	BridgeContract   BridgeContractPrm
	FeeVaultContract FeeVaultContractPrm
}

// Deploy initializes the rollup fee collection suite on the Neo network
// represented by given Prm.Blockchain: the Bridge contract and the configured
// FeeVault family on top of it. Deployment progress is logged in detail.
//
// Deploy is idempotent: the address of each contract is a deterministic
// function of the deployer account, the code checksum and the contract name,
// and contracts already present on the chain are left untouched. Code updates
// of previously deployed contracts are done via their 'update' methods and
// are out of Deploy's scope.
//
// Deploy aborts only by context or when a fatal error occurs. Summary of
// stages:
//  1. Bridge contract deployment
//  2. deployment of the FeeVault instances, each referring to the Bridge
//     contract when its withdrawal target requires one
func Deploy(ctx context.Context, prm Prm) error {
	err := checkVaultPrms(prm.FeeVaultContract.Vaults)
	if err != nil {
		return err
	}

	localActor, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return fmt.Errorf("init transaction sender from single local account: %w", err)
	}

	syncPrm := syncContractPrm{
		logger:        prm.Logger,
		blockchain:    prm.Blockchain,
		localActor:    localActor,
		localNEF:      prm.BridgeContract.Common.NEF,
		localManifest: prm.BridgeContract.Common.Manifest,
	}

	prm.Logger.Info("synchronizing Bridge contract with the chain...")

	bridgeContractAddress, err := syncContract(ctx, syncPrm)
	if err != nil {
		return fmt.Errorf("sync Bridge contract with the chain: %w", err)
	}

	prm.Logger.Info("Bridge contract successfully synchronized", zap.Stringer("address", bridgeContractAddress))

	// FeeVault family. Instances differ in manifest name and construction
	// parameters only.
	syncPrm.localNEF = prm.FeeVaultContract.Common.NEF

	for i := range prm.FeeVaultContract.Vaults {
		vault := prm.FeeVaultContract.Vaults[i]

		syncPrm.localManifest = prm.FeeVaultContract.Common.Manifest
		syncPrm.localManifest.Name = vault.Name
		syncPrm.deployArgs = vaultDeployArgs(vault, bridgeContractAddress)

		prm.Logger.Info("synchronizing FeeVault contract with the chain...", zap.String("name", vault.Name))

		vaultContractAddress, err := syncContract(ctx, syncPrm)
		if err != nil {
			return fmt.Errorf("sync FeeVault contract '%s' with the chain: %w", vault.Name, err)
		}

		prm.Logger.Info("FeeVault contract successfully synchronized",
			zap.String("name", vault.Name), zap.Stringer("address", vaultContractAddress))
	}

	return nil
}

// checkVaultPrms verifies that given vault set can be deployed as a contract
// family: proper unique names and construction parameters accepted by the
// FeeVault contract.
func checkVaultPrms(vaults []VaultPrm) error {
	mNames := make(map[string]struct{}, len(vaults))

	for i := range vaults {
		switch {
		case vaults[i].Name == "":
			return fmt.Errorf("vault #%d: missing name", i)
		case vaults[i].Recipient.Equals(util.Uint160{}):
			return fmt.Errorf("vault '%s': zero recipient", vaults[i].Name)
		case vaults[i].MinWithdrawalAmount < 0:
			return fmt.Errorf("vault '%s': negative minimum withdrawal amount", vaults[i].Name)
		}

		switch vaults[i].Target {
		case withdrawtarget.SameChain, withdrawtarget.OtherChain:
		default:
			return fmt.Errorf("vault '%s': unsupported withdrawal target %d", vaults[i].Name, vaults[i].Target)
		}

		if _, ok := mNames[vaults[i].Name]; ok {
			return fmt.Errorf("vault '%s': duplicated name", vaults[i].Name)
		}
		mNames[vaults[i].Name] = struct{}{}
	}

	return nil
}

// vaultDeployArgs composes the data argument of the FeeVault contract
// deployment for the given instance. Vaults paying the recipient directly
// have no bridge to refer to.
func vaultDeployArgs(vault VaultPrm, bridgeContract util.Uint160) []any {
	var bridgeArg any
	if vault.Target == withdrawtarget.SameChain {
		bridgeArg = bridgeContract
	}

	return []any{vault.Recipient, vault.MinWithdrawalAmount, int(vault.Target), bridgeArg}
}

type syncContractPrm struct {
	logger *zap.Logger

	blockchain Blockchain

	localActor *actor.Actor

	localNEF      nef.File
	localManifest manifest.Manifest

	// data argument of the contract's '_deploy' method, nil for contracts
	// constructed without one
	deployArgs []any
}

// syncContract checks the contract presence on the chain and deploys the
// missing one. Returns the on-chain contract address which is a deterministic
// function of the transaction sender account, the NEF checksum and the
// contract name, so it is the same for the pre-existing and the freshly
// deployed contract.
func syncContract(ctx context.Context, prm syncContractPrm) (util.Uint160, error) {
	contractAddress := state.CreateContractHash(prm.localActor.Sender(), prm.localNEF.Checksum, prm.localManifest.Name)

	onChainState, err := prm.blockchain.GetContractStateByHash(contractAddress)
	if err == nil {
		prm.logger.Info("contract is already on the chain",
			zap.String("name", prm.localManifest.Name), zap.Stringer("address", contractAddress))
		return onChainState.Hash, nil
	} else if !isErrContractNotFound(err) {
		return util.Uint160{}, fmt.Errorf("check presence of the contract on the chain: %w", err)
	}

	prm.logger.Info("contract is missing on the chain, deploying...",
		zap.String("name", prm.localManifest.Name), zap.Stringer("address", contractAddress))

	var deployArgs any
	if prm.deployArgs != nil {
		deployArgs = prm.deployArgs
	}

	txHash, vub, err := management.New(prm.localActor).Deploy(&prm.localNEF, &prm.localManifest, deployArgs)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send transaction deploying the contract: %w", err)
	}

	aer, err := prm.localActor.WaitAny(ctx, vub, txHash)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("wait for deploy transaction '%s' to be accepted: %w", txHash.StringLE(), err)
	}

	if aer.VMState != vmstate.Halt {
		return util.Uint160{}, fmt.Errorf("deploy transaction '%s' failed: %s", txHash.StringLE(), aer.FaultException)
	}

	prm.logger.Info("contract successfully deployed",
		zap.String("name", prm.localManifest.Name), zap.Stringer("address", contractAddress),
		zap.Stringer("tx", txHash))

	return contractAddress, nil
}

// Neo RPC API does not type the missing contract case, it can only be told
// from others by the error message.
func isErrContractNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Unknown contract")
}
