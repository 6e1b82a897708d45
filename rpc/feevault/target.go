package feevault

import (
	"math/big"

	"github.com/nspcc-dev/feevault-contract/contracts/feevault/withdrawtarget"
)

// Possible withdrawal targets of the vault, see [ContractReader.WithdrawalTarget].
var (
	// TargetSameChain routes withdrawals through the bridge contract.
	TargetSameChain = big.NewInt(int64(withdrawtarget.SameChain))

	// TargetOtherChain pays the recipient account directly.
	TargetOtherChain = big.NewInt(int64(withdrawtarget.OtherChain))
)
