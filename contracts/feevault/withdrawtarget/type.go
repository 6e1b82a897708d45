package withdrawtarget

// Type is an enumeration for withdrawal target chains.
type Type int

// Possible destinations of vault withdrawals.
const (
	_ Type = iota

	// SameChain routes withdrawals through the bridge contract deployed
	// on the chain the vault itself lives on.
	SameChain

	// OtherChain sends withdrawals to the recipient account directly.
	OtherChain
)
