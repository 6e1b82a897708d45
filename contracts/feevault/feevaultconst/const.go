package feevaultconst

const (
	// WithdrawMinGas is the gas allowance reserved for the bridged
	// withdrawal to be completed on the destination chain. It is passed
	// with every relay request the vault attaches to a bridge deposit.
	WithdrawMinGas = 35_000
)
