package refuser

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
)

func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	panic("payments are refused")
}
