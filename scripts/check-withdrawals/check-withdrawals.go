package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
)

var (
	fromFlag = flag.Uint("from", 0, "height to start the scan from")
	toFlag   = flag.Uint("to", 0, "height to stop the scan at (0 means the current one)")
)

type withdrawal struct {
	tx    util.Uint256
	to    util.Uint160
	from  util.Uint160
	value *big.Int
}

func initClient(addr string) (*rpcclient.Client, error) {
	c, err := rpcclient.New(context.Background(), addr, rpcclient.Options{})
	if err != nil {
		return nil, fmt.Errorf("RPC %s: %w", addr, err)
	}
	err = c.Init()
	if err != nil {
		return nil, fmt.Errorf("RPC %s init: %w", addr, err)
	}
	return c, nil
}

func getProcessed(c *rpcclient.Client, vault util.Uint160, height uint32) (*big.Int, error) {
	res, err := unwrap.BigInt(invoker.NewHistoricAtHeight(height, c, nil).Call(vault, "totalProcessed"))
	if err != nil {
		fmt.Printf("WARN: cannot get historic totalProcessed at %d height: %s\n", height, err)
		return unwrap.BigInt(invoker.New(c, nil).Call(vault, "totalProcessed"))
	}
	return res, nil
}

func cliMain() error {
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		return errors.New("usage: program [-from N] [-to N] <RPC> <VAULT_CONTRACT>")
	}

	vault, err := address.StringToUint160(args[1])
	if err != nil {
		return fmt.Errorf("bad vault address: %w", err)
	}
	c, err := initClient(args[0])
	if err != nil {
		return err
	}

	maxH := uint32(*toFlag)
	if maxH == 0 {
		blockCount, err := c.GetBlockCount()
		if err != nil {
			return err
		}
		maxH = blockCount - 1 // blockCount to height
	}

	var (
		withdrawals []withdrawal
		total       = new(big.Int)
	)
	for h := uint32(*fromFlag); h <= maxH; h++ {
		b, err := c.GetBlockByIndex(h)
		if err != nil {
			return fmt.Errorf("can't get block %d: %w", h, err)
		}
		for _, t := range b.Transactions {
			l, err := c.GetApplicationLog(t.Hash(), nil)
			if err != nil {
				return fmt.Errorf("can't get application log of %s: %w", t.Hash().StringLE(), err)
			}
			if l.Executions[0].VMState != vmstate.Halt {
				continue
			}
			for _, e := range l.Executions[0].Events {
				if !e.ScriptHash.Equals(vault) || e.Name != "Withdrawal" {
					continue
				}
				itms := e.Item.Value().([]stackitem.Item)
				w := withdrawal{tx: t.Hash()}
				w.value, _ = itms[0].TryInteger()
				toB, _ := itms[1].TryBytes()
				if len(toB) == util.Uint160Size {
					w.to, _ = util.Uint160DecodeBytesBE(toB)
				}
				fromB, _ := itms[2].TryBytes()
				if len(fromB) == util.Uint160Size {
					w.from, _ = util.Uint160DecodeBytesBE(fromB)
				}
				withdrawals = append(withdrawals, w)
				total.Add(total, w.value)
			}
		}
	}

	for _, w := range withdrawals {
		fmt.Println("0x"+w.tx.StringLE(), address.Uint160ToString(w.to),
			address.Uint160ToString(w.from), fixedn.ToString(w.value, 8))
	}
	fmt.Println(len(withdrawals), "withdrawals until block", maxH, "totalling", fixedn.ToString(total, 8), "GAS")

	processed, err := getProcessed(c, vault, maxH)
	if err != nil {
		return err
	}
	fmt.Println("contract reports", fixedn.ToString(processed, 8), "GAS processed")

	if *fromFlag == 0 && total.Cmp(processed) != 0 {
		return errors.New("total of Withdrawal notifications does not match the contract counter")
	}

	return nil
}

func main() {
	if err := cliMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
