/*
Package contracts compiles rollup chain contracts from source and provides
access to the resulting artifacts.
*/
package contracts

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/nspcc-dev/neo-go/cli/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/compiler"
	"github.com/nspcc-dev/neo-go/pkg/config"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
)

const (
	bridgeDir   = "bridge"
	feeVaultDir = "feevault"

	configName = "config.yml"
)

// Contract groups information about Neo contract compiled by the current
// package.
type Contract struct {
	Name     string
	NEF      nef.File
	Manifest manifest.Manifest
}

var (
	cacheMtx sync.Mutex
	cache    = map[string]Contract{}
)

// GetRollup returns the current set of rollup chain contracts compiled from
// sources under the given root directory (the directory of this package).
// They're returned in the order they're supposed to be deployed starting
// from Bridge.
func GetRollup(root string) ([]Contract, error) {
	dirs := []string{bridgeDir, feeVaultDir}
	res := make([]Contract, 0, len(dirs))

	for i := range dirs {
		c, err := GetByDir(filepath.Join(root, dirs[i]))
		if err != nil {
			return nil, fmt.Errorf("compile contract %s: %w", dirs[i], err)
		}

		res = append(res, c)
	}

	return res, nil
}

// GetByDir returns the contract compiled from the given source directory.
// The directory must contain config.yml with the manifest configuration of
// the contract. Results are cached, repeated calls do not recompile sources.
func GetByDir(dir string) (Contract, error) {
	cacheMtx.Lock()
	defer cacheMtx.Unlock()

	if c, ok := cache[dir]; ok {
		return c, nil
	}

	var c Contract

	// nef.NewFile() cares about version a lot.
	config.Version = "0.90.0-test"

	ne, di, err := compiler.CompileWithOptions(dir, nil, nil)
	if err != nil {
		return c, fmt.Errorf("compile: %w", err)
	}

	conf, err := smartcontract.ParseContractConfig(filepath.Join(dir, configName))
	if err != nil {
		return c, err
	}

	o := &compiler.Options{}
	o.Name = conf.Name
	o.ContractEvents = conf.Events
	o.ContractSupportedStandards = conf.SupportedStandards
	o.Permissions = make([]manifest.Permission, len(conf.Permissions))
	for i := range conf.Permissions {
		o.Permissions[i] = manifest.Permission(conf.Permissions[i])
	}
	o.SafeMethods = conf.SafeMethods

	m, err := compiler.CreateManifest(di, o)
	if err != nil {
		return c, fmt.Errorf("create manifest: %w", err)
	}

	c = Contract{
		Name:     conf.Name,
		NEF:      *ne,
		Manifest: *m,
	}
	cache[dir] = c

	return c, nil
}
