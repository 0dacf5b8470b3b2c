package contracts

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Niffl3rReturns/n3r-sdk/pkg/chain"
)

// Contract is a callable handle to one deployed contract, bound to a
// signer-or-provider. Construction is pure: no network calls are issued.
type Contract struct {
	Meta Metadata

	abi      abi.ABI
	bound    *bind.BoundContract
	provider chain.Provider
}

// NewContract constructs a callable handle for the given metadata, bound to
// the given provider.
func NewContract(meta Metadata, provider chain.Provider) (*Contract, error) {
	rawABI := meta.ABI
	if rawABI == "" {
		rawABI = DefaultABI(meta.Type)
	}

	parsed, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI for %s contract %s: %w", meta.Type, meta.Address.Hex(), err)
	}

	backend := provider.Backend()

	return &Contract{
		Meta:     meta,
		abi:      parsed,
		bound:    bind.NewBoundContract(meta.Address, parsed, backend, backend, backend),
		provider: provider,
	}, nil
}

// Resolve looks up a single metadata record by type tag (and optional address)
// in the given list and constructs its callable handle.
func Resolve(list []Metadata, typeTag string, addr *common.Address, provider chain.Provider) (*Contract, error) {
	meta, err := One(list, typeTag, addr)
	if err != nil {
		return nil, err
	}
	return NewContract(meta, provider)
}

// Address returns the deployed contract address.
func (c *Contract) Address() common.Address {
	return c.Meta.Address
}

// Call executes a read-only contract call via the binding backend.
func (c *Contract) Call(ctx context.Context, results *[]interface{}, method string, args ...interface{}) error {
	return c.bound.Call(&bind.CallOpts{Context: ctx}, results, method, args...)
}

// Transact submits a state-changing transaction using the given signing options.
func (c *Contract) Transact(opts *bind.TransactOpts, method string, args ...interface{}) (*types.Transaction, error) {
	return c.bound.Transact(opts, method, args...)
}
