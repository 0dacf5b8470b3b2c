// Package chain provides the signer-or-provider abstraction used by the SDK.
// It abstracts the underlying RPC client implementation and exposes batched
// call execution, a contract-binding backend, and optional transaction signing.
package chain

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lmittmann/w3/w3types"
)

// ErrNoSigner is returned by Address when the provider is read-only.
var ErrNoSigner = errors.New("provider is read-only: no signer attached")

// Provider defines the signer-or-provider surface consumed by the SDK.
// A read-only provider answers batched reads; a signing provider additionally
// carries transaction-signing options and a sender address.
type Provider interface {
	// ChainID returns the chain identifier the provider is bound to.
	ChainID() int64

	// CallCtx executes the given calls in a single batched round-trip.
	CallCtx(context.Context, ...w3types.RPCCaller) error

	// Backend returns the contract-binding backend used to construct
	// callable contract handles.
	Backend() bind.ContractBackend

	// TransactOpts returns the transaction-signing options, or nil when the
	// provider is read-only.
	TransactOpts() *bind.TransactOpts

	// Address returns the signer's address, or ErrNoSigner when read-only.
	Address() (common.Address, error)
}
