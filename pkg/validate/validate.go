// Package validate provides the synchronous validation helpers used before
// any network call is issued. Each failure carries a caller-supplied prefix
// so error messages name the operation that rejected the input.
package validate

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Niffl3rReturns/n3r-sdk/pkg/chain"
)

// AddressValidationError reports a malformed address string.
type AddressValidationError struct {
	Prefix  string
	Address string
}

func (e *AddressValidationError) Error() string {
	return fmt.Sprintf("%s: invalid address %q", e.Prefix, e.Address)
}

// SignerRequiredError reports a write operation attempted on a read-only binding.
type SignerRequiredError struct {
	Prefix string
}

func (e *SignerRequiredError) Error() string {
	return fmt.Sprintf("%s: signer required, provider is read-only", e.Prefix)
}

// NetworkMismatchError reports a signer bound to a different chain than expected.
type NetworkMismatchError struct {
	Prefix   string
	Expected int64
	Actual   int64
}

func (e *NetworkMismatchError) Error() string {
	return fmt.Sprintf("%s: signer network mismatch: expected chain %d, got %d", e.Prefix, e.Expected, e.Actual)
}

// Address validates an address string and returns its parsed form.
func Address(prefix, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, &AddressValidationError{Prefix: prefix, Address: s}
	}
	return common.HexToAddress(s), nil
}

// Signer checks that the given provider can sign transactions.
func Signer(prefix string, p chain.Provider) error {
	if p == nil || p.TransactOpts() == nil {
		return &SignerRequiredError{Prefix: prefix}
	}
	return nil
}

// SignerNetwork checks that the provider is bound to the expected chain.
func SignerNetwork(prefix string, p chain.Provider, expectedChainID int64) error {
	if p.ChainID() != expectedChainID {
		return &NetworkMismatchError{Prefix: prefix, Expected: expectedChainID, Actual: p.ChainID()}
	}
	return nil
}
