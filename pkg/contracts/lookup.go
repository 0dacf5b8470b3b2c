package contracts

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ContractResolutionError is returned when a registry lookup does not resolve
// to exactly one metadata record.
type ContractResolutionError struct {
	Type  string // contract type tag that was queried
	Count int    // number of matches found
}

func (e *ContractResolutionError) Error() string {
	return fmt.Sprintf("contract resolution failed for type %s: expected exactly 1 match, found %d", e.Type, e.Count)
}

// One returns the single metadata record matching the given type tag and,
// when addr is non-nil, the given address. Zero or multiple matches fail
// with a ContractResolutionError.
func One(list []Metadata, typeTag string, addr *common.Address) (Metadata, error) {
	var matches []Metadata
	for _, meta := range list {
		if meta.Type != typeTag {
			continue
		}
		if addr != nil && meta.Address != *addr {
			continue
		}
		matches = append(matches, meta)
	}

	if len(matches) != 1 {
		return Metadata{}, &ContractResolutionError{Type: typeTag, Count: len(matches)}
	}

	return matches[0], nil
}

// FirstByChain returns the first metadata record of the given type on the
// given chain, or false when none exists. Matching is by chain id only and
// does not verify any on-chain relationship.
func FirstByChain(list []Metadata, typeTag string, chainID int64) (Metadata, bool) {
	for _, meta := range list {
		if meta.Type == typeTag && meta.ChainID == chainID {
			return meta, true
		}
	}
	return Metadata{}, false
}
