// Package contracts provides the deployed-contract metadata model, contract-list
// loading, registry lookup, and callable contract handle construction for the SDK.
package contracts

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Known contract type tags used across the protocol deployments.
const (
	TypePrizeDistributor        = "PrizeDistributor"
	TypeDrawCalculator          = "DrawCalculator"
	TypeDrawCalculatorTimelock  = "DrawCalculatorTimelock"
	TypeDrawBuffer              = "DrawBuffer"
	TypePrizeDistributionBuffer = "PrizeDistributionBuffer"
	TypeTicket                  = "Ticket"
)

type (
	// Metadata is the static description of one deployed contract.
	// Identity is the (Address, ChainID) pair; a Metadata value is never
	// mutated after construction except for child attachment during linking.
	Metadata struct {
		Address  common.Address `json:"address"`
		ChainID  int64          `json:"chainId"`
		Type     string         `json:"type"`
		ABI      string         `json:"abi,omitempty"`
		Tags     []string       `json:"tags,omitempty"`
		Children []*Metadata    `json:"children,omitempty"`
	}

	// contractList is the on-disk JSON envelope for a deployed-contract list.
	contractList struct {
		Name      string     `json:"name"`
		Version   string     `json:"version,omitempty"`
		Contracts []Metadata `json:"contracts"`
	}
)

// LoadList reads a contract-list JSON file and returns its contract metadata.
// Entries without an inline ABI string get the embedded default ABI for their type.
func LoadList(path string) ([]Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract list %s: %w", path, err)
	}

	var list contractList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to parse contract list %s: %w", path, err)
	}

	for i := range list.Contracts {
		if list.Contracts[i].ABI == "" {
			list.Contracts[i].ABI = DefaultABI(list.Contracts[i].Type)
		}
	}

	return list.Contracts, nil
}

// ByChain groups a flat metadata list by chain id.
func ByChain(list []Metadata) map[int64][]Metadata {
	grouped := make(map[int64][]Metadata)
	for _, meta := range list {
		grouped[meta.ChainID] = append(grouped[meta.ChainID], meta)
	}
	return grouped
}

// ByType returns every metadata record matching the given type tag,
// preserving input order.
func ByType(list []Metadata, typeTag string) []Metadata {
	var matches []Metadata
	for _, meta := range list {
		if meta.Type == typeTag {
			matches = append(matches, meta)
		}
	}
	return matches
}

// ChainIDs returns the sorted set of chain ids present in the list.
func ChainIDs(list []Metadata) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, meta := range list {
		if _, ok := seen[meta.ChainID]; !ok {
			seen[meta.ChainID] = struct{}{}
			ids = append(ids, meta.ChainID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
