package prize

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Historical prize records name the tier field "distributionIndex" instead of
// "tierIndex". Both shapes appear in persisted and transmitted data, so reads
// normalize through one of the two conversions below. Both are idempotent on
// already-canonical input.

const (
	legacyTierField    = "distributionIndex"
	canonicalTierField = "tierIndex"
	prizesField        = "prizes"
)

// ToDrawResults converts a draw-results document of unknown shape into the
// canonical DrawResults record. The output carries exactly drawId, totalValue
// and the normalized prizes sequence.
func ToDrawResults(raw []byte) (DrawResults, error) {
	var doc struct {
		DrawID     uint32            `json:"drawId"`
		TotalValue json.RawMessage   `json:"totalValue"`
		Prizes     []json.RawMessage `json:"prizes"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return DrawResults{}, fmt.Errorf("failed to parse draw results: %w", err)
	}

	totalValue, err := parseBig(doc.TotalValue)
	if err != nil {
		return DrawResults{}, fmt.Errorf("failed to parse totalValue: %w", err)
	}

	prizes := make([]PrizeAwardable, 0, len(doc.Prizes))
	for i, rawPrize := range doc.Prizes {
		prize, err := normalizePrize(rawPrize)
		if err != nil {
			return DrawResults{}, fmt.Errorf("failed to normalize prize %d: %w", i, err)
		}
		prizes = append(prizes, prize)
	}

	return DrawResults{
		DrawID:     doc.DrawID,
		TotalValue: totalValue,
		Prizes:     prizes,
	}, nil
}

// ToExtendedDrawResults converts a draw-results document of unknown shape,
// preserving every sibling field of the wrapper untouched and replacing only
// the prizes sequence with normalized records.
func ToExtendedDrawResults(raw []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse draw results: %w", err)
	}

	rawPrizes, ok := doc[prizesField].([]any)
	if !ok {
		return doc, nil
	}

	prizes := make([]any, 0, len(rawPrizes))
	for _, entry := range rawPrizes {
		record, ok := entry.(map[string]any)
		if !ok {
			prizes = append(prizes, entry)
			continue
		}
		prizes = append(prizes, normalizePrizeFields(record))
	}
	doc[prizesField] = prizes

	return doc, nil
}

// normalizePrize decodes one prize record, mapping the legacy tier field to
// the canonical one when present.
func normalizePrize(raw json.RawMessage) (PrizeAwardable, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return PrizeAwardable{}, err
	}

	tierRaw, ok := fields[legacyTierField]
	if !ok {
		tierRaw = fields[canonicalTierField]
	}

	var tierIndex uint8
	if tierRaw != nil {
		if err := json.Unmarshal(tierRaw, &tierIndex); err != nil {
			return PrizeAwardable{}, err
		}
	}

	amount, err := parseBig(fields["amount"])
	if err != nil {
		return PrizeAwardable{}, err
	}

	pick, err := parseBig(fields["pick"])
	if err != nil {
		return PrizeAwardable{}, err
	}

	return PrizeAwardable{
		Amount:    amount,
		TierIndex: tierIndex,
		Pick:      pick,
	}, nil
}

// normalizePrizeFields rewrites the tier field of one raw prize record in
// place, copying all other fields verbatim.
func normalizePrizeFields(record map[string]any) map[string]any {
	legacy, ok := record[legacyTierField]
	if !ok {
		return record
	}
	record[canonicalTierField] = legacy
	delete(record, legacyTierField)
	return record
}

// parseBig decodes a big integer serialized as either a JSON number or a
// decimal/hex string. A missing value decodes as zero.
func parseBig(raw json.RawMessage) (*big.Int, error) {
	if raw == nil {
		return new(big.Int), nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		v, ok := new(big.Int).SetString(asString, 0)
		if !ok {
			return nil, fmt.Errorf("invalid big integer string %q", asString)
		}
		return v, nil
	}

	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err != nil {
		return nil, fmt.Errorf("invalid big integer value %s", string(raw))
	}
	v, ok := new(big.Int).SetString(asNumber.String(), 10)
	if !ok {
		return nil, fmt.Errorf("invalid big integer number %s", asNumber.String())
	}
	return v, nil
}
