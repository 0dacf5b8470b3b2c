package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeDeserialize(t *testing.T) {
	original := Event{
		ChainID:     1,
		Distributor: "0x00000000000000000000000000000000000000Aa-1",
		DrawID:      42,
		Type:        TypeDrawSealed,
		Timestamp:   1700000000,
		Payload: map[string]any{
			"winningRandomNumber": "123456789",
		},
	}

	raw, err := original.Serialize()
	require.NoError(t, err)

	decoded, err := Deserialize(raw)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestDeserializeInvalidJSON(t *testing.T) {
	_, err := Deserialize([]byte("{not json"))
	require.Error(t, err)
}
