package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceReportJSONStringFields(t *testing.T) {
	report := PriceReport{
		ChainID:           1,
		Pool:              "0xCBCdF9626bC03E24f779434178A73a0B4bad62eD",
		SqrtPriceX96:      "79228162514264337593543950336",
		SpotPrice:         "1.00000000",
		SpotPriceInverted: "1.000000000000000000",
		TwapPrice:         "3300.123400000000000000",
		Price:             "3300.123400000000000000",
		PriceSource:       PriceSourceTWAP,
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{"sqrt_price_x96", "spot_price", "twap_price", "price"} {
		assert.IsType(t, "", decoded[key], key)
	}
	assert.NotContains(t, decoded, "fallback")
	assert.Equal(t, "twap", decoded["price_source"])
}
