package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ethAddr = "0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"
const usdcAddr = "0x53c91253bc9682c04929ca02ed00b3e423f6710d2ee7e0d5ebb06f3ecf368a8"

func TestParseTradeDecision_Yes(t *testing.T) {
	raw := "```json\n{\n" +
		`"shouldTrade": "yes",` +
		`"swap": {"sellTokenAddress": "` + usdcAddr + `", "buyTokenAddress": "` + ethAddr + `", "sellAmount": "500000000"},` +
		`"Explanation": "rotating stables into ETH",` +
		`"Tweet": "aped"` +
		"}\n```"

	decision, err := ParseTradeDecision(raw)
	require.NoError(t, err)
	assert.True(t, decision.Approved())
	assert.Equal(t, usdcAddr, decision.Swap.SellTokenAddress)
	assert.Equal(t, "500000000", decision.Swap.SellAmount)
}

func TestParseTradeDecision_No(t *testing.T) {
	raw := `{"shouldTrade": "no", "swap": {"sellTokenAddress": "null", "buyTokenAddress": "null", "sellAmount": "null"}, "Explanation": "null", "Tweet": "null"}`

	decision, err := ParseTradeDecision(raw)
	require.NoError(t, err)
	assert.False(t, decision.Approved())
}

func TestParseTradeDecision_ProseBeforeFence(t *testing.T) {
	raw := "Sure, here is my decision:\n```json\n" +
		`{"shouldTrade": "no", "swap": {}, "Explanation": "", "Tweet": ""}` +
		"\n```"

	decision, err := ParseTradeDecision(raw)
	require.NoError(t, err)
	assert.False(t, decision.Approved())
}

func TestParseTradeDecision_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":            "hold my beer",
		"bad shouldTrade":     `{"shouldTrade": "maybe"}`,
		"bad sell address":    `{"shouldTrade": "yes", "swap": {"sellTokenAddress": "nope", "buyTokenAddress": "` + ethAddr + `", "sellAmount": "1"}}`,
		"same addresses":      `{"shouldTrade": "yes", "swap": {"sellTokenAddress": "` + ethAddr + `", "buyTokenAddress": "` + ethAddr + `", "sellAmount": "1"}}`,
		"missing sell amount": `{"shouldTrade": "yes", "swap": {"sellTokenAddress": "` + usdcAddr + `", "buyTokenAddress": "` + ethAddr + `"}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTradeDecision(raw)
			assert.Error(t, err)
		})
	}
}
