// Package domain defines core data structures used throughout the agent.
package domain

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Asset a supported Starknet token.
type Asset struct {
	// Symbol stable human-readable identifier, e.g. "ETH".
	Symbol string
	// Address token contract address, 0x-prefixed felt.
	Address string
	// Decimals number of decimal places in the on-chain integer representation.
	Decimals int32
	// DefaultBalance starting allocation credited when a simulated wallet is created.
	DefaultBalance decimal.Decimal
}

// FromWei converts an on-chain integer amount into token units.
func (a Asset) FromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -a.Decimals)
}

// ToWei converts a token-unit amount into the on-chain integer representation.
func (a Asset) ToWei(amount decimal.Decimal) *big.Int {
	return amount.Shift(a.Decimals).BigInt()
}

// Registry is the closed set of assets the simulated wallet supports.
// It is built once at startup and passed in explicitly; an asset outside
// the registry can never reach the ledger.
type Registry struct {
	bySymbol  map[string]Asset
	byAddress map[string]Asset
	order     []string
}

// NewRegistry builds a registry from the given assets.
func NewRegistry(assets ...Asset) (*Registry, error) {
	r := &Registry{
		bySymbol:  make(map[string]Asset, len(assets)),
		byAddress: make(map[string]Asset, len(assets)),
	}

	for _, asset := range assets {
		if asset.Symbol == "" {
			return nil, errors.New("asset symbol is required")
		}
		if !IsFeltAddress(asset.Address) {
			return nil, errors.Errorf("asset %s has invalid address %q", asset.Symbol, asset.Address)
		}
		if asset.Decimals < 0 {
			return nil, errors.Errorf("asset %s has negative decimals", asset.Symbol)
		}
		if asset.DefaultBalance.IsNegative() {
			return nil, errors.Errorf("asset %s has negative default balance", asset.Symbol)
		}
		if _, ok := r.bySymbol[asset.Symbol]; ok {
			return nil, errors.Errorf("duplicate asset symbol %s", asset.Symbol)
		}

		addr := NormalizeAddress(asset.Address)
		if _, ok := r.byAddress[addr]; ok {
			return nil, errors.Errorf("duplicate asset address %s", asset.Address)
		}

		r.bySymbol[asset.Symbol] = asset
		r.byAddress[addr] = asset
		r.order = append(r.order, asset.Symbol)
	}

	return r, nil
}

// BySymbol looks an asset up by its symbol.
func (r *Registry) BySymbol(symbol string) (Asset, bool) {
	asset, ok := r.bySymbol[symbol]
	return asset, ok
}

// ByAddress looks an asset up by its contract address. Addresses are
// normalized first, so zero-padded and unpadded forms resolve to the same asset.
func (r *Registry) ByAddress(address string) (Asset, bool) {
	asset, ok := r.byAddress[NormalizeAddress(address)]
	return asset, ok
}

// Contains reports whether the symbol belongs to the registry.
func (r *Registry) Contains(symbol string) bool {
	_, ok := r.bySymbol[symbol]
	return ok
}

// Symbols returns all asset symbols in registration order.
func (r *Registry) Symbols() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Assets returns all assets in registration order.
func (r *Registry) Assets() []Asset {
	out := make([]Asset, 0, len(r.order))
	for _, symbol := range r.order {
		out = append(out, r.bySymbol[symbol])
	}
	return out
}

// NormalizeAddress lowercases a felt address and strips zero padding after
// the 0x prefix so equal addresses compare equal regardless of formatting.
func NormalizeAddress(address string) string {
	address = strings.ToLower(strings.TrimSpace(address))
	hex := strings.TrimPrefix(address, "0x")
	hex = strings.TrimLeft(hex, "0")
	if hex == "" {
		hex = "0"
	}
	return "0x" + hex
}

// IsFeltAddress reports whether the string looks like a Starknet contract
// address: 0x-prefixed hex that fits in a felt.
func IsFeltAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") || len(address) < 3 || len(address) > 66 {
		return false
	}
	for _, r := range strings.ToLower(address[2:]) {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// DefaultRegistry returns the registry of tokens tradable by the simulated
// wallet, with the starting allocations credited on wallet creation.
func DefaultRegistry() *Registry {
	registry, err := NewRegistry(
		Asset{Symbol: "BROTHER", Address: "0x3b405a98c9e795d427fe82cdeeeed803f221b52471e3a757574a2b4180793ee", Decimals: 18, DefaultBalance: decimal.NewFromInt(500)},
		Asset{Symbol: "WBTC", Address: "0x3fe2b97c1fd336e750087d68b9b867997fd64a2661ff3ca5a7c771641e8e7ac", Decimals: 8, DefaultBalance: decimal.Zero},
		Asset{Symbol: "ETH", Address: "0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7", Decimals: 18, DefaultBalance: decimal.NewFromFloat(1.64)},
		Asset{Symbol: "STRK", Address: "0x4718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d", Decimals: 18, DefaultBalance: decimal.NewFromInt(150)},
		Asset{Symbol: "LORDS", Address: "0x124aeb495b947201f5fac96fd1138e326ad86195b98df6dec9009158a533b49", Decimals: 18, DefaultBalance: decimal.NewFromInt(1000)},
		Asset{Symbol: "USDT", Address: "0x68f5c6a61780768455de69077e07e89787839bf8166decfbf92b645209c0fb8", Decimals: 6, DefaultBalance: decimal.Zero},
		Asset{Symbol: "USDC", Address: "0x53c91253bc9682c04929ca02ed00b3e423f6710d2ee7e0d5ebb06f3ecf368a8", Decimals: 6, DefaultBalance: decimal.NewFromInt(7500)},
		Asset{Symbol: "wstETH", Address: "0x42b8f0484674ca266ac5d08e4ac6a3fe65bd3129795def2dca5c34ecc5f96d2", Decimals: 18, DefaultBalance: decimal.NewFromInt(5)},
		Asset{Symbol: "UNI", Address: "0x49210ffc442172463f3177147c1aeaa36c51d152c1b0630f2364c300d4f48ee", Decimals: 18, DefaultBalance: decimal.Zero},
		Asset{Symbol: "DAI", Address: "0x5574eb6b8789a91466f902c380d978e472db68170ff82a5b650b95a58ddf4ad", Decimals: 18, DefaultBalance: decimal.Zero},
		Asset{Symbol: "rETH", Address: "0x319111a5037cbec2b3e638cc34a3474e2d2608299f3e62866e9cc683208c610", Decimals: 18, DefaultBalance: decimal.Zero},
		Asset{Symbol: "LUSD", Address: "0x70a76fd48ca0ef910631754d77dd822147fe98a569b826ec85e3c33fde586ac", Decimals: 18, DefaultBalance: decimal.Zero},
		Asset{Symbol: "xSTRK", Address: "0x28d709c875c0ceac3dce7065bec5328186dc89fe254527084d1689910954b0a", Decimals: 18, DefaultBalance: decimal.Zero},
		Asset{Symbol: "NSTR", Address: "0xc530f2c0aa4c16a0806365b0898499fba372e5df7a7172dc6fe9ba777e8007", Decimals: 18, DefaultBalance: decimal.Zero},
		Asset{Symbol: "ZEND", Address: "0x585c32b625999e6e5e78645ff8df7a9001cf5cf3eb6b80ccdd16cb64bd3a34", Decimals: 18, DefaultBalance: decimal.NewFromInt(400)},
		Asset{Symbol: "SWAY", Address: "0x4878d1148318a31829523ee9c6a5ee563af6cd87f90a30809e5b0d27db8a9b", Decimals: 6, DefaultBalance: decimal.NewFromInt(600)},
		Asset{Symbol: "SSTR", Address: "0x102d5e124c51b936ee87302e0f938165aec96fb6c2027ae7f3a5ed46c77573b", Decimals: 18, DefaultBalance: decimal.NewFromInt(250)},
	)
	if err != nil {
		// the built-in list is static, a failure here is a programming error
		panic(err)
	}
	return registry
}
