package planner

import (
	"fmt"
	"strings"
)

// Asset is an investable asset class.
type Asset int

const (
	Stocks Asset = iota
	Bonds
	ETFs
	REITs
	Cryptocurrency
)

// Profile holds the annual expected return and volatility of an asset
// class as fractions.
type Profile struct {
	Return     float64 `json:"return"`
	Volatility float64 `json:"volatility"`
}

// Assets lists the supported asset classes in display order.
var Assets = []Asset{Stocks, Bonds, ETFs, REITs, Cryptocurrency}

var assetNames = map[Asset]string{
	Stocks:         "Stocks",
	Bonds:          "Bonds",
	ETFs:           "ETFs",
	REITs:          "REITs",
	Cryptocurrency: "Cryptocurrency",
}

var profiles = map[Asset]Profile{
	Stocks:         {Return: 0.10, Volatility: 0.15},
	Bonds:          {Return: 0.04, Volatility: 0.05},
	ETFs:           {Return: 0.08, Volatility: 0.12},
	REITs:          {Return: 0.07, Volatility: 0.14},
	Cryptocurrency: {Return: 0.30, Volatility: 0.60},
}

// Profile returns the table entry for the asset.
func (a Asset) Profile() Profile {
	return profiles[a]
}

func (a Asset) String() string {
	if name, ok := assetNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Asset(%d)", int(a))
}

func (a Asset) MarshalText() ([]byte, error) {
	if _, ok := assetNames[a]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAsset, int(a))
	}
	return []byte(a.String()), nil
}

func (a *Asset) UnmarshalText(text []byte) error {
	parsed, err := ParseAsset(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAsset resolves an asset class name, ignoring case.
func ParseAsset(name string) (Asset, error) {
	name = strings.TrimSpace(name)
	for a, n := range assetNames {
		if strings.EqualFold(n, name) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAsset, name)
}
