package tokencheck

import (
	"math/big"

	"github.com/dustsweep/dustnode/internal/pkg/model"
)

type tokenPayload struct {
	Address          string  `json:"address" binding:"required"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Decimals         uint8   `json:"decimals"`
	RawBalance       string  `json:"rawBalance"`
	FormattedBalance string  `json:"formattedBalance"`
	LogoURL          string  `json:"logoUrl"`
	PriceUSD         float64 `json:"priceUsd"`
}

func (p tokenPayload) toModel() model.Token {
	raw, ok := new(big.Int).SetString(p.RawBalance, 10)
	if !ok {
		raw = big.NewInt(0)
	}
	return model.Token{
		Address:          p.Address,
		Symbol:           p.Symbol,
		Name:             p.Name,
		Decimals:         p.Decimals,
		RawBalance:       raw,
		FormattedBalance: p.FormattedBalance,
		LogoURL:          p.LogoURL,
		PriceUSD:         p.PriceUSD,
	}
}

type checkRequest struct {
	ChainID        uint64         `json:"chainId" binding:"required"`
	UserAddr       string         `json:"userAddr" binding:"required"`
	AppName        string         `json:"appName"`
	ToReceiveToken string         `json:"toReceiveToken" binding:"required"`
	Tokens         []tokenPayload `json:"tokens"`
}

type checkResponse struct {
	TokensToSell []model.Token `json:"tokensToSell"`
	TokensToBurn []model.Token `json:"tokensToBurn"`
	FromCache    bool          `json:"fromCache"`
}
