package quote

import (
	"math/big"

	"github.com/dustsweep/dustnode/internal/pkg/model"
)

type tokenPayload struct {
	Address    string `json:"address" binding:"required"`
	Symbol     string `json:"symbol"`
	RawBalance string `json:"rawBalance" binding:"required"`
}

func (p tokenPayload) toModel() model.Token {
	raw, ok := new(big.Int).SetString(p.RawBalance, 10)
	if !ok {
		raw = big.NewInt(0)
	}
	return model.Token{Address: p.Address, Symbol: p.Symbol, RawBalance: raw}
}

type quoteCheckRequest struct {
	UserAddr       string         `json:"userAddr" binding:"required"`
	ToReceiveToken string         `json:"toReceiveToken" binding:"required"`
	Tokens         []tokenPayload `json:"tokens" binding:"required"`
}
