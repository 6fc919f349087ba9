package tokencheck

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/dustsweep/dustnode/internal/pkg/model"
	"github.com/dustsweep/dustnode/internal/pkg/sellability"
	"github.com/dustsweep/dustnode/internal/pkg/utils"
	"github.com/dustsweep/dustnode/pkg/context"
)

func SetupRouter(router *gin.RouterGroup, checker *Checker, rpcs []string) {
	router.POST("/dust/check", checkTokens(checker))
	router.GET("/dust/classify/:address", classifyToken(rpcs))
}

func checkTokens(checker *Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.New(c).WithLogPrefix("check-tokens-api")

		var p checkRequest
		if err := ctx.ShouldBindJSON(&p); err != nil {
			ctx.Errorf("failed to bind params, err: %v", err)
			ctx.AbortWith400(err.Error())
			return
		}

		tokens := make([]model.Token, 0, len(p.Tokens))
		for _, t := range p.Tokens {
			tokens = append(tokens, t.toModel())
		}

		var final Update
		err := checker.CheckTokens(ctx.Request.Context(), CheckParams{
			ChainID:        p.ChainID,
			UserAddr:       p.UserAddr,
			AppName:        p.AppName,
			ToReceiveToken: p.ToReceiveToken,
			Tokens:         tokens,
		}, func(u Update) {
			if !u.Pending {
				final = u
			}
		})

		if errors.Is(err, ErrCheckInFlight) {
			ctx.RespondWith(http.StatusConflict, "check already in flight", nil)
			return
		}
		if errors.Is(err, ErrDuplicateCheck) {
			result, ok := checker.CachedResult(ctx.Request.Context(), p.ChainID, p.UserAddr)
			if !ok {
				ctx.RespondWith(http.StatusOK, "success", checkResponse{})
				return
			}
			sell, burn := partitionByResult(tokens, result)
			ctx.RespondWith(http.StatusOK, "success", checkResponse{TokensToSell: sell, TokensToBurn: burn, FromCache: true})
			return
		}
		if err != nil {
			ctx.Errorf("failed to check tokens, err: %v", err)
			ctx.AbortWith500(err.Error())
			return
		}

		ctx.RespondWith(http.StatusOK, "success", checkResponse{
			TokensToSell: final.TokensToSell,
			TokensToBurn: final.TokensToBurn,
		})
	}
}

func classifyToken(rpcs []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.New(c).WithLogPrefix("classify-token-api")

		addr := c.Param("address")
		if !common.IsHexAddress(addr) {
			ctx.AbortWith400("invalid token address")
			return
		}

		client, err := utils.GetEvmClient(ctx.Request.Context(), rpcs)
		if err != nil {
			ctx.Errorf("failed to get evm client, err: %v", err)
			ctx.AbortWith500(err.Error())
			return
		}

		result := sellability.Classify(ctx.Request.Context(), client, common.HexToAddress(addr))
		ctx.RespondWith(http.StatusOK, "success", result)
	}
}
