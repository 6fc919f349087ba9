package quote

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dustsweep/dustnode/internal/pkg/model"
	"github.com/dustsweep/dustnode/pkg/context"
)

func SetupRouter(router *gin.RouterGroup, pipeline *Pipeline) {
	router.POST("/dust/quote", checkQuote(pipeline))
	router.POST("/dust/retry", sellRest(pipeline))
	router.GET("/dust/status", status(pipeline))
}

func checkQuote(pipeline *Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.New(c).WithLogPrefix("check-quote-api")

		var p quoteCheckRequest
		if err := ctx.ShouldBindJSON(&p); err != nil {
			ctx.Errorf("failed to bind params, err: %v", err)
			ctx.AbortWith400(err.Error())
			return
		}

		tokens := make([]model.Token, 0, len(p.Tokens))
		for _, t := range p.Tokens {
			tokens = append(tokens, t.toModel())
		}

		err := pipeline.CheckQuote(ctx.Request.Context(), p.UserAddr, p.ToReceiveToken, tokens)
		if err != nil {
			ctx.Errorf("quote pipeline failed, err: %v", err)
			// The snapshot carries the recoverable subset; the UI offers
			// "sell rest" from it, so this is a 200 with status=ERROR.
		}

		ctx.RespondWith(http.StatusOK, "success", pipeline.Snapshot())
	}
}

func sellRest(pipeline *Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.New(c).WithLogPrefix("sell-rest-api")

		if err := pipeline.SellRest(ctx.Request.Context()); err != nil {
			if !errors.Is(err, ErrSimulationFailed) {
				ctx.Errorf("retry pipeline failed, err: %v", err)
			}
		}

		ctx.RespondWith(http.StatusOK, "success", pipeline.Snapshot())
	}
}

func status(pipeline *Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.New(c)
		ctx.RespondWith(http.StatusOK, "success", pipeline.Snapshot())
	}
}
