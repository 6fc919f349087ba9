package builder

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dustsweep/dustnode/internal/pkg/database/cachedb"
	"github.com/dustsweep/dustnode/internal/pkg/model"
	"github.com/dustsweep/dustnode/internal/pkg/service/quote"
	"github.com/dustsweep/dustnode/internal/pkg/service/tokencheck"
	"github.com/dustsweep/dustnode/internal/pkg/subgraph"
)

type Server struct {
	engine *gin.Engine
}

func NewServer(configFile string) (*Server, error) {
	c, err := loadJobConfig(configFile)
	if err != nil {
		return nil, err
	}

	sg := subgraph.NewClient(c.Config.SubgraphGateway, c.Config.SubgraphAPIKey)
	for _, ep := range c.Subgraphs {
		sg.Configure(ep.App, ep.ChainID, subgraph.Endpoint{
			Name:        ep.Name,
			SubgraphURL: ep.SubgraphURL,
		})
	}

	c.Redis.Prefix += ":" + c.Config.Network
	cache := newCache(c)
	checker := tokencheck.NewChecker(sg, cache)

	pipeline := quote.NewPipeline(quote.NewClient(c.Config.AggregatorURL), quote.Config{
		ChainID:         c.Config.ChainID,
		SlippagePercent: c.Config.SlippagePercent,
		ReferralCode:    c.Config.ReferralCode,
	})

	engine, router := newHTTP("/v1")
	tokencheck.SetupRouter(router.Group("/"), checker, c.Config.RPCs)
	quote.SetupRouter(router.Group("/"), pipeline)

	return &Server{engine: engine}, nil
}

// newCache prefers redis, falls back to the postgres-backed store, and only
// then to the in-process map so a dev box without either still boots.
func newCache(c *jobConfig) model.ICache {
	r, err := NewRedis(&c.Redis)
	if err == nil {
		return r
	}
	fmt.Printf("failed to connect redis, falling back to postgres cache, err: %v\n", err)

	db, err := NewPostgres(&c.Database)
	if err == nil {
		store, err := cachedb.NewStore(db)
		if err == nil {
			return store
		}
		fmt.Printf("failed to migrate cache store, err: %v\n", err)
	} else {
		fmt.Printf("failed to connect postgres, err: %v\n", err)
	}

	return cachedb.NewMemory()
}

func (s *Server) Run() error {
	return s.engine.Run()
}

func newHTTP(rootPath string) (*gin.Engine, *gin.RouterGroup) {
	server := gin.Default()
	setCORS(server)
	server.GET("/ping", func(c *gin.Context) { c.AbortWithStatus(http.StatusOK) })
	router := server.Group(rootPath)
	return server, router
}

func setCORS(engine *gin.Engine) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AddAllowMethods(http.MethodOptions)
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders("Authorization")
	corsConfig.AddAllowHeaders("x-request-id")
	corsConfig.AddAllowHeaders("X-Request-Id")
	engine.Use(cors.New(corsConfig))
}
