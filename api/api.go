package api

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	vermillion "github.com/vermillionhq/vermillion"
	"github.com/vermillionhq/vermillion/api/middleware"
	"github.com/vermillionhq/vermillion/config"
)

type Api struct {
	vermillion *vermillion.Vermillion
	router     *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router

	router.POST("/payments", a.InitiatePayment)
	router.POST("/transfers", a.InitiateTransfer)
	router.GET("/transactions/:id", a.GetTransaction)
	router.GET("/transactions/:id/entries", a.GetTransactionEntries)
	router.GET("/transactions/unreconciled", a.GetUnreconciledTransactions)

	router.POST("/wallets", a.CreateWallet)
	router.GET("/wallets/:id", a.GetWallet)
	router.GET("/owners/:owner_id/wallets", a.GetOwnerWallets)

	router.GET("/compliance/:owner_id", a.GetComplianceProfile)
	router.PUT("/compliance/:owner_id", a.UpsertComplianceProfile)

	router.GET("/providers/health", a.GetProvidersHealth)
	router.PUT("/providers/:id/state", a.UpdateProviderState)

	return a.router
}

func NewAPI(v *vermillion.Vermillion) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(otelgin.Middleware(conf.ProjectName))
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.SecretKey != "" {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{vermillion: v, router: r}
}
