package httphandlers

import (
	"time"

	"github.com/Lumerin-protocol/crowdsale/internal/config"
	"github.com/Lumerin-protocol/crowdsale/internal/interfaces"
	"github.com/Lumerin-protocol/crowdsale/internal/repositories/receipts"
	"github.com/Lumerin-protocol/crowdsale/internal/repositories/valuebank"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/crowdsale"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/token"
	"github.com/gin-gonic/gin"
)

type ConfigProvider interface {
	GetSanitized() interface{}
}

type HTTPHandler struct {
	sale     *crowdsale.Crowdsale
	ledger   *token.Ledger
	bank     valuebank.Bank
	receipts receipts.Store
	config   ConfigProvider
	log      interfaces.ILogger
}

func NewHTTPHandler(sale *crowdsale.Crowdsale, ledger *token.Ledger, bank valuebank.Bank, store receipts.Store, cfg ConfigProvider, auth *Authenticator, log interfaces.ILogger) *gin.Engine {
	handl := &HTTPHandler{
		sale:     sale,
		ledger:   ledger,
		bank:     bank,
		receipts: store,
		config:   cfg,
		log:      log,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/healthcheck", handl.HealthCheck)
	r.GET("/config", handl.GetConfig)

	r.GET("/sale", handl.GetSale)
	r.GET("/sale/state", handl.GetState)
	r.GET("/token/balances/:address", handl.GetTokenBalance)
	r.GET("/token/holders", handl.GetHolders)
	r.GET("/bank/balances/:address", handl.GetBankBalance)
	r.GET("/receipts", handl.GetReceipts)
	r.GET("/receipts/:id", handl.GetReceipt)
	r.GET("/events", handl.Events)

	signed := r.Group("/", auth.Middleware())
	signed.POST("/sale/state", handl.UpdateState)
	signed.POST("/sale/rates", handl.SetRates)
	signed.POST("/sale/buy", handl.Buy)
	signed.POST("/sale/buy/presale", handl.BuyPresale)
	signed.POST("/sale/buy/ico", handl.BuyICO)
	signed.POST("/sale/extract", handl.ExtractFunds)
	signed.POST("/sale/pause", handl.PauseSale)
	signed.POST("/sale/unpause", handl.UnpauseSale)
	signed.POST("/token/pause", handl.PauseToken)
	signed.POST("/token/unpause", handl.UnpauseToken)
	signed.POST("/token/transfer", handl.TransferTokens)

	err := r.SetTrustedProxies(nil)
	if err != nil {
		panic(err)
	}

	return r
}

func (h *HTTPHandler) HealthCheck(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status":  "healthy",
		"version": config.BuildVersion,
	})
}

func (h *HTTPHandler) GetConfig(ctx *gin.Context) {
	ctx.JSON(200, ConfigResponse{
		Version: config.BuildVersion,
		Config:  h.config.GetSanitized(),
	})
}

func requestLogger(log interfaces.ILogger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		log.Debugf("%s %s %d %s", ctx.Request.Method, ctx.Request.URL.Path, ctx.Writer.Status(), time.Since(start))
	}
}
