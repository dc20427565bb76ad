package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/billdesk/internal/config"
	"github.com/sangkips/billdesk/internal/presentation/http/handler"
	"github.com/sangkips/billdesk/internal/presentation/http/middleware"
	"github.com/sangkips/billdesk/pkg/logger"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Bill     *handler.BillHandler
	Archive  *handler.ArchiveHandler
	Product  *handler.ProductHandler
	Customer *handler.CustomerHandler
	Printer  *handler.PrinterHandler
	Job      *handler.JobHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg         *config.Config
	Log         *logger.Logger
	RateLimiter *middleware.IPRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.Cfg.Auth))
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}

	registerBillRoutes(v1, h)
	registerProductRoutes(v1, h)
	registerCustomerRoutes(v1, h)
	registerArchiveRoutes(v1, h)
	registerPrinterRoutes(v1, h)
	registerJobRoutes(v1, h)

	return router
}

func registerBillRoutes(v1 *gin.RouterGroup, h *Handlers) {
	bill := v1.Group("/bill")
	{
		bill.GET("", h.Bill.Get)
		bill.POST("/items", h.Bill.AddItem)
		bill.PUT("/items/:index", h.Bill.EditItem)
		bill.DELETE("/items/:index", h.Bill.DeleteItem)
		bill.POST("/items/:index/duplicate", h.Bill.DuplicateItem)
		bill.POST("/items/:index/move", h.Bill.MoveItem)
		bill.PUT("/customer", h.Bill.SetCustomer)
		bill.PUT("/payment", h.Bill.SetPayment)
		bill.PUT("/gst", h.Bill.SetGST)
		bill.POST("/clear", h.Bill.Clear)
		bill.POST("/undo", h.Bill.Undo)
		bill.POST("/redo", h.Bill.Redo)
		bill.POST("/low-stock/remove", h.Bill.RemoveLowStock)
		bill.GET("/preview", h.Bill.Preview)
		bill.POST("/finalize", h.Bill.Finalize)
	}
}

func registerProductRoutes(v1 *gin.RouterGroup, h *Handlers) {
	products := v1.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/suggest", h.Product.Suggest)
		products.PUT("", h.Product.Upsert)
		products.POST("/import", h.Product.Import)
		products.POST("/export", h.Product.Export)
		products.GET("/:name", h.Product.Get)
		products.DELETE("/:name", h.Product.Delete)
	}
}

func registerCustomerRoutes(v1 *gin.RouterGroup, h *Handlers) {
	customers := v1.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
	}
}

func registerArchiveRoutes(v1 *gin.RouterGroup, h *Handlers) {
	bills := v1.Group("/bills")
	{
		bills.GET("", h.Archive.List)
		bills.POST("/export", h.Archive.Export)
		bills.GET("/:number", h.Archive.Get)
		bills.POST("/:number/reprint", h.Archive.Reprint)
		bills.GET("/:number/text", h.Archive.Text)
	}
	v1.POST("/documents/merge", h.Archive.Merge)
}

func registerPrinterRoutes(v1 *gin.RouterGroup, h *Handlers) {
	v1.GET("/printers", h.Printer.List)
	v1.POST("/printers/test", h.Printer.TestPrint)
}

func registerJobRoutes(v1 *gin.RouterGroup, h *Handlers) {
	v1.POST("/backups", h.Job.StartBackup)
	v1.GET("/jobs/:id", h.Job.Get)
}
