package handler

import (
	"net/http"
	"slices"
	"time"

	"finreport/dto"
	"finreport/logger"
	"finreport/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options configures the router. Auth is nil when the API is open.
type Options struct {
	Auth        *Auth
	Metrics     *Metrics
	CORSOrigins []string
}

// NewRouter builds the engine with the /api resource groups, login,
// health and metrics routes.
func NewRouter(svc *service.Services, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(logger.Recovery(), logger.Gin())
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", opts.Metrics.Handler())
	}
	if len(opts.CORSOrigins) > 0 {
		r.Use(corsMiddleware(opts.CORSOrigins))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	var adminOnly []gin.HandlerFunc
	if opts.Auth != nil {
		api.POST("/login", opts.Auth.login)
		api = api.Group("")
		api.Use(opts.Auth.Middleware())
		adminOnly = append(adminOnly, RequireRole("admin"))
	}
	setupRoutes(api, svc, adminOnly...)
	return r
}

// setupRoutes mounts every resource. adminOnly guards the account writes.
func setupRoutes(api *gin.RouterGroup, svc *service.Services, adminOnly ...gin.HandlerFunc) {
	reports := NewResource[dto.Report, dto.ReportCreateInput, dto.ReportUpdateInput, dto.ReportWhereInput](
		svc.Reports, func(r dto.Report) string { return r.ID },
	).Register(api, "Reports")
	RegisterRelation[dto.FinancialData, dto.FinancialDataWhereInput](reports, "financialDataItems", svc.Reports.FinancialDataItems)
	RegisterRelation[dto.Summary, dto.SummaryWhereInput](reports, "summaries", svc.Reports.Summaries)

	items := NewResource[dto.FinancialData, dto.FinancialDataCreateInput, dto.FinancialDataUpdateInput, dto.FinancialDataWhereInput](
		svc.FinancialDataItems, func(f dto.FinancialData) string { return f.ID },
	).Register(api, "FinancialDataItems")
	RegisterParent(items, "report", svc.FinancialDataItems.Report)

	summaries := NewResource[dto.Summary, dto.SummaryCreateInput, dto.SummaryUpdateInput, dto.SummaryWhereInput](
		svc.Summaries, func(s dto.Summary) string { return s.ID },
	).Register(api, "Summaries")
	RegisterParent(summaries, "report", svc.Summaries.Report)

	NewResource[dto.User, dto.UserCreateInput, dto.UserUpdateInput, dto.UserWhereInput](
		svc.Users, func(u dto.User) string { return u.ID },
	).Register(api, "Users", adminOnly...)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Location"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
