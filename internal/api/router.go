package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "biolink/internal/api/context"
	"biolink/internal/api/handlers"
	"biolink/internal/api/middleware"
	"biolink/internal/platform/config"
	"biolink/internal/platform/metrics"
)

type Dependencies struct {
	AuthHandler      *handlers.AuthHandler
	AdminHandler     *handlers.AdminHandler
	PageHandler      *handlers.PageHandler
	PublicHandler    *handlers.PublicHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	MemberHandler    *handlers.MemberHandler
	UploadHandler    *handlers.UploadHandler
	HealthHandler    *handlers.HealthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	TenantMiddleware *middleware.TenantMiddleware
	RateLimiter      *middleware.RateLimiter
	RateLimits       config.RateLimitConfig
	// ProxyTrust resolves client IPs; nil means the connection address is used.
	ProxyTrust *middleware.ProxyTrust
	// UploadsDir is served under /uploads/ when set.
	UploadsDir string
}

func NewRouter(deps *Dependencies) http.Handler {
	router := httprouter.New()

	publicLimit := deps.RateLimiter.Limit("public", deps.RateLimits.PublicPerMinute)
	loginLimit := deps.RateLimiter.Limit("login", deps.RateLimits.LoginPerMinute)

	// Operational
	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())

	// Public page
	router.GET("/api/v1/public/:slug", chain(deps.PublicHandler.View, publicLimit))
	router.GET("/api/v1/public/:slug/qr", chain(deps.PublicHandler.QRCode, publicLimit))
	router.GET("/go/:slug/:link_id", chain(deps.PublicHandler.Click, publicLimit))
	if deps.UploadsDir != "" {
		router.ServeFiles("/uploads/*filepath", http.Dir(deps.UploadsDir))
	}

	// Authentication routes
	router.POST("/api/v1/auth/login", chain(deps.AuthHandler.Login, loginLimit))
	router.POST("/api/v1/auth/verify", chain(deps.AuthHandler.Verify, loginLimit))

	// Middleware references
	authMid := deps.AuthMiddleware
	tenantMid := deps.TenantMiddleware

	router.GET("/api/v1/auth/me", chain(deps.AuthHandler.Me, authMid.Handle))

	// Page editing
	router.GET("/api/v1/page/config",
		chain(deps.PageHandler.GetConfig, authMid.Handle, tenantMid.Handle))
	router.PUT("/api/v1/page/config",
		chain(deps.PageHandler.ReplaceConfig, authMid.Handle, tenantMid.Handle))
	router.POST("/api/v1/page/links",
		chain(deps.PageHandler.AddLink, authMid.Handle, tenantMid.Handle))
	router.PATCH("/api/v1/page/links/:link_id",
		chain(deps.PageHandler.UpdateLink, authMid.Handle, tenantMid.Handle))
	router.DELETE("/api/v1/page/links/:link_id",
		chain(deps.PageHandler.DeleteLink, authMid.Handle, tenantMid.Handle))
	router.POST("/api/v1/page/links/:link_id/move",
		chain(deps.PageHandler.MoveLink, authMid.Handle, tenantMid.Handle))
	router.POST("/api/v1/page/campaigns",
		chain(deps.PageHandler.CreateCampaign, authMid.Handle, tenantMid.Handle))
	router.PUT("/api/v1/page/campaigns/:campaign_id",
		chain(deps.PageHandler.UpdateCampaign, authMid.Handle, tenantMid.Handle))
	router.DELETE("/api/v1/page/campaigns/:campaign_id",
		chain(deps.PageHandler.DeleteCampaign, authMid.Handle, tenantMid.Handle))
	router.POST("/api/v1/page/uploads",
		chain(deps.UploadHandler.Upload, authMid.Handle, tenantMid.Handle))

	// Analytics
	router.GET("/api/v1/analytics",
		chain(deps.AnalyticsHandler.Report, authMid.Handle, tenantMid.Handle))

	// Members
	router.POST("/api/v1/members",
		chain(deps.MemberHandler.Invite, authMid.Handle, tenantMid.Handle))
	router.DELETE("/api/v1/members/:email",
		chain(deps.MemberHandler.Remove, authMid.Handle, tenantMid.Handle))

	// Tenant administration
	router.GET("/api/v1/admin/tenants",
		chain(deps.AdminHandler.ListTenants, authMid.Handle, middleware.RequireMasterAdmin))
	router.POST("/api/v1/admin/tenants",
		chain(deps.AdminHandler.CreateTenant, authMid.Handle, middleware.RequireMasterAdmin))
	router.DELETE("/api/v1/admin/tenants/:tenant_id",
		chain(deps.AdminHandler.DeleteTenant, authMid.Handle, middleware.RequireMasterAdmin))

	var handler http.Handler = router
	if deps.ProxyTrust != nil {
		handler = deps.ProxyTrust.Handle(handler)
	}
	return metrics.Instrument(handler)
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
