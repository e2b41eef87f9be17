package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/legalnest/backend/internal/catalog"
	"github.com/legalnest/backend/internal/config"
	"github.com/legalnest/backend/internal/http/middleware"
	"github.com/legalnest/backend/internal/model"
	"github.com/legalnest/backend/internal/ratelimit"
	"github.com/legalnest/backend/internal/service/submission"
	"github.com/legalnest/backend/internal/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the long-lived collaborators the handlers share.
type Deps struct {
	Submissions *submission.Service
	Catalog     *catalog.Catalog
	Limiter     *ratelimit.Limiter
	Log         *zap.Logger
}

type Server struct {
	e   *echo.Echo
	log *zap.Logger
}

func NewServer(cfg config.Config, d Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.OFF)
	e.Validator = validation.New()
	e.HTTPErrorHandler = errorHandler(d.Log)
	e.IPExtractor = ipExtractor(cfg.HTTP, d.Log)

	e.Use(
		echoMid.Recover(),
		echoMid.RequestID(),
		middleware.RequestLogger(d.Log),
		echoMid.Secure(),
		echoMid.CORSWithConfig(echoMid.CORSConfig{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, middleware.AdminTokenHeader},
			AllowCredentials: true,
		}),
	)
	if cfg.HTTP.BodyLimit != "" {
		e.Use(echoMid.BodyLimit(cfg.HTTP.BodyLimit))
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", healthHandler(time.Now()))

	if cfg.Admin.Token == "" {
		d.Log.Warn("admin.token not set: submission listings are publicly readable")
	}
	rlMW := middleware.RateLimitMiddleware(d.Limiter, d.Log)
	adminMW := middleware.AdminTokenMiddleware(cfg.Admin.Token)

	api := e.Group("/api")
	api.POST("/contact", submitContactHandler(d.Submissions), rlMW)
	api.GET("/contact", listSubmissionsHandler(d.Submissions, model.KindContact), adminMW)
	api.POST("/enquiry", submitEnquiryHandler(d.Submissions), rlMW)
	api.GET("/enquiry", listSubmissionsHandler(d.Submissions, model.KindEnquiry), adminMW)
	api.GET("/services", listServicesHandler(d.Catalog))
	api.GET("/services/:slug", getServiceHandler(d.Catalog))

	return &Server{e: e, log: d.Log}
}

// ipExtractor decides what RealIP, and so the rate limiter, sees. Forwarding
// headers are honoured only when the peer is a configured proxy.
func ipExtractor(cfg config.HTTPConfig, log *zap.Logger) echo.IPExtractor {
	nets, err := cfg.TrustedNets()
	if err != nil {
		log.Warn("ignoring http.trusted_proxies", zap.Error(err))
		nets = nil
	}
	if len(nets) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range nets {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func (s *Server) Start(addr string) error {
	s.log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.e.ServeHTTP(w, r) }
