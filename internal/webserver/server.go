// Package webserver is the presentation layer: HTML pages for buyers and
// the admin desk, session transport for the buyer's phone number and the
// admin flag.
package webserver

import (
	"fmt"

	"github.com/gorilla/sessions"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk/internal/app"
	"github.com/orderdesk/orderdesk/internal/assets"
	"github.com/orderdesk/orderdesk/internal/shop"
)

const (
	sessionName     = "orderdesk"
	sessionKeyPhone = "user_phone"
	sessionKeyAdmin = "admin"
)

type WebServer struct {
	ctx       app.AppContext
	root      *echo.Echo
	repo      *shop.Repository
	lifecycle *shop.Lifecycle
	assets    *assets.Store
}

func NewServer(ctx app.AppContext, repo *shop.Repository, lifecycle *shop.Lifecycle, store *assets.Store) *WebServer {
	s := &WebServer{
		ctx:       ctx,
		root:      echo.New(),
		repo:      repo,
		lifecycle: lifecycle,
		assets:    store,
	}
	s.root.HideBanner = true
	s.root.HidePort = true
	s.root.Debug = ctx.Config().System.Debug
	s.root.JSONSerializer = jsonSerializer{}
	s.root.Renderer = newRenderer()

	secret := ctx.Config().Web.Secret
	if secret == "" {
		// Sessions will not survive a restart without a configured secret.
		secret = random.String(32)
		zap.L().Warn("web secret not configured, using a transient session key")
	}

	s.root.Use(middleware.Recover())
	s.root.Use(session.Middleware(sessions.NewCookieStore([]byte(secret))))
	s.root.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Debug("http request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))

	s.registerRoutes()
	return s
}

func (s *WebServer) registerRoutes() {
	s.root.GET("/", s.index)
	s.root.POST("/order/:product_id", s.placeOrder)

	s.root.GET("/admin/login", s.adminLoginForm)
	s.root.POST("/admin/login", s.adminLogin)
	s.root.GET("/admin/dashboard", s.dashboard)
	s.root.POST("/admin/products", s.addProduct)
	s.root.POST("/admin/products/:id/delete", s.deleteProduct)
	s.root.POST("/admin/orders/:id/:status", s.updateOrder)

	s.root.Static("/uploads", s.assets.Dir())
}

// Root exposes the echo instance so the JSON admin API can attach.
func (s *WebServer) Root() *echo.Echo {
	return s.root
}

func (s *WebServer) Start() error {
	cfg := s.ctx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zap.S().Infof("web server listening on %s", addr)
	return s.root.Start(addr)
}

type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsoniter.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	return jsoniter.NewDecoder(c.Request().Body).Decode(i)
}
