// Package adminapi exposes a small JSON API for the admin desk, gated by a
// JWT obtained at /api/login with the same credentials as the HTML login.
package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk/internal/app"
	"github.com/orderdesk/orderdesk/internal/assets"
	"github.com/orderdesk/orderdesk/internal/shop"
	"github.com/orderdesk/orderdesk/pkg/common"
)

const holderKey = "adminapi.holder"

const tokenTTL = 12 * time.Hour

type holder struct {
	ctx       app.AppContext
	repo      *shop.Repository
	lifecycle *shop.Lifecycle
	assets    *assets.Store
}

// Register attaches the API routes to the shared echo instance.
func Register(e *echo.Echo, ctx app.AppContext, repo *shop.Repository, lifecycle *shop.Lifecycle, store *assets.Store) {
	h := &holder{ctx: ctx, repo: repo, lifecycle: lifecycle, assets: store}

	api := e.Group("/api")
	api.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(holderKey, h)
			return next(c)
		}
	})

	api.POST("/login", apiLogin)

	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret(ctx)),
	}))
	registerOrderRoutes(secured)
	registerProductRoutes(secured)
}

func getHolder(c echo.Context) *holder {
	return c.Get(holderKey).(*holder)
}

func jwtSecret(ctx app.ConfigProvider) string {
	if s := ctx.Config().Web.Secret; s != "" {
		return s
	}
	return common.GetSecretSalt()
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func apiLogin(c echo.Context) error {
	h := getHolder(c)

	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login parameters", nil)
	}

	cfg := h.ctx.Config().Admin
	stored := cfg.Password
	if cfg.PasswordHash != "" {
		stored = cfg.PasswordHash
	}
	if payload.Username != cfg.Username || !common.VerifyPassword(payload.Password, stored) {
		zap.L().Warn("api login failed", zap.String("username", payload.Username))
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}

	claims := jwt.MapClaims{
		"sub": payload.Username,
		"adm": true,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtSecret(h.ctx)))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to sign token", err.Error())
	}
	return ok(c, map[string]interface{}{"token": signed})
}

type apiResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Detail  interface{} `json:"detail,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, apiResponse{Code: "OK", Data: data})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, apiResponse{Code: code, Message: message, Detail: detail})
}

type pagedResponse struct {
	Code     string      `json:"code"`
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pagedResponse{
		Code: "OK", Data: rows, Total: total, Page: page, PageSize: pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page, pageSize = 1, 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
