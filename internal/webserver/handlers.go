package webserver

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk/internal/domain"
	"github.com/orderdesk/orderdesk/internal/shop"
	"github.com/orderdesk/orderdesk/pkg/common"
)

const duplicateOrderMessage = "You have already ordered this product, and it is not rejected. " +
	"Please check the status of your previous order."

func (s *WebServer) isAdmin(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	admin, _ := sess.Values[sessionKeyAdmin].(bool)
	return admin
}

func (s *WebServer) sessionPhone(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	phone, _ := sess.Values[sessionKeyPhone].(string)
	return phone
}

func redirectHome(c echo.Context, message string) error {
	return c.Redirect(http.StatusFound, "/?message="+url.QueryEscape(message))
}

// index lists the catalog and, for a returning buyer, the status of the
// most recent order placed under the session phone number.
func (s *WebServer) index(c echo.Context) error {
	var orderStatus string
	if phone := s.sessionPhone(c); phone != "" {
		status, ok, err := s.lifecycle.LatestStatusForPhone(phone)
		if err != nil {
			return err
		}
		if ok {
			orderStatus = string(status)
		}
	}

	products, err := s.repo.ListProducts()
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "index.html", echo.Map{
		"Products":    products,
		"Message":     c.QueryParam("message"),
		"OrderStatus": orderStatus,
	})
}

func (s *WebServer) placeOrder(c echo.Context) error {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return redirectHome(c, "Invalid product.")
	}

	name := strings.TrimSpace(c.FormValue("name"))
	phone := strings.TrimSpace(c.FormValue("phone"))

	// Remember the phone so the home page can show order status later.
	// Trimmed here so the session value matches the ledger row.
	sess, err := session.Get(sessionName, c)
	if err == nil {
		sess.Values[sessionKeyPhone] = phone
		_ = sess.Save(c.Request(), c.Response())
	}

	res, err := s.lifecycle.PlaceOrder(productID, name, phone)
	if errors.Is(err, shop.ErrInvalidInput) {
		return redirectHome(c, "Name and phone are required.")
	}
	if err != nil {
		return err
	}
	if res.Outcome == shop.OutcomeDuplicate {
		return redirectHome(c, duplicateOrderMessage)
	}
	return redirectHome(c, "Order placed successfully!")
}

func (s *WebServer) adminLoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "admin_login.html", echo.Map{})
}

func (s *WebServer) adminLogin(c echo.Context) error {
	cfg := s.ctx.Config().Admin
	username := c.FormValue("username")
	password := c.FormValue("password")

	stored := cfg.Password
	if cfg.PasswordHash != "" {
		stored = cfg.PasswordHash
	}

	if username != cfg.Username || !common.VerifyPassword(password, stored) {
		zap.L().Warn("admin login failed", zap.String("username", username))
		return c.Render(http.StatusUnauthorized, "admin_login.html", echo.Map{
			"Error": "Invalid credentials.",
		})
	}

	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionKeyAdmin] = true
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (s *WebServer) dashboard(c echo.Context) error {
	if !s.isAdmin(c) {
		return c.Redirect(http.StatusFound, "/admin/login")
	}

	orders, err := s.repo.ListOrdersWithProducts()
	if err != nil {
		return err
	}
	products, err := s.repo.ListProducts()
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "dashboard.html", echo.Map{
		"Orders":   orders,
		"Products": products,
	})
}

// addProduct stores the uploaded image and inserts the catalog row. A
// rejected upload skips the insert without surfacing an error page,
// matching the storefront's tolerant form flow; the reason is logged.
func (s *WebServer) addProduct(c echo.Context) error {
	if !s.isAdmin(c) {
		return c.Redirect(http.StatusFound, "/admin/login")
	}

	name := c.FormValue("name")
	description := c.FormValue("description")
	price := cast.ToFloat64(c.FormValue("price"))
	if price < 0 {
		zap.L().Info("add product skipped, negative price", zap.String("name", name))
		return c.Redirect(http.StatusFound, "/admin/dashboard")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		zap.L().Info("add product skipped, no image uploaded", zap.String("name", name))
		return c.Redirect(http.StatusFound, "/admin/dashboard")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	res, err := s.assets.Save(fileHeader.Filename, src)
	if err != nil {
		return err
	}
	if !res.Accepted {
		zap.L().Info("add product skipped, asset rejected",
			zap.String("name", name),
			zap.String("filename", fileHeader.Filename),
			zap.String("reason", res.Reason))
		return c.Redirect(http.StatusFound, "/admin/dashboard")
	}

	product := &domain.Product{
		ID:          common.UUIDint64(),
		Name:        name,
		Description: description,
		Price:       price,
		Image:       res.Filename,
	}
	if err := s.repo.InsertProduct(product); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (s *WebServer) updateOrder(c echo.Context) error {
	if !s.isAdmin(c) {
		return c.Redirect(http.StatusFound, "/admin/login")
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	status, err := domain.ParseOrderStatus(c.Param("status"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if status != domain.OrderAccepted && status != domain.OrderRejected {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be Accepted or Rejected")
	}

	if err := s.lifecycle.Transition(orderID, status); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/admin/dashboard")
}

// deleteProduct removes the asset file first, then the row. Orders keep
// their product reference.
func (s *WebServer) deleteProduct(c echo.Context) error {
	if !s.isAdmin(c) {
		return c.Redirect(http.StatusFound, "/admin/login")
	}

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := s.repo.GetProduct(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return c.Redirect(http.StatusFound, "/admin/dashboard")
	}

	if product.Image != "" {
		if err := s.assets.Remove(product.Image); err != nil {
			zap.L().Warn("asset removal failed",
				zap.Int64("product_id", productID),
				zap.String("image", product.Image),
				zap.Error(err))
		}
	}
	if err := s.repo.DeleteProductByID(productID); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/admin/dashboard")
}
