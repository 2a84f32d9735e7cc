package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/orderdesk/orderdesk/internal/assets"
	"github.com/orderdesk/orderdesk/internal/domain"
	"github.com/orderdesk/orderdesk/pkg/common"
)

type productPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"` // filename of an already uploaded asset
}

func registerProductRoutes(g *echo.Group) {
	g.GET("/products", listProducts)
	g.POST("/products", createProduct)
	g.DELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	products, total, err := getHolder(c).repo.PageProducts(page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, products, total, page, pageSize)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}

	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "MISSING_NAME", "Name is required", nil)
	}
	if payload.Price < 0 {
		return fail(c, http.StatusBadRequest, "INVALID_PRICE", "Price must be non-negative", nil)
	}

	image := ""
	if payload.Image != "" {
		// The API references assets by filename; the file itself must have
		// been stored through the upload flow. Unlike the HTML form, a bad
		// reference is reported instead of silently dropped.
		if !assets.AllowedFile(payload.Image) {
			return fail(c, http.StatusBadRequest, "INVALID_ASSET", "Image extension not allowed", nil)
		}
		image = assets.SanitizeFilename(payload.Image)
		if !getHolder(c).assets.Exists(image) {
			return fail(c, http.StatusBadRequest, "INVALID_ASSET", "Referenced asset is not stored", nil)
		}
	}

	now := time.Now()
	p := domain.Product{
		ID:          common.UUIDint64(),
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		Image:       image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := getHolder(c).repo.InsertProduct(&p); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	h := getHolder(c)
	image, err := h.repo.ProductImageByID(id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}
	if image != "" {
		if err := h.assets.Remove(image); err != nil {
			zap.L().Warn("asset removal failed", zap.Int64("product_id", id), zap.Error(err))
		}
	}
	if err := h.repo.DeleteProductByID(id); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
