package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orderdesk/orderdesk/internal/domain"
)

func registerOrderRoutes(g *echo.Group) {
	g.GET("/orders", listOrders)
	g.GET("/orders/dashboard", listOrdersWithProducts)
	g.PUT("/orders/:id/status", updateOrderStatus)
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	orders, total, err := getHolder(c).repo.PageOrders(page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, orders, total, page, pageSize)
}

func listOrdersWithProducts(c echo.Context) error {
	rows, err := getHolder(c).repo.ListOrdersWithProducts()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return ok(c, rows)
}

type statusPayload struct {
	Status string `json:"status"`
}

func updateOrderStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}

	var payload statusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", nil)
	}
	status, err := domain.ParseOrderStatus(payload.Status)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", err.Error(), nil)
	}
	if status != domain.OrderAccepted && status != domain.OrderRejected {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Status must be Accepted or Rejected", nil)
	}

	if err := getHolder(c).lifecycle.Transition(id, status); err != nil {
		return fail(c, http.StatusInternalServerError, "TRANSITION_FAILED", "Failed to update order", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id, "status": status})
}
