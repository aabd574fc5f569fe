package main

import (
	"net/http"

	"github.com/mkellijah10/Oillabz/internal/model"
	"github.com/mkellijah10/Oillabz/internal/services"

	"github.com/labstack/echo/v4"
)

// registerOrderRoutes mounts the order-notification endpoint. Repeated
// calls with the same order number resend both emails; dedupe is a known
// gap.
func registerOrderRoutes(g *echo.Group, osvc *services.OrderService) {
	g.POST("/orders/notify", func(c echo.Context) error {
		var order model.Order
		if err := c.Bind(&order); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}

		if order.OrderNumber == "" || order.Customer.Email == "" || len(order.Items) == 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing order information"})
		}

		if err := osvc.Notify(c.Request().Context(), &order); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to send notification emails"})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "order notifications sent"})
	})
}
