package main

import (
	"net/http"

	"github.com/mkellijah10/Oillabz/internal/middleware"
	"github.com/mkellijah10/Oillabz/internal/model"
	"github.com/mkellijah10/Oillabz/internal/services"

	"github.com/labstack/echo/v4"
)

type addCartRequest struct {
	ProductID string `json:"productid"`
	Qty       int    `json:"quantity"`
}

type updateCartRequest struct {
	Qty int `json:"quantity"`
}

func registerCartRoutes(g *echo.Group, cart *services.CartService, checkout *services.CheckoutService) {
	p := g.Group("/cart")
	p.Use(middleware.VisitorMiddleware())

	// GET cart (resolved items + pricing preview)
	p.GET("", func(c echo.Context) error {
		visitor := middleware.GetVisitorID(c)
		ctx := c.Request().Context()

		items, err := cart.Items(ctx, visitor)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
		}
		resolved := checkout.Resolve(items)
		// cart page previews the shipping fee; pickup is chosen later
		pricing := services.ComputePricing(resolved, model.DeliveryShipping)

		count := 0
		for _, it := range items {
			count += it.Quantity
		}
		return c.JSON(http.StatusOK, model.CartResponse{
			Items:         resolved,
			Count:         count,
			Pricing:       pricing,
			RecentlyAdded: cart.RecentlyAdded(visitor),
		})
	})

	// cart badge count
	p.GET("/count", func(c echo.Context) error {
		visitor := middleware.GetVisitorID(c)
		count, err := cart.Count(c.Request().Context(), visitor)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]int{"count": count})
	})

	// ADD item
	p.POST("", func(c echo.Context) error {
		visitor := middleware.GetVisitorID(c)
		req := new(addCartRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}
		if req.Qty == 0 {
			req.Qty = 1
		}
		if err := cart.Add(c.Request().Context(), visitor, req.ProductID, req.Qty); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, map[string]string{"message": "added"})
	})

	// UPDATE quantity
	p.PUT("/:productid", func(c echo.Context) error {
		visitor := middleware.GetVisitorID(c)
		req := new(updateCartRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}
		if err := cart.UpdateQuantity(c.Request().Context(), visitor, c.Param("productid"), req.Qty); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "updated"})
	})

	// REMOVE item
	p.DELETE("/:productid", func(c echo.Context) error {
		visitor := middleware.GetVisitorID(c)
		if err := cart.Remove(c.Request().Context(), visitor, c.Param("productid")); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "removed"})
	})

	// CLEAR cart
	p.DELETE("", func(c echo.Context) error {
		visitor := middleware.GetVisitorID(c)
		if err := cart.Clear(c.Request().Context(), visitor); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "cleared"})
	})
}
