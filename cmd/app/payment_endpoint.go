package main

import (
	"io"
	"net/http"

	"github.com/mkellijah10/Oillabz/internal/middleware"
	"github.com/mkellijah10/Oillabz/internal/services"

	"github.com/labstack/echo/v4"
)

func registerPaymentRoutes(g *echo.Group, ps *services.PaymentService) {
	p := g.Group("/payments")

	// ============================
	// PROVIDER WEBHOOK
	// (public: the provider signs it, no visitor token)
	// ============================
	g.POST("/payment-webhook", func(c echo.Context) error {
		payload, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
		}

		sig := c.Request().Header.Get("Stripe-Signature")
		if err := ps.HandleWebhook(c.Request().Context(), payload, sig); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	})

	// ============================
	// CHARGE (inline provider path)
	// ============================
	p.Use(middleware.VisitorMiddleware())

	p.POST("/charge", func(c echo.Context) error {
		visitor := middleware.GetVisitorID(c)

		var in services.ChargeInput
		if err := c.Bind(&in); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		outcome, err := ps.Charge(c.Request().Context(), visitor, in)
		if err != nil {
			// the wizard stays at the payment step; the buyer can retry
			return c.JSON(http.StatusBadRequest, echo.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"outcome": outcome,
		})
	})

	// ============================
	// HOSTED CHECKOUT SESSION (redirect provider path)
	// ============================
	sessions := g.Group("/checkout-sessions")
	sessions.Use(middleware.VisitorMiddleware())

	sessions.POST("", func(c echo.Context) error {
		visitor := middleware.GetVisitorID(c)

		var in services.ChargeInput
		if err := c.Bind(&in); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		outcome, err := ps.Charge(c.Request().Context(), visitor, in)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if outcome.RedirectURL == "" {
			// inline provider configured; the session endpoint is a no-op
			return c.JSON(http.StatusOK, echo.Map{"outcome": outcome})
		}
		return c.JSON(http.StatusOK, echo.Map{"redirectUrl": outcome.RedirectURL})
	})
}
