package main

import (
	"errors"
	"net/http"

	"github.com/mkellijah10/Oillabz/internal/middleware"
	"github.com/mkellijah10/Oillabz/internal/model"
	"github.com/mkellijah10/Oillabz/internal/services"

	"github.com/labstack/echo/v4"
)

type startCheckoutRequest struct {
	Email string `json:"email"`
}

type checkoutInfoRequest struct {
	DeliveryMethod string             `json:"deliveryMethod"`
	Form           model.CheckoutForm `json:"form"`
}

type checkoutResponse struct {
	State   *model.CheckoutState     `json:"state"`
	Items   []model.ResolvedCartItem `json:"items"`
	Pricing model.Pricing            `json:"pricing"`
}

func registerCheckoutRoutes(
	g *echo.Group,
	checkout *services.CheckoutService,
	emailValidator services.EmailValidator,
) {
	p := g.Group("/checkout")
	p.Use(middleware.VisitorMiddleware())

	// begin the cart -> checkout handoff
	p.POST("/start", func(c echo.Context) error {
		visitor := middleware.GetVisitorID(c)
		req := new(startCheckoutRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}

		if req.Email != "" && emailValidator != nil {
			if err := emailValidator.Validate(c.Request().Context(), req.Email); err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
		}

		if err := checkout.Begin(c.Request().Context(), visitor, req.Email); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"next": "/checkout"})
	})

	// load the wizard's working state
	p.GET("", func(c echo.Context) error {
		visitor := middleware.GetVisitorID(c)
		state, err := checkout.Load(c.Request().Context(), visitor)
		if err != nil {
			if errors.Is(err, services.ErrNoActiveCheckout) {
				// not a hard error: the client goes back to the cart
				return c.JSON(http.StatusOK, map[string]string{"redirect": "/cart"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, checkoutResponse{
			State:   state,
			Items:   checkout.Resolve(state.Items),
			Pricing: checkout.Pricing(state),
		})
	})

	// submit delivery details, advance to the payment step
	p.POST("/info", func(c echo.Context) error {
		visitor := middleware.GetVisitorID(c)
		req := new(checkoutInfoRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}

		state, err := checkout.SubmitInfo(
			c.Request().Context(),
			visitor,
			model.DeliveryMethod(req.DeliveryMethod),
			req.Form,
		)
		if err != nil {
			var verr *services.ValidationError
			if errors.As(err, &verr) {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error": verr.Message,
					"field": verr.Field,
				})
			}
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, checkoutResponse{
			State:   state,
			Items:   checkout.Resolve(state.Items),
			Pricing: checkout.Pricing(state),
		})
	})

	// back from payment to details, form preserved
	p.POST("/back", func(c echo.Context) error {
		visitor := middleware.GetVisitorID(c)
		state, err := checkout.Back(c.Request().Context(), visitor)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, checkoutResponse{
			State:   state,
			Items:   checkout.Resolve(state.Items),
			Pricing: checkout.Pricing(state),
		})
	})
}
