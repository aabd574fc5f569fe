package main

import (
	"errors"
	"net/http"

	"github.com/mkellijah10/Oillabz/internal/model"
	"github.com/mkellijah10/Oillabz/internal/services"

	"github.com/labstack/echo/v4"
)

func registerContactRoutes(g *echo.Group, cs *services.ContactService) {
	g.POST("/contact", func(c echo.Context) error {
		var msg model.ContactMessage
		if err := c.Bind(&msg); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}

		if err := cs.Submit(c.Request().Context(), msg); err != nil {
			var verr *services.ValidationError
			if errors.As(err, &verr) {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error": verr.Message,
					"field": verr.Field,
				})
			}
			if errors.Is(err, services.ErrMailerNotConfigured) {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to send message"})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "Thank you for contacting Oillabz! We'll get back to you within 24 hours.",
		})
	})
}
