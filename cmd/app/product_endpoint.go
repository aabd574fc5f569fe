package main

import (
	"net/http"

	"github.com/mkellijah10/Oillabz/internal/model"
	"github.com/mkellijah10/Oillabz/internal/services"

	"github.com/labstack/echo/v4"
)

// registerProductRoutes mounts the read-only catalog.
//
//	GET /products            -> list (filters via ?type=&gender=)
//	GET /products/:id        -> get
func registerProductRoutes(g *echo.Group, cs *services.CatalogService) {
	g.GET("/products", func(c echo.Context) error {
		typ := c.QueryParam("type")
		gender := c.QueryParam("gender")

		switch {
		case typ != "" && gender != "":
			return c.JSON(http.StatusOK, cs.ByTypeAndGender(model.ProductType(typ), model.Gender(gender)))
		case typ != "":
			return c.JSON(http.StatusOK, cs.ByType(model.ProductType(typ)))
		default:
			return c.JSON(http.StatusOK, cs.All())
		}
	})

	g.GET("/products/:id", func(c echo.Context) error {
		p, ok := cs.ByID(c.Param("id"))
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "product not found"})
		}
		return c.JSON(http.StatusOK, p)
	})
}
