package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gllabs/portal/core/unit"
)

type unitApi struct {
	svc unit.Service
}

// registerUnitAPI mounts the unit-template endpoints. Templates are
// admin-authored; every route requires an admin token.
func registerUnitAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc unit.Service) {
	api := unitApi{svc: svc}

	ug := g.Group("/units", jwt, adminMiddleware())
	ug.POST("", api.create)
	ug.GET("", api.query)
	ug.GET("/:id", api.retrieve)
	ug.PATCH("/:id", api.update)
	ug.DELETE("/:id", api.destroy)

	ug.POST("/:id/weeks", api.addWeek)
	ug.PATCH("/:id/weeks/:weekID", api.updateWeek)
	ug.DELETE("/:id/weeks/:weekID", api.destroyWeek)

	ug.POST("/:id/weeks/:weekID/content", api.addContent)
	ug.DELETE("/:id/weeks/:weekID/content/:contentID", api.destroyContent)
}

// Handlers

func (api *unitApi) create(ctx echo.Context) error {
	var data unit.NewUnit
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUnit")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	u, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating unit")
	}
	return ctx.JSON(http.StatusCreated, u)
}

func (api *unitApi) query(ctx echo.Context) error {
	units, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying units")
	}
	if units == nil {
		units = []unit.Unit{}
	}
	return ctx.JSON(http.StatusOK, units)
}

func (api *unitApi) retrieve(ctx echo.Context) error {
	u, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, u)
}

func (api *unitApi) update(ctx echo.Context) error {
	var data unit.UpdateUnit
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUnit")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	u, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, u)
}

func (api *unitApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *unitApi) addWeek(ctx echo.Context) error {
	var data unit.NewWeek
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWeek")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	w, err := api.svc.AddWeek(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, w)
}

func (api *unitApi) updateWeek(ctx echo.Context) error {
	var data unit.UpdateWeek
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateWeek")
	}

	w, err := api.svc.UpdateWeek(ctx.Request().Context(), ctx.Param("weekID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, w)
}

func (api *unitApi) destroyWeek(ctx echo.Context) error {
	if err := api.svc.DeleteWeek(ctx.Request().Context(), ctx.Param("weekID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *unitApi) addContent(ctx echo.Context) error {
	var data unit.NewContentItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContentItem")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.AddContent(ctx.Request().Context(), ctx.Param("weekID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *unitApi) destroyContent(ctx echo.Context) error {
	if err := api.svc.DeleteContent(ctx.Request().Context(), ctx.Param("contentID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
