package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gllabs/portal/core"
	"github.com/gllabs/portal/core/cohort"
	"github.com/gllabs/portal/core/unit"
	"github.com/gllabs/portal/core/user"
)

type cohortApi struct {
	svc     cohort.Service
	userSvc user.Service
}

func registerCohortAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc cohort.Service, userSvc user.Service) {
	api := cohortApi{svc: svc, userSvc: userSvc}

	cg := g.Group("/cohorts", jwt)
	cg.POST("", api.create, adminMiddleware())
	cg.GET("", api.query)

	// detail endpoints; reads allowed for assigned teachers, writes admin-only
	dg := cg.Group("/:id", api.ctxCohortMiddleware())
	dg.GET("", api.retrieve)
	dg.PATCH("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())

	dg.POST("/weeks", api.addWeek, adminMiddleware())
	dg.PATCH("/weeks/:weekID", api.updateWeek, adminMiddleware())
	dg.POST("/unlock-next", api.unlockNext, adminMiddleware())
	dg.POST("/weeks/:weekID/content", api.addContent, adminMiddleware())
	dg.DELETE("/weeks/:weekID/content/:contentID", api.destroyContent, adminMiddleware())

	dg.GET("/messages", api.queryMessages)
	dg.POST("/messages", api.postMessage)

	g.DELETE("/partner-schools/:id", api.destroyPartnerSchool, jwt, adminMiddleware())

	tg := g.Group("/cohort-teachers", jwt, adminMiddleware())
	tg.POST("", api.assignTeacher)
	tg.DELETE("/:id", api.unassignTeacher)
	tg.PATCH("/session-times", api.updateSessionTimes)
}

// ctxCohortMiddleware resolves the cohort by ID or slug and enforces
// visibility: admins always, teachers only on cohorts they belong to.
// Everyone else gets a 404, never a hint that the cohort exists.
func (api *cohortApi) ctxCohortMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}

			reqCtx := ctx.Request().Context()
			c, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
			if errors.Cause(err) == cohort.ErrNotFound {
				c, err = api.svc.GetBySlug(reqCtx, ctx.Param("id"))
			}
			if err != nil {
				if errors.Cause(err) == cohort.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding cohort")
			}

			if !c.CanBeViewedBy(claims.Subject, claims.IsAdmin) {
				return errHttpNotFound
			}
			ctx.Set("cohort", c)
			return next(ctx)
		}
	}
}

func contextCohort(ctx echo.Context) (cohort.Cohort, error) {
	if c, ok := ctx.Get("cohort").(cohort.Cohort); ok {
		return c, nil
	}
	return cohort.Cohort{}, errors.New("cohort object not found in echo.Context")
}

// Handlers

func (api *cohortApi) create(ctx echo.Context) error {
	var data cohort.NewCohort
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCohort")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.Instantiate(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *cohortApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(cohort.QueryFilter)
	if !claims.IsAdmin {
		// teachers only see their own cohorts
		filter.TeacherID = claims.Subject
	}

	cohorts, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying cohorts")
	}
	if cohorts == nil {
		cohorts = []cohort.Cohort{}
	}
	return ctx.JSON(http.StatusOK, cohorts)
}

func (api *cohortApi) retrieve(ctx echo.Context) error {
	c, err := contextCohort(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *cohortApi) update(ctx echo.Context) error {
	c, err := contextCohort(ctx)
	if err != nil {
		return err
	}

	var data cohort.UpdateCohort
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCohort")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err = api.svc.Update(ctx.Request().Context(), c.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *cohortApi) destroy(ctx echo.Context) error {
	c, err := contextCohort(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), c.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *cohortApi) addWeek(ctx echo.Context) error {
	c, err := contextCohort(ctx)
	if err != nil {
		return err
	}

	var data cohort.NewWeek
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewWeek")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	w, err := api.svc.AddWeek(ctx.Request().Context(), c.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, w)
}

func (api *cohortApi) updateWeek(ctx echo.Context) error {
	var data WeekUnlockRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WeekUnlockRequest")
	}
	if data.Unlocked == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "unlocked", Error: "this field is required"})
	}

	w, err := api.svc.SetWeekUnlocked(ctx.Request().Context(), ctx.Param("weekID"), *data.Unlocked)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, w)
}

func (api *cohortApi) unlockNext(ctx echo.Context) error {
	c, err := contextCohort(ctx)
	if err != nil {
		return err
	}

	w, unlocked, err := api.svc.UnlockNext(ctx.Request().Context(), c.ID)
	if err != nil {
		return err
	}
	if !unlocked {
		return ctx.NoContent(http.StatusNoContent) // nothing left to unlock
	}
	return ctx.JSON(http.StatusOK, w)
}

func (api *cohortApi) addContent(ctx echo.Context) error {
	var data unit.NewContentItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContentItem")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	item, err := api.svc.AddContent(ctx.Request().Context(), ctx.Param("weekID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *cohortApi) destroyContent(ctx echo.Context) error {
	if err := api.svc.DeleteContent(ctx.Request().Context(), ctx.Param("contentID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *cohortApi) destroyPartnerSchool(ctx echo.Context) error {
	if err := api.svc.DeletePartnerSchool(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *cohortApi) assignTeacher(ctx echo.Context) error {
	var data cohort.NewTeacherAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacherAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ta, err := api.svc.AssignTeacher(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ta)
}

func (api *cohortApi) unassignTeacher(ctx echo.Context) error {
	if err := api.svc.UnassignTeacher(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *cohortApi) updateSessionTimes(ctx echo.Context) error {
	var data SessionTimesRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SessionTimesRequest")
	}
	for i := range data.Updates {
		if data.Updates[i].AssignmentID == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "assignment_id", Error: "this field is required"})
		}
	}

	if err := api.svc.UpdateSessionTimes(ctx.Request().Context(), data.Updates); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *cohortApi) queryMessages(ctx echo.Context) error {
	c, err := contextCohort(ctx)
	if err != nil {
		return err
	}

	msgs, err := api.svc.Messages(ctx.Request().Context(), c.ID)
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	if msgs == nil {
		msgs = []cohort.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *cohortApi) postMessage(ctx echo.Context) error {
	c, err := contextCohort(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data MessageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MessageRequest")
	}
	nm := cohort.NewMessage{CohortID: c.ID, Message: data.Message}
	if err := nm.Validate(); err != nil {
		return err
	}

	msg, err := api.svc.PostMessage(ctx.Request().Context(), claims.Subject, nm)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, msg)
}

type (
	WeekUnlockRequest struct {
		Unlocked *bool `json:"unlocked"`
	}

	SessionTimesRequest struct {
		Updates []cohort.SessionTimeUpdate `json:"updates" validate:"required,dive"`
	}

	MessageRequest struct {
		Message string `json:"message" validate:"required"`
	}
)
