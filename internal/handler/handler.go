package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "github.com/bookrent/rental-service/docs"
	"github.com/bookrent/rental-service/internal/errs"
	"github.com/bookrent/rental-service/internal/model"
	"github.com/bookrent/rental-service/pkg/auth"
	"github.com/bookrent/rental-service/pkg/kafka"
	"github.com/bookrent/rental-service/pkg/validate"
)

type Handler struct {
	rentalSvc RentalService
	enqueuer  Enqueuer
	log       *zap.Logger
}

func New(rentalSrv RentalService, enqueuer Enqueuer, log *zap.Logger) *Handler {
	h := &Handler{
		rentalSvc: rentalSrv,
		enqueuer:  enqueuer,
		log:       log,
	}
	return h
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", newRateLimiterMW(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()

	identityMW := AuthContext
	if len(auth.JWTKey) > 0 {
		identityMW = JwtAuthentication
	}
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(requestLoggerConfig()),
		middleware.RequestID(),
		newRateLimiterMW(apiRPS),
		identityMW,
	)

	api.POST("/rentals", h.Rent)
	api.GET("/rentals", h.History)
	api.POST("/rentals/:rentalId/pickup", h.Pickup)
	api.POST("/rentals/:rentalId/return", h.Return)
	api.POST("/rentals/:rentalId/cancel", h.Cancel)

	api.GET("/reports/dashboard", h.Report, adminOnly)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Rent godoc
// @Summary  Book one copy for a fixed term
// @Tags     rentals
// @Accept   json
// @Produce  json
// @Param    input body model.CreateRentalRequest true "bookId and days (3,5,7)"
// @Success  201 {object} model.Rental
// @Router   /rentals [post]
func (h *Handler) Rent(c echo.Context) error {
	var req model.CreateRentalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := identity(c)
	if err != nil {
		return err
	}
	req.UserID = id.Username
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rental, err := h.rentalSvc.Rent(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	h.publishEvent(rental)
	return c.JSON(http.StatusCreated, rental)
}

// Pickup godoc
// @Summary  Hand the copy over after payment confirmation
// @Tags     rentals
// @Produce  json
// @Param    rentalId path string true "rental id"
// @Success  200 {object} model.Rental
// @Router   /rentals/{rentalId}/pickup [post]
func (h *Handler) Pickup(c echo.Context) error {
	rental, err := h.rentalSvc.Pickup(c.Request().Context(), c.Param("rentalId"))
	if err != nil {
		return httpError(err)
	}
	h.publishEvent(rental)
	return c.JSON(http.StatusOK, rental)
}

// Return godoc
// @Summary  Take the copy back, computing the late fine
// @Tags     rentals
// @Produce  json
// @Param    rentalId path string true "rental id"
// @Success  200 {object} model.Rental
// @Router   /rentals/{rentalId}/return [post]
func (h *Handler) Return(c echo.Context) error {
	rental, err := h.rentalSvc.Return(c.Request().Context(), c.Param("rentalId"))
	if err != nil {
		return httpError(err)
	}
	h.publishEvent(rental)
	return c.JSON(http.StatusOK, rental)
}

// Cancel godoc
// @Summary  Cancel a booking before pickup (owner only)
// @Tags     rentals
// @Produce  json
// @Param    rentalId path string true "rental id"
// @Success  200 {object} model.Rental
// @Router   /rentals/{rentalId}/cancel [post]
func (h *Handler) Cancel(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	rental, err := h.rentalSvc.Cancel(c.Request().Context(), c.Param("rentalId"), id.Username)
	if err != nil {
		return httpError(err)
	}
	h.publishEvent(rental)
	return c.JSON(http.StatusOK, rental)
}

// History godoc
// @Summary  Caller's rentals, newest first
// @Tags     rentals
// @Produce  json
// @Success  200 {array} model.Rental
// @Router   /rentals [get]
func (h *Handler) History(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	items, err := h.rentalSvc.History(c.Request().Context(), id.Username)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// Report godoc
// @Summary  Dashboard rollup for a day or for all time
// @Tags     reports
// @Produce  json
// @Param    date query string false "YYYY-MM-DD or 'all'"
// @Success  200 {object} model.Report
// @Router   /reports/dashboard [get]
func (h *Handler) Report(c echo.Context) error {
	report, err := h.rentalSvc.Report(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func identity(c echo.Context) (auth.Identity, error) {
	id, ok := auth.FromContext(c.Request().Context())
	if !ok || id.Username == "" {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, errs.ErrUserName.Error())
	}
	return id, nil
}

func (h *Handler) publishEvent(rental model.Rental) {
	ev := kafka.EventRental{
		RentalID:      rental.ID,
		UserID:        rental.UserID,
		BookID:        rental.BookID,
		Status:        string(rental.Status),
		PaymentStatus: string(rental.PaymentStatus),
		At:            time.Now(),
	}
	if err := h.enqueuer.Enqueue(kafka.RentalEventsTopic, ev); err != nil {
		h.log.Warn("rental event enqueue", zap.Error(err))
	}
}

func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrInvalidID),
		errors.Is(err, errs.ErrInvalidDays),
		errors.Is(err, errs.ErrInvalidDate),
		errors.Is(err, errs.ErrUserName):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrBookNotAvailable),
		errors.Is(err, errs.ErrPaymentNotConfirmed),
		errors.Is(err, errs.ErrNotBooked),
		errors.Is(err, errs.ErrNotRented),
		errors.Is(err, errs.ErrNotCancellable),
		errors.Is(err, errs.ErrDuplicateRental):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
