package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salesintel/sales-intelligence-api/internal/core/domain"
	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
)

// SalesHandler handles HTTP requests for sales records.
type SalesHandler struct {
	service ports.SalesService
}

func NewSalesHandler(service ports.SalesService) *SalesHandler {
	return &SalesHandler{service: service}
}

// List handles GET /api/sales.
//
// @Summary      List sales records
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        stage       query     string  false  "Exact stage match"
// @Param        start_date  query     string  false  "Earliest close date (YYYY-MM-DD)"
// @Param        end_date    query     string  false  "Latest close date (YYYY-MM-DD)"
// @Param        limit       query     int     false  "Maximum records (default 100, max 1000)"
// @Success      200         {object}  salesListResponse
// @Failure      400         {object}  map[string]string
// @Failure      401         {object}  map[string]string
// @Failure      500         {object}  map[string]string
// @Router       /sales [get]
func (h *SalesHandler) List(c echo.Context) error {
	var in ports.ListSalesInput
	err := echo.QueryParamsBinder(c).
		String("stage", &in.Stage).
		Time("start_date", &in.StartDate, dateLayout).
		Time("end_date", &in.EndDate, dateLayout).
		Int("limit", &in.Limit).
		BindError()
	if err != nil {
		return queryError(err)
	}

	records, err := h.service.ListSales(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, salesListResponse{
		Success: true,
		Count:   len(records),
		Data:    toSalesRecordResponses(records),
	})
}

// Stats handles GET /api/sales/stats.
//
// @Summary      Pipeline summary statistics
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  salesStatsResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /sales/stats [get]
func (h *SalesHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, salesStatsResponse{Success: true, Stats: stats})
}

// Get handles GET /api/sales/:id.
//
// @Summary      Get a sales record
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sales record id"
// @Success      200  {object}  salesRecordEnvelope
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /sales/{id} [get]
func (h *SalesHandler) Get(c echo.Context) error {
	record, err := h.service.GetSales(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, salesRecordEnvelope{Success: true, Data: toSalesRecordResponse(record)})
}

// Create handles POST /api/sales. The owner is always the caller.
//
// @Summary      Create a sales record
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSalesRequest  true  "Sales record"
// @Success      201   {object}  salesRecordEnvelope
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /sales [post]
func (h *SalesHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createSalesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	record, err := h.service.CreateSales(c.Request().Context(), toCreateSalesInput(req, identity.ID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, salesRecordEnvelope{Success: true, Data: toSalesRecordResponse(record)})
}

// queryError turns an echo binder failure into a client-facing validation error.
func queryError(err error) error {
	var be *echo.BindingError
	if errors.As(err, &be) {
		if be.Field == "start_date" || be.Field == "end_date" {
			return domain.NewValidationError("%s must be a date in YYYY-MM-DD format", be.Field)
		}
		return domain.NewValidationError("%s must be an integer", be.Field)
	}
	return domain.NewValidationError("Invalid query parameters")
}
