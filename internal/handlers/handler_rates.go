package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/finkit/currency_rates_app/internal/apperrors"
	portssvc "github.com/finkit/currency_rates_app/internal/core/ports/services"
	"github.com/finkit/currency_rates_app/internal/dto"
	"github.com/finkit/currency_rates_app/internal/middleware"
	"github.com/finkit/currency_rates_app/internal/utils"
	"github.com/finkit/currency_rates_app/internal/utils/pagination"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const defaultRatePageSize = 50

// rateHandler handles HTTP requests for dated rates and rate resolution.
type rateHandler struct {
	currencyService portssvc.CurrencySvcFacade
	rateResolver    portssvc.RateResolverSvcFacade
}

// newRateHandler creates a new rateHandler.
func newRateHandler(cs portssvc.CurrencySvcFacade, rr portssvc.RateResolverSvcFacade) *rateHandler {
	return &rateHandler{
		currencyService: cs,
		rateResolver:    rr,
	}
}

// registerRateRoutes registers dated-rate and rate-resolution routes under
// /companies/:companyID.
func registerRateRoutes(rg *gin.RouterGroup, currencyService portssvc.CurrencySvcFacade, rateResolver portssvc.RateResolverSvcFacade) {
	h := newRateHandler(currencyService, rateResolver)

	company := rg.Group("/companies/:companyID")
	{
		company.POST("/currencies/:code/dated-rates", h.setDatedRate)
		company.GET("/currencies/:code/effective-rate", h.getEffectiveRate)
		company.GET("/currencies/:code/date-ranges", h.getDateRanges)
		company.POST("/dated-rates/bulk", h.bulkSetDatedRates)
		company.GET("/dated-rates", h.listDatedRates)
		company.GET("/convert", h.convert)
	}
}

// setDatedRate godoc
// @Summary Set a dated rate
// @Description Records or overwrites a currency's rate effective from a start date
// @Tags rates
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   code path string true "Currency Code (3 letters)"
// @Param   rate body dto.SetDatedRateRequest true "Rate details"
// @Success 201 {object} dto.DatedRateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Currency not found"
// @Failure 500 {object} map[string]string "Failed to set dated rate"
// @Security BearerAuth
// @Router /companies/{companyID}/currencies/{code}/dated-rates [post]
func (h *rateHandler) setDatedRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	code := c.Param("code")

	var req dto.SetDatedRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetDatedRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	startDate, err := dto.ParseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date: " + err.Error()})
		return
	}

	rate, err := h.currencyService.SetDatedRate(c.Request.Context(), companyID, code, startDate, req.ConversionRate, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Currency not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to set dated rate in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set dated rate"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToDatedRateResponse(rate))
}

// bulkSetDatedRates godoc
// @Summary Record dated rates for several currencies at once
// @Description Records one start date with a rate per currency, all-or-nothing. Pairs that already have a recorded rate reject the whole batch.
// @Tags rates
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   rates body dto.BulkSetDatedRatesRequest true "Rates per currency"
// @Success 201 {array} dto.DatedRateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Currency not found"
// @Failure 409 {object} map[string]interface{} "Rates already recorded for some currencies"
// @Failure 500 {object} map[string]string "Failed to record dated rates"
// @Security BearerAuth
// @Router /companies/{companyID}/dated-rates/bulk [post]
func (h *rateHandler) bulkSetDatedRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.BulkSetDatedRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for BulkSetDatedRates", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	startDate, err := dto.ParseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date: " + err.Error()})
		return
	}

	saved, err := h.currencyService.BulkSetDatedRates(c.Request.Context(), companyID, startDate, req.Rates, userID)
	if err != nil {
		var conflictErr *apperrors.BulkRateConflictError
		switch {
		case errors.As(err, &conflictErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":     conflictErr.Error(),
				"conflicts": conflictErr.Conflicts,
			})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to record dated rates in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record dated rates"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToListDatedRateResponse(saved))
}

// listDatedRates godoc
// @Summary List a company's dated rates
// @Description Retrieves dated rates sorted by start date, optionally narrowed to one currency, paginated by opaque token
// @Tags rates
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   currency query string false "Currency Code filter"
// @Param   limit query int false "Page size (default 50)"
// @Param   pageToken query string false "Opaque token from a previous page"
// @Success 200 {object} dto.ListDatedRatesResponse
// @Failure 400 {object} map[string]string "Invalid page token"
// @Failure 500 {object} map[string]string "Failed to list dated rates"
// @Security BearerAuth
// @Router /companies/{companyID}/dated-rates [get]
func (h *rateHandler) listDatedRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var currencyCode *string
	if code := c.Query("currency"); code != "" {
		currencyCode = &code
	}

	limit := defaultRatePageSize
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	rates, err := h.currencyService.ListDatedRates(c.Request.Context(), companyID, currencyCode)
	if err != nil {
		logger.Error("Failed to list dated rates from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list dated rates"})
		return
	}

	// Cursor pagination over the (start_date, currency_code) sort order.
	if token := c.Query("pageToken"); token != "" {
		afterDate, afterCode, err := pagination.DecodeRateToken(token)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		skip := 0
		for _, r := range rates {
			if r.StartDate.After(afterDate) ||
				(r.StartDate.Equal(afterDate) && r.CurrencyCode > afterCode) {
				break
			}
			skip++
		}
		rates = rates[skip:]
	}

	resp := dto.ListDatedRatesResponse{}
	if len(rates) > limit {
		last := rates[limit-1]
		resp.NextPageToken = pagination.EncodeRateToken(last.StartDate, last.CurrencyCode)
		rates = rates[:limit]
	}
	resp.Rates = dto.ToListDatedRateResponse(rates)

	c.JSON(http.StatusOK, resp)
}

// getEffectiveRate godoc
// @Summary Resolve a currency's effective rate
// @Description Resolves a currency's rate relative to the company's default at a date (today when asOf is omitted)
// @Tags rates
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   code path string true "Currency Code (3 letters)"
// @Param   asOf query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.EffectiveRateResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 404 {object} map[string]string "Currency not found"
// @Failure 500 {object} map[string]string "Failed to resolve rate"
// @Security BearerAuth
// @Router /companies/{companyID}/currencies/{code}/effective-rate [get]
func (h *rateHandler) getEffectiveRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	code := c.Param("code")

	asOf, asOfStr, ok := parseAsOf(c)
	if !ok {
		return
	}

	rate, err := h.rateResolver.ResolveEffectiveRate(c.Request.Context(), companyID, code, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Currency not found"})
		} else {
			logger.Error("Failed to resolve effective rate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve rate"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.EffectiveRateResponse{
		CurrencyCode: code,
		AsOf:         asOfStr,
		Rate:         rate,
	})
}

// convert godoc
// @Summary Convert an amount between two currencies
// @Description Converts amount from one of the company's currencies to another at a date, via the default currency
// @Tags rates
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   amount query string true "Amount to convert"
// @Param   from query string true "Source currency code"
// @Param   to query string true "Target currency code"
// @Param   asOf query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.ConvertResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Currency not found"
// @Failure 422 {object} map[string]string "Source currency has a zero rate"
// @Failure 500 {object} map[string]string "Failed to convert"
// @Security BearerAuth
// @Router /companies/{companyID}/convert [get]
func (h *rateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}
	fromCode := c.Query("from")
	toCode := c.Query("to")
	if fromCode == "" || toCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both 'from' and 'to' currency codes are required"})
		return
	}

	asOf, asOfStr, ok := parseAsOf(c)
	if !ok {
		return
	}

	result, err := h.rateResolver.Convert(c.Request.Context(), companyID, amount, fromCode, toCode, asOf)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Currency not found"})
		case errors.Is(err, apperrors.ErrDivisionByZero):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to convert amount", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert"})
		}
		return
	}

	resp := dto.ConvertResponse{
		Amount:           amount,
		FromCurrencyCode: fromCode,
		ToCurrencyCode:   toCode,
		AsOf:             asOfStr,
		Result:           result,
	}
	// Render the result per the target currency's display settings when it
	// is still resolvable.
	if target, err := h.currencyService.GetCurrencyByCode(c.Request.Context(), companyID, toCode); err == nil {
		resp.Formatted = utils.FormatAmount(result, *target)
	}

	c.JSON(http.StatusOK, resp)
}

// getDateRanges godoc
// @Summary List a currency's effective date ranges
// @Description Turns a currency's dated history into contiguous periods, the last one open-ended
// @Tags rates
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   code path string true "Currency Code (3 letters)"
// @Success 200 {array} dto.DateRangeResponse
// @Failure 404 {object} map[string]string "Currency not found"
// @Failure 500 {object} map[string]string "Failed to list date ranges"
// @Security BearerAuth
// @Router /companies/{companyID}/currencies/{code}/date-ranges [get]
func (h *rateHandler) getDateRanges(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	code := c.Param("code")

	ranges, err := h.rateResolver.EffectiveDateRanges(c.Request.Context(), companyID, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Currency not found"})
		} else {
			logger.Error("Failed to list date ranges", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list date ranges"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToDateRangeResponse(ranges))
}

// parseAsOf reads the optional asOf query parameter. It writes the error
// response itself and reports ok=false when the date is malformed.
func parseAsOf(c *gin.Context) (*time.Time, string, bool) {
	asOfStr := c.Query("asOf")
	if asOfStr == "" {
		return nil, time.Now().UTC().Format(dto.DateLayout), true
	}
	parsed, err := dto.ParseDate(asOfStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date: " + err.Error()})
		return nil, "", false
	}
	return &parsed, asOfStr, true
}
