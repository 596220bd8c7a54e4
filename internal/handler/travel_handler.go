package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/travel-booking/internal/domain"
	"github.com/prohmpiriya/travel-booking/internal/dto"
	"github.com/prohmpiriya/travel-booking/internal/repository"
	"github.com/prohmpiriya/travel-booking/internal/service"
	"github.com/prohmpiriya/travel-booking/pkg/logger"
	"github.com/prohmpiriya/travel-booking/pkg/response"
	"github.com/prohmpiriya/travel-booking/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	codeBusy = "PACKAGE_BUSY"

	// nginx convention for a client that hung up before the response
	statusClientClosed = 499
	codeClientClosed   = "CLIENT_CLOSED_REQUEST"
)

// TravelHandler handles travel package HTTP requests
type TravelHandler struct {
	travelService service.TravelService
	log           *logger.Logger
}

// NewTravelHandler creates a new travel handler
func NewTravelHandler(travelService service.TravelService, log *logger.Logger) *TravelHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &TravelHandler{
		travelService: travelService,
		log:           log,
	}
}

// CreatePackage handles POST /packages
func (h *TravelHandler) CreatePackage(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.travel.create_package")
	defer span.End()

	var req dto.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "Invalid request body")
		return
	}
	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		response.ValidationError(c, msg)
		return
	}

	result, err := h.travelService.CreatePackage(ctx, &req)
	if err != nil {
		h.handleError(c, span, err)
		return
	}

	span.SetAttributes(attribute.String("package_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// ListPackages handles GET /packages
func (h *TravelHandler) ListPackages(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.travel.list_packages")
	defer span.End()

	var req dto.ListPackagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid query")
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.travelService.ListPackages(ctx, &req)
	if err != nil {
		h.handleError(c, span, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetPackage handles GET /packages/:id
func (h *TravelHandler) GetPackage(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.travel.get_package")
	defer span.End()

	packageID := c.Param("id")
	span.SetAttributes(attribute.String("package_id", packageID))

	result, err := h.travelService.GetPackage(ctx, packageID)
	if err != nil {
		h.handleError(c, span, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// AddDestination handles POST /packages/:id/destinations
func (h *TravelHandler) AddDestination(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.travel.add_destination")
	defer span.End()

	packageID := c.Param("id")
	span.SetAttributes(attribute.String("package_id", packageID))

	var req dto.AddDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "Invalid request body")
		return
	}
	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		response.ValidationError(c, msg)
		return
	}

	result, err := h.travelService.AddDestination(ctx, packageID, &req)
	if err != nil {
		h.handleError(c, span, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// AddActivity handles POST /packages/:id/destinations/:destination_id/activities
func (h *TravelHandler) AddActivity(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.travel.add_activity")
	defer span.End()

	packageID := c.Param("id")
	destinationID := c.Param("destination_id")
	span.SetAttributes(
		attribute.String("package_id", packageID),
		attribute.String("destination_id", destinationID),
	)

	var req dto.AddActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "Invalid request body")
		return
	}
	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		response.ValidationError(c, msg)
		return
	}

	result, err := h.travelService.AddActivity(ctx, packageID, destinationID, &req)
	if err != nil {
		h.handleError(c, span, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// RegisterPassenger handles POST /packages/:id/passengers.
// A full package answers 200 with registered=false.
func (h *TravelHandler) RegisterPassenger(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.travel.register_passenger")
	defer span.End()

	packageID := c.Param("id")
	span.SetAttributes(attribute.String("package_id", packageID))

	var req dto.RegisterPassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, "Invalid request body")
		return
	}
	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		response.ValidationError(c, msg)
		return
	}

	result, err := h.travelService.RegisterPassenger(ctx, packageID, &req)
	if err != nil {
		h.handleError(c, span, err)
		return
	}

	span.SetAttributes(attribute.Bool("registered", result.Registered))
	span.SetStatus(codes.Ok, "")
	if result.Registered {
		response.Created(c, result)
		return
	}
	response.Success(c, result)
}

// SignUpForActivity handles POST /packages/:id/passengers/:number/activities/:activity_id.
// Rule rejections answer 200 with enrolled=false and a reason.
func (h *TravelHandler) SignUpForActivity(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.travel.sign_up_for_activity")
	defer span.End()

	packageID := c.Param("id")
	activityID := c.Param("activity_id")
	number, ok := h.passengerNumber(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid passenger number")
		return
	}
	span.SetAttributes(
		attribute.String("package_id", packageID),
		attribute.Int("passenger_number", number),
		attribute.String("activity_id", activityID),
	)

	result, err := h.travelService.SignUpForActivity(ctx, packageID, number, activityID)
	if err != nil {
		h.handleError(c, span, err)
		return
	}

	span.SetAttributes(attribute.Bool("enrolled", result.Enrolled))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetItinerary handles GET /packages/:id/itinerary
func (h *TravelHandler) GetItinerary(c *gin.Context) {
	h.report(c, "handler.travel.get_itinerary", h.travelService.GetItinerary)
}

// GetPassengerList handles GET /packages/:id/passengers
func (h *TravelHandler) GetPassengerList(c *gin.Context) {
	h.report(c, "handler.travel.get_passenger_list", h.travelService.GetPassengerList)
}

// GetAvailableActivities handles GET /packages/:id/activities/available
func (h *TravelHandler) GetAvailableActivities(c *gin.Context) {
	h.report(c, "handler.travel.get_available_activities", h.travelService.GetAvailableActivities)
}

// GetPassengerDetails handles GET /packages/:id/passengers/:number
func (h *TravelHandler) GetPassengerDetails(c *gin.Context) {
	number, ok := h.passengerNumber(c)
	if !ok {
		return
	}
	h.report(c, "handler.travel.get_passenger_details", func(ctx context.Context, packageID string) (*dto.ReportResponse, error) {
		return h.travelService.GetPassengerDetails(ctx, packageID, number)
	})
}

func (h *TravelHandler) report(c *gin.Context, spanName string, fetch func(context.Context, string) (*dto.ReportResponse, error)) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), spanName)
	defer span.End()

	packageID := c.Param("id")
	span.SetAttributes(attribute.String("package_id", packageID))

	result, err := fetch(ctx, packageID)
	if err != nil {
		h.handleError(c, span, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

func (h *TravelHandler) passengerNumber(c *gin.Context) (int, bool) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		response.ValidationError(c, "Passenger number must be a positive integer")
		return 0, false
	}
	return number, true
}

// handleError converts domain errors to HTTP responses
func (h *TravelHandler) handleError(c *gin.Context, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsValidationError(err):
		response.ValidationError(c, err.Error())
	case domain.IsConflictError(err), errors.Is(err, repository.ErrPackageExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, repository.ErrLockTimeout):
		response.Error(c, http.StatusServiceUnavailable, codeBusy, "Package is busy, retry shortly", "")
	case errors.Is(err, context.Canceled):
		h.log.Warn("travel request cancelled by client", zap.String("path", c.FullPath()))
		response.Error(c, statusClientClosed, codeClientClosed, "Request cancelled", "")
	default:
		h.log.Error("travel request failed",
			zap.String("path", c.FullPath()),
			zap.String("trace_id", telemetry.GetTraceID(c.Request.Context())),
			zap.Error(err),
		)
		response.InternalError(c)
	}
}
