package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/location-directive-service/internal/application"
	"github.com/wms-platform/location-directive-service/shared/pkg/api"
	"github.com/wms-platform/location-directive-service/shared/pkg/logging"
	"github.com/wms-platform/location-directive-service/shared/pkg/middleware"
)

// LocationService is the part of the application service behind the location routes
type LocationService interface {
	SelectOptimalLocation(ctx context.Context, cmd application.LocationQueryCommand) (*application.SelectionDTO, error)
	EvaluateLocation(ctx context.Context, cmd application.EvaluateLocationCommand) (*application.EvaluationDTO, error)
	FindBestLocations(ctx context.Context, cmd application.FindBestLocationsCommand) ([]application.ScoredLocationDTO, error)
	CanSatisfyQuery(ctx context.Context, cmd application.LocationQueryCommand) (bool, error)
	GetLocationAttributes(ctx context.Context, location string) (*application.LocationAttributesDTO, error)
	UpdateLocationAttributes(ctx context.Context, cmd application.UpdateLocationAttributesCommand) (*application.LocationAttributesDTO, error)
}

// LocationHandlers handles HTTP requests for location selection
type LocationHandlers struct {
	service LocationService
	logger  *logging.Logger
}

// NewLocationHandlers creates new location handlers
func NewLocationHandlers(service LocationService, logger *logging.Logger) *LocationHandlers {
	return &LocationHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers location routes
func (h *LocationHandlers) RegisterRoutes(router *gin.RouterGroup) {
	locations := router.Group("/locations")
	{
		locations.POST("/select", middleware.WrapHandler(h.SelectOptimalLocation))
		locations.POST("/evaluate", middleware.WrapHandler(h.EvaluateLocation))
		locations.POST("/best", middleware.WrapHandler(h.FindBestLocations))
		locations.POST("/can-satisfy", middleware.WrapHandler(h.CanSatisfyQuery))
		locations.GET("/:location/attributes", middleware.WrapHandler(h.GetLocationAttributes))
		locations.PUT("/:location/attributes", middleware.WrapHandler(h.UpdateLocationAttributes))
	}
}

// locationQueryRequest is the JSON form of a location query
type locationQueryRequest struct {
	OperationType     string         `json:"operationType" binding:"required"`
	SKU               string         `json:"sku"`
	Quantity          int            `json:"quantity" binding:"gte=0"`
	ReferenceLocation string         `json:"referenceLocation"`
	Parameters        map[string]any `json:"parameters"`
	Candidates        []string       `json:"candidates"`
}

func (r locationQueryRequest) toCommand() application.LocationQueryCommand {
	return application.LocationQueryCommand{
		OperationType:     r.OperationType,
		SKU:               r.SKU,
		Quantity:          r.Quantity,
		ReferenceLocation: r.ReferenceLocation,
		Parameters:        r.Parameters,
		Candidates:        r.Candidates,
	}
}

// SelectOptimalLocation handles POST /locations/select
func (h *LocationHandlers) SelectOptimalLocation(c *gin.Context) error {
	var req locationQueryRequest
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}

	selection, err := h.service.SelectOptimalLocation(c.Request.Context(), req.toCommand())
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, selection)
	return nil
}

// EvaluateLocation handles POST /locations/evaluate
func (h *LocationHandlers) EvaluateLocation(c *gin.Context) error {
	var req struct {
		locationQueryRequest
		Location string `json:"location" binding:"required"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}

	evaluation, err := h.service.EvaluateLocation(c.Request.Context(), application.EvaluateLocationCommand{
		Query:    req.toCommand(),
		Location: req.Location,
	})
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, evaluation)
	return nil
}

// FindBestLocations handles POST /locations/best
func (h *LocationHandlers) FindBestLocations(c *gin.Context) error {
	var req struct {
		locationQueryRequest
		MaxResults int `json:"maxResults" binding:"gte=0,lte=500"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}

	ranked, err := h.service.FindBestLocations(c.Request.Context(), application.FindBestLocationsCommand{
		Query:      req.toCommand(),
		MaxResults: req.MaxResults,
	})
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, gin.H{"locations": ranked})
	return nil
}

// CanSatisfyQuery handles POST /locations/can-satisfy
func (h *LocationHandlers) CanSatisfyQuery(c *gin.Context) error {
	var req locationQueryRequest
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}

	ok, err := h.service.CanSatisfyQuery(c.Request.Context(), req.toCommand())
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, gin.H{"canSatisfy": ok})
	return nil
}

// GetLocationAttributes handles GET /locations/:location/attributes
func (h *LocationHandlers) GetLocationAttributes(c *gin.Context) error {
	attrs, err := h.service.GetLocationAttributes(c.Request.Context(), c.Param("location"))
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, attrs)
	return nil
}

// UpdateLocationAttributes handles PUT /locations/:location/attributes
func (h *LocationHandlers) UpdateLocationAttributes(c *gin.Context) error {
	var req struct {
		Attributes map[string]any `json:"attributes" binding:"required"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}

	attrs, err := h.service.UpdateLocationAttributes(c.Request.Context(), application.UpdateLocationAttributesCommand{
		Location:   c.Param("location"),
		Attributes: req.Attributes,
	})
	if err != nil {
		return err
	}

	h.logger.Info("Location attributes updated", "location", attrs.Location)
	c.JSON(http.StatusOK, attrs)
	return nil
}
