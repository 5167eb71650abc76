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

// DirectiveService is the part of the application service behind the directive routes
type DirectiveService interface {
	CreateDirective(ctx context.Context, cmd application.CreateDirectiveCommand) (*application.LocationDirectiveDTO, error)
	CreateDefaultDirective(ctx context.Context, cmd application.CreateDefaultDirectiveCommand) (*application.LocationDirectiveDTO, error)
	GetDirective(ctx context.Context, directiveID string) (*application.LocationDirectiveDTO, error)
	ListDirectives(ctx context.Context, q application.ListDirectivesQuery) ([]application.LocationDirectiveDTO, error)
	GetDirectiveStats(ctx context.Context) (*application.DirectiveStatsDTO, error)
	GetApplicableDirectives(ctx context.Context, operationType string) ([]application.LocationDirectiveDTO, error)
	ValidateDirective(ctx context.Context, directiveID string) (*application.ValidationDTO, error)
	AddConstraint(ctx context.Context, cmd application.ConstraintChangeCommand) (*application.LocationDirectiveDTO, error)
	RemoveConstraint(ctx context.Context, cmd application.ConstraintChangeCommand) (*application.LocationDirectiveDTO, error)
	UpdateStrategy(ctx context.Context, cmd application.UpdateStrategyCommand) (*application.LocationDirectiveDTO, error)
	UpdatePriority(ctx context.Context, cmd application.UpdatePriorityCommand) (*application.LocationDirectiveDTO, error)
	UpdateName(ctx context.Context, cmd application.UpdateNameCommand) (*application.LocationDirectiveDTO, error)
	UpdateDescription(ctx context.Context, cmd application.UpdateDescriptionCommand) (*application.LocationDirectiveDTO, error)
	ActivateDirective(ctx context.Context, directiveID string) (*application.LocationDirectiveDTO, error)
	DeactivateDirective(ctx context.Context, directiveID string) (*application.LocationDirectiveDTO, error)
}

// DirectiveHandlers handles HTTP requests for location directives
type DirectiveHandlers struct {
	service DirectiveService
	logger  *logging.Logger
}

// NewDirectiveHandlers creates new directive handlers
func NewDirectiveHandlers(service DirectiveService, logger *logging.Logger) *DirectiveHandlers {
	return &DirectiveHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers directive routes
func (h *DirectiveHandlers) RegisterRoutes(router *gin.RouterGroup) {
	directives := router.Group("/directives")
	{
		directives.GET("", middleware.WrapHandler(h.ListDirectives))
		directives.POST("", middleware.WrapHandler(h.CreateDirective))
		directives.POST("/defaults", middleware.WrapHandler(h.CreateDefaultDirective))
		directives.GET("/stats", middleware.WrapHandler(h.GetDirectiveStats))
		directives.GET("/applicable", middleware.WrapHandler(h.GetApplicableDirectives))
		directives.GET("/:id", middleware.WrapHandler(h.GetDirective))
		directives.GET("/:id/validation", middleware.WrapHandler(h.ValidateDirective))
		directives.POST("/:id/constraints", middleware.WrapHandler(h.AddConstraint))
		directives.DELETE("/:id/constraints", middleware.WrapHandler(h.RemoveConstraint))
		directives.PUT("/:id/strategy", middleware.WrapHandler(h.UpdateStrategy))
		directives.PUT("/:id/priority", middleware.WrapHandler(h.UpdatePriority))
		directives.PUT("/:id/name", middleware.WrapHandler(h.UpdateName))
		directives.PUT("/:id/description", middleware.WrapHandler(h.UpdateDescription))
		directives.POST("/:id/activate", middleware.WrapHandler(h.ActivateDirective))
		directives.POST("/:id/deactivate", middleware.WrapHandler(h.DeactivateDirective))
	}
}

type constraintRequest struct {
	Type       string         `json:"type" binding:"required"`
	Operator   string         `json:"operator" binding:"required"`
	Value      any            `json:"value"`
	Parameters map[string]any `json:"parameters"`
}

func (r constraintRequest) toCommand() application.ConstraintCommand {
	return application.ConstraintCommand{
		Type:       r.Type,
		Operator:   r.Operator,
		Value:      r.Value,
		Parameters: r.Parameters,
	}
}

// CreateDirective handles POST /directives
func (h *DirectiveHandlers) CreateDirective(c *gin.Context) error {
	var req struct {
		Name          string              `json:"name" binding:"required"`
		Description   string              `json:"description"`
		OperationType string              `json:"operationType" binding:"required"`
		Strategy      string              `json:"strategy" binding:"required"`
		Priority      int                 `json:"priority" binding:"required,min=1"`
		CreatedBy     string              `json:"createdBy"`
		Constraints   []constraintRequest `json:"constraints" binding:"dive"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}

	constraints := make([]application.ConstraintCommand, 0, len(req.Constraints))
	for _, cr := range req.Constraints {
		constraints = append(constraints, cr.toCommand())
	}

	directive, err := h.service.CreateDirective(c.Request.Context(), application.CreateDirectiveCommand{
		Name:          req.Name,
		Description:   req.Description,
		OperationType: req.OperationType,
		Strategy:      req.Strategy,
		Priority:      req.Priority,
		CreatedBy:     req.CreatedBy,
		Constraints:   constraints,
	})
	if err != nil {
		return err
	}

	h.logger.Info("Directive created", "directiveId", directive.DirectiveID, "strategy", directive.Strategy)
	c.JSON(http.StatusCreated, directive)
	return nil
}

// CreateDefaultDirective handles POST /directives/defaults
func (h *DirectiveHandlers) CreateDefaultDirective(c *gin.Context) error {
	var req struct {
		OperationType string `json:"operationType" binding:"required"`
		Strategy      string `json:"strategy" binding:"required"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}

	directive, err := h.service.CreateDefaultDirective(c.Request.Context(), application.CreateDefaultDirectiveCommand{
		OperationType: req.OperationType,
		Strategy:      req.Strategy,
	})
	if err != nil {
		return err
	}

	c.JSON(http.StatusCreated, directive)
	return nil
}

// GetDirective handles GET /directives/:id
func (h *DirectiveHandlers) GetDirective(c *gin.Context) error {
	directive, err := h.service.GetDirective(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, directive)
	return nil
}

// ListDirectives handles GET /directives
func (h *DirectiveHandlers) ListDirectives(c *gin.Context) error {
	var req struct {
		OperationType string `form:"operationType"`
		Strategy      string `form:"strategy"`
		Active        *bool  `form:"active"`
		Name          string `form:"name"`
		CreatedBy     string `form:"createdBy"`
		MinPriority   int    `form:"minPriority" binding:"gte=0"`
		MaxPriority   int    `form:"maxPriority" binding:"gte=0"`
	}
	if appErr := api.BindQueryAndValidate(c, &req); appErr != nil {
		return appErr
	}

	directives, err := h.service.ListDirectives(c.Request.Context(), application.ListDirectivesQuery{
		OperationType: req.OperationType,
		Strategy:      req.Strategy,
		Active:        req.Active,
		NameContains:  req.Name,
		CreatedBy:     req.CreatedBy,
		MinPriority:   req.MinPriority,
		MaxPriority:   req.MaxPriority,
	})
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, api.Paginate(directives, api.ParsePagination(c)))
	return nil
}

// GetDirectiveStats handles GET /directives/stats
func (h *DirectiveHandlers) GetDirectiveStats(c *gin.Context) error {
	stats, err := h.service.GetDirectiveStats(c.Request.Context())
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, stats)
	return nil
}

// GetApplicableDirectives handles GET /directives/applicable?operationType=
func (h *DirectiveHandlers) GetApplicableDirectives(c *gin.Context) error {
	var req struct {
		OperationType string `form:"operationType" binding:"required"`
	}
	if appErr := api.BindQueryAndValidate(c, &req); appErr != nil {
		return appErr
	}

	directives, err := h.service.GetApplicableDirectives(c.Request.Context(), req.OperationType)
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, gin.H{"directives": directives})
	return nil
}

// ValidateDirective handles GET /directives/:id/validation
func (h *DirectiveHandlers) ValidateDirective(c *gin.Context) error {
	result, err := h.service.ValidateDirective(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, result)
	return nil
}

// AddConstraint handles POST /directives/:id/constraints
func (h *DirectiveHandlers) AddConstraint(c *gin.Context) error {
	return h.changeConstraint(c, h.service.AddConstraint)
}

// RemoveConstraint handles DELETE /directives/:id/constraints
func (h *DirectiveHandlers) RemoveConstraint(c *gin.Context) error {
	return h.changeConstraint(c, h.service.RemoveConstraint)
}

func (h *DirectiveHandlers) changeConstraint(c *gin.Context, change func(context.Context, application.ConstraintChangeCommand) (*application.LocationDirectiveDTO, error)) error {
	var req constraintRequest
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}

	directive, err := change(c.Request.Context(), application.ConstraintChangeCommand{
		DirectiveID: c.Param("id"),
		Constraint:  req.toCommand(),
	})
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, directive)
	return nil
}

// UpdateStrategy handles PUT /directives/:id/strategy
func (h *DirectiveHandlers) UpdateStrategy(c *gin.Context) error {
	var req struct {
		Strategy string `json:"strategy" binding:"required"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}

	directive, err := h.service.UpdateStrategy(c.Request.Context(), application.UpdateStrategyCommand{
		DirectiveID: c.Param("id"),
		Strategy:    req.Strategy,
	})
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, directive)
	return nil
}

// UpdatePriority handles PUT /directives/:id/priority
func (h *DirectiveHandlers) UpdatePriority(c *gin.Context) error {
	var req struct {
		Priority int `json:"priority" binding:"required,min=1"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}

	directive, err := h.service.UpdatePriority(c.Request.Context(), application.UpdatePriorityCommand{
		DirectiveID: c.Param("id"),
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, directive)
	return nil
}

// UpdateName handles PUT /directives/:id/name
func (h *DirectiveHandlers) UpdateName(c *gin.Context) error {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}

	directive, err := h.service.UpdateName(c.Request.Context(), application.UpdateNameCommand{
		DirectiveID: c.Param("id"),
		Name:        req.Name,
	})
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, directive)
	return nil
}

// UpdateDescription handles PUT /directives/:id/description
func (h *DirectiveHandlers) UpdateDescription(c *gin.Context) error {
	var req struct {
		Description string `json:"description"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}

	directive, err := h.service.UpdateDescription(c.Request.Context(), application.UpdateDescriptionCommand{
		DirectiveID: c.Param("id"),
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, directive)
	return nil
}

// ActivateDirective handles POST /directives/:id/activate
func (h *DirectiveHandlers) ActivateDirective(c *gin.Context) error {
	directive, err := h.service.ActivateDirective(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}

	h.logger.Info("Directive activated", "directiveId", directive.DirectiveID)
	c.JSON(http.StatusOK, directive)
	return nil
}

// DeactivateDirective handles POST /directives/:id/deactivate
func (h *DirectiveHandlers) DeactivateDirective(c *gin.Context) error {
	directive, err := h.service.DeactivateDirective(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}

	h.logger.Info("Directive deactivated", "directiveId", directive.DirectiveID)
	c.JSON(http.StatusOK, directive)
	return nil
}
