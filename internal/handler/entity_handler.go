package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/SINTEF/entities-service/internal/domain"
	"github.com/SINTEF/entities-service/internal/handler/dto"
	"github.com/SINTEF/entities-service/internal/soft"
)

// EntityHandler serves and validates entities
type EntityHandler struct {
	usecase domain.EntityUsecase
	base    string
	logger  *slog.Logger
}

// NewEntityHandler creates an EntityHandler; base is the namespace request paths are resolved against
func NewEntityHandler(usecase domain.EntityUsecase, base string, logger *slog.Logger) *EntityHandler {
	return &EntityHandler{
		usecase: usecase,
		base:    strings.TrimRight(base, "/"),
		logger:  logger,
	}
}

// GetEntity serves the canonical document of one entity
//
//	@Summary	Get an entity
//	@Tags		Entities
//	@Produce	json
//	@Param		path	path		string			true	"{specific namespace/}{version}/{name}"
//	@Success	200		{object}	map[string]any	"Canonical entity"
//	@Failure	404		{object}	Response		"Could not find entity"
//	@Router		/{path} [get]
func (h *EntityHandler) GetEntity(ctx context.Context, c *app.RequestContext) {
	uri := h.base + "/" + strings.TrimLeft(c.Param("path"), "/")

	e, err := h.usecase.Get(ctx, uri)
	if err != nil {
		if !domain.IsNotFound(err) {
			h.logger.ErrorContext(ctx, "failed to get entity", "uri", uri, "error", err)
		}
		ErrorResponse(c, err)
		return
	}

	c.JSON(consts.StatusOK, soft.Dump(e))
}

// ListEntities lists entities by namespace
//
//	@Summary	List entities
//	@Tags		API
//	@Produce	json
//	@Param		namespace	query		[]string		false	"full namespace URL or specific namespace; repeatable"
//	@Success	200			{object}	ListResponse
//	@Failure	400			{object}	Response	"Namespace outside the base namespace"
//	@Router		/_api/entities [get]
func (h *EntityHandler) ListEntities(ctx context.Context, c *app.RequestContext) {
	var namespaces []string
	for _, ns := range c.QueryArgs().PeekAll("namespace") {
		namespaces = append(namespaces, string(ns))
	}

	entities, err := h.usecase.List(ctx, namespaces)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list entities", "namespaces", namespaces, "error", err)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, ListResponse{
		Items:      dto.ToEntityDocuments(entities),
		TotalCount: len(entities),
	})
}

// ListNamespaces lists the namespaces holding entities
//
//	@Summary	List namespaces
//	@Tags		API
//	@Produce	json
//	@Success	200	{object}	Response	"Namespace URLs, base namespace first"
//	@Router		/_api/namespaces [get]
func (h *EntityHandler) ListNamespaces(ctx context.Context, c *app.RequestContext) {
	namespaces, err := h.usecase.Namespaces(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list namespaces", "error", err)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, namespaces)
}

// Validate checks one entity or a list without storing anything
//
//	@Summary	Validate entities
//	@Tags		API
//	@Accept		json
//	@Produce	json
//	@Param		request	body		object					true	"entity or list of entities"
//	@Success	200		{object}	dto.ValidateResponse	"Per-entity results"
//	@Failure	400		{object}	Response				"Body is not an entity or list"
//	@Router		/_api/validate [post]
func (h *EntityHandler) Validate(ctx context.Context, c *app.RequestContext) {
	raws, err := dto.ParseEntities(c.Request.Body())
	if err != nil {
		BadRequestResponse(c, err.Error())
		return
	}

	results := h.usecase.Validate(ctx, raws)
	SuccessResponse(c, dto.ToValidateResponse(raws, results))
}

// Create stores a batch of new entities
//
//	@Summary	Create entities
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		object		true	"entity or list of entities"
//	@Success	201		{object}	Response	"Created canonical entities"
//	@Success	204		"Empty list"
//	@Failure	400		{object}	Response	"Invalid entities, with details"
//	@Failure	401		{object}	Response	"Unauthorized"
//	@Failure	409		{object}	Response	"Entity already exists"
//	@Failure	502		{object}	Response	"Document store failure"
//	@Router		/_admin/create [post]
func (h *EntityHandler) Create(ctx context.Context, c *app.RequestContext) {
	raws, err := dto.ParseEntities(c.Request.Body())
	if err != nil {
		BadRequestResponse(c, err.Error())
		return
	}
	if len(raws) == 0 {
		NoContentResponse(c)
		return
	}

	created, err := h.usecase.Create(ctx, raws)
	if err != nil {
		h.logger.WarnContext(ctx, "create rejected", "count", len(raws), "error", err)
		ErrorResponse(c, err)
		return
	}

	if userID, ok := c.Get("user_id"); ok {
		h.logger.InfoContext(ctx, "entities uploaded", "user_id", userID, "count", len(created))
	}
	CreatedResponse(c, dto.ToEntityDocuments(created))
}
