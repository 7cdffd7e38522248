package handler

import (
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/SINTEF/entities-service/internal/domain"
	"github.com/SINTEF/entities-service/internal/handler/dto"
)

// Response is the envelope of every /_api, /_auth and /_admin response
type Response struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    any             `json:"data,omitempty"`
	Details []dto.Violation `json:"details,omitempty"`
}

// SuccessResponse returns a successful response
func SuccessResponse(c *app.RequestContext, data any) {
	c.JSON(consts.StatusOK, Response{
		Code:    "SUCCESS",
		Message: "operation successful",
		Data:    data,
	})
}

// CreatedResponse returns a created response
func CreatedResponse(c *app.RequestContext, data any) {
	c.JSON(consts.StatusCreated, Response{
		Code:    "CREATED",
		Message: "resource created successfully",
		Data:    data,
	})
}

// NoContentResponse returns an empty 204
func NoContentResponse(c *app.RequestContext) {
	c.Status(consts.StatusNoContent)
}

// ErrorResponse maps domain errors onto status codes. Only DomainError messages reach the client.
func ErrorResponse(c *app.RequestContext, err error) {
	message := "an error occurred"
	var details []dto.Violation
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		message = domainErr.UserMessage()
		details = dto.ToViolations(domainErr.Details)
	}

	switch {
	case domain.IsNotFound(err):
		c.JSON(consts.StatusNotFound, Response{Code: "NOT_FOUND", Message: message})
	case domain.IsAlreadyExists(err):
		c.JSON(consts.StatusConflict, Response{Code: "ALREADY_EXISTS", Message: message})
	case domain.IsInvalidInput(err):
		code := "INVALID_INPUT"
		if len(details) > 0 {
			code = "VALIDATION_FAILED"
		}
		c.JSON(consts.StatusBadRequest, Response{Code: code, Message: message, Details: details})
	case domain.IsUnauthorized(err):
		c.JSON(consts.StatusUnauthorized, Response{Code: "UNAUTHORIZED", Message: message})
	case domain.IsUpstream(err):
		c.JSON(consts.StatusBadGateway, Response{Code: "UPSTREAM_ERROR", Message: message})
	default:
		c.JSON(consts.StatusInternalServerError, Response{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		})
	}
}

// BadRequestResponse returns a bad request response
func BadRequestResponse(c *app.RequestContext, message string) {
	c.JSON(consts.StatusBadRequest, Response{
		Code:    "BAD_REQUEST",
		Message: message,
	})
}

// ListResponse wraps listings with their size
type ListResponse struct {
	Items      any `json:"items"`
	TotalCount int `json:"totalCount"`
}
