package handler

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/jwt"

	"github.com/SINTEF/entities-service/internal/config"
	"github.com/SINTEF/entities-service/internal/domain"
	"github.com/SINTEF/entities-service/internal/domain/entity"
	"github.com/SINTEF/entities-service/internal/handler/dto"
)

const identityKey = "user_id"

// UserHandler handles accounts and JWT issuance
type UserHandler struct {
	usecase        domain.UserUsecase
	authMiddleware *jwt.HertzJWTMiddleware
	logger         *slog.Logger
}

// NewUserHandler creates a UserHandler and its JWT middleware
func NewUserHandler(usecase domain.UserUsecase, cfg config.JWTConfig, logger *slog.Logger) (*UserHandler, error) {
	tokenResponse := func(ctx context.Context, c *app.RequestContext, code int, token string, expire time.Time) {
		resp := dto.LoginResponse{Token: token, Expire: expire.Format(time.RFC3339)}
		if user, ok := c.Get("user"); ok {
			resp.User = dto.ToUserResponse(user.(*entity.User))
		}
		SuccessResponse(c, resp)
	}

	authMiddleware, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       "entities-service",
		Key:         []byte(cfg.Secret),
		Timeout:     cfg.Timeout,
		MaxRefresh:  cfg.MaxRefresh,
		IdentityKey: identityKey,

		Authenticator: func(ctx context.Context, c *app.RequestContext) (any, error) {
			var req dto.LoginRequest
			if err := c.BindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
				return nil, jwt.ErrMissingLoginValues
			}

			user, err := usecase.Login(ctx, req.Username, req.Password)
			if err != nil {
				logger.WarnContext(ctx, "login failed", "username", req.Username, "error", err)
				return nil, jwt.ErrFailedAuthentication
			}

			c.Set("user", user)
			return user, nil
		},

		PayloadFunc: func(data any) jwt.MapClaims {
			if user, ok := data.(*entity.User); ok {
				return jwt.MapClaims{
					identityKey: user.ID,
					"username":  user.Username,
				}
			}
			return jwt.MapClaims{}
		},

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) any {
			claims := jwt.ExtractClaims(ctx, c)
			if userID, ok := claims[identityKey].(string); ok && userID != "" {
				c.Set(identityKey, userID)
				return userID
			}
			return nil
		},

		Authorizator: func(data any, ctx context.Context, c *app.RequestContext) bool {
			return data != nil
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, Response{
				Code:    "UNAUTHORIZED",
				Message: message,
			})
		},

		LoginResponse:   tokenResponse,
		RefreshResponse: tokenResponse,

		TokenLookup:   "header: Authorization, query: token",
		TokenHeadName: "Bearer",
		TimeFunc:      time.Now,
	})
	if err != nil {
		return nil, err
	}

	return &UserHandler{
		usecase:        usecase,
		authMiddleware: authMiddleware,
		logger:         logger,
	}, nil
}

// AuthMiddleware protects a route group with the JWT
func (h *UserHandler) AuthMiddleware() app.HandlerFunc {
	return h.authMiddleware.MiddlewareFunc()
}

// Register creates an account
//
//	@Summary	User registration
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.RegisterRequest	true	"Credentials"
//	@Success	201		{object}	dto.UserResponse
//	@Failure	400		{object}	Response
//	@Failure	409		{object}	Response	"Username taken"
//	@Router		/_auth/register [post]
func (h *UserHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		BadRequestResponse(c, "body must be a JSON object with username and password")
		return
	}

	user, err := h.usecase.Register(ctx, req.Username, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "register failed", "username", req.Username, "error", err)
		ErrorResponse(c, err)
		return
	}

	CreatedResponse(c, dto.ToUserResponse(user))
}

// Login issues a token
//
//	@Summary	User login
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.LoginRequest	true	"Credentials"
//	@Success	200		{object}	dto.LoginResponse
//	@Failure	401		{object}	Response
//	@Router		/_auth/login [post]
func (h *UserHandler) Login(ctx context.Context, c *app.RequestContext) {
	h.authMiddleware.LoginHandler(ctx, c)
}

// RefreshToken extends a token still within its refresh window
//
//	@Summary	Refresh token
//	@Tags		Auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	dto.LoginResponse
//	@Failure	401	{object}	Response
//	@Router		/_auth/refresh [post]
func (h *UserHandler) RefreshToken(ctx context.Context, c *app.RequestContext) {
	h.authMiddleware.RefreshHandler(ctx, c)
}

// GetCurrentUser returns the caller's account
//
//	@Summary	Current user
//	@Tags		Auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	dto.UserResponse
//	@Failure	401	{object}	Response
//	@Router		/_auth/me [get]
func (h *UserHandler) GetCurrentUser(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewUnauthorizedError("missing identity"))
		return
	}

	user, err := h.usecase.GetUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get current user", "error", err, "user_id", userID)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.ToUserResponse(user))
}

// GetUser
//
//	@Summary	Get a user
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"User id"
//	@Success	200	{object}	dto.UserResponse
//	@Failure	404	{object}	Response
//	@Router		/_admin/users/{id} [get]
func (h *UserHandler) GetUser(ctx context.Context, c *app.RequestContext) {
	user, err := h.usecase.GetUser(ctx, c.Param("id"))
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.ToUserResponse(user))
}

// ListUsers
//
//	@Summary	List users
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		page		query		int	false	"Page"		default(1)
//	@Param		page_size	query		int	false	"Page size"	default(20)
//	@Success	200			{object}	dto.UserListResponse
//	@Router		/_admin/users [get]
func (h *UserHandler) ListUsers(ctx context.Context, c *app.RequestContext) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	users, total, err := h.usecase.ListUsers(ctx, page, pageSize)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users", "error", err)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.ToUserListResponse(users, total, page, pageSize))
}

// DeleteUser removes an account other than the caller's
//
//	@Summary	Delete a user
//	@Tags		Admin
//	@Security	BearerAuth
//	@Param		id	path	string	true	"User id"
//	@Success	204
//	@Failure	400	{object}	Response	"Deleting yourself"
//	@Failure	404	{object}	Response
//	@Router		/_admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(ctx context.Context, c *app.RequestContext) {
	userID := c.Param("id")

	currentID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, domain.NewUnauthorizedError("missing identity"))
		return
	}
	if userID == currentID {
		ErrorResponse(c, domain.NewInvalidInputError("cannot delete yourself"))
		return
	}

	if err := h.usecase.DeleteUser(ctx, userID); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete user", "error", err, "user_id", userID)
		ErrorResponse(c, err)
		return
	}

	c.Status(consts.StatusNoContent)
}

func currentUserID(c *app.RequestContext) (string, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
