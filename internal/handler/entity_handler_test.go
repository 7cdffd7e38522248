package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SINTEF/entities-service/internal/domain"
	"github.com/SINTEF/entities-service/internal/domain/entity"
	"github.com/SINTEF/entities-service/internal/domain/mocks"
	"github.com/SINTEF/entities-service/internal/soft"
)

const testBase = "http://x/meta"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleEntity() *entity.Entity {
	return &entity.Entity{
		Identity:   entity.Identity{Namespace: testBase, Version: "0.1", Name: "Foo"},
		Meta:       soft.DefaultMetaschema,
		Dimensions: map[string]string{},
		Properties: map[string]entity.Property{"a": {Type: "string"}},
	}
}

func newEntityEngine(uc domain.EntityUsecase) *server.Hertz {
	eh := NewEntityHandler(uc, testBase+"/", discardLogger())
	h := server.Default(server.WithHostPorts("127.0.0.1:0"))
	h.GET("/_api/entities", eh.ListEntities)
	h.GET("/_api/namespaces", eh.ListNamespaces)
	h.POST("/_api/validate", eh.Validate)
	h.POST("/_admin/create", eh.Create)
	h.GET("/*path", eh.GetEntity)
	return h
}

func jsonBody(s string) *ut.Body {
	return &ut.Body{Body: bytes.NewBufferString(s), Len: len(s)}
}

var jsonHeader = ut.Header{Key: "Content-Type", Value: "application/json"}

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, sonic.Unmarshal(body, &out))
	return out
}

func TestGetEntity(t *testing.T) {
	var asked string
	uc := &mocks.MockEntityUsecase{
		GetFunc: func(ctx context.Context, identity string) (*entity.Entity, error) {
			asked = identity
			if identity == testBase+"/0.1/Foo" {
				return sampleEntity(), nil
			}
			return nil, domain.NewEntityNotFoundError(identity)
		},
	}
	h := newEntityEngine(uc)

	w := ut.PerformRequest(h.Engine, consts.MethodGet, "/0.1/Foo", nil)
	resp := w.Result()
	require.Equal(t, consts.StatusOK, resp.StatusCode())
	doc := decode(t, resp.Body())
	assert.Equal(t, testBase+"/0.1/Foo", doc["uri"])
	assert.Equal(t, map[string]any{}, doc["dimensions"])
	assert.NotContains(t, doc, "code")

	w = ut.PerformRequest(h.Engine, consts.MethodGet, "/team/sub/0.2/Bar", nil)
	resp = w.Result()
	assert.Equal(t, testBase+"/team/sub/0.2/Bar", asked)
	assert.Equal(t, consts.StatusNotFound, resp.StatusCode())
	assert.Equal(t, "Could not find entity: uri=http://x/meta/team/sub/0.2/Bar", decode(t, resp.Body())["message"])
}

func TestGetEntityUpstreamFailure(t *testing.T) {
	uc := &mocks.MockEntityUsecase{
		GetFunc: func(ctx context.Context, identity string) (*entity.Entity, error) {
			return nil, domain.NewUpstreamError("read entity", errors.New("disk"))
		},
	}
	w := ut.PerformRequest(newEntityEngine(uc).Engine, consts.MethodGet, "/0.1/Foo", nil)
	assert.Equal(t, consts.StatusBadGateway, w.Result().StatusCode())
	assert.NotContains(t, string(w.Result().Body()), "disk")
}

func TestListEntities(t *testing.T) {
	var got []string
	uc := &mocks.MockEntityUsecase{
		ListFunc: func(ctx context.Context, namespaces []string) ([]*entity.Entity, error) {
			got = namespaces
			if len(namespaces) > 0 && namespaces[0] == "http://bad" {
				return nil, domain.NewInvalidInputError("invalid namespace")
			}
			return []*entity.Entity{sampleEntity()}, nil
		},
	}
	h := newEntityEngine(uc)

	w := ut.PerformRequest(h.Engine, consts.MethodGet, "/_api/entities?namespace=http://x/meta&namespace=team", nil)
	resp := w.Result()
	require.Equal(t, consts.StatusOK, resp.StatusCode())
	assert.Equal(t, []string{"http://x/meta", "team"}, got)
	data := decode(t, resp.Body())["data"].(map[string]any)
	assert.Equal(t, float64(1), data["totalCount"])

	w = ut.PerformRequest(h.Engine, consts.MethodGet, "/_api/entities", nil)
	assert.Equal(t, consts.StatusOK, w.Result().StatusCode())
	assert.Empty(t, got)

	w = ut.PerformRequest(h.Engine, consts.MethodGet, "/_api/entities?namespace=http://bad", nil)
	assert.Equal(t, consts.StatusBadRequest, w.Result().StatusCode())
}

func TestListNamespaces(t *testing.T) {
	uc := &mocks.MockEntityUsecase{
		NamespacesFunc: func(ctx context.Context) ([]string, error) {
			return []string{testBase, testBase + "/team"}, nil
		},
	}
	w := ut.PerformRequest(newEntityEngine(uc).Engine, consts.MethodGet, "/_api/namespaces", nil)
	resp := w.Result()
	require.Equal(t, consts.StatusOK, resp.StatusCode())
	assert.Equal(t, []any{testBase, testBase + "/team"}, decode(t, resp.Body())["data"])
}

func TestValidateEndpoint(t *testing.T) {
	v := soft.MustNewValidator(soft.Options{BaseNamespace: testBase})
	uc := &mocks.MockEntityUsecase{
		ValidateFunc: func(ctx context.Context, raws []map[string]any) []domain.ValidationResult {
			out := make([]domain.ValidationResult, 0, len(raws))
			for _, raw := range raws {
				e, flavor, err := v.ValidateAny(raw)
				out = append(out, domain.ValidationResult{Entity: e, Flavor: flavor, Err: err})
			}
			return out
		},
	}
	h := newEntityEngine(uc)

	body := `[
		{"uri": "http://x/meta/0.1/Foo", "properties": {"a": {"type": "string"}}},
		{"uri": "http://x/meta/0.1/Bad", "properties": []}
	]`
	w := ut.PerformRequest(h.Engine, consts.MethodPost, "/_api/validate", jsonBody(body), jsonHeader)
	resp := w.Result()
	require.Equal(t, consts.StatusOK, resp.StatusCode())

	data := decode(t, resp.Body())["data"].(map[string]any)
	assert.Equal(t, float64(1), data["valid"])
	assert.Equal(t, float64(1), data["invalid"])
	results := data["results"].([]any)
	first, second := results[0].(map[string]any), results[1].(map[string]any)
	assert.Equal(t, true, first["valid"])
	assert.Equal(t, "SOFT7", first["flavor"])
	assert.Equal(t, false, second["valid"])
	assert.Equal(t, "http://x/meta/0.1/Bad", second["uri"])
	assert.NotEmpty(t, second["errors"])

	w = ut.PerformRequest(h.Engine, consts.MethodPost, "/_api/validate", jsonBody(`"nope"`), jsonHeader)
	assert.Equal(t, consts.StatusBadRequest, w.Result().StatusCode())
}

func TestCreateEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createErr  error
		wantStatus int
		wantCode   string
	}{
		{name: "created", body: `{"uri": "http://x/meta/0.1/Foo"}`, wantStatus: consts.StatusCreated, wantCode: "CREATED"},
		{name: "empty list", body: `[]`, wantStatus: consts.StatusNoContent},
		{name: "not json", body: `{`, wantStatus: consts.StatusBadRequest, wantCode: "BAD_REQUEST"},
		{
			name:       "invalid entities",
			body:       `[{}]`,
			createErr:  domain.NewValidationError("1 of 1 entities are invalid", []domain.Violation{{Index: 0, Kind: "MissingIdentity", Message: "no identity"}}),
			wantStatus: consts.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "exists",
			body:       `{}`,
			createErr:  domain.NewAlreadyExistsError("Entity", testBase+"/0.1/Foo"),
			wantStatus: consts.StatusConflict,
			wantCode:   "ALREADY_EXISTS",
		},
		{
			name:       "store failure",
			body:       `{}`,
			createErr:  domain.NewUpstreamError("create entities", errors.New("boom")),
			wantStatus: consts.StatusBadGateway,
			wantCode:   "UPSTREAM_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mocks.MockEntityUsecase{
				CreateFunc: func(ctx context.Context, raws []map[string]any) ([]*entity.Entity, error) {
					if tt.createErr != nil {
						return nil, tt.createErr
					}
					return []*entity.Entity{sampleEntity()}, nil
				},
			}
			w := ut.PerformRequest(newEntityEngine(uc).Engine, consts.MethodPost, "/_admin/create", jsonBody(tt.body), jsonHeader)
			resp := w.Result()
			require.Equal(t, tt.wantStatus, resp.StatusCode())
			if tt.wantCode == "" {
				assert.Empty(t, resp.Body())
				return
			}
			out := decode(t, resp.Body())
			assert.Equal(t, tt.wantCode, out["code"])
			if tt.wantCode == "VALIDATION_FAILED" {
				details := out["details"].([]any)
				require.Len(t, details, 1)
				assert.Equal(t, "MissingIdentity", details[0].(map[string]any)["kind"])
			}
		})
	}
}
