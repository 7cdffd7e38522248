//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/network/netpoll"

	"github.com/SINTEF/entities-service/internal/cli/client"
	"github.com/SINTEF/entities-service/internal/cli/types"
	"github.com/SINTEF/entities-service/internal/config"
	"github.com/SINTEF/entities-service/internal/handler"
	"github.com/SINTEF/entities-service/internal/infrastructure/datastore"
	"github.com/SINTEF/entities-service/internal/router"
	"github.com/SINTEF/entities-service/internal/soft"
	"github.com/SINTEF/entities-service/internal/usecase"
	dspkg "github.com/SINTEF/entities-service/pkg/datastore"
	"github.com/SINTEF/entities-service/pkg/metrics"
)

// TestEntitiesHTTP runs the service on a badger store and drives it with the CLI client.
// Run with: go test -tags integration ./test/integration/...
func TestEntitiesHTTP(t *testing.T) {
	host := getEnvOrDefault("ENTITIES_TEST_HOST", "127.0.0.1")
	port := getEnvOrDefault("ENTITIES_TEST_PORT", "18000")
	base := "http://onto-ns.com/meta"

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	store, err := dspkg.Open(config.StorageConfig{Driver: "badger", Path: t.TempDir()}, logger)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer dspkg.Close(store, logger)

	m := metrics.New()
	validator := soft.MustNewValidator(soft.Options{BaseNamespace: base})
	entityUC := usecase.NewEntityUsecase(validator, datastore.NewEntityRepository(store, base), m, logger)
	userUC := usecase.NewUserUsecase(datastore.NewUserRepository(store), logger)
	if err := userUC.EnsureUser(context.Background(), "admin", "admin-password"); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	userHandler, err := handler.NewUserHandler(userUC, config.JWTConfig{
		Secret:     "integration-secret-0123456789abcdef",
		Timeout:    time.Hour,
		MaxRefresh: time.Hour,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create user handler: %v", err)
	}

	h := server.New(
		server.WithHostPorts(fmt.Sprintf("%s:%s", host, port)),
		server.WithTransport(netpoll.NewTransporter),
	)
	router.Setup(h, router.Handlers{
		User:   userHandler,
		Entity: handler.NewEntityHandler(entityUC, base, logger),
		Health: handler.NewHealthHandler(func(ctx context.Context) error { return dspkg.Ping(ctx, store) }),
	}, router.Options{Metrics: m, Logger: logger})

	go func() {
		if err := h.Run(); err != nil {
			logger.Error("server failed", "error", err)
		}
	}()

	// wait for the listener
	time.Sleep(2 * time.Second)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.Shutdown(ctx)
	}()

	serverURL := fmt.Sprintf("http://%s:%s", host, port)
	ctx := context.Background()

	anon, err := client.NewAPIClient(serverURL, "")
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	login, err := anon.Login(ctx, "admin", "admin-password")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.Data.Token == "" {
		t.Fatal("expected a token")
	}

	admin, err := client.NewAPIClient(serverURL, login.Data.Token)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	docs := []types.Document{
		{
			"uri":         base + "/0.1/Cell",
			"description": "A battery cell",
			"dimensions":  map[string]any{"N": "number of layers"},
			"properties": map[string]any{
				"thickness": map[string]any{"type": "float", "shape": []any{"N"}, "unit": "m"},
				"material":  map[string]any{"type": "ref", "ref": base + "/chem/0.1/Material"},
			},
		},
		{
			"namespace":  base + "/chem",
			"version":    "0.1",
			"name":       "Material",
			"dimensions": []any{},
			"properties": []any{map[string]any{"name": "formula", "type": "string"}},
		},
	}

	t.Run("upload", func(t *testing.T) {
		created, err := admin.CreateEntities(ctx, docs)
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if len(created) != 2 {
			t.Fatalf("expected 2 created entities, got %d", len(created))
		}
	})

	t.Run("upload again is rejected", func(t *testing.T) {
		_, err := admin.CreateEntities(ctx, docs[:1])
		apiErr, ok := err.(*client.APIError)
		if !ok {
			t.Fatalf("expected an API error, got %v", err)
		}
		if apiErr.Status != 409 {
			t.Errorf("expected status 409, got %d", apiErr.Status)
		}
	})

	t.Run("upload without token is rejected", func(t *testing.T) {
		_, err := anon.CreateEntities(ctx, docs[:1])
		apiErr, ok := err.(*client.APIError)
		if !ok || apiErr.Status != 401 {
			t.Fatalf("expected 401, got %v", err)
		}
	})

	t.Run("served entity validates and matches", func(t *testing.T) {
		doc, found, err := anon.GetEntity(ctx, "chem/0.1/Material")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !found {
			t.Fatal("expected entity to be served")
		}

		served, _, err := validator.ValidateAny(doc)
		if err != nil {
			t.Fatalf("served entity is not valid: %v", err)
		}
		local, _, _ := validator.ValidateAny(docs[1])
		if !soft.Equal(served, local) {
			t.Errorf("served entity differs:\n%s", soft.Compare(local, served))
		}

		_, found, err = anon.GetEntity(ctx, "0.2/Cell")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if found {
			t.Error("expected 0.2/Cell to be missing")
		}
	})

	t.Run("listing", func(t *testing.T) {
		namespaces, err := anon.ListNamespaces(ctx)
		if err != nil {
			t.Fatalf("list namespaces failed: %v", err)
		}
		if len(namespaces) != 2 {
			t.Errorf("expected 2 namespaces, got %v", namespaces)
		}

		entities, err := anon.ListEntities(ctx, []string{base + "/chem"})
		if err != nil {
			t.Fatalf("list entities failed: %v", err)
		}
		if len(entities) != 1 || entities[0]["uri"] != base+"/chem/0.1/Material" {
			t.Errorf("unexpected listing: %v", entities)
		}
	})
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
