package main

import (
	"context"
	"net/http/httptest"
	"testing"

	"multistore/internal/api"
	"multistore/pkg/memstore"
	"multistore/pkg/middleware"
	"multistore/pkg/models"

	"github.com/gin-gonic/gin"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := memstore.NewUserStore()
	s.Init(context.Background())
	router := api.NewRouter(api.RouterConfig{
		Handlers: []*api.UserHandler{api.NewUserHandler(s, false, middleware.RequireHeader("X-API-Key"))},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_CRUD(t *testing.T) {
	srv := newTestServer(t)
	c := newAPIClient(srv.URL+"/", "X-API-Key", "cli", "memory")

	u, resp, err := c.createUser(models.UserInput{Name: "Dave", Email: "dave@x.com"})
	if err != nil || u == nil {
		t.Fatalf("create: %v %+v", err, resp)
	}
	if resp.Status != 201 {
		t.Errorf("expected status 201, got %d", resp.Status)
	}

	got, _, err := c.getUser(u.ID.String())
	if err != nil || got == nil || got.Name != "Dave" {
		t.Fatalf("get: %+v %v", got, err)
	}

	if _, _, err := c.updateUser(u.ID.String(), models.UserInput{Name: "D", Email: "d@x.com"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	users, resp, err := c.listUsers()
	if err != nil || len(users) != 1 || users[0].Name != "D" {
		t.Fatalf("list: %+v %v", users, err)
	}
	if resp.Count == nil || *resp.Count != 1 {
		t.Errorf("expected count 1, got %v", resp.Count)
	}

	resp, err = c.deleteUser(u.ID.String())
	if err != nil || !resp.Success {
		t.Fatalf("delete: %+v %v", resp, err)
	}

	_, resp, err = c.getUser(u.ID.String())
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if resp.Status != 404 || resp.Message != "User not found" {
		t.Errorf("expected 404 envelope, got %+v", resp)
	}
}

func TestClient_MissingKey(t *testing.T) {
	srv := newTestServer(t)
	c := newAPIClient(srv.URL, "X-API-Key", "", "memory")

	_, resp, err := c.createUser(models.UserInput{Name: "A", Email: "a"})
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}
	if resp.Status != 401 || resp.Success {
		t.Errorf("expected 401 envelope, got %+v", resp)
	}
}

func TestClient_Health(t *testing.T) {
	srv := newTestServer(t)
	c := newAPIClient(srv.URL, "X-API-Key", "cli", "memory")

	backends, err := c.health()
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if backends["memory"] != "connected" {
		t.Errorf("unexpected backends: %v", backends)
	}
}
