package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"multistore/pkg/models"
)

// apiClient drives the api-service HTTP surface for one backend at a time.
type apiClient struct {
	baseURL   string
	keyHeader string
	key       string
	backend   string
	http      *http.Client
}

func newAPIClient(baseURL, keyHeader, key, backend string) *apiClient {
	return &apiClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyHeader: keyHeader,
		key:       key,
		backend:   backend,
		http:      &http.Client{Timeout: 5 * time.Second},
	}
}

// response is the envelope with data left raw so callers can decode it.
type response struct {
	Status  int
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
}

func (c *apiClient) usersPath(id string) string {
	p := c.baseURL + "/api/" + c.backend + "/users"
	if id != "" {
		p += "/" + id
	}
	return p
}

func (c *apiClient) do(method, url string, body interface{}) (*response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.key != "" {
		req.Header.Set(c.keyHeader, c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := &response{Status: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", method, url, err)
	}
	return out, nil
}

func (c *apiClient) createUser(in models.UserInput) (*models.User, *response, error) {
	return c.userCall(http.MethodPost, c.usersPath(""), in)
}

func (c *apiClient) updateUser(id string, in models.UserInput) (*models.User, *response, error) {
	return c.userCall(http.MethodPut, c.usersPath(id), in)
}

func (c *apiClient) getUser(id string) (*models.User, *response, error) {
	return c.userCall(http.MethodGet, c.usersPath(id), nil)
}

func (c *apiClient) userCall(method, url string, body interface{}) (*models.User, *response, error) {
	resp, err := c.do(method, url, body)
	if err != nil || !resp.Success {
		return nil, resp, err
	}
	var u models.User
	if err := json.Unmarshal(resp.Data, &u); err != nil {
		return nil, resp, err
	}
	return &u, resp, nil
}

func (c *apiClient) listUsers() ([]models.User, *response, error) {
	resp, err := c.do(http.MethodGet, c.usersPath(""), nil)
	if err != nil || !resp.Success {
		return nil, resp, err
	}
	var users []models.User
	if err := json.Unmarshal(resp.Data, &users); err != nil {
		return nil, resp, err
	}
	return users, resp, nil
}

func (c *apiClient) deleteUser(id string) (*response, error) {
	return c.do(http.MethodDelete, c.usersPath(id), nil)
}

// health returns the readiness reported for each backend.
func (c *apiClient) health() (map[string]string, error) {
	resp, err := c.do(http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	var data struct {
		Backends map[string]string `json:"backends"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, err
	}
	return data.Backends, nil
}
