package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/fjod/go_cart/ecommerce-service/internal/cache"
	"github.com/fjod/go_cart/ecommerce-service/internal/domain"
	"github.com/fjod/go_cart/ecommerce-service/internal/logger"
	"github.com/fjod/go_cart/ecommerce-service/internal/repository"
	"github.com/fjod/go_cart/ecommerce-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerMock struct {
	err error
}

func (p pingerMock) Ping(context.Context) error {
	return p.err
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pinger     Pinger
		wantStatus int
		wantBody   string
	}{
		{"no pinger", nil, http.StatusOK, "ok"},
		{"db up", pingerMock{}, http.StatusOK, "ok"},
		{"db down", pingerMock{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(RouterConfig{Health: tt.pinger})

			recorder := serve(router, "GET", "/health", nil)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			var response map[string]string
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
			assert.Equal(t, tt.wantBody, response["status"])
		})
	}
}

func TestRequestLogger_SetsRequestIDAndLogs(t *testing.T) {
	var buf bytes.Buffer
	router := NewRouter(RouterConfig{
		Health: pingerMock{},
		Logger: logger.NewWithWriter(&buf, "info", "json"),
	})

	recorder := serve(router, "GET", "/health", nil)

	requestID := recorder.Header().Get("X-Request-ID")
	require.NotEmpty(t, requestID)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["message"])
	assert.Equal(t, requestID, entry["request_id"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/health", entry["path"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
}

func TestUnknownRoute(t *testing.T) {
	router := NewRouter(RouterConfig{})

	recorder := serve(router, "GET", "/api/unknown", nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

// Full stack over an in-memory SQLite store: a write through the API must be
// visible to the very next listing even though the listing was cached.
func TestRouter_WriteIsVisibleToNextRead(t *testing.T) {
	repo, err := repository.NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.RunMigrations("../repository/migrations"))

	contacts := service.NewContactService(repo, cache.NewManager(), nil)
	router := newTestRouter(contacts, service.NewCartService(repo))

	listEmails := func() []string {
		recorder := serve(router, "GET", "/api/contact?searchTerm=Doe", nil)
		require.Equal(t, http.StatusOK, recorder.Code)
		var page domain.ContactPage
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&page))
		emails := make([]string, 0, len(page.Contacts))
		for _, c := range page.Contacts {
			emails = append(emails, c.Email)
		}
		return emails
	}

	body, _ := json.Marshal(domain.Contact{FirstName: "Jane", LastName: "Doe", Email: "jane@x.com"})
	recorder := serve(router, "POST", "/api/contact", body)
	require.Equal(t, http.StatusCreated, recorder.Code)
	var created domain.Contact
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&created))

	assert.Equal(t, []string{"jane@x.com"}, listEmails())

	created.Email = "jane@y.com"
	body, _ = json.Marshal(created)
	recorder = serve(router, "PUT", "/api/contact/"+strconv.FormatInt(created.ID, 10), body)
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.Equal(t, []string{"jane@y.com"}, listEmails())

	recorder = serve(router, "DELETE", "/api/contact/"+strconv.FormatInt(created.ID, 10), nil)
	require.Equal(t, http.StatusNoContent, recorder.Code)

	assert.Empty(t, listEmails())

	recorder = serve(router, "POST", "/api/cart", []byte(`{"productId": 1, "quantity": 2}`))
	require.Equal(t, http.StatusOK, recorder.Code)
	var cartID string
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&cartID))

	recorder = serve(router, "GET", "/api/cart/"+cartID, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var items []domain.CartItem
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "Laptop", items[0].ProductName)
	assert.Equal(t, 2, items[0].Quantity)
}
