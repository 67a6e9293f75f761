package catalog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ProductCatalog/internal/auth"
	"ProductCatalog/pkg/kit"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type harness struct {
	t     *testing.T
	h     http.Handler
	store *MemStore
	token string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	tokens := auth.NewTokenMaker(testSecret)
	tok, err := tokens.New("u_test", "test@example.com", auth.RoleUser, time.Hour)
	require.NoError(t, err)

	store := NewMemStore()
	s := &Server{Store: store, Tokens: tokens, Log: zap.NewNop()}

	return &harness{
		t:     t,
		h:     NewHandler(s, HTTPDeps{Log: zap.NewNop(), Service: "catalog"}),
		store: store,
		token: tok,
	}
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	h.t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+h.token)

	w := httptest.NewRecorder()
	h.h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

const penJSON = `{"name":"Pen","description":"Blue pen","price":1.5,"category":"Stationery","inStock":true}`

func TestHTTP_CreateThenGet(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, ProductsPath, penJSON)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[Product](t, w)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, Product{ID: created.ID, Name: "Pen", Description: "Blue pen", Price: 1.5, Category: "Stationery", InStock: true}, created)

	w = h.do(http.MethodGet, ProductsPath+"/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode[Product](t, w))
}

func TestHTTP_CreateAssignsUniqueIDs(t *testing.T) {
	h := newHarness(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		w := h.do(http.MethodPost, ProductsPath, penJSON)
		require.Equal(t, http.StatusCreated, w.Code)

		id := decode[Product](t, w).ID
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Equal(t, 20, h.store.Len())
}

func TestHTTP_CreateRetriesCollidingIDs(t *testing.T) {
	store := NewMemStore()
	store.Append(Product{ID: "dup"})

	next := []string{"dup", "dup", "fresh"}
	s := &Server{
		Store:  store,
		Tokens: auth.NewTokenMaker(testSecret),
		Log:    zap.NewNop(),
		NewID: func() string {
			id := next[0]
			next = next[1:]
			return id
		},
	}

	id, err := s.freshID()
	require.NoError(t, err)
	assert.Equal(t, "fresh", id)

	s.NewID = func() string { return "dup" }
	_, err = s.freshID()
	assert.ErrorIs(t, err, errIDExhausted)
}

func TestHTTP_GetUnknown(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, ProductsPath+"/never-created", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decode[kit.ErrorResponse](t, w).Message)
}

func TestHTTP_UpdatePartial(t *testing.T) {
	h := newHarness(t)
	created := decode[Product](t, h.do(http.MethodPost, ProductsPath, penJSON))

	w := h.do(http.MethodPut, ProductsPath+"/"+created.ID, `{"price":2.0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	want := created
	want.Price = 2.0
	assert.Equal(t, want, decode[Product](t, w))

	stored, ok := h.store.Find(created.ID)
	require.True(t, ok)
	assert.Equal(t, want, stored)
}

func TestHTTP_UpdateNeverChangesID(t *testing.T) {
	h := newHarness(t)
	created := decode[Product](t, h.do(http.MethodPost, ProductsPath, penJSON))

	w := h.do(http.MethodPut, ProductsPath+"/"+created.ID, `{"id":"attacker-chosen","name":"Marker"}`)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[Product](t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Marker", got.Name)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, ProductsPath+"/attacker-chosen", "").Code)
}

func TestHTTP_UpdateErrors(t *testing.T) {
	h := newHarness(t)
	created := decode[Product](t, h.do(http.MethodPost, ProductsPath, penJSON))

	w := h.do(http.MethodPut, ProductsPath+"/missing", `{"price":2.0}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodPut, ProductsPath+"/"+created.ID, `{"price":-2}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[kit.ErrorResponse](t, w)
	assert.Equal(t, "validation failed", body.Message)
	assert.Equal(t, map[string]any{"price": "gte"}, body.Details)
}

func TestHTTP_CreateValidation(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, ProductsPath, `{"name":"Pen"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation failed", decode[kit.ErrorResponse](t, w).Message)

	w = h.do(http.MethodPost, ProductsPath, `{"name":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid JSON", decode[kit.ErrorResponse](t, w).Message)

	w = h.do(http.MethodPost, ProductsPath, `{"name":"a","price":"1","category":"c","inStock":true}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[kit.ErrorResponse](t, w)
	assert.Equal(t, map[string]any{"price": "wrong type"}, body.Details)
	assert.NotContains(t, w.Body.String(), "Go struct")
	assert.NotContains(t, w.Body.String(), "CreateProductRequest")

	assert.Zero(t, h.store.Len())
}

func TestHTTP_DeleteTwice(t *testing.T) {
	h := newHarness(t)
	created := decode[Product](t, h.do(http.MethodPost, ProductsPath, penJSON))
	other := decode[Product](t, h.do(http.MethodPost, ProductsPath, penJSON))

	w := h.do(http.MethodDelete, ProductsPath+"/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Product deleted successfully"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, ProductsPath+"/"+created.ID, "").Code)
	assert.Equal(t, []string{other.ID}, ids(h.store.Snapshot()))
}

func TestHTTP_ListPaginatesAndFilters(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 12; i++ {
		category := "Books"
		if i%2 == 1 {
			category = "books"
		}
		body := `{"name":"Novel","price":9.99,"category":"` + category + `","inStock":true}`
		require.Equal(t, http.StatusCreated, h.do(http.MethodPost, ProductsPath, body).Code)
	}
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, ProductsPath, penJSON).Code)

	for page, want := range map[int]int{1: 5, 3: 2, 4: 0} {
		w := h.do(http.MethodGet, ProductsPath+"?category=BOOKS&limit=5&page="+strconv.Itoa(page), "")
		require.Equal(t, http.StatusOK, w.Code)

		got := decode[Page](t, w)
		assert.Len(t, got.Data, want, "page %d", page)
		assert.Equal(t, 12, got.Total)
		assert.Equal(t, page, got.Page)
		assert.Equal(t, 5, got.Limit)
	}

	w := h.do(http.MethodGet, ProductsPath+"?search=pen", "")
	got := decode[Page](t, w)
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, 5, got.Limit, "default limit")
	assert.Equal(t, 1, got.Page, "default page")

	w = h.do(http.MethodGet, ProductsPath+"?category=none", "")
	assert.JSONEq(t, `{"page":1,"limit":5,"total":0,"data":[]}`, w.Body.String())
}

func TestHTTP_ListRejectsBadPaging(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, ProductsPath+"?page=abc&limit=0", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode[kit.ErrorResponse](t, w)
	assert.Equal(t, "invalid pagination parameters", body.Message)
	assert.Equal(t, map[string]any{
		"page":  "must be a positive integer",
		"limit": "must be a positive integer",
	}, body.Details)
}

func TestHTTP_Stats(t *testing.T) {
	h := newHarness(t)
	for _, c := range []string{"A", "A", "B"} {
		body := `{"name":"x","price":1,"category":"` + c + `","inStock":false}`
		require.Equal(t, http.StatusCreated, h.do(http.MethodPost, ProductsPath, body).Code)
	}

	w := h.do(http.MethodGet, ProductsPath+"/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":3,"byCategory":{"A":2,"B":1}}`, w.Body.String())
}

func TestHTTP_AuthGate(t *testing.T) {
	h := newHarness(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, ProductsPath},
		{http.MethodGet, ProductsPath + "/stats"},
		{http.MethodGet, ProductsPath + "/x"},
		{http.MethodPost, ProductsPath},
		{http.MethodPut, ProductsPath + "/x"},
		{http.MethodDelete, ProductsPath + "/x"},
	}

	foreign, err := auth.NewTokenMaker("another-secret-another-secret-00").New("u_1", "e@x", auth.RoleUser, time.Hour)
	require.NoError(t, err)

	for _, rt := range routes {
		w := httptest.NewRecorder()
		h.h.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, strings.NewReader(penJSON)))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s without token", rt.method, rt.path)
		assert.Equal(t, "missing token", decode[kit.ErrorResponse](t, w).Message)

		req := httptest.NewRequest(rt.method, rt.path, strings.NewReader(penJSON))
		req.Header.Set("Authorization", "Bearer "+foreign)
		w = httptest.NewRecorder()
		h.h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s with foreign token", rt.method, rt.path)
	}

	assert.Zero(t, h.store.Len())
}

func TestHTTP_ServiceRoutes(t *testing.T) {
	h := newHarness(t)

	w := httptest.NewRecorder()
	h.h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello World", w.Body.String())

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		h.h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestHTTP_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := NewMemStore()
	s := &Server{Store: store, Tokens: auth.NewTokenMaker(testSecret), Log: zap.NewNop()}
	handler := NewHandler(s, HTTPDeps{
		Log:            zap.NewNop(),
		Service:        "catalog",
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   "scrape",
	})
	store.Append(Product{ID: "a", Category: "A"})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer scrape")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "catalog_products 1")
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/metrics",service="catalog",status="403"} 1`)
}
