package mockapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-kr/cms-nano/pkg/model"
)

func newTestServer(t *testing.T, fns ...OptionFn) *Server {
	t.Helper()
	s, err := NewServer(context.Background(), fns...)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) model.ListPage[model.ComponentPattern] {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page model.ListPage[model.ComponentPattern]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	return page
}

func names(patterns []model.ComponentPattern) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, p.Name)
	}
	return out
}

func TestListPatternsPaginates(t *testing.T) {
	s := newTestServer(t)

	page := decodeList(t, do(t, s, http.MethodGet, "/api/component-patterns?limit=2&sort=name", ""))
	assert.Equal(t, []string{"Footer", "HeroBanner"}, names(page.Data))
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.ItemsPerPage)

	page = decodeList(t, do(t, s, http.MethodGet, "/api/component-patterns?limit=2&page=2&sort=name", ""))
	assert.Equal(t, []string{"Teaser"}, names(page.Data))

	page = decodeList(t, do(t, s, http.MethodGet, "/api/component-patterns?limit=2&page=9", ""))
	assert.Empty(t, page.Data)
	assert.Equal(t, 9, page.CurrentPage)
}

func TestListPatternsSearchAndSort(t *testing.T) {
	s := newTestServer(t)

	page := decodeList(t, do(t, s, http.MethodGet, "/api/component-patterns?search=TEA", ""))
	assert.Equal(t, []string{"Teaser"}, names(page.Data))
	assert.Equal(t, 1, page.TotalPages)

	page = decodeList(t, do(t, s, http.MethodGet, "/api/component-patterns?sort=-name", ""))
	assert.Equal(t, []string{"Teaser", "HeroBanner", "Footer"}, names(page.Data))
	assert.Equal(t, DefaultLimit, page.ItemsPerPage)
}

func TestListPatternsSortsByUpdatedAt(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestServer(t, WithSeed(false), WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	for _, name := range []string{"First", "Second", "Third"} {
		_, err := s.Store().Create(model.ComponentPattern{Name: name})
		require.NoError(t, err)
	}

	page := decodeList(t, do(t, s, http.MethodGet, "/api/component-patterns?sort=-updatedAt", ""))
	assert.Equal(t, []string{"Third", "Second", "First"}, names(page.Data))

	page = decodeList(t, do(t, s, http.MethodGet, "/api/component-patterns?sort=createdAt", ""))
	assert.Equal(t, []string{"First", "Second", "Third"}, names(page.Data))
}

func TestPatternLifecycle(t *testing.T) {
	s := newTestServer(t, WithSeed(false))
	s.Store().SetFieldTypes(SeedFieldTypes())
	text := FieldTypeID("text")

	rec := do(t, s, http.MethodPost, "/api/component-patterns",
		`{"name":"Gallery","label":"Image gallery","fields":[{"fieldTypeId":"`+text+`","name":"caption"}],"fieldset":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var id string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &id))
	require.NotEmpty(t, id)

	rec = do(t, s, http.MethodGet, "/api/component-patterns/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.ComponentPattern
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Gallery", got.Name)
	require.Len(t, got.Fields, 1)
	assert.Equal(t, "caption", got.Fields[0].Name)
	require.NotNil(t, got.CreatedAt)

	rec = do(t, s, http.MethodPut, "/api/component-patterns/"+id, `{"name":"Gallery","label":"Renamed","fields":[],"fieldset":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Renamed", got.Label)
	assert.Empty(t, got.Fields)

	rec = do(t, s, http.MethodDelete, "/api/component-patterns/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var deleted string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.Equal(t, id, deleted)

	rec = do(t, s, http.MethodGet, "/api/component-patterns/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not exist")
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
}

func TestCreateRejectsInvalidBodies(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"name":`, "malformed JSON body"},
		{"missing name", `{"label":"x"}`, `"name" is required`},
		{"short name", `{"name":"ab"}`, `"name"`},
		{"field without type", `{"name":"Cards","fields":[{"name":"title"}]}`, "fields[0].fieldTypeId"},
		{"wrong type", `{"name":"Cards","label":42}`, "label"},
		{"duplicate name", `{"name":"heroBanner"}`, "already taken"},
		{"markup only", `{"name":"<b></b><i></i>"}`, `"name" is required`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/component-patterns", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestCreateStripsMarkup(t *testing.T) {
	s := newTestServer(t, WithSeed(false))

	rec := do(t, s, http.MethodPost, "/api/component-patterns",
		`{"name":" Quote ","label":"<script>alert(1)</script><b>Pull</b> quote & co","fields":[],"fieldset":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var id string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &id))

	got, err := s.Store().Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Quote", got.Name)
	assert.Equal(t, "Pull quote & co", got.Label)
}

func TestUpdateAndDeleteUnknownPattern(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/api/component-patterns/missing", `{"name":"Whatever"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/component-patterns/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFieldTypesPagesAndDocument(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/field-types", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var types []model.FieldTypeDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
	assert.Equal(t, SeedFieldTypes(), types)
	assert.Equal(t, FieldTypeID("text"), types[0].ID)

	rec = do(t, s, http.MethodGet, "/api/pages?search=o&sort=name", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pages model.ListPage[model.PageSummary]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pages))
	require.Len(t, pages.Data, 3)
	assert.Equal(t, "About", pages.Data[0].Name)

	rec = do(t, s, http.MethodGet, "/api/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.Contains(t, doc["paths"], "/component-patterns/{id}")
}

func TestUnseededServerStartsEmpty(t *testing.T) {
	s := newTestServer(t, WithSeed(false))

	page := decodeList(t, do(t, s, http.MethodGet, "/api/component-patterns", ""))
	assert.Empty(t, page.Data)
	assert.Equal(t, 1, page.TotalPages)
}

func TestRegisterRoutesOnServeMux(t *testing.T) {
	mux := http.NewServeMux()
	pattern, s, err := RegisterRoutes(context.Background(), mux, WithBasePath("cms/api/"))
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "/cms/api/", pattern)
	assert.Equal(t, "/cms/api/", MountPath(WithBasePath("cms/api/")))

	rec := do(t, mux, http.MethodGet, "/cms/api/field-types", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	_, _, err = RegisterRoutes(context.Background(), nil)
	assert.Error(t, err)
}

func TestRootBasePath(t *testing.T) {
	s := newTestServer(t, WithBasePath("/"))

	rec := do(t, s, http.MethodGet, "/field-types", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewOptionsClamps(t *testing.T) {
	opts := NewOptions(WithDefaultLimit(500), WithMaxLimit(50), nil)
	assert.Equal(t, 50, opts.DefaultLimit)
	assert.Equal(t, 50, opts.MaxLimit)
	assert.NotNil(t, opts.Logger)
	assert.NotNil(t, opts.Registry)
	assert.NotNil(t, opts.Now)

	assert.Equal(t, 50, clampLimit(1000, opts))
	assert.Equal(t, 50, clampLimit(0, opts))
	assert.Equal(t, 7, clampLimit(7, opts))
}
