package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/knights/internal/domain"
	"github.com/totegamma/knights/internal/usecase"
)

// --- mocks ---

type mockKnightRepo struct {
	mu      sync.Mutex
	knights map[string]domain.Knight
}

func (m *mockKnightRepo) FindByNickname(ctx context.Context, nickname string) (domain.Knight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.knights {
		if k.Nickname == nickname {
			return k, nil
		}
	}
	return domain.Knight{}, domain.ErrNotFound
}

func (m *mockKnightRepo) FindByID(ctx context.Context, id string) (domain.Knight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.knights[id]
	if !ok {
		return domain.Knight{}, domain.ErrNotFound
	}
	return k, nil
}

func (m *mockKnightRepo) Insert(ctx context.Context, knight domain.Knight) (domain.Knight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.knights[knight.ID] = knight
	return knight, nil
}

func (m *mockKnightRepo) Save(ctx context.Context, knight domain.Knight) (domain.Knight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.knights[knight.ID] = knight
	return knight, nil
}

func (m *mockKnightRepo) Delete(ctx context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.knights[id]; !ok {
		return 0, nil
	}
	delete(m.knights, id)
	return 1, nil
}

func (m *mockKnightRepo) Paginate(ctx context.Context, query domain.PageQuery) (domain.Page[domain.Knight], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := []domain.Knight{}
	for _, k := range m.knights {
		if query.Term == "" || strings.Contains(strings.ToLower(k.Name), strings.ToLower(query.Term)) {
			docs = append(docs, k)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })

	total := int64(len(docs))
	start := min((query.Page-1)*query.Limit, len(docs))
	end := min(start+query.Limit, len(docs))

	return domain.Page[domain.Knight]{Docs: docs[start:end], Total: total, Page: query.Page, Limit: query.Limit}, nil
}

type mockSnapshotCache struct {
	values map[string]string
}

func (m *mockSnapshotCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *mockSnapshotCache) Set(ctx context.Context, key string, value string) error {
	m.values[key] = value
	return nil
}

// --- helpers ---

func newTestServer() *echo.Echo {
	repo := &mockKnightRepo{knights: map[string]domain.Knight{}}
	cache := &mockSnapshotCache{values: map[string]string{}}
	h := NewHandler(usecase.NewKnightUsecase(repo, cache))

	e := echo.New()
	h.RegisterRoutes(e, e.Group("/api"))
	return e
}

func knightBody(nickname string, equipped ...bool) map[string]any {
	weapons := []map[string]any{}
	for i, eq := range equipped {
		weapons = append(weapons, map[string]any{
			"name":     "weapon-" + string(rune('a'+i)),
			"mod":      2,
			"attr":     "strength",
			"equipped": eq,
		})
	}
	return map[string]any{
		"name":     "Sir " + nickname,
		"nickname": nickname,
		"birthday": "1990-05-01",
		"weapons":  weapons,
		"attributes": map[string]int{
			"strength":     16,
			"dexterity":    10,
			"constitution": 12,
			"intelligence": 9,
			"wisdom":       11,
			"charisma":     8,
		},
		"keyAttribute": "strength",
	}
}

func do(t *testing.T, e *echo.Echo, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	return res
}

func create(t *testing.T, e *echo.Echo, nickname string) domain.Knight {
	t.Helper()
	res := do(t, e, http.MethodPost, "/api/v1/knights", knightBody(nickname, true, false))
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var knight domain.Knight
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &knight))
	return knight
}

func errorMessage(t *testing.T, res *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	return body.Error
}

// --- tests ---

func TestHandleHealth(t *testing.T) {
	e := newTestServer()
	res := do(t, e, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestHandleCreate(t *testing.T) {
	e := newTestServer()

	knight := create(t, e, "percy")
	assert.NotEmpty(t, knight.ID)
	assert.Equal(t, "percy", knight.Nickname)
	require.Len(t, knight.Weapons, 2)

	res := do(t, e, http.MethodPost, "/api/v1/knights", knightBody("percy", true))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, usecase.MsgNicknameTaken, errorMessage(t, res))
}

func TestHandleCreateEquippedRule(t *testing.T) {
	tests := []struct {
		name     string
		equipped []bool
		msg      string
	}{
		{"none equipped", []bool{false, false}, usecase.MsgMustEquipWeapon},
		{"no weapons", nil, usecase.MsgMustEquipWeapon},
		{"two equipped", []bool{true, true}, usecase.MsgTooManyEquipped},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestServer()
			res := do(t, e, http.MethodPost, "/api/v1/knights", knightBody("percy", tc.equipped...))
			assert.Equal(t, http.StatusBadRequest, res.Code)
			assert.Equal(t, tc.msg, errorMessage(t, res))
		})
	}
}

func TestHandleCreateMalformedBody(t *testing.T) {
	e := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/knights", strings.NewReader("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestHandleListPaging(t *testing.T) {
	e := newTestServer()
	for _, nick := range []string{"gawain", "arthur", "bedivere"} {
		create(t, e, nick)
	}

	res := do(t, e, http.MethodGet, "/api/v1/knights?page=1&pageSize=2", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var page domain.KnightPage
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 2, page.PageSize)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "arthur", page.Data[0].Nickname)
	assert.Equal(t, "bedivere", page.Data[1].Nickname)
	assert.Equal(t, 2, page.Data[0].Weapons)
	assert.Equal(t, domain.Strength, page.Data[0].Attribute)
}

func TestHandleListDefaults(t *testing.T) {
	e := newTestServer()

	res := do(t, e, http.MethodGet, "/api/v1/knights", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var page domain.KnightPage
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &page))
	assert.Equal(t, domain.DefaultPage, page.CurrentPage)
	assert.Equal(t, domain.DefaultPageSize, page.PageSize)
	assert.Empty(t, page.Data)
}

func TestHandleListInvalidPaging(t *testing.T) {
	tests := []struct {
		query string
		msg   string
	}{
		{"page=0", msgInvalidPage},
		{"page=-3", msgInvalidPage},
		{"page=abc", msgInvalidPage},
		{"pageSize=0", msgInvalidPageSize},
		{"pageSize=x", msgInvalidPageSize},
	}
	e := newTestServer()
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			res := do(t, e, http.MethodGet, "/api/v1/knights?"+tc.query, nil)
			assert.Equal(t, http.StatusBadRequest, res.Code)
			assert.Equal(t, tc.msg, errorMessage(t, res))
		})
	}
}

func TestHandleHeroes(t *testing.T) {
	e := newTestServer()

	res := do(t, e, http.MethodGet, "/api/v1/knights?term=heroes", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	knight := create(t, e, "percy")

	res = do(t, e, http.MethodDelete, "/api/v1/knights/"+knight.ID, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"message":"Knight fought the good fight!"}`, res.Body.String())

	res = do(t, e, http.MethodGet, "/api/v1/knights?term=heroes", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var hero domain.HeroSnapshot
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &hero))
	assert.Equal(t, int64(0), hero.Total)
	assert.Equal(t, 1, hero.CurrentPage)
	assert.Equal(t, 10, hero.PageSize)
	assert.Equal(t, "percy", hero.Data.Nickname)
	assert.Empty(t, hero.Data.ID)

	res = do(t, e, http.MethodDelete, "/api/v1/knights/"+knight.ID, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestHandleGet(t *testing.T) {
	e := newTestServer()
	knight := create(t, e, "percy")

	res := do(t, e, http.MethodGet, "/api/v1/knights/"+knight.ID, nil)
	require.Equal(t, http.StatusOK, res.Code)
	etag := res.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var view domain.KnightView
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &view))
	assert.Equal(t, knight.ID, view.ID)
	assert.Equal(t, "1990-05-01", view.Birthday)
	assert.Positive(t, view.Age)
	assert.Positive(t, view.Attack)

	res = do(t, e, http.MethodGet, "/api/v1/knights/"+knight.ID, nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, res.Code)
	assert.Empty(t, res.Body.String())

	res = do(t, e, http.MethodGet, "/api/v1/knights/"+knight.ID, nil, "If-None-Match", `"stale"`)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestEtagMatches(t *testing.T) {
	etag := `"00ff00ff00ff00ff"`
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{etag, true},
		{"W/" + etag, true},
		{"*", true},
		{`"aaaa", ` + etag + `, "bbbb"`, true},
		{`"aaaa", W/"bbbb"`, false},
		{`"00ff00ff00ff00fe"`, false},
	}
	for _, tc := range tests {
		t.Run(tc.header, func(t *testing.T) {
			assert.Equal(t, tc.want, etagMatches(tc.header, etag))
		})
	}
}

func TestHandleGetWeakETag(t *testing.T) {
	e := newTestServer()
	knight := create(t, e, "percy")

	res := do(t, e, http.MethodGet, "/api/v1/knights/"+knight.ID, nil)
	require.Equal(t, http.StatusOK, res.Code)
	etag := res.Header().Get("ETag")

	res = do(t, e, http.MethodGet, "/api/v1/knights/"+knight.ID, nil, "If-None-Match", `"other", W/`+etag)
	assert.Equal(t, http.StatusNotModified, res.Code)
}

func TestHandleDelete(t *testing.T) {
	e := newTestServer()
	knight := create(t, e, "percy")

	res := do(t, e, http.MethodDelete, "/api/v1/knights/"+knight.ID, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"message":"Knight fought the good fight!"}`, res.Body.String())

	res = do(t, e, http.MethodGet, "/api/v1/knights/"+knight.ID, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = do(t, e, http.MethodDelete, "/api/v1/knights/missing", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "Knight with id missing not found", errorMessage(t, res))
}

func TestHandleGetUnknown(t *testing.T) {
	e := newTestServer()

	res := do(t, e, http.MethodGet, "/api/v1/knights/missing", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "Knight with id missing not found", errorMessage(t, res))
}

func TestHandleUpdate(t *testing.T) {
	e := newTestServer()
	knight := create(t, e, "percy")

	res := do(t, e, http.MethodPatch, "/api/v1/knights/"+knight.ID, map[string]any{"nickname": "perceval", "name": "ignored"})
	require.Equal(t, http.StatusOK, res.Code)

	var updated domain.Knight
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &updated))
	assert.Equal(t, "perceval", updated.Nickname)
	assert.Equal(t, knight.Name, updated.Name)

	res = do(t, e, http.MethodPatch, "/api/v1/knights/missing", map[string]any{"nickname": "x"})
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = do(t, e, http.MethodPatch, "/api/v1/knights/"+knight.ID, map[string]any{"nickname": ""})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}
