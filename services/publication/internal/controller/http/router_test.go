package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialnet/pkg/jwt"
	"socialnet/pkg/logger"
	"socialnet/pkg/metrics"
	"socialnet/services/publication/internal/entity"
	"socialnet/services/publication/internal/repo/persistent"
	"socialnet/services/publication/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMediaStore struct{}

func (stubMediaStore) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	return "https://media.test/" + key, nil
}

func (stubMediaStore) DeleteFile(ctx context.Context, key string) error {
	return nil
}

type routerFixture struct {
	router *gin.Engine
	store  *persistent.MemoryStore
	jwt    *jwt.Service
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New()
	store := persistent.NewMemoryStore()
	jwtService := jwt.NewService("test-secret")
	uc := usecase.NewPublicationUseCase(store, store, stubMediaStore{}, nil, log)
	handler := NewPublicationHandler(uc, log)

	return &routerFixture{
		router: NewRouter(handler, jwtService, nil, log, RouterConfig{AllowOrigins: []string{"*"}, RateLimitPerMinute: 100}),
		store:  store,
		jwt:    jwtService,
	}
}

func (f *routerFixture) newUser(t *testing.T, nick string) (string, string) {
	t.Helper()
	id := uuid.New().String()
	f.store.PutUser(entity.User{ID: id, Name: nick, Nick: nick, Email: nick + "@example.com", Password: "hash"})
	token, err := f.jwt.GenerateToken(id, "user")
	require.NoError(t, err)
	return id, token
}

func (f *routerFixture) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	f.router.ServeHTTP(w, req)
	return w
}

func (f *routerFixture) create(t *testing.T, token, text string) string {
	t.Helper()
	w := f.do("POST", "/api/publication", token, bytes.NewBufferString(`{"text":"`+text+`"}`), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		PublicationStored entity.Publication `json:"publicationStored"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response.PublicationStored.ID
}

func TestRouter_CreateThenListUserPublications(t *testing.T) {
	f := newRouterFixture(t)
	userID, token := f.newUser(t, "ana")

	f.create(t, token, "hello")

	w := f.do("GET", "/api/publication/user/"+userID+"/1?limit=5", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Status       string               `json:"status"`
		Publications []entity.Publication `json:"publications"`
		Total        int64                `json:"total"`
		Pages        int                  `json:"pages"`
		Page         int                  `json:"page"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "success", response.Status)
	assert.Equal(t, int64(1), response.Total)
	assert.Equal(t, 1, response.Pages)
	assert.Equal(t, 1, response.Page)
	require.Len(t, response.Publications, 1)
	assert.Equal(t, "hello", response.Publications[0].Text)
	require.NotNil(t, response.Publications[0].User)
	assert.Equal(t, "ana", response.Publications[0].User.Nick)
	assert.NotContains(t, w.Body.String(), "ana@example.com")
	assert.NotContains(t, w.Body.String(), "hash")
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	f := newRouterFixture(t)
	id := uuid.New().String()

	cases := []struct {
		method string
		path   string
	}{
		{"POST", "/api/publication"},
		{"DELETE", "/api/publication/" + id},
		{"GET", "/api/publication/feed"},
		{"GET", "/api/publication/feed/2"},
		{"POST", "/api/publication/media/" + id},
	}

	for _, tc := range cases {
		w := f.do(tc.method, tc.path, "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.method+" "+tc.path)
	}
}

func TestRouter_ShowAndDelete(t *testing.T) {
	f := newRouterFixture(t)
	_, ownerToken := f.newUser(t, "owner")
	_, otherToken := f.newUser(t, "other")

	id := f.create(t, ownerToken, "mine")

	w := f.do("GET", "/api/publication/"+id, "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do("GET", "/api/publication/not-a-uuid", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do("DELETE", "/api/publication/"+id, otherToken, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do("DELETE", "/api/publication/"+id, ownerToken, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do("GET", "/api/publication/"+id, "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Feed(t *testing.T) {
	f := newRouterFixture(t)
	readerID, readerToken := f.newUser(t, "reader")
	authorID, authorToken := f.newUser(t, "author")

	w := f.do("GET", "/api/publication/feed", readerToken, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.store.Follow(readerID, authorID)
	w = f.do("GET", "/api/publication/feed", readerToken, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, text := range []string{"one", "two", "three"} {
		f.create(t, authorToken, text)
	}

	w = f.do("GET", "/api/publication/feed/1?limit=2", readerToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Publications []entity.Publication `json:"publications"`
		Total        int64                `json:"total"`
		Pages        int                  `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(3), response.Total)
	assert.Equal(t, 2, response.Pages)
	require.Len(t, response.Publications, 2)
	assert.Equal(t, "three", response.Publications[0].Text)
	assert.Equal(t, "two", response.Publications[1].Text)
}

func TestRouter_UploadAndRedirectMedia(t *testing.T) {
	f := newRouterFixture(t)
	_, token := f.newUser(t, "photographer")
	id := f.create(t, token, "with picture")

	w := f.do("GET", "/api/publication/media/"+id, "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "Photo.PNG")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w = f.do("POST", "/api/publication/media/"+id, token, body, writer.FormDataContentType())
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		File string `json:"file"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response.File, "https://media.test/publications/"+id+"/")
	assert.Contains(t, response.File, ".png")

	w = f.do("GET", "/api/publication/media/"+id, "", nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, response.File, w.Header().Get("Location"))
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t)
	w := f.do("GET", "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.New()
	store := persistent.NewMemoryStore()
	handler := NewPublicationHandler(usecase.NewPublicationUseCase(store, store, stubMediaStore{}, nil, log), log)

	withMetrics := NewRouter(handler, jwt.NewService("s"), nil, log, RouterConfig{Metrics: metrics.New("publication")})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	withMetrics.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	withoutMetrics := NewRouter(handler, jwt.NewService("s"), nil, log, RouterConfig{})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/metrics", nil)
	withoutMetrics.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
