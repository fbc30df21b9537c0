package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkly-be/internal/jwt"
	"linkly-be/internal/middleware"
	"linkly-be/internal/models"
	"linkly-be/internal/repository"
	"linkly-be/internal/service"
)

func setupRouter(t *testing.T) (*gin.Engine, *jwt.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	urlService := service.NewURLService(repository.NewMemoryURLRepository(), nil)
	jwtService := jwt.NewJWTService("test-secret", time.Hour)
	sc := NewShortenerController(urlService, "https://short.ly")

	router := gin.New()
	urls := router.Group("/api/urls")
	{
		urls.POST("/shorten", middleware.OptionalAuthMiddleware(jwtService), sc.CreateShortURL)
		urls.GET("", middleware.OptionalAuthMiddleware(jwtService), sc.GetAllURLs)
		urls.DELETE("/:id", middleware.OptionalAuthMiddleware(jwtService), sc.DeleteURL)
		urls.GET("/:shortId", sc.ResolveShortURL)
		urls.GET("/user/urls", middleware.AuthMiddleware(jwtService), sc.GetAllURLs)
	}
	return router, jwtService
}

func doRequest(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateShortURL_Envelope(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/urls/shorten", `{"original_url":"https://example.com/a"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.URLResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "URL shortened successfully!", resp.Message)
	require.NotNil(t, resp.URL)
	assert.Equal(t, "https://short.ly/"+resp.URL.ShortID, resp.URL.ShortURL)

	// Shortening the same URL again answers 200 with the existing mapping.
	w = doRequest(router, http.MethodPost, "/api/urls/shorten", `{"original_url":"https://example.com/a"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	var dup models.URLResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dup))
	assert.False(t, dup.Success)
	assert.Equal(t, "This URL is already shortened!", dup.Message)
	require.NotNil(t, dup.URL)
	assert.Equal(t, resp.URL.ID, dup.URL.ID)
}

func TestCreateShortURL_MissingURL(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/urls/shorten", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveShortURL(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/api/urls/shorten", `{"original_url":"https://example.com/a"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.URLResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doRequest(router, http.MethodGet, "/api/urls/"+created.URL.ShortID, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resolved models.ResolveURLResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	assert.True(t, resolved.Success)
	assert.Equal(t, "https://example.com/a", resolved.OriginalURL)
}

func TestResolveShortURL_NotFound(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/api/urls/zzzzzz", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "URL not found", resp.Message)
}

func TestGetAllURLs_ScopedByToken(t *testing.T) {
	router, jwtService := setupRouter(t)

	token, err := jwtService.GenerateToken("user-1", "user@example.com")
	require.NoError(t, err)

	w := doRequest(router, http.MethodPost, "/api/urls/shorten", `{"original_url":"https://example.com/mine"}`, token)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(router, http.MethodPost, "/api/urls/shorten", `{"original_url":"https://example.com/public"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	// Anonymous listing sees only the public mapping.
	w = doRequest(router, http.MethodGet, "/api/urls", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var publicList models.ListURLsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &publicList))
	require.Equal(t, 1, publicList.Count)
	assert.Equal(t, "https://example.com/public", publicList.URLs[0].OriginalURL)

	// The owner's listing sees only their mapping.
	w = doRequest(router, http.MethodGet, "/api/urls/user/urls", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	var ownedList models.ListURLsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ownedList))
	require.Equal(t, 1, ownedList.Count)
	assert.Equal(t, "https://example.com/mine", ownedList.URLs[0].OriginalURL)
}

func TestGetAllURLs_RequiresTokenOnGatedRoute(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/api/urls/user/urls", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteURL_OwnerMismatch(t *testing.T) {
	router, jwtService := setupRouter(t)

	ownerToken, err := jwtService.GenerateToken("owner", "owner@example.com")
	require.NoError(t, err)
	intruderToken, err := jwtService.GenerateToken("intruder", "intruder@example.com")
	require.NoError(t, err)

	w := doRequest(router, http.MethodPost, "/api/urls/shorten", `{"original_url":"https://example.com/owned"}`, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.URLResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doRequest(router, http.MethodDelete, "/api/urls/"+created.URL.ID, "", intruderToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Deleting as the owner succeeds.
	w = doRequest(router, http.MethodDelete, "/api/urls/"+created.URL.ID, "", ownerToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/urls/"+created.URL.ID, "", ownerToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
