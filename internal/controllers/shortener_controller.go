package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkly-be/internal/entities"
	"linkly-be/internal/models"
	"linkly-be/internal/service"
)

type ShortenerController struct {
	urlService  service.URLService
	frontendURL string // Default display base when the request doesn't carry one
}

func NewShortenerController(urlService service.URLService, frontendURL string) *ShortenerController {
	return &ShortenerController{
		urlService:  urlService,
		frontendURL: frontendURL,
	}
}

// ownerScope resolves the request to an ownership scope. The auth
// middleware sets "user_id" only for authenticated callers; everyone else
// operates in the public scope.
func ownerScope(c *gin.Context) entities.Scope {
	if userID, exists := c.Get("user_id"); exists {
		return entities.OwnedScope(userID.(string))
	}
	return entities.PublicScope()
}

// CreateShortURL handles POST /api/urls/shorten and /api/urls/shorten/private
func (sc *ShortenerController) CreateShortURL(c *gin.Context) {
	var req models.CreateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	frontendURL := req.FrontendURL
	if frontendURL == "" {
		frontendURL = sc.frontendURL
	}

	mapping, created, err := sc.urlService.Create(c.Request.Context(), req.OriginalURL, frontendURL, ownerScope(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Message: "Original URL is required",
				Error:   err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Server Error",
			Error:   err.Error(),
		})
		return
	}

	if !created {
		c.JSON(http.StatusOK, models.URLResponse{
			Success: false,
			Message: "This URL is already shortened!",
			URL:     mapping,
		})
		return
	}

	c.JSON(http.StatusCreated, models.URLResponse{
		Success: true,
		Message: "URL shortened successfully!",
		URL:     mapping,
	})
}

// GetAllURLs handles GET /api/urls and /api/urls/user/urls. Authenticated
// callers see their own mappings, anonymous callers see public ones.
func (sc *ShortenerController) GetAllURLs(c *gin.Context) {
	urls, err := sc.urlService.List(c.Request.Context(), c.Query("frontend_url"), ownerScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Server Error",
			Error:   err.Error(),
		})
		return
	}

	if urls == nil {
		urls = []*entities.UrlMapping{}
	}

	c.JSON(http.StatusOK, models.ListURLsResponse{
		Success: true,
		Count:   len(urls),
		URLs:    urls,
	})
}

// ResolveShortURL handles GET /api/urls/:shortId - returns the original
// URL as JSON and counts the visit
func (sc *ShortenerController) ResolveShortURL(c *gin.Context) {
	originalURL, err := sc.urlService.Resolve(c.Request.Context(), c.Param("shortId"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Message: "URL not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Server Error",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ResolveURLResponse{
		Success:     true,
		OriginalURL: originalURL,
	})
}

// RedirectToURL handles GET /:shortId - redirects straight to the
// original URL
func (sc *ShortenerController) RedirectToURL(c *gin.Context) {
	originalURL, err := sc.urlService.Resolve(c.Request.Context(), c.Param("shortId"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Message: "URL not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Server Error",
			Error:   err.Error(),
		})
		return
	}

	c.Redirect(http.StatusMovedPermanently, originalURL)
}

// DeleteURL handles DELETE /api/urls/:id and /api/urls/user/:id
func (sc *ShortenerController) DeleteURL(c *gin.Context) {
	err := sc.urlService.Delete(c.Request.Context(), c.Param("id"), ownerScope(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Message: "URL not found",
			})
		case errors.Is(err, service.ErrNotOwner):
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Message: "Not authorized to delete this URL",
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Message: "Server Error",
				Error:   err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "URL deleted successfully!",
	})
}
