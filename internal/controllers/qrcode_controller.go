package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"linkly-be/internal/models"
)

type QRCodeController struct {
	frontendURL string
}

func NewQRCodeController(frontendURL string) *QRCodeController {
	return &QRCodeController{
		frontendURL: frontendURL,
	}
}

// GenerateQRCode handles GET /api/qrcode/:shortId - renders a QR code for
// a short link
func (qc *QRCodeController) GenerateQRCode(c *gin.Context) {
	shortID := c.Param("shortId")
	if shortID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Message: "Short ID is required",
		})
		return
	}

	shortURL := qc.frontendURL + "/" + shortID

	qrCode, err := qrcode.New(shortURL, qrcode.Medium)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to generate QR code",
			Error:   err.Error(),
		})
		return
	}

	pngData, err := qrCode.PNG(256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Message: "Failed to generate QR code image",
			Error:   err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", "inline; filename=qrcode.png")
	c.Data(http.StatusOK, "image/png", pngData)
}
