package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cpd-labs/certificados-service/internal/models"
	"github.com/cpd-labs/certificados-service/internal/services"
)

// ConsultarCertificado consulta pública por código; un certificado inexistente
// no es un error, se responde found=false
func (api *API) ConsultarCertificado(c *gin.Context) {
	codigo := c.Param("codigo")

	cert, err := api.certService.GetByCode(c.Request.Context(), codigo)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusOK, models.CertificateResponse{Found: false})
			return
		}
		api.respondError(c, err, "Error retrieving certificate")
		return
	}

	c.JSON(http.StatusOK, api.certService.PublicResponse(cert))
}

// BuscarCertificado es la búsqueda pública por código en el body
func (api *API) BuscarCertificado(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.bindError(c, err)
		return
	}

	cert, err := api.certService.GetByCode(c.Request.Context(), req.Codigo)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusOK, models.CertificateResponse{Found: false})
			return
		}
		api.respondError(c, err, "Error searching certificate")
		return
	}

	c.JSON(http.StatusOK, api.certService.PublicResponse(cert))
}

// DownloadCertificadoPDF genera y entrega el PDF del certificado
func (api *API) DownloadCertificadoPDF(c *gin.Context) {
	codigo := c.Param("codigo")

	data, cert, err := api.certService.RenderPDF(c.Request.Context(), codigo)
	if err != nil {
		if errors.Is(err, models.ErrAssetMissing) {
			api.logger.WithError(err).Error("Certificate template missing")
			c.JSON(http.StatusInternalServerError, models.NewInternalError("Certificate template not available"))
			return
		}
		api.respondError(c, err, "Error generating certificate PDF")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, services.PDFFilename(cert)))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, "application/pdf", data)
}
