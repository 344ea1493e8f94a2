package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/cpd-labs/certificados-service/internal/models"
)

// CreateCertificado emite un certificado nuevo (endpoint admin)
func (api *API) CreateCertificado(c *gin.Context) {
	var req models.CreateCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.bindError(c, err)
		return
	}

	cert, partial, err := api.certService.Create(c.Request.Context(), &req)
	if err != nil {
		api.respondError(c, err, "Error creating certificate")
		return
	}

	response := api.certService.PublicResponse(cert)
	if partial != nil {
		api.logger.WithError(partial).Warn("Certificate created with partial write")
		response.PartialWrite = fmt.Sprintf("certificado emitido, pero la hoja %s no pudo actualizarse", partial.Collection)
	}

	c.JSON(http.StatusCreated, response)
}

// ListCertificados lista todos los certificados emitidos (endpoint admin)
func (api *API) ListCertificados(c *gin.Context) {
	certs, err := api.certService.List(c.Request.Context())
	if err != nil {
		api.respondError(c, err, "Error listing certificates")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":        len(certs),
		"certificados": certs,
	})
}

// GetCertificado obtiene la vista completa de un certificado (endpoint admin)
func (api *API) GetCertificado(c *gin.Context) {
	cert, err := api.certService.GetByCode(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		api.respondError(c, err, "Error retrieving certificate")
		return
	}

	c.JSON(http.StatusOK, cert)
}

// UpdateCertificado actualiza campos de un certificado (endpoint admin)
func (api *API) UpdateCertificado(c *gin.Context) {
	var req models.UpdateCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.bindError(c, err)
		return
	}

	cert, err := api.certService.Update(c.Request.Context(), c.Param("codigo"), &req)
	if err != nil {
		api.respondError(c, err, "Error updating certificate")
		return
	}

	c.JSON(http.StatusOK, cert)
}

// AnularCertificado anula un certificado emitido (endpoint admin)
func (api *API) AnularCertificado(c *gin.Context) {
	var req models.AnularCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		api.bindError(c, err)
		return
	}

	cert, err := api.certService.Anular(c.Request.Context(), c.Param("codigo"), req.Motivo)
	if err != nil {
		api.respondError(c, err, "Error voiding certificate")
		return
	}

	c.JSON(http.StatusOK, cert)
}

// GetCertificadoQR entrega el código QR de verificación como PNG
func (api *API) GetCertificadoQR(c *gin.Context) {
	codigo := c.Param("codigo")

	cert, err := api.certService.GetByCode(c.Request.Context(), codigo)
	if err != nil {
		api.respondError(c, err, "Error retrieving certificate")
		return
	}

	png, err := qrcode.Encode(api.certService.VerifyURL(cert.Codigo), qrcode.Medium, 512)
	if err != nil {
		api.logger.WithError(err).Error("Error generating QR code")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error generating QR code"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="qr_%s.png"`, cert.Codigo))
	c.Data(http.StatusOK, "image/png", png)
}

// ListComprasPendientes lista las compras sin certificado asignado
func (api *API) ListComprasPendientes(c *gin.Context) {
	compras, err := api.compraService.ListPendientes(c.Request.Context())
	if err != nil {
		api.respondError(c, err, "Error listing pending purchases")
		return
	}

	c.JSON(http.StatusOK, models.CompraListResponse{
		Total:   len(compras),
		Compras: compras,
	})
}

// ProcesarCompra convierte una compra pendiente en certificado emitido
func (api *API) ProcesarCompra(c *gin.Context) {
	rowIndex, err := strconv.Atoi(c.Param("row"))
	if err != nil || rowIndex < 2 {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid row index", []models.ErrorDetail{
			{Field: "row", Issue: "Must be a sheet row number greater than 1"},
		}))
		return
	}

	var req models.ProcesarCompraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.bindError(c, err)
		return
	}

	response, err := api.compraService.Procesar(c.Request.Context(), rowIndex, req.MencionNro)
	if err != nil {
		api.respondError(c, err, "Error processing purchase")
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListMenciones lista el catálogo de menciones
func (api *API) ListMenciones(c *gin.Context) {
	forceRefresh := c.Query("refresh") == "true"

	menciones, err := api.mencionService.List(c.Request.Context(), forceRefresh)
	if err != nil {
		api.respondError(c, err, "Error listing menciones")
		return
	}

	c.JSON(http.StatusOK, models.MencionListResponse{
		Total:     len(menciones),
		Menciones: menciones,
	})
}

// GetMencion obtiene una mención por su número
func (api *API) GetMencion(c *gin.Context) {
	mencion, err := api.mencionService.GetByNro(c.Request.Context(), c.Param("nro"))
	if err != nil {
		api.respondError(c, err, "Error retrieving mencion")
		return
	}

	c.JSON(http.StatusOK, mencion)
}

// ListClientes lista los clientes registrados
func (api *API) ListClientes(c *gin.Context) {
	forceRefresh := c.Query("refresh") == "true"

	clientes, err := api.clienteService.List(c.Request.Context(), forceRefresh)
	if err != nil {
		api.respondError(c, err, "Error listing clients")
		return
	}

	c.JSON(http.StatusOK, models.ClienteListResponse{
		Total:    len(clientes),
		Clientes: clientes,
	})
}

// GetCliente obtiene un cliente por DNI
func (api *API) GetCliente(c *gin.Context) {
	cliente, err := api.clienteService.GetByDNI(c.Request.Context(), c.Param("dni"))
	if err != nil {
		api.respondError(c, err, "Error retrieving client")
		return
	}

	c.JSON(http.StatusOK, cliente)
}

// CreateCliente registra un cliente nuevo
func (api *API) CreateCliente(c *gin.Context) {
	var req models.CreateClienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.bindError(c, err)
		return
	}

	cliente, err := api.clienteService.Create(c.Request.Context(), &req)
	if err != nil {
		api.respondError(c, err, "Error creating client")
		return
	}

	c.JSON(http.StatusCreated, cliente)
}

// UpdateCliente actualiza los datos de un cliente
func (api *API) UpdateCliente(c *gin.Context) {
	var req models.UpdateClienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.bindError(c, err)
		return
	}

	cliente, err := api.clienteService.Update(c.Request.Context(), c.Param("dni"), &req)
	if err != nil {
		api.respondError(c, err, "Error updating client")
		return
	}

	c.JSON(http.StatusOK, cliente)
}

// DeleteCliente elimina un cliente por DNI
func (api *API) DeleteCliente(c *gin.Context) {
	deleted, err := api.clienteService.Delete(c.Request.Context(), c.Param("dni"))
	if err != nil {
		api.respondError(c, err, "Error deleting client")
		return
	}

	if !deleted {
		c.JSON(http.StatusNotFound, models.NewNotFoundError("Client not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Login autentica un usuario y entrega un token JWT
func (api *API) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.bindError(c, err)
		return
	}

	token, err := api.userService.Login(c.Request.Context(), &req)
	if err != nil {
		api.respondError(c, err, "Error during login")
		return
	}

	c.JSON(http.StatusOK, token)
}

// CreateUser registra un usuario del panel (solo admin)
func (api *API) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.bindError(c, err)
		return
	}

	user, err := api.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		api.respondError(c, err, "Error creating user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListUsers lista los usuarios activos del panel (solo admin)
func (api *API) ListUsers(c *gin.Context) {
	users, err := api.userService.ListUsers(c.Request.Context())
	if err != nil {
		api.respondError(c, err, "Error listing users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(users),
		"users": users,
	})
}
