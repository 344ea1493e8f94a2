package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/auth"
	"github.com/cpd-labs/certificados-service/internal/database"
	"github.com/cpd-labs/certificados-service/internal/models"
	"github.com/cpd-labs/certificados-service/internal/services"
)

// API maneja todos los endpoints de la API
type API struct {
	certService    *services.CertificateService
	compraService  *services.CompraService
	clienteService *services.ClienteService
	mencionService *services.MencionService
	userService    *services.UserService
	tokens         *auth.TokenManager
	redis          *database.Redis
	logger         *logrus.Logger
}

// NewAPI crea una nueva instancia de la API
func NewAPI(
	certService *services.CertificateService,
	compraService *services.CompraService,
	clienteService *services.ClienteService,
	mencionService *services.MencionService,
	userService *services.UserService,
	tokens *auth.TokenManager,
	redis *database.Redis,
	logger *logrus.Logger,
) *API {
	return &API{
		certService:    certService,
		compraService:  compraService,
		clienteService: clienteService,
		mencionService: mencionService,
		userService:    userService,
		tokens:         tokens,
		redis:          redis,
		logger:         logger,
	}
}

// respondError traduce los errores del dominio a respuestas HTTP
func (api *API) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.NewNotFoundError("Resource not found"))
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, models.NewConflictError("Resource already exists"))
	case errors.Is(err, models.ErrStoreUnavailable):
		api.logger.WithError(err).Error("Sheet store unavailable")
		c.JSON(http.StatusServiceUnavailable, models.NewUnavailableError("Data store temporarily unavailable"))
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.NewUnauthorizedError("Invalid credentials"))
	default:
		api.logger.WithError(err).Error(fallback)
		c.JSON(http.StatusInternalServerError, models.NewInternalError(fallback))
	}
}

// bindError responde un error de validación de request
func (api *API) bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
		{Field: "body", Issue: err.Error()},
	}))
}
