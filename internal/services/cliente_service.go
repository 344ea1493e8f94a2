package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/database"
	"github.com/cpd-labs/certificados-service/internal/models"
)

// ClienteService maneja el padrón de clientes
type ClienteService struct {
	clienteRepo *database.ClienteRepository
	logger      *logrus.Logger
}

// NewClienteService crea una nueva instancia del servicio
func NewClienteService(clienteRepo *database.ClienteRepository, logger *logrus.Logger) *ClienteService {
	return &ClienteService{
		clienteRepo: clienteRepo,
		logger:      logger,
	}
}

// List retorna todos los clientes
func (s *ClienteService) List(ctx context.Context, forceRefresh bool) ([]models.Cliente, error) {
	return s.clienteRepo.List(ctx, forceRefresh)
}

// GetByDNI busca un cliente por DNI
func (s *ClienteService) GetByDNI(ctx context.Context, dni string) (*models.Cliente, error) {
	return s.clienteRepo.GetByDNI(ctx, dni)
}

// Create registra un nuevo cliente
func (s *ClienteService) Create(ctx context.Context, req *models.CreateClienteRequest) (*models.Cliente, error) {
	cliente := &models.Cliente{
		DNI:            strings.TrimSpace(req.DNI),
		NombreCompleto: strings.TrimSpace(req.NombreCompleto),
		Celular:        strings.TrimSpace(req.Telefono),
		Correo:         strings.TrimSpace(req.Correo),
	}

	if err := s.clienteRepo.Create(ctx, cliente); err != nil {
		return nil, err
	}

	s.logger.WithField("dni", cliente.DNI).Info("Cliente registrado")
	return cliente, nil
}

// Update actualiza los campos no vacíos de un cliente
func (s *ClienteService) Update(ctx context.Context, dni string, req *models.UpdateClienteRequest) (*models.Cliente, error) {
	fields := make(map[string]string)
	if strings.TrimSpace(req.NombreCompleto) != "" {
		fields["nombre_completo"] = strings.TrimSpace(req.NombreCompleto)
	}
	if strings.TrimSpace(req.Correo) != "" {
		fields["correo"] = strings.TrimSpace(req.Correo)
	}
	if strings.TrimSpace(req.Telefono) != "" {
		fields["celular"] = strings.TrimSpace(req.Telefono)
	}

	if len(fields) == 0 {
		return s.clienteRepo.GetByDNI(ctx, dni)
	}
	return s.clienteRepo.Update(ctx, dni, fields)
}

// Delete elimina un cliente. Retorna false sin error si no existe.
func (s *ClienteService) Delete(ctx context.Context, dni string) (bool, error) {
	return s.clienteRepo.Delete(ctx, dni)
}
