package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/database"
	"github.com/cpd-labs/certificados-service/internal/models"
)

// MencionService expone el catálogo de menciones
type MencionService struct {
	mencionRepo *database.MencionRepository
	logger      *logrus.Logger
}

// NewMencionService crea una nueva instancia del servicio
func NewMencionService(mencionRepo *database.MencionRepository, logger *logrus.Logger) *MencionService {
	return &MencionService{
		mencionRepo: mencionRepo,
		logger:      logger,
	}
}

// List retorna todas las menciones del catálogo
func (s *MencionService) List(ctx context.Context, forceRefresh bool) ([]models.Mencion, error) {
	return s.mencionRepo.List(ctx, forceRefresh)
}

// GetByNro busca una mención por NRO
func (s *MencionService) GetByNro(ctx context.Context, nro string) (*models.Mencion, error) {
	return s.mencionRepo.GetByNro(ctx, nro)
}
