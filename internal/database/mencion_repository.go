package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/config"
	"github.com/cpd-labs/certificados-service/internal/models"
	"github.com/cpd-labs/certificados-service/internal/sheets"
)

// MencionRepository maneja las lecturas del catálogo de menciones. El
// catálogo cambia poco, así que se sirve del cache del store.
type MencionRepository struct {
	store  *sheets.Store
	logger *logrus.Logger
}

// NewMencionRepository crea una nueva instancia del repositorio
func NewMencionRepository(store *sheets.Store, logger *logrus.Logger) *MencionRepository {
	return &MencionRepository{
		store:  store,
		logger: logger,
	}
}

func mencionFromRecord(record sheets.Record) models.Mencion {
	return models.Mencion{
		Nro:          sheets.Resolve(record, "nro"),
		Especialidad: sheets.Resolve(record, "especialidad"),
		PCertificado: sheets.Resolve(record, "p_certificado"),
		Mencion:      sheets.Resolve(record, "mencion"),
		Horas:        sheets.Resolve(record, "horas"),
		FechaInicio:  sheets.Resolve(record, "f_inicio"),
		FechaTermino: sheets.Resolve(record, "f_termino"),
		FechaEmision: sheets.Resolve(record, "fecha_emision"),
	}
}

// List retorna todas las menciones del catálogo
func (r *MencionRepository) List(ctx context.Context, forceRefresh bool) ([]models.Mencion, error) {
	records, err := r.store.ListAll(ctx, config.CollectionMenciones, forceRefresh)
	if err != nil {
		return nil, err
	}

	menciones := make([]models.Mencion, 0, len(records))
	for _, record := range records {
		menciones = append(menciones, mencionFromRecord(record))
	}
	return menciones, nil
}

// GetByNro busca una mención por su NRO
func (r *MencionRepository) GetByNro(ctx context.Context, nro string) (*models.Mencion, error) {
	menciones, err := r.List(ctx, false)
	if err != nil {
		return nil, err
	}

	want := strings.TrimSpace(nro)
	for i := range menciones {
		if strings.TrimSpace(menciones[i].Nro) == want {
			return &menciones[i], nil
		}
	}
	return nil, fmt.Errorf("%w: mención con NRO %s", models.ErrNotFound, nro)
}

// GetByText busca una mención por su texto completo
func (r *MencionRepository) GetByText(ctx context.Context, texto string) (*models.Mencion, error) {
	menciones, err := r.List(ctx, false)
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(strings.TrimSpace(texto))
	for i := range menciones {
		if strings.ToLower(strings.TrimSpace(menciones[i].Mencion)) == want {
			return &menciones[i], nil
		}
	}
	return nil, fmt.Errorf("%w: mención %q", models.ErrNotFound, texto)
}
