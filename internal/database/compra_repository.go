package database

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/config"
	"github.com/cpd-labs/certificados-service/internal/models"
	"github.com/cpd-labs/certificados-service/internal/sheets"
)

// CompraRepository maneja la hoja de compras. Las compras se identifican por
// posición de fila porque la hoja no tiene clave propia hasta que se les
// asigna un código.
type CompraRepository struct {
	store  *sheets.Store
	logger *logrus.Logger
}

// NewCompraRepository crea una nueva instancia del repositorio
func NewCompraRepository(store *sheets.Store, logger *logrus.Logger) *CompraRepository {
	return &CompraRepository{
		store:  store,
		logger: logger,
	}
}

func compraFromRecord(record sheets.Record, rowIndex int) models.Compra {
	return models.Compra{
		RowIndex:     rowIndex,
		Codigo:       sheets.Resolve(record, "codigo"),
		Nombres:      sheets.Resolve(record, "nombres"),
		Apellidos:    sheets.Resolve(record, "apellidos"),
		DNI:          sheets.Resolve(record, "dni"),
		Curso:        sheets.Resolve(record, "curso"),
		FechaEmision: sheets.Resolve(record, "fecha_emision"),
		Horas:        sheets.Resolve(record, "horas"),
		Estado:       sheets.Resolve(record, "estado"),
	}
}

// ListPendientes retorna las compras sin código asignado, siempre con
// lectura fresca para que los números de fila sean confiables
func (r *CompraRepository) ListPendientes(ctx context.Context) ([]models.Compra, error) {
	records, err := r.store.ListAll(ctx, config.CollectionCompras, true)
	if err != nil {
		return nil, err
	}

	pendientes := make([]models.Compra, 0)
	for i, record := range records {
		if sheets.Resolve(record, "codigo") == "" {
			pendientes = append(pendientes, compraFromRecord(record, i+2))
		}
	}
	return pendientes, nil
}

// MarkProcesada escribe el código generado en la fila de la compra y la
// marca como procesada con el timestamp actual
func (r *CompraRepository) MarkProcesada(ctx context.Context, rowIndex int, codigo string) error {
	return r.store.UpdateRow(ctx, config.CollectionCompras, rowIndex, map[string]string{
		"codigo":          codigo,
		"estado":          models.EstadoProcesado,
		"fecha_procesado": time.Now().Format("2006-01-02 15:04:05"),
	})
}
