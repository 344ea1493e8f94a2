package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/config"
	"github.com/cpd-labs/certificados-service/internal/models"
	"github.com/cpd-labs/certificados-service/internal/sheets"
)

// ClienteRepository maneja las operaciones sobre la hoja CLIENTES. Los DNI se
// comparan normalizados porque en la hoja aparecen con guiones, puntos o
// espacios según quién los cargó.
type ClienteRepository struct {
	store  *sheets.Store
	logger *logrus.Logger
}

// NewClienteRepository crea una nueva instancia del repositorio
func NewClienteRepository(store *sheets.Store, logger *logrus.Logger) *ClienteRepository {
	return &ClienteRepository{
		store:  store,
		logger: logger,
	}
}

func clienteFromRecord(record sheets.Record) models.Cliente {
	nombre := sheets.Resolve(record, "nombre_completo")
	if nombre == "" {
		nombre = sheets.Resolve(record, "nombres")
	}
	return models.Cliente{
		DNI:            sheets.Resolve(record, "dni"),
		NombreCompleto: nombre,
		Celular:        sheets.Resolve(record, "celular"),
		Correo:         sheets.Resolve(record, "correo"),
	}
}

// List retorna todos los clientes
func (r *ClienteRepository) List(ctx context.Context, forceRefresh bool) ([]models.Cliente, error) {
	records, err := r.store.ListAll(ctx, config.CollectionClientes, forceRefresh)
	if err != nil {
		return nil, err
	}

	clientes := make([]models.Cliente, 0, len(records))
	for _, record := range records {
		clientes = append(clientes, clienteFromRecord(record))
	}
	return clientes, nil
}

// findRowByDNI localiza la fila del cliente con lectura fresca, para que el
// número de fila sea confiable al escribir. Retorna 0 si no existe.
func (r *ClienteRepository) findRowByDNI(ctx context.Context, dni string) (sheets.Record, int, error) {
	records, err := r.store.ListAll(ctx, config.CollectionClientes, true)
	if err != nil {
		return nil, 0, err
	}

	want := models.NormalizeDNI(dni)
	for i, record := range records {
		if models.NormalizeDNI(sheets.Resolve(record, "dni")) == want {
			return record, i + 2, nil
		}
	}
	return nil, 0, nil
}

// GetByDNI busca un cliente por DNI normalizado
func (r *ClienteRepository) GetByDNI(ctx context.Context, dni string) (*models.Cliente, error) {
	records, err := r.store.ListAll(ctx, config.CollectionClientes, false)
	if err != nil {
		return nil, err
	}

	want := models.NormalizeDNI(dni)
	for _, record := range records {
		if models.NormalizeDNI(sheets.Resolve(record, "dni")) == want {
			cliente := clienteFromRecord(record)
			return &cliente, nil
		}
	}
	return nil, fmt.Errorf("%w: cliente con DNI %s", models.ErrNotFound, dni)
}

// Create registra un nuevo cliente. El DNI no puede repetirse.
func (r *ClienteRepository) Create(ctx context.Context, cliente *models.Cliente) error {
	if cliente.DNI != "" {
		_, row, err := r.findRowByDNI(ctx, cliente.DNI)
		if err != nil {
			return err
		}
		if row != 0 {
			return fmt.Errorf("%w: el cliente con DNI %s ya existe", models.ErrConflict, cliente.DNI)
		}
	}

	return r.store.Append(ctx, config.CollectionClientes, map[string]string{
		"dni":             cliente.DNI,
		"nombre_completo": cliente.NombreCompleto,
		"celular":         cliente.Celular,
		"correo":          cliente.Correo,
	})
}

// Update escribe los campos no vacíos del cliente localizado por DNI
func (r *ClienteRepository) Update(ctx context.Context, dni string, fields map[string]string) (*models.Cliente, error) {
	_, row, err := r.findRowByDNI(ctx, dni)
	if err != nil {
		return nil, err
	}
	if row == 0 {
		return nil, fmt.Errorf("%w: cliente con DNI %s", models.ErrNotFound, dni)
	}

	if err := r.store.UpdateRow(ctx, config.CollectionClientes, row, fields); err != nil {
		return nil, err
	}
	return r.GetByDNI(ctx, dni)
}

// Delete elimina la fila del cliente. Retorna false sin error si no existe.
func (r *ClienteRepository) Delete(ctx context.Context, dni string) (bool, error) {
	_, row, err := r.findRowByDNI(ctx, dni)
	if err != nil {
		return false, err
	}
	if row == 0 {
		return false, nil
	}

	if err := r.store.DeleteRowAt(ctx, config.CollectionClientes, row); err != nil {
		return false, err
	}
	return true, nil
}
