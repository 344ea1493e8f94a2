package sheets

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/config"
	"github.com/cpd-labs/certificados-service/internal/models"
)

// Collection describe una colección lógica: en qué spreadsheet y worksheet
// vive, si sus lecturas se cachean y qué header canónico usar si la hoja
// está vacía
type Collection struct {
	Name           string
	SpreadsheetID  string
	Worksheet      string
	Cacheable      bool
	DefaultHeaders []string
}

type cacheEntry struct {
	records   []Record
	headers   []string
	fetchedAt time.Time
}

// Store expone operaciones CRUD sobre las colecciones remotas, con cache TTL
// para las colecciones de referencia. Las escrituras invalidan el cache de la
// colección afectada; las colecciones transaccionales se leen siempre frescas.
type Store struct {
	client      RowClient
	collections map[string]Collection
	ttl         time.Duration
	logger      *logrus.Logger

	mu    sync.Mutex
	cache map[string]*cacheEntry
	now   func() time.Time
}

// NewStore crea una nueva instancia del store sobre la configuración de hojas
func NewStore(client RowClient, cfg *config.SheetsConfig, logger *logrus.Logger) *Store {
	collections := map[string]Collection{
		config.CollectionCertificados: {
			Name:           config.CollectionCertificados,
			SpreadsheetID:  cfg.CertificadosID,
			Worksheet:      cfg.WorksheetNames[config.CollectionCertificados],
			DefaultHeaders: []string{"CODIGO", "NOMBRES", "APELLIDOS", "DNI", "CURSO", "FECHA EMISION", "HORAS", "ESTADO"},
		},
		config.CollectionCertificadosQR: {
			Name:          config.CollectionCertificadosQR,
			SpreadsheetID: cfg.CertificadosID,
			Worksheet:     cfg.WorksheetNames[config.CollectionCertificadosQR],
			DefaultHeaders: []string{
				"CODIGO", "DNI DEL CLIENTE", "NOMBRE COMPLETO DEL CLIENTE",
				"CELULAR DEL CLIENTE", "CORREO DEL CLIENTE", "CURSO",
				"FECHA EMISION", "HORAS", "ESTADO", "PDF_URL",
				"NRO", "ESPECIALIDAD", "P. CERTIFICADO", "MENCIÓN",
				"F. INICIO", "F. TÉRMINO", "MODALIDAD", "MOTIVO ANULACION",
			},
		},
		config.CollectionCompras: {
			Name:          config.CollectionCompras,
			SpreadsheetID: cfg.CertificadosID,
			Worksheet:     cfg.WorksheetNames[config.CollectionCompras],
		},
		config.CollectionMenciones: {
			Name:          config.CollectionMenciones,
			SpreadsheetID: cfg.MencionesID,
			Worksheet:     cfg.WorksheetNames[config.CollectionMenciones],
			Cacheable:     true,
		},
		config.CollectionClientes: {
			Name:           config.CollectionClientes,
			SpreadsheetID:  cfg.CertificadosID,
			Worksheet:      cfg.WorksheetNames[config.CollectionClientes],
			Cacheable:      true,
			DefaultHeaders: []string{"DNI", "NOMBRE COMPLETO", "CORREO", "CELULAR"},
		},
	}

	return &Store{
		client:      client,
		collections: collections,
		ttl:         cfg.CacheTTL,
		logger:      logger,
		cache:       make(map[string]*cacheEntry),
		now:         time.Now,
	}
}

func (s *Store) collection(name string) (Collection, error) {
	col, ok := s.collections[name]
	if !ok {
		return Collection{}, fmt.Errorf("colección desconocida: %s", name)
	}
	return col, nil
}

// fetch lee la colección directamente del almacén remoto
func (s *Store) fetch(ctx context.Context, col Collection) ([]Record, []string, error) {
	rows, err := s.client.ReadRows(ctx, col.SpreadsheetID, col.Worksheet)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	headers := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(Record, len(headers))
		for i, header := range headers {
			if strings.TrimSpace(header) == "" {
				continue
			}
			if i < len(row) {
				record[header] = row[i]
			} else {
				record[header] = ""
			}
		}
		records = append(records, record)
	}
	return records, headers, nil
}

// ListAll retorna todos los records de la colección. Para colecciones
// cacheables sirve del cache mientras no venza el TTL, salvo que se pida
// forceRefresh; las demás van siempre al almacén remoto.
func (s *Store) ListAll(ctx context.Context, name string, forceRefresh bool) ([]Record, error) {
	col, err := s.collection(name)
	if err != nil {
		return nil, err
	}

	if col.Cacheable && !forceRefresh {
		s.mu.Lock()
		entry, ok := s.cache[name]
		if ok && s.now().Sub(entry.fetchedAt) < s.ttl {
			records := entry.records
			s.mu.Unlock()
			return records, nil
		}
		s.mu.Unlock()
	}

	records, headers, err := s.fetch(ctx, col)
	if err != nil {
		return nil, err
	}

	if col.Cacheable {
		s.mu.Lock()
		s.cache[name] = &cacheEntry{records: records, headers: headers, fetchedAt: s.now()}
		s.mu.Unlock()
	}
	return records, nil
}

// FindByKey busca el primer record cuyo campo keyField (canónico) coincide
// con keyValue, ignorando mayúsculas y espacios alrededor. Retorna el record
// y su número de fila en la hoja (1-based, header incluido), o (nil, 0, nil)
// si no existe.
func (s *Store) FindByKey(ctx context.Context, name, keyField, keyValue string) (Record, int, error) {
	records, err := s.ListAll(ctx, name, false)
	if err != nil {
		return nil, 0, err
	}

	want := strings.TrimSpace(keyValue)
	for i, record := range records {
		if strings.EqualFold(Resolve(record, keyField), want) {
			return record, i + 2, nil
		}
	}
	return nil, 0, nil
}

// Append agrega un record a la colección. Si la hoja no tiene header, escribe
// primero el header canónico de la colección. Los campos se alinean al header
// real de la hoja vía resolución de grafías; campos sin columna se descartan.
func (s *Store) Append(ctx context.Context, name string, fields map[string]string) error {
	col, err := s.collection(name)
	if err != nil {
		return err
	}

	_, headers, err := s.fetch(ctx, col)
	if err != nil {
		return err
	}

	if headersEmpty(headers) {
		headers = col.DefaultHeaders
		if len(headers) == 0 {
			headers = sortedKeys(fields)
		}
		if err := s.client.AppendRow(ctx, col.SpreadsheetID, col.Worksheet, headers); err != nil {
			return err
		}
		s.logger.WithField("collection", name).Info("Header canónico escrito en hoja vacía")
	}

	row := make([]string, len(headers))
	for i, header := range headers {
		row[i] = valueFor(fields, header)
	}
	if err := s.client.AppendRow(ctx, col.SpreadsheetID, col.Worksheet, row); err != nil {
		return err
	}

	s.Invalidate(name)
	return nil
}

// Update localiza la fila por keyField/keyValue y escribe los campos
// indicados celda a celda. Campos sin columna existente crean una columna
// nueva con la grafía preferida. Retorna ErrNotFound si la fila no existe.
func (s *Store) Update(ctx context.Context, name, keyField, keyValue string, fields map[string]string) error {
	col, err := s.collection(name)
	if err != nil {
		return err
	}

	records, headers, err := s.fetch(ctx, col)
	if err != nil {
		return err
	}

	rowIndex := findRow(records, keyField, keyValue)
	if rowIndex == 0 {
		return fmt.Errorf("%w: %s=%s en %s", models.ErrNotFound, keyField, keyValue, name)
	}

	if err := s.writeFields(ctx, col, headers, rowIndex, fields); err != nil {
		return err
	}

	s.Invalidate(name)
	return nil
}

// UpdateRow escribe los campos indicados en una fila localizada por número
// (1-based, header incluido), para colecciones que se manipulan por posición
func (s *Store) UpdateRow(ctx context.Context, name string, rowIndex int, fields map[string]string) error {
	col, err := s.collection(name)
	if err != nil {
		return err
	}

	headers, err := s.Headers(ctx, name)
	if err != nil {
		return err
	}

	if err := s.writeFields(ctx, col, headers, rowIndex, fields); err != nil {
		return err
	}

	s.Invalidate(name)
	return nil
}

// writeFields escribe los campos celda a celda, creando columnas nuevas con
// la grafía preferida cuando no existe una compatible
func (s *Store) writeFields(ctx context.Context, col Collection, headers []string, rowIndex int, fields map[string]string) error {
	for _, field := range sortedKeys(fields) {
		colIndex := columnIndex(headers, field)
		if colIndex == 0 {
			header := preferredHeader(field)
			colIndex = len(headers) + 1
			if err := s.client.UpdateCell(ctx, col.SpreadsheetID, col.Worksheet, 1, colIndex, header); err != nil {
				return err
			}
			headers = append(headers, header)
		}
		if err := s.client.UpdateCell(ctx, col.SpreadsheetID, col.Worksheet, rowIndex, colIndex, fields[field]); err != nil {
			return err
		}
	}
	return nil
}

// Delete elimina la fila localizada por keyField/keyValue. Retorna false sin
// error si la fila no existe.
func (s *Store) Delete(ctx context.Context, name, keyField, keyValue string) (bool, error) {
	col, err := s.collection(name)
	if err != nil {
		return false, err
	}

	records, _, err := s.fetch(ctx, col)
	if err != nil {
		return false, err
	}

	rowIndex := findRow(records, keyField, keyValue)
	if rowIndex == 0 {
		return false, nil
	}

	if err := s.client.DeleteRow(ctx, col.SpreadsheetID, col.Worksheet, rowIndex); err != nil {
		return false, err
	}

	s.Invalidate(name)
	return true, nil
}

// DeleteRowAt elimina una fila por número (1-based, header incluido)
func (s *Store) DeleteRowAt(ctx context.Context, name string, rowIndex int) error {
	col, err := s.collection(name)
	if err != nil {
		return err
	}
	if err := s.client.DeleteRow(ctx, col.SpreadsheetID, col.Worksheet, rowIndex); err != nil {
		return err
	}
	s.Invalidate(name)
	return nil
}

// Headers retorna el header real de la colección, leído fresco
func (s *Store) Headers(ctx context.Context, name string) ([]string, error) {
	col, err := s.collection(name)
	if err != nil {
		return nil, err
	}
	_, headers, err := s.fetch(ctx, col)
	return headers, err
}

// Invalidate descarta el cache de la colección
func (s *Store) Invalidate(name string) {
	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
}

// findRow retorna el número de fila (1-based, header incluido) del primer
// record que coincide, o 0 si ninguno
func findRow(records []Record, keyField, keyValue string) int {
	want := strings.TrimSpace(keyValue)
	for i, record := range records {
		if strings.EqualFold(Resolve(record, keyField), want) {
			return i + 2
		}
	}
	return 0
}

// columnIndex retorna el índice 1-based de la columna que corresponde al
// campo, o 0 si no hay columna compatible
func columnIndex(headers []string, field string) int {
	for i, header := range headers {
		if headerMatches(header, field) {
			return i + 1
		}
	}
	fieldCanonical, ok := CanonicalOf(field)
	if !ok {
		return 0
	}
	for i, header := range headers {
		if canonical, ok := CanonicalOf(header); ok && canonical == fieldCanonical {
			return i + 1
		}
	}
	return 0
}

func headersEmpty(headers []string) bool {
	for _, h := range headers {
		if strings.TrimSpace(h) != "" {
			return false
		}
	}
	return true
}

func sortedKeys(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
