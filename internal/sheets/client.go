package sheets

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	sheetsapi "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"github.com/cpd-labs/certificados-service/internal/config"
	"github.com/cpd-labs/certificados-service/internal/models"
)

// RowClient abstrae el acceso crudo a filas de una hoja remota. Las filas y
// columnas son 1-based e incluyen el header (fila 1).
type RowClient interface {
	// ReadRows lee todas las filas de la worksheet, header incluido
	ReadRows(ctx context.Context, spreadsheetID, worksheet string) ([][]string, error)
	// AppendRow agrega una fila al final de la worksheet
	AppendRow(ctx context.Context, spreadsheetID, worksheet string, row []string) error
	// UpdateCell escribe una celda puntual
	UpdateCell(ctx context.Context, spreadsheetID, worksheet string, row, col int, value string) error
	// DeleteRow elimina una fila completa
	DeleteRow(ctx context.Context, spreadsheetID, worksheet string, row int) error
}

// GoogleClient implementa RowClient sobre la API de Google Sheets
type GoogleClient struct {
	svc    *sheetsapi.Service
	logger *logrus.Logger
}

// NewGoogleClient crea una nueva instancia del cliente de Google Sheets.
// Acepta credenciales de service account por archivo o por JSON inline.
func NewGoogleClient(ctx context.Context, cfg *config.SheetsConfig, logger *logrus.Logger) (*GoogleClient, error) {
	opts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsScope)}
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	default:
		return nil, fmt.Errorf("credenciales de Google Sheets no configuradas")
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creando servicio de Google Sheets: %w", err)
	}

	logger.Info("Cliente de Google Sheets inicializado")
	return &GoogleClient{svc: svc, logger: logger}, nil
}

func (c *GoogleClient) ReadRows(ctx context.Context, spreadsheetID, worksheet string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, quoteSheet(worksheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: leyendo %s: %v", models.ErrStoreUnavailable, worksheet, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *GoogleClient) AppendRow(ctx context.Context, spreadsheetID, worksheet string, row []string) error {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	_, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, quoteSheet(worksheet), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: agregando fila en %s: %v", models.ErrStoreUnavailable, worksheet, err)
	}
	return nil
}

func (c *GoogleClient) UpdateCell(ctx context.Context, spreadsheetID, worksheet string, row, col int, value string) error {
	rangeA1 := fmt.Sprintf("%s!%s%d", quoteSheet(worksheet), columnLetter(col), row)
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{{value}}}

	_, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, rangeA1, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: actualizando %s: %v", models.ErrStoreUnavailable, rangeA1, err)
	}
	return nil
}

func (c *GoogleClient) DeleteRow(ctx context.Context, spreadsheetID, worksheet string, row int) error {
	sheetID, err := c.sheetID(ctx, spreadsheetID, worksheet)
	if err != nil {
		return err
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{
			{
				DeleteDimension: &sheetsapi.DeleteDimensionRequest{
					Range: &sheetsapi.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "ROWS",
						StartIndex: int64(row - 1),
						EndIndex:   int64(row),
					},
				},
			},
		},
	}

	if _, err := c.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: eliminando fila %d de %s: %v", models.ErrStoreUnavailable, row, worksheet, err)
	}
	return nil
}

// sheetID resuelve el ID numérico de la worksheet, requerido por BatchUpdate
func (c *GoogleClient) sheetID(ctx context.Context, spreadsheetID, worksheet string) (int64, error) {
	spreadsheet, err := c.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("%w: obteniendo metadata de %s: %v", models.ErrStoreUnavailable, spreadsheetID, err)
	}
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil && s.Properties.Title == worksheet {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("%w: worksheet %s no existe en %s", models.ErrStoreUnavailable, worksheet, spreadsheetID)
}

// quoteSheet protege nombres de worksheet con espacios en notación A1
func quoteSheet(worksheet string) string {
	return "'" + worksheet + "'"
}

// columnLetter convierte un índice de columna 1-based a letras A1 (A, B, ..., AA)
func columnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}
