package storage

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/config"
)

// SavedFile describe un PDF guardado
type SavedFile struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Service abstrae el almacenamiento de los PDFs generados. Los archivos se
// guardan bajo una ruta determinista por código, así reemitir un certificado
// reemplaza el archivo en lugar de acumular copias.
type Service interface {
	SavePDF(ctx context.Context, codigo string, data []byte) (*SavedFile, error)
	DeletePDF(ctx context.Context, pathOrURL string) (bool, error)
}

// New crea el servicio de almacenamiento según la configuración
func New(cfg *config.StorageConfig, serverBaseURL string, logger *logrus.Logger) (Service, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg, serverBaseURL, logger)
	case "s3":
		return NewS3Storage(cfg, logger)
	default:
		return nil, fmt.Errorf("tipo de almacenamiento no soportado: %s", cfg.Type)
	}
}
