package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cpd-labs/certificados-service/internal/config"
)

// LocalStorage guarda los PDFs en el filesystem del servidor
type LocalStorage struct {
	path    string
	baseURL string
	logger  *logrus.Logger
}

// NewLocalStorage crea una nueva instancia del almacenamiento local
func NewLocalStorage(cfg *config.StorageConfig, serverBaseURL string, logger *logrus.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("error creando directorio de almacenamiento %s: %w", cfg.Path, err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = strings.TrimSuffix(serverBaseURL, "/") + "/uploads/certificados"
	}

	return &LocalStorage{
		path:    cfg.Path,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}, nil
}

// SavePDF escribe el PDF en disco bajo {codigo}.pdf
func (s *LocalStorage) SavePDF(_ context.Context, codigo string, data []byte) (*SavedFile, error) {
	filename := codigo + ".pdf"
	path := filepath.Join(s.path, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("error guardando PDF en %s: %w", path, err)
	}

	s.logger.WithFields(logrus.Fields{
		"codigo": codigo,
		"path":   path,
	}).Info("PDF guardado en almacenamiento local")

	return &SavedFile{
		Path: path,
		URL:  s.baseURL + "/" + filename,
	}, nil
}

// DeletePDF elimina el PDF indicado por ruta o por URL pública
func (s *LocalStorage) DeletePDF(_ context.Context, pathOrURL string) (bool, error) {
	path := pathOrURL
	if strings.HasPrefix(pathOrURL, "http") {
		idx := strings.LastIndex(pathOrURL, "/")
		path = filepath.Join(s.path, pathOrURL[idx+1:])
	}

	err := os.Remove(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error eliminando PDF %s: %w", path, err)
	}
	return true, nil
}
