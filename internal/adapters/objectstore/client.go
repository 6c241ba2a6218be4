package objectstore_client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/port"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	BaseURL    string // адрес хостинга, API хранилища - <BaseURL>/storage/v1
	ServiceKey string
	Bucket     string // property-images
	Timeout    time.Duration
}

// StorageClient загружает объекты в публичный бакет хранилища.
type StorageClient struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

func NewStorageClient(cfg Config) (*StorageClient, error) {
	if cfg.BaseURL == "" || cfg.ServiceKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("storage base URL, service key and bucket are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &StorageClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.Bucket,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func escapePath(objectPath string) string {
	parts := strings.Split(strings.Trim(objectPath, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// PublicURL - адрес объекта в публичном бакете
func (c *StorageClient) PublicURL(objectPath string) string {
	return c.baseURL + "/storage/v1/object/public/" + c.bucket + "/" + escapePath(objectPath)
}

// Upload реализует ImageStoragePort. Существующий объект не перезаписывается.
func (c *StorageClient) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "StorageClient",
		"method":      "Upload",
		"bucket":      c.bucket,
		"object_path": objectPath,
	})

	uploadURL := c.baseURL + "/storage/v1/object/" + c.bucket + "/" + escapePath(objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "max-age=3600")
	req.Header.Set("x-upsert", "false")
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		clientLogger.Error("Upload request failed", err, nil)
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("storage returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		clientLogger.Error("Received non-OK response from storage", err, port.Fields{"status_code": resp.StatusCode})
		return "", err
	}

	publicURL := c.PublicURL(objectPath)
	clientLogger.Info("Object uploaded", port.Fields{"size": len(data)})
	return publicURL, nil
}
