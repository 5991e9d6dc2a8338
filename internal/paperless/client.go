package paperless

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"scanpi/internal/config"
	"scanpi/internal/logging"
	"scanpi/internal/services"
)

// Client uploads finished documents to a Paperless instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a Client from the [paperless] config section. Returns
// nil when no base URL is configured.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	if !cfg.PaperlessEnabled() {
		return nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		baseURL: cfg.Paperless.BaseURL,
		apiKey:  cfg.Paperless.APIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Paperless.Timeout) * time.Second,
		},
		logger: logger,
	}
}

// Upload posts a document to Paperless's consumption endpoint. Failures
// surface as upload errors, which the workflow reports without failing the
// session.
func (c *Client) Upload(ctx context.Context, filePath, title string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return services.Wrap(services.ErrUpload, "uploading", "open document", filePath, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if title != "" {
		if err := writer.WriteField("title", title); err != nil {
			return services.Wrap(services.ErrUpload, "uploading", "encode title", title, err)
		}
	}
	part, err := writer.CreateFormFile("document", filepath.Base(filePath))
	if err != nil {
		return services.Wrap(services.ErrUpload, "uploading", "encode document", filePath, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return services.Wrap(services.ErrUpload, "uploading", "read document", filePath, err)
	}
	if err := writer.Close(); err != nil {
		return services.Wrap(services.ErrUpload, "uploading", "finalize form", filePath, err)
	}

	endpoint := c.baseURL + "/api/documents/post_document/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return services.Wrap(services.ErrUpload, "uploading", "build request", endpoint, err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debug("uploading document",
		logging.String("endpoint", endpoint),
		logging.String("title", title),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrUpload, "uploading", "post", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := fmt.Sprintf("%s returned %s", endpoint, resp.Status)
		if snippet := readSnippet(resp.Body); snippet != "" {
			detail += ": " + snippet
		}
		return services.Wrap(services.ErrUpload, "uploading", "post", detail, nil)
	}

	c.logger.Info("document uploaded", logging.String("title", title))
	return nil
}

// TitleFromFilename turns an output file name into a Paperless title:
// extension stripped, separators spaced, words title-cased.
func TitleFromFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return ""
	}
	return cases.Title(language.English).String(base)
}

func readSnippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 200))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
