package docai

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/trainforge/trainforge-backend/internal/platform/envutil"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// SiemensOptionsFromEnv reads the Siemens ingestion API settings. Their
// gateway wants the key in X-Api-Key rather than an Authorization header.
func SiemensOptionsFromEnv() Options {
	return Options{
		BaseURL:      strings.TrimSpace(os.Getenv("SIEMENS_DOC_BASE_URL")),
		APIKey:       strings.TrimSpace(os.Getenv("SIEMENS_DOC_API_KEY")),
		APIKeyHeader: "X-Api-Key",
		Timeout:      envutil.Seconds("DOC_CLIENT_TIMEOUT_SECONDS", 30),
		MaxRetries:   envutil.Int("DOC_CLIENT_MAX_RETRIES", 2),
	}
}

func NewSiemensClient(log *logger.Logger) (DocumentClient, error) {
	return NewSiemensClientWithOptions(log, SiemensOptionsFromEnv())
}

func NewSiemensClientWithOptions(log *logger.Logger, opts Options) (DocumentClient, error) {
	if strings.TrimSpace(opts.APIKeyHeader) == "" {
		opts.APIKeyHeader = "X-Api-Key"
	}
	core, err := newHTTPCore(ProviderSiemens, log, opts)
	if err != nil {
		return nil, err
	}
	return &siemensClient{core: core}, nil
}

type siemensClient struct {
	core *httpCore
}

func (c *siemensClient) Provider() string { return ProviderSiemens }

type siemensIngestRequest struct {
	SourceURL string `json:"source_url"`
	Reference string `json:"reference"`
	Format    string `json:"format,omitempty"`
}

type siemensIngestResponse struct {
	ID     string `json:"id"`
	State  string `json:"state"`
	Detail string `json:"detail,omitempty"`
}

func (c *siemensClient) SubmitDocument(ctx context.Context, assetID uint, docURL string, filetype string) (string, error) {
	docURL = strings.TrimSpace(docURL)
	if assetID == 0 {
		return "", fmt.Errorf("siemens: asset id required")
	}
	if docURL == "" {
		return "", fmt.Errorf("siemens: document URL required")
	}

	out, err := postJSON[siemensIngestResponse](c.core, ctx, "/ingestions", siemensIngestRequest{
		SourceURL: docURL,
		Reference: fmt.Sprintf("asset-%d", assetID),
		Format:    strings.TrimSpace(filetype),
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.ID) == "" {
		return "", fmt.Errorf("siemens: empty ingestion id in response")
	}
	return out.ID, nil
}

func (c *siemensClient) GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, fmt.Errorf("siemens: ingestion id required")
	}

	out, err := getJSON[siemensIngestResponse](c.core, ctx, "/ingestions/"+url.PathEscape(jobID))
	if err != nil {
		return nil, err
	}

	st := siemensStatus(out.State)
	js := &JobStatus{Status: st}
	if st == StatusFailed {
		js.Error = out.Detail
	}
	return js, nil
}

func siemensStatus(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCEEDED":
		return StatusCompleted
	case "FAILED", "REJECTED":
		return StatusFailed
	default:
		// RECEIVED, QUEUED, RUNNING, and anything new stay in flight.
		return StatusProcessing
	}
}
