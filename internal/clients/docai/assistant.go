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

// AssistantOptionsFromEnv reads the assistant analysis API settings. The key
// is sent as a bearer token.
func AssistantOptionsFromEnv() Options {
	return Options{
		BaseURL:    strings.TrimSpace(os.Getenv("ASSISTANT_DOC_BASE_URL")),
		APIKey:     strings.TrimSpace(os.Getenv("ASSISTANT_DOC_API_KEY")),
		Timeout:    envutil.Seconds("DOC_CLIENT_TIMEOUT_SECONDS", 30),
		MaxRetries: envutil.Int("DOC_CLIENT_MAX_RETRIES", 2),
	}
}

func NewAssistantClient(log *logger.Logger) (DocumentClient, error) {
	return NewAssistantClientWithOptions(log, AssistantOptionsFromEnv())
}

func NewAssistantClientWithOptions(log *logger.Logger, opts Options) (DocumentClient, error) {
	core, err := newHTTPCore(ProviderAssistant, log, opts)
	if err != nil {
		return nil, err
	}
	return &assistantClient{core: core}, nil
}

type assistantClient struct {
	core *httpCore
}

func (c *assistantClient) Provider() string { return ProviderAssistant }

type assistantDocument struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

type assistantSubmitRequest struct {
	Document        assistantDocument `json:"document"`
	ClientReference string            `json:"client_reference"`
}

type assistantAnalysis struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason,omitempty"`
}

type assistantAnalysisEnvelope struct {
	Analysis assistantAnalysis `json:"analysis"`
}

func (c *assistantClient) SubmitDocument(ctx context.Context, assetID uint, docURL string, filetype string) (string, error) {
	docURL = strings.TrimSpace(docURL)
	if assetID == 0 {
		return "", fmt.Errorf("assistant: asset id required")
	}
	if docURL == "" {
		return "", fmt.Errorf("assistant: document URL required")
	}

	out, err := postJSON[assistantAnalysisEnvelope](c.core, ctx, "/v2/analyses", assistantSubmitRequest{
		Document: assistantDocument{
			URL:  docURL,
			Type: strings.TrimSpace(filetype),
		},
		ClientReference: fmt.Sprintf("asset-%d", assetID),
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Analysis.ID) == "" {
		return "", fmt.Errorf("assistant: empty analysis id in response")
	}
	return out.Analysis.ID, nil
}

func (c *assistantClient) GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, fmt.Errorf("assistant: analysis id required")
	}

	out, err := getJSON[assistantAnalysisEnvelope](c.core, ctx, "/v2/analyses/"+url.PathEscape(jobID))
	if err != nil {
		return nil, err
	}

	st := assistantStatus(out.Analysis.Status)
	js := &JobStatus{Status: st}
	if st == StatusFailed {
		js.Error = out.Analysis.FailureReason
	}
	return js, nil
}

func assistantStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "complete", "completed":
		return StatusCompleted
	case "failed", "canceled", "cancelled":
		return StatusFailed
	default:
		// pending, running, and anything new stay in flight.
		return StatusProcessing
	}
}
