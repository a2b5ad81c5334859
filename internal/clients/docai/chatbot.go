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

// ChatbotOptionsFromEnv reads the chatbot document API settings. The key is
// sent as a bearer token.
func ChatbotOptionsFromEnv() Options {
	return Options{
		BaseURL:    strings.TrimSpace(os.Getenv("CHATBOT_DOC_BASE_URL")),
		APIKey:     strings.TrimSpace(os.Getenv("CHATBOT_DOC_API_KEY")),
		Timeout:    envutil.Seconds("DOC_CLIENT_TIMEOUT_SECONDS", 30),
		MaxRetries: envutil.Int("DOC_CLIENT_MAX_RETRIES", 2),
	}
}

func NewChatbotClient(log *logger.Logger) (DocumentClient, error) {
	return NewChatbotClientWithOptions(log, ChatbotOptionsFromEnv())
}

func NewChatbotClientWithOptions(log *logger.Logger, opts Options) (DocumentClient, error) {
	core, err := newHTTPCore(ProviderChatbot, log, opts)
	if err != nil {
		return nil, err
	}
	return &chatbotClient{core: core}, nil
}

type chatbotClient struct {
	core *httpCore
}

func (c *chatbotClient) Provider() string { return ProviderChatbot }

type chatbotSubmitRequest struct {
	AssetID     uint   `json:"asset_id"`
	DocumentURL string `json:"document_url"`
	FileType    string `json:"file_type,omitempty"`
}

type chatbotSubmitResponse struct {
	JobID string `json:"job_id"`
}

type chatbotJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (c *chatbotClient) SubmitDocument(ctx context.Context, assetID uint, docURL string, filetype string) (string, error) {
	docURL = strings.TrimSpace(docURL)
	if assetID == 0 {
		return "", fmt.Errorf("chatbot: asset id required")
	}
	if docURL == "" {
		return "", fmt.Errorf("chatbot: document URL required")
	}

	out, err := postJSON[chatbotSubmitResponse](c.core, ctx, "/api/v1/documents", chatbotSubmitRequest{
		AssetID:     assetID,
		DocumentURL: docURL,
		FileType:    strings.TrimSpace(filetype),
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.JobID) == "" {
		return "", fmt.Errorf("chatbot: empty job id in response")
	}
	return out.JobID, nil
}

func (c *chatbotClient) GetJobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, fmt.Errorf("chatbot: job id required")
	}

	out, err := getJSON[chatbotJobResponse](c.core, ctx, "/api/v1/documents/jobs/"+url.PathEscape(jobID))
	if err != nil {
		return nil, err
	}
	return &JobStatus{Status: chatbotStatus(out.Status), Error: out.Error}, nil
}

// States we do not recognize stay in flight; a later poll sees the terminal
// state once the provider reports one we know.
func chatbotStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "done", "completed", "succeeded":
		return StatusCompleted
	case "error", "failed":
		return StatusFailed
	default:
		return StatusProcessing
	}
}
