package gcs

import (
	"os"
	"strings"

	"google.golang.org/api/option"
)

// ClientOptionsFromEnv resolves object-storage credentials. Inline JSON wins
// over a key file path; with neither set the client falls back to application
// default credentials.
func ClientOptionsFromEnv() []option.ClientOption {
	if creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")); creds != "" {
		if strings.HasPrefix(creds, "{") {
			return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
		}
		return []option.ClientOption{option.WithCredentialsFile(creds)}
	}
	if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
		return []option.ClientOption{option.WithCredentialsFile(path)}
	}
	return nil
}
