package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/trainforge/trainforge-backend/internal/clients/docai"
	"github.com/trainforge/trainforge-backend/internal/clients/redis"
	"github.com/trainforge/trainforge-backend/internal/platform/gcs"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type Clients struct {
	Bucket      gcs.BucketService
	DocRegistry *docai.Registry
	StatusBus   redis.StatusBus
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis status bus
	var bus redis.StatusBus
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		b, err := redis.NewStatusBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis status bus: %w", err)
		}
		bus = b
	} else {
		log.Warn("REDIS_ADDR not set, job status events disabled")
		bus = redis.NewNoopStatusBus()
	}

	// Object storage
	bucket, err := gcs.NewBucketService(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init bucket client: %w", err)
	}

	// Document AI providers; only the ones with a configured base URL join
	// the registry.
	routing, err := docai.LoadRoutingConfig()
	if err != nil {
		return Clients{}, fmt.Errorf("load document provider routing: %w", err)
	}
	var docClients []docai.DocumentClient
	if strings.TrimSpace(os.Getenv("CHATBOT_DOC_BASE_URL")) != "" {
		c, err := docai.NewChatbotClient(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init chatbot doc client: %w", err)
		}
		docClients = append(docClients, c)
	}
	if strings.TrimSpace(os.Getenv("SIEMENS_DOC_BASE_URL")) != "" {
		c, err := docai.NewSiemensClient(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init siemens doc client: %w", err)
		}
		docClients = append(docClients, c)
	}
	if strings.TrimSpace(os.Getenv("ASSISTANT_DOC_BASE_URL")) != "" {
		c, err := docai.NewAssistantClient(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init assistant doc client: %w", err)
		}
		docClients = append(docClients, c)
	}
	registry := docai.NewRegistry(routing, docClients...)
	if len(docClients) == 0 {
		log.Warn("no document providers configured; document submissions will fail")
	} else {
		log.Info("Document providers wired", "providers", registry.Providers())
	}

	return Clients{
		Bucket:      bucket,
		DocRegistry: registry,
		StatusBus:   bus,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.StatusBus != nil {
		_ = c.StatusBus.Close()
	}
}
