package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// revalidator tells the Next.js frontend to rebuild pages after content
// changes. Calls are fire-and-forget; failures are only logged.
type revalidator struct {
	url    string
	secret string
	client *http.Client
	log    *zap.Logger
	wg     sync.WaitGroup
}

func newRevalidator(url, secret string, log *zap.Logger) *revalidator {
	return &revalidator{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log.Named("revalidate"),
	}
}

func (rv *revalidator) trigger(resource string) {
	if rv == nil || rv.url == "" {
		return
	}
	rv.wg.Add(1)
	go func() {
		defer rv.wg.Done()
		rv.post(context.Background(), resource)
	}()
}

func (rv *revalidator) post(ctx context.Context, resource string) {
	payload, _ := json.Marshal(map[string]string{
		"secret":   rv.secret,
		"resource": resource,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rv.url, bytes.NewReader(payload))
	if err != nil {
		rv.log.Error("Building revalidation request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := rv.client.Do(req)
	if err != nil {
		rv.log.Warn("Error triggering revalidation", zap.String("resource", resource), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		rv.log.Warn("Revalidation failed", zap.String("resource", resource), zap.Int("status", resp.StatusCode))
		return
	}
	rv.log.Debug("Revalidation triggered", zap.String("resource", resource))
}

// wait blocks until in-flight notifications finish.
func (rv *revalidator) wait() {
	if rv == nil {
		return
	}
	rv.wg.Wait()
}
