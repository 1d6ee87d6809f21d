// Package media relays uploaded images to the remote media host and hands
// back their public URLs. The blog never stores image bytes itself.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/inklet-app/inklet/backend/internal/common/logger"
	"github.com/inklet-app/inklet/backend/internal/observability/metrics"
)

type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Service interface {
	// Upload posts the image to the media host and returns its public URL.
	Upload(ctx context.Context, up Upload) (string, error)

	// Delete removes a previously uploaded asset. Best effort; used to
	// compensate when the database write fails after a successful upload.
	Delete(ctx context.Context, url string) error
}

type relayService struct {
	uploadURL string
	deleteURL string
	apiKey    string
	client    *http.Client
	log       *logger.Logger
}

// NewRelayService builds the relay. The timeout mirrors the media host's own
// upload window; there is no retry, a failed upload fails the enclosing
// mutation.
func NewRelayService(uploadURL, deleteURL, apiKey string, timeout time.Duration, log *logger.Logger) Service {
	return &relayService{
		uploadURL: uploadURL,
		deleteURL: deleteURL,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: timeout},
		log:       log,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

func (s *relayService) Upload(ctx context.Context, up Upload) (string, error) {
	start := time.Now()

	url, err := s.upload(ctx, up)
	elapsed := time.Since(start)
	metrics.MediaUploadDurationSeconds.Observe(elapsed.Seconds())

	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues("failure").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"filename": up.Filename,
			"size":     len(up.Data),
			"action":   "media_upload_failed",
		}).Errorf("media upload failed: %v", err)
		return "", err
	}

	metrics.MediaUploadsTotal.WithLabelValues("success").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"filename": up.Filename,
		"size":     len(up.Data),
		"elapsed":  elapsed.Round(time.Millisecond),
		"action":   "media_upload_success",
	}).Info("media upload success")

	return url, nil
}

func (s *relayService) upload(ctx context.Context, up Upload) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", up.Filename)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(up.Data); err != nil {
		return "", fmt.Errorf("failed to write multipart body: %w", err)
	}
	if err := writer.WriteField("folder", "blog_thumbnails"); err != nil {
		return "", fmt.Errorf("failed to write multipart field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		preview := string(respBody)
		if len(preview) > 200 {
			preview = preview[:200] + "... (truncated)"
		}
		return "", fmt.Errorf("media host returned %d: %s", resp.StatusCode, preview)
	}

	var result uploadResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}

	url := result.SecureURL
	if url == "" {
		url = result.URL
	}
	if url == "" {
		return "", fmt.Errorf("media host response missing url")
	}

	return url, nil
}

func (s *relayService) Delete(ctx context.Context, url string) error {
	if s.deleteURL == "" {
		// Host without a delete endpoint configured: the orphan is accepted.
		return nil
	}

	payload, err := json.Marshal(map[string]string{"url": url})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.deleteURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("media host delete returned %d", resp.StatusCode)
	}

	return nil
}
