// Package audio holds the multipart upload and health probe shared by the
// speech sidecar clients.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	apperrors "github.com/kbukum/minutes/errors"
	"github.com/kbukum/minutes/observability"
)

// Form builds a multipart body with the audio file under "audio" plus the
// given text fields, written in key order.
func Form(path string, fields map[string]string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", apperrors.NotFound("audio file", path)
		}
		return nil, "", apperrors.Internal(err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio", filepath.Base(path))
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", apperrors.Internal(fmt.Errorf("read audio: %w", err))
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", apperrors.Internal(err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", apperrors.Internal(err)
	}
	return &buf, w.FormDataContentType(), nil
}

// ProbeHealth reports up when url answers 200.
func ProbeHealth(ctx context.Context, client *http.Client, name, url string) observability.Health {
	h := observability.Health{Name: name, Status: observability.HealthStatusUp}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		h.Status, h.Message = observability.HealthStatusDown, err.Error()
		return h
	}
	resp, err := client.Do(req)
	if err != nil {
		h.Status, h.Message = observability.HealthStatusDown, err.Error()
		return h
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		h.Status, h.Message = observability.HealthStatusDown, fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return h
}
