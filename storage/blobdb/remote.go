package blobdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/bukhari/academy/storage/document"
)

// RemoteStore mirrors the database document to an external service.
// Fetch returning an error means "unavailable"; callers fall through to
// the next source.
type RemoteStore interface {
	Name() string
	Fetch(ctx context.Context) (*document.Document, error)
	Push(ctx context.Context, doc *document.Document) error
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

func decodeDocument(r io.Reader) (*document.Document, error) {
	var doc document.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	return &doc, nil
}

func drainClose(resp *http.Response) {
	_, _ = io.Copy(ioutil.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

func statusErr(resp *http.Response) error {
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}

// apiStore talks to another deployment's sync endpoint, authenticated
// with the shared X-API-Key header.
type apiStore struct {
	url    string
	apiKey string
	hc     *http.Client
}

// NewAPIStore returns a RemoteStore backed by a peer sync endpoint.
func NewAPIStore(url, apiKey string) RemoteStore {
	return &apiStore{url: url, apiKey: apiKey, hc: newHTTPClient()}
}

func (s *apiStore) Name() string { return "api" }

func (s *apiStore) Fetch(ctx context.Context) (*document.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", s.apiKey)

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusErr(resp)
	}
	return decodeDocument(resp.Body)
}

func (s *apiStore) Push(ctx context.Context, doc *document.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", s.apiKey)

	resp, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer drainClose(resp)
	if resp.StatusCode != http.StatusOK {
		return statusErr(resp)
	}
	return nil
}
