package blobdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bukhari/academy/storage/document"
)

// binStore mirrors the document to a jsonbin.io bin, a second
// zero-infrastructure backup next to the gist.
type binStore struct {
	id  string
	key string
	hc  *http.Client
}

// NewBinStore returns a RemoteStore persisting to jsonbin.io.
func NewBinStore(id, key string) RemoteStore {
	return &binStore{id: id, key: key, hc: newHTTPClient()}
}

func (s *binStore) Name() string { return "jsonbin" }

func (s *binStore) Fetch(ctx context.Context) (*document.Document, error) {
	url := fmt.Sprintf("https://api.jsonbin.io/v3/b/%s/latest", s.id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Master-Key", s.key)

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusErr(resp)
	}

	var wrapper struct {
		Record document.Document `json:"record"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, err
	}
	return &wrapper.Record, nil
}

func (s *binStore) Push(ctx context.Context, doc *document.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("https://api.jsonbin.io/v3/b/%s", s.id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", s.key)

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
