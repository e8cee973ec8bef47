package blobdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/bukhari/academy/storage/document"
)

const gistFileName = "bukhari-academy-db.json"

// gistStore backs the document up to a secret GitHub gist.
type gistStore struct {
	id    string
	token string
	hc    *http.Client
}

// NewGistStore returns a RemoteStore persisting to a GitHub gist.
func NewGistStore(id, token string) RemoteStore {
	return &gistStore{id: id, token: token, hc: newHTTPClient()}
}

func (s *gistStore) Name() string { return "gist" }

func (s *gistStore) url() string {
	return fmt.Sprintf("https://api.github.com/gists/%s", s.id)
}

func (s *gistStore) Fetch(ctx context.Context) (*document.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+s.token)

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusErr(resp)
	}

	var gist struct {
		Files map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&gist); err != nil {
		return nil, err
	}
	file, ok := gist.Files[gistFileName]
	if !ok || file.Content == "" {
		return nil, errors.New("gist has no database file")
	}
	return decodeDocument(strings.NewReader(file.Content))
}

func (s *gistStore) Push(ctx context.Context, doc *document.Document) error {
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	body, err := json.Marshal(map[string]interface{}{
		"files": map[string]interface{}{
			gistFileName: map[string]string{"content": string(content)},
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, s.url(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+s.token)
	req.Header.Set("Content-Type", "application/json")

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
