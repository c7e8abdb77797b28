package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"evidencechain/pkg/types"
)

// SupabaseStorage reads and writes objects in a Supabase Storage bucket
// through its REST API.
type SupabaseStorage struct {
	baseURL    string
	apiKey     string
	bucketName string
	httpClient *http.Client
}

// NewSupabaseStorage creates a client for bucketName on the project at
// baseURL, e.g. https://<project>.supabase.co.
func NewSupabaseStorage(baseURL, apiKey, bucketName string) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		bucketName: bucketName,
		httpClient: &http.Client{},
	}
}

func (s *SupabaseStorage) objectURL(path string) string {
	segments := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(s.bucketName), strings.Join(segments, "/"))
}

func (s *SupabaseStorage) authorize(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	req.Header.Set("apikey", s.apiKey)
}

// Download returns the full content of the object at path.
func (s *SupabaseStorage) Download(ctx context.Context, path string) ([]byte, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.authorize(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrorKindStorageUnavailable, fmt.Sprintf("download %s", path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if objectMissing(resp.StatusCode, body) {
			return nil, types.NewError(types.ErrorKindBlobNotFound, fmt.Sprintf("object %s not found", path), nil)
		}
		return nil, types.NewError(types.ErrorKindStorageUnavailable,
			fmt.Sprintf("download %s failed with status %d: %s", path, resp.StatusCode, string(body)), nil)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewError(types.ErrorKindStorageUnavailable, fmt.Sprintf("read %s", path), err)
	}

	return content, nil
}

// objectMissing recognises Supabase's not-found replies, which come back as
// either a 404 or a 400 carrying a not_found error body.
func objectMissing(status int, body []byte) bool {
	if status == http.StatusNotFound {
		return true
	}
	if status != http.StatusBadRequest {
		return false
	}
	text := strings.ToLower(string(body))
	return strings.Contains(text, "not_found") || strings.Contains(text, "object not found")
}

// UploadFile uploads a file to Supabase Storage
// Returns the storage key (path) on success
func (s *SupabaseStorage) UploadFile(ctx context.Context, path string, file io.Reader, contentType string) (string, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(path), file)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	s.authorize(req)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", types.NewError(types.ErrorKindStorageUnavailable, fmt.Sprintf("upload %s", path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", types.NewError(types.ErrorKindStorageUnavailable,
			fmt.Sprintf("upload %s failed with status %d: %s", path, resp.StatusCode, string(body)), nil)
	}

	return path, nil
}
