// Package storage keeps worker verification documents in Cloudinary. Files are
// encrypted before they leave the server and stored as authenticated raw assets.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// MaxDocumentSize bounds a single stored document in plaintext bytes.
const MaxDocumentSize = 10 << 20

// DocumentStore persists verification documents.
type DocumentStore interface {
	// UploadDocument encrypts and uploads the local file into folder and returns its permanent id.
	UploadDocument(ctx context.Context, localFilePath, folder string) (string, error)
	DeleteFile(ctx context.Context, publicID string) error
	// ReadDocument fetches a stored document and returns its decrypted bytes.
	ReadDocument(ctx context.Context, publicID string) ([]byte, error)
}

// CloudinaryStore implements DocumentStore on Cloudinary.
type CloudinaryStore struct {
	cld           *cloudinary.Cloudinary
	encryptionKey string
	client        *http.Client
}

// NewCloudinaryStore creates a CloudinaryStore.
func NewCloudinaryStore(cld *cloudinary.Cloudinary, encryptionKey string) *CloudinaryStore {
	return &CloudinaryStore{
		cld:           cld,
		encryptionKey: encryptionKey,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

// UploadDocument encrypts the file and uploads it as an authenticated raw asset.
func (s *CloudinaryStore) UploadDocument(ctx context.Context, localFilePath, folder string) (string, error) {
	encryptedPath, err := encryptFile(localFilePath, s.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("CloudinaryStore: failed to encrypt file: %w", err)
	}
	defer os.Remove(encryptedPath)

	result, err := s.cld.Upload.Upload(ctx, encryptedPath, uploader.UploadParams{
		Folder:       folder,
		ResourceType: string(api.File),
		Type:         api.Authenticated,
	})
	if err != nil {
		return "", fmt.Errorf("CloudinaryStore: failed to upload file: %w", err)
	}
	if result.PublicID == "" {
		return "", fmt.Errorf("CloudinaryStore: no public ID returned")
	}
	zap.L().Debug("document uploaded", zap.String("folder", folder), zap.String("publicID", result.PublicID))
	return result.PublicID, nil
}

// DeleteFile deletes an authenticated raw asset given its public ID.
func (s *CloudinaryStore) DeleteFile(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(api.File),
		Type:         api.Authenticated,
	}); err != nil {
		return fmt.Errorf("CloudinaryStore: failed to delete file: %w", err)
	}
	return nil
}

// ReadDocument downloads the authenticated asset through a signed delivery URL
// and decrypts it.
func (s *CloudinaryStore) ReadDocument(ctx context.Context, publicID string) ([]byte, error) {
	deliveryURL, err := s.deliveryURL(publicID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, deliveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("CloudinaryStore: failed to build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("CloudinaryStore: failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CloudinaryStore: fetch %s returned status %d", publicID, resp.StatusCode)
	}

	// GCM adds a nonce and a tag on top of the plaintext.
	ciphertext, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1024))
	if err != nil {
		return nil, fmt.Errorf("CloudinaryStore: failed to read document: %w", err)
	}
	plaintext, err := decryptBytes(ciphertext, s.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("CloudinaryStore: failed to decrypt document: %w", err)
	}
	return plaintext, nil
}

// deliveryURL signs the authenticated delivery URL of a raw asset.
func (s *CloudinaryStore) deliveryURL(publicID string) (string, error) {
	a, err := s.cld.File(publicID)
	if err != nil {
		return "", fmt.Errorf("CloudinaryStore: failed to build asset: %w", err)
	}
	a.DeliveryType = api.Authenticated
	a.Config.URL.SignURL = true

	u, err := a.String()
	if err != nil {
		return "", fmt.Errorf("CloudinaryStore: failed to sign URL: %w", err)
	}
	return u, nil
}
