package utils

import (
	"fmt"

	"sewa/config"
	"sewa/services/storage"

	"github.com/cloudinary/cloudinary-go/v2"
)

// Cloudinary builds the Cloudinary-backed document store from AppConfig.
func Cloudinary() (storage.DocumentStore, error) {
	cloudName := config.AppConfig.CloudinaryCloudName
	apiKey := config.AppConfig.CloudinaryAPIKey
	apiSecret := config.AppConfig.CloudinaryAPISecret

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	if config.AppConfig.DocumentEncryptionKey == "" {
		return nil, fmt.Errorf("document encryption key not set in configuration")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("utils.Cloudinary: failed to initialize Cloudinary: %w", err)
	}

	return storage.NewCloudinaryStore(cld, config.AppConfig.DocumentEncryptionKey), nil
}
