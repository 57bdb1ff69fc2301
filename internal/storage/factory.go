package storage

import (
	"context"
	"fmt"

	"reel/internal/adapters/storage/gdrive"
	"reel/internal/adapters/storage/localfs"
	"reel/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

func NewProvider(cfg config.StorageConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "localfs":
		if cfg.LocalRoot == "" {
			return nil, fmt.Errorf("storage: local root is required")
		}
		return localfs.New(cfg.LocalRoot, cfg.LocalBaseURL), nil

	case "gdrive":
		return newGDriveProvider(cfg)

	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

func newGDriveProvider(cfg config.StorageConfig) (Provider, error) {
	ctx := context.Background()

	if cfg.GDrive.ClientID == "" || cfg.GDrive.ClientSecret == "" || cfg.GDrive.RefreshToken == "" {
		return nil, fmt.Errorf("storage: gdrive credentials are incomplete")
	}

	conf := &oauth2.Config{
		ClientID:     cfg.GDrive.ClientID,
		ClientSecret: cfg.GDrive.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}

	tok := &oauth2.Token{RefreshToken: cfg.GDrive.RefreshToken}
	httpClient := conf.Client(ctx, tok)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}

	return gdrive.NewClient(srv, cfg.GDrive.FolderID), nil
}
