// Package gdocs binds the synthesizer to the Google Docs and Drive APIs:
// credential loading, document creation, folder placement, and sharing.
package gdocs

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/campaignkit/docweave/internal/config"
)

var scopes = []string{
	docs.DocumentsScope,
	drive.DriveScope,
}

type Client struct {
	docs   *docs.Service
	drive  *drive.Service
	logger *zap.Logger
}

// CreatedDoc describes a freshly created document.
type CreatedDoc struct {
	ID    string
	URL   string
	Title string
}

// NewClient authenticates and builds the docs and drive services. An
// authorized-user token file wins over a service-account key file; the
// GOOGLE_TOKEN_PATH and GOOGLE_APPLICATION_CREDENTIALS environment
// variables override the configured paths.
func NewClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Client, error) {
	data, source, err := readCredentials(cfg)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load credentials from %s", source)
	}
	logger.Debug("authenticated with Google", zap.String("credentials", source))

	docsService, err := docs.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build docs service")
	}
	driveService, err := drive.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build drive service")
	}

	return &Client{docs: docsService, drive: driveService, logger: logger}, nil
}

func readCredentials(cfg *config.Config) ([]byte, string, error) {
	paths := []string{
		os.Getenv("GOOGLE_TOKEN_PATH"),
		cfg.TokenPath,
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		cfg.CredentialsPath,
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, "", errors.Wrapf(err, "failed to read credentials %q", p)
		}
		return data, p, nil
	}
	return nil, "", errors.Errorf("no Google credentials found; tried %s", strings.Join(paths, ", "))
}

// CreateDocument creates an empty document with the given title.
func (c *Client) CreateDocument(ctx context.Context, title string) (*CreatedDoc, error) {
	doc, err := c.docs.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create document %q", title)
	}
	c.logger.Info("created document", zap.String("title", title), zap.String("documentId", doc.DocumentId))
	return &CreatedDoc{
		ID:    doc.DocumentId,
		URL:   fmt.Sprintf("https://docs.google.com/document/d/%s/edit", doc.DocumentId),
		Title: title,
	}, nil
}

// MoveToFolder reparents the file into the given Drive folder.
func (c *Client) MoveToFolder(ctx context.Context, fileID, folderID string) error {
	file, err := c.drive.Files.Get(fileID).Fields("parents").Context(ctx).Do()
	if err != nil {
		return errors.Wrapf(err, "failed to look up parents of %s", fileID)
	}
	_, err = c.drive.Files.Update(fileID, nil).
		AddParents(folderID).
		RemoveParents(strings.Join(file.Parents, ",")).
		Fields("id", "parents").
		Context(ctx).
		Do()
	if err != nil {
		return errors.Wrapf(err, "failed to move %s to folder %s", fileID, folderID)
	}
	c.logger.Info("moved document to folder", zap.String("folderId", folderID))
	return nil
}

// Share grants the given email access to the file.
func (c *Client) Share(ctx context.Context, fileID, email, role string) error {
	permission := &drive.Permission{
		Type:         "user",
		Role:         role,
		EmailAddress: email,
	}
	_, err := c.drive.Permissions.Create(fileID, permission).Fields("id").Context(ctx).Do()
	if err != nil {
		return errors.Wrapf(err, "failed to share %s with %s", fileID, email)
	}
	c.logger.Info("shared document", zap.String("email", email), zap.String("role", role))
	return nil
}
