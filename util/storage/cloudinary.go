package storage

import (
	"context"
	"io"
	"log"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/truckersblacklist/blacklist_api/config"
)

// Cloudinary is the blob store boundary implementation. Attachments are
// addressed by the submission pipeline's path convention
// (reports/{reportID}/media/{name}) under an app-scoped folder.
type Cloudinary struct {
	CLD    *cloudinary.Cloudinary
	Folder string
}

func NewCloudinary(cfg *config.Config) *Cloudinary {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Fatalf("Failed to initialize Cloudinary: %v", err)
	}

	return &Cloudinary{CLD: cld, Folder: cfg.AppID}
}

// Upload stores the blob and returns its public locator URL.
func (c *Cloudinary) Upload(ctx context.Context, path string, r io.Reader) (string, error) {
	resp, err := c.CLD.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID: path,
		Folder:   c.Folder,
	})
	if err != nil {
		return "", err
	}
	return resp.SecureURL, nil
}
