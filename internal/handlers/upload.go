package handlers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// saveUploadedImage stores the optional multipart "image" field in a
// temporary file and returns its path. An empty path means no file was
// attached. The caller (via the services) removes the file once hosting
// has succeeded.
func saveUploadedImage(c *fiber.Ctx) (string, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// No multipart body or no image field attached.
		return "", nil
	}

	localPath := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(fileHeader.Filename))
	if err := c.SaveFile(fileHeader, localPath); err != nil {
		return "", fmt.Errorf("failed to store uploaded file: %w", err)
	}
	return localPath, nil
}
