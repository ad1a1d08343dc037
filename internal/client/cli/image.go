package cli

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
)

const maxImageSize = 10 << 20

// loadImage reads an image file into an upload payload. The content type
// comes from the extension, or from the bytes when the extension is
// unknown.
func loadImage(path string) (*models.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxImageSize {
		return nil, fmt.Errorf("%s is larger than %d bytes", path, maxImageSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(path)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%s does not look like an image (%s)", path, contentType)
	}

	return &models.Image{
		Content:     base64.StdEncoding.EncodeToString(data),
		ContentType: contentType,
		FileName:    strings.TrimSuffix(filepath.Base(path), ext),
	}, nil
}
