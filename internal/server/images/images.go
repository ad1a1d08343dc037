// Package images turns the base64 image payload sent with a note into a
// stored file and an Image reference.
package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

// Payload is the image object clients send inside a note body.
type Payload struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
	FileName    string `json:"fileName"`
}

// Store keeps image bytes under a flat name.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// Processor decodes payloads and writes them to a Store.
type Processor struct {
	store Store
}

func NewProcessor(store Store) *Processor {
	return &Processor{store: store}
}

// Save stores the payload for noteID and returns the reference to persist.
// A nil payload or one without content yields (nil, nil): there is nothing
// to store and the caller keeps whatever image it had.
func (p *Processor) Save(ctx context.Context, noteID string, payload *Payload) (*models.Image, error) {
	if payload == nil || payload.Content == "" {
		return nil, nil
	}

	name, err := FileName(noteID, payload)
	if err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(payload.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: content is not base64", common.ErrInvalidImage)
	}

	if err := p.store.Put(ctx, name, bytes.NewReader(data), int64(len(data)), ContentType(name)); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	return &models.Image{URL: name}, nil
}

// Open returns the stored bytes and content type for name.
func (p *Processor) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	return p.store.Get(ctx, name)
}

// contentTypes maps the accepted image subtypes, which double as file
// extensions, to the content type they are served with.
var contentTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
}

// ContentType returns the content type for a stored image name, judged by
// its extension, or "" when the extension is not an accepted image type.
func ContentType(name string) string {
	return contentTypes[strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))]
}

// FileName builds "{noteID}_{fileName}.{subtype}". Only the last element of
// the client's file name is kept, so the result never contains a path
// separator. Content types outside the accepted raster image types are
// rejected with ErrInvalidImage.
func FileName(noteID string, payload *Payload) (string, error) {
	major, _, _ := strings.Cut(payload.ContentType, "/")
	subtype := strings.ToLower(Subtype(payload.ContentType))
	if !strings.EqualFold(strings.TrimSpace(major), "image") || contentTypes[subtype] == "" {
		return "", fmt.Errorf("%w: unsupported content type %q", common.ErrInvalidImage, payload.ContentType)
	}

	base := ""
	if payload.FileName != "" {
		base = path.Base(strings.ReplaceAll(payload.FileName, `\`, "/"))
		if base == "/" {
			base = ""
		}
	}

	return noteID + "_" + base + "." + subtype, nil
}

// Subtype returns the part of a MIME type after the slash, without
// parameters: "image/png; q=1" gives "png".
func Subtype(contentType string) string {
	_, sub, ok := strings.Cut(contentType, "/")
	if !ok {
		return ""
	}
	sub, _, _ = strings.Cut(sub, ";")
	sub = strings.TrimSpace(sub)
	if strings.ContainsAny(sub, `/\`) {
		return ""
	}
	return sub
}
