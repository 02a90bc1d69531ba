// Package storage keeps recipe images in a blob store and hands back a
// stable reference for the recipe row.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrInvalidImage  = errors.New("invalid image payload")
	ErrImageNotFound = errors.New("image not found")
)

// ImageStore persists decoded images
type ImageStore interface {
	Save(ctx context.Context, img *Image) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Image is a decoded upload
type Image struct {
	Subtype     string // declared in the data URI, e.g. "png"
	ContentType string // sniffed from the bytes
	Extension   string // with leading dot
	Data        []byte
}

// allowedSubtypes maps a declared subtype to the MIME type the payload
// must sniff as
var allowedSubtypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// DecodeDataURI parses "data:image/<subtype>;base64,<payload>" and checks
// that the payload really is an image of the declared type.
func DecodeDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(uri, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return nil, fmt.Errorf("%w: expected a base64 data URI", ErrInvalidImage)
	}
	subtype := strings.ToLower(strings.TrimPrefix(header, "data:image/"))
	expected, ok := allowedSubtypes[subtype]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrInvalidImage, subtype)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	mtype := mimetype.Detect(data)
	if !mtype.Is(expected) {
		return nil, fmt.Errorf("%w: declared %s but payload is %s", ErrInvalidImage, expected, mtype.String())
	}
	return &Image{
		Subtype:     subtype,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
		Data:        data,
	}, nil
}
