package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MediaPrefix is the URL path GridFS references are served under
const MediaPrefix = "/media/"

const bucketName = "images"

// GridFSStore keeps images in a MongoDB GridFS bucket
type GridFSStore struct {
	db *mongo.Database
}

// NewGridFSStore checks that the "images" bucket of db can be opened
func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	if _, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName)); err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFSStore{db: db}, nil
}

// bucket returns a bucket handle owned by one call. Read and write
// deadlines live on the handle, so it is never shared between requests.
func (s *GridFSStore) bucket() (*gridfs.Bucket, error) {
	return gridfs.NewBucket(s.db, options.GridFSBucket().SetName(bucketName))
}

func (s *GridFSStore) Save(ctx context.Context, img *Image) (string, error) {
	bucket, err := s.bucket()
	if err != nil {
		return "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := bucket.SetWriteDeadline(deadline); err != nil {
			return "", err
		}
	}
	filename := "recipes/" + uuid.NewString() + img.Extension
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": img.ContentType})
	id, err := bucket.UploadFromStream(filename, bytes.NewReader(img.Data), opts)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	return MediaPrefix + id.Hex(), nil
}

func (s *GridFSStore) Delete(ctx context.Context, ref string) error {
	id, err := primitive.ObjectIDFromHex(strings.TrimPrefix(ref, MediaPrefix))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrImageNotFound, ref)
	}
	bucket, err := s.bucket()
	if err != nil {
		return err
	}
	if err := bucket.DeleteContext(ctx, id); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// Open streams a stored image; the caller closes the reader
func (s *GridFSStore) Open(ctx context.Context, hexID string) (io.ReadCloser, string, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, "", ErrImageNotFound
	}
	bucket, err := s.bucket()
	if err != nil {
		return nil, "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := bucket.SetReadDeadline(deadline); err != nil {
			return nil, "", err
		}
	}
	stream, err := bucket.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", ErrImageNotFound
		}
		return nil, "", err
	}
	contentType := "application/octet-stream"
	if v, ok := stream.GetFile().Metadata.Lookup("content_type").StringValueOK(); ok {
		contentType = v
	}
	return stream, contentType, nil
}
