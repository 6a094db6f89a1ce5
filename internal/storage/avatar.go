// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// MaxAvatarSize is the largest avatar accepted, in bytes.
const MaxAvatarSize = 2 << 20

var (
	// ErrUnsupportedImage is returned for uploads that are not jpeg, png, webp, or gif.
	ErrUnsupportedImage = errors.New("unsupported image type")

	// ErrImageTooLarge is returned for uploads over MaxAvatarSize.
	ErrImageTooLarge = errors.New("image too large")
)

// avatarTypes maps accepted sniffed content types to object key extensions.
var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// SniffImage detects the content type of data from its leading bytes and
// returns it with the matching file extension. The client-declared type and
// filename are never trusted.
func SniffImage(data []byte) (contentType, ext string, err error) {
	if len(data) == 0 {
		return "", "", ErrUnsupportedImage
	}
	if len(data) > MaxAvatarSize {
		return "", "", ErrImageTooLarge
	}
	contentType = http.DetectContentType(data)
	ext, ok := avatarTypes[contentType]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}
	return contentType, ext, nil
}

// AvatarKey returns a fresh object key for an avatar of authorID.
func AvatarKey(authorID int64, ext string) string {
	return fmt.Sprintf("avatars/%d/%s%s", authorID, uuid.NewString(), ext)
}

// PutAvatar validates and uploads an avatar image for authorID and returns
// its public URL.
func (c *Client) PutAvatar(ctx context.Context, authorID int64, data []byte) (string, error) {
	contentType, ext, err := SniffImage(data)
	if err != nil {
		return "", err
	}
	key := AvatarKey(authorID, ext)
	if err := c.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", err
	}
	return c.FileURL(key), nil
}

// RemoveByURL deletes the object behind rawURL when it lives in this
// bucket. URLs pointing elsewhere are ignored.
func (c *Client) RemoveByURL(ctx context.Context, rawURL string) error {
	key, ok := c.ExtractKey(rawURL)
	if !ok || key == "" {
		return nil
	}
	return c.Delete(ctx, key)
}
