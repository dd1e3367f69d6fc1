package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/clouddemo/internal/client/client"
	"github.com/dmitrijs2005/clouddemo/internal/client/models"
)

// StorageService manages files in the user's folder of the uploads bucket.
// Objects live under "<user id>/<unix millis>-<file name>".
type StorageService interface {
	List(ctx context.Context) ([]models.StoredFile, error)
	// Upload rejects files larger than the configured limit before any
	// network call is made.
	Upload(ctx context.Context, name string, body io.Reader, size int64, contentType string) (*models.StoredFile, error)
	// Delete removes name, a file name as returned by List.
	Delete(ctx context.Context, name string) error
}

type storageService struct {
	objects  client.Objects
	sessions SessionSource
	limit    int
	maxSize  int64
	now      func() time.Time

	stampMu   sync.Mutex
	lastStamp int64
}

func NewStorageService(objects client.Objects, sessions SessionSource, listLimit int, maxSize int64) StorageService {
	return &storageService{
		objects:  objects,
		sessions: sessions,
		limit:    listLimit,
		maxSize:  maxSize,
		now:      time.Now,
	}
}

func (s *storageService) List(ctx context.Context) ([]models.StoredFile, error) {
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	prefix := folder(sess.User.ID)

	objs, err := s.objects.List(ctx, sess.AccessToken, prefix, s.limit)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	files := make([]models.StoredFile, 0, len(objs))
	for _, o := range objs {
		files = append(files, models.StoredFile{
			Name:         strings.TrimPrefix(o.Key, prefix),
			URL:          s.objects.PublicURL(o.Key),
			Size:         o.Size,
			LastModified: o.LastModified,
		})
	}
	return files, nil
}

func (s *storageService) Upload(ctx context.Context, name string, body io.Reader, size int64, contentType string) (*models.StoredFile, error) {
	if size > s.maxSize {
		return nil, ErrFileTooLarge
	}
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return nil, ErrInvalidFileName
	}

	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}

	stored := fmt.Sprintf("%d-%s", s.stamp(), base)
	key := folder(sess.User.ID) + stored
	if err := s.objects.Put(ctx, sess.AccessToken, key, body, size, contentType); err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}
	return &models.StoredFile{Name: stored, URL: s.objects.PublicURL(key), Size: size}, nil
}

func (s *storageService) Delete(ctx context.Context, name string) error {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return ErrInvalidFileName
	}
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return err
	}
	if err := s.objects.Remove(ctx, sess.AccessToken, folder(sess.User.ID)+name); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// stamp returns the current unix millis, bumped past the previous stamp so
// two uploads of the same name never share a key.
func (s *storageService) stamp() int64 {
	s.stampMu.Lock()
	defer s.stampMu.Unlock()
	ms := s.now().UnixMilli()
	if ms <= s.lastStamp {
		ms = s.lastStamp + 1
	}
	s.lastStamp = ms
	return ms
}

func folder(userID string) string {
	return userID + "/"
}
