package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"

	"exercises/internal/model"
	"exercises/internal/repository"
	"exercises/internal/storage"
)

const exportPrefix = "exports"

var ErrExportDisabled = errors.New("export is disabled")

// ExportResult describes an uploaded exercise snapshot.
type ExportResult struct {
	Key       string    `json:"key"`
	Count     int       `json:"count"`
	Size      int64     `json:"size"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// snapshot is the JSON document written to object storage.
type snapshot struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Count       int              `json:"count"`
	Exercises   []model.Exercise `json:"exercises"`
}

// ExportService writes point-in-time snapshots of exercise records to object storage.
type ExportService interface {
	// Export runs q against the repository, uploads the matches as one JSON
	// document and returns a presigned URL to download it.
	Export(ctx context.Context, q repository.FindQuery) (*ExportResult, error)
}

type exportService struct {
	store  storage.Storage
	repo   repository.ExerciseRepository
	expiry time.Duration
	now    func() time.Time
}

// NewExportService constructs a new ExportService. A nil store disables exports.
func NewExportService(store storage.Storage, repo repository.ExerciseRepository, expiry time.Duration) ExportService {
	return &exportService{store: store, repo: repo, expiry: expiry, now: time.Now}
}

func (s *exportService) Export(ctx context.Context, q repository.FindQuery) (*ExportResult, error) {
	if s.store == nil {
		return nil, ErrExportDisabled
	}

	items, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	generated := s.now().UTC()
	body, err := json.Marshal(snapshot{GeneratedAt: generated, Count: len(items), Exercises: items})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	key := path.Join(exportPrefix, uuid.NewString()+".json")
	info, err := s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata: map[string]string{
			"exercise-count": strconv.Itoa(len(items)),
			"generated-at":   generated.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}

	url, err := s.store.PresignGet(ctx, key, s.expiry)
	if err != nil {
		// Rollback: an export nobody can download is removed
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("presign failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("presign failed: %w", err)
	}

	return &ExportResult{
		Key:       info.Key,
		Count:     len(items),
		Size:      info.Size,
		URL:       url,
		ExpiresAt: generated.Add(s.expiry),
	}, nil
}
