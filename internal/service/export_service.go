package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"todo-sentiment/internal/domain"
	"todo-sentiment/internal/repository"
	"todo-sentiment/internal/sentiment"
	"todo-sentiment/internal/storage"
)

// Export describes an uploaded snapshot of a user's todos.
type Export struct {
	Key      string
	Location string
	URL      string
	Count    int
}

// ExportConfig points the export service at a bucket.
type ExportConfig struct {
	Bucket     string
	KeyPrefix  string
	PresignTTL time.Duration
}

// ExportService snapshots a caller's todos to object storage.
type ExportService interface {
	Export(ctx context.Context, who domain.Identity) (*Export, error)
	List(ctx context.Context, who domain.Identity) ([]storage.ObjectInfo, error)
	// Purge removes every export of userID; zero removes all exports.
	Purge(ctx context.Context, userID int64) error
}

type exportService struct {
	todos repository.TodoRepository
	store storage.Service
	cfg   ExportConfig
	now   func() time.Time
}

// NewExportService returns an export service. A nil store or empty bucket
// yields a service whose operations fail with ErrStorageDisabled.
func NewExportService(todos repository.TodoRepository, store storage.Service, cfg ExportConfig) ExportService {
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 15 * time.Minute
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &exportService{
		todos: todos,
		store: store,
		cfg:   cfg,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type exportDocument struct {
	UserID         int64        `json:"user_id"`
	ExportedAt     time.Time    `json:"exported_at"`
	LexiconVersion string       `json:"lexicon_version"`
	Todos          []exportTodo `json:"todos"`
}

type exportTodo struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Color       string     `json:"color"`
	Status      string     `json:"status"`
	Sentiment   string     `json:"sentiment"`
	Confidence  float64    `json:"confidence"`
	Deadline    *time.Time `json:"deadline"`
	AddedOn     *time.Time `json:"added_on"`
	UpdatedOn   *time.Time `json:"updated_on"`
}

func (s *exportService) enabled() bool {
	return s.store != nil && s.cfg.Bucket != ""
}

func (s *exportService) Export(ctx context.Context, who domain.Identity) (*Export, error) {
	if !s.enabled() {
		return nil, ErrStorageDisabled
	}

	todos, err := s.todos.Filter(ctx, domain.TodoFilter{UserID: who.UserID})
	if err != nil {
		return nil, err
	}

	doc := exportDocument{
		UserID:         who.UserID,
		ExportedAt:     s.now(),
		LexiconVersion: sentiment.LexiconVersion,
		Todos:          make([]exportTodo, len(todos)),
	}
	for i, t := range todos {
		doc.Todos[i] = exportTodo{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Category:    t.Category,
			Color:       t.Color,
			Status:      string(t.Status),
			Sentiment:   string(t.Sentiment),
			Confidence:  t.Confidence,
			Deadline:    t.Deadline,
			AddedOn:     t.AddedOn,
			UpdatedOn:   t.UpdatedOn,
		}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := path.Join(s.userPrefix(who.UserID), uuid.NewString()+".json")
	location, err := s.store.PutObject(ctx, bytes.NewReader(body), storage.PutOptions{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	url, err := s.store.GetObjectURL(ctx, s.cfg.Bucket, key, s.cfg.PresignTTL)
	if err != nil {
		return nil, err
	}

	return &Export{
		Key:      key,
		Location: location,
		URL:      url,
		Count:    len(todos),
	}, nil
}

func (s *exportService) List(ctx context.Context, who domain.Identity) ([]storage.ObjectInfo, error) {
	if !s.enabled() {
		return nil, ErrStorageDisabled
	}
	return s.store.ListObjects(ctx, s.cfg.Bucket, s.userPrefix(who.UserID)+"/")
}

func (s *exportService) Purge(ctx context.Context, userID int64) error {
	if !s.enabled() {
		return ErrStorageDisabled
	}
	prefix := s.cfg.KeyPrefix
	if userID != 0 {
		prefix = s.userPrefix(userID)
	}
	if prefix == "" {
		return invalid("refusing to purge an empty prefix")
	}
	return s.store.DeletePrefix(ctx, s.cfg.Bucket, prefix+"/")
}

func (s *exportService) userPrefix(userID int64) string {
	return path.Join(s.cfg.KeyPrefix, fmt.Sprintf("user-%d", userID))
}
