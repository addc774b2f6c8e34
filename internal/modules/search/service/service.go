package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	searchDto "mymemorycard.com/backend/internal/modules/search/dto"
	"mymemorycard.com/backend/pkg/apperror"
	"mymemorycard.com/backend/pkg/logger"
	"mymemorycard.com/backend/pkg/sanitize"
	"github.com/meilisearch/meilisearch-go"
)

const (
	memoriesIndex = "memories"
	reviewsIndex  = "reviews"

	MsgSearchUnavailable = "La recherche est temporairement indisponible"
)

type SearchService interface {
	Index(doc searchDto.ContentDocument) error
	Delete(kind, id string) error
	// IndexAsync and DeleteAsync log failures instead of returning them.
	IndexAsync(doc searchDto.ContentDocument)
	DeleteAsync(kind, id string)
	Search(ctx context.Context, query, kind string, limit int) (*searchDto.SearchResponse, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

// NewMeiliSearchService returns a search service. A nil client disables search:
// indexing becomes a no-op and queries fail with 503.
func NewMeiliSearchService(client meilisearch.ServiceManager) SearchService {
	s := &meiliSearchService{client: client}
	if client != nil {
		s.initIndexes()
	}
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"kind", "user_id", "game_rawg_id", "spoiler"}
	sortable := []string{"created_at"}

	for _, uid := range []string{memoriesIndex, reviewsIndex} {
		if _, err := s.client.Index(uid).UpdateFilterableAttributes(&filterable); err != nil {
			logger.Log.WithError(err).WithField("index", uid).Warn("failed to update filterable attributes")
		}
		if _, err := s.client.Index(uid).UpdateSortableAttributes(&sortable); err != nil {
			logger.Log.WithError(err).WithField("index", uid).Warn("failed to update sortable attributes")
		}
	}

	logger.Log.Info("Meilisearch indexes initialized")
}

func indexFor(kind string) (string, error) {
	switch kind {
	case searchDto.KindMemory:
		return memoriesIndex, nil
	case searchDto.KindReview:
		return reviewsIndex, nil
	}
	return "", fmt.Errorf("unknown document kind %q", kind)
}

func (s *meiliSearchService) Index(doc searchDto.ContentDocument) error {
	if s.client == nil {
		return nil
	}
	uid, err := indexFor(doc.Kind)
	if err != nil {
		return err
	}

	doc.Title = sanitize.Compact(doc.Title)
	doc.Content = sanitize.Compact(doc.Content)

	task, err := s.client.Index(uid).AddDocuments([]searchDto.ContentDocument{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	logger.Log.WithField("index", uid).WithField("id", doc.ID).WithField("task_uid", task.TaskUID).Debug("document indexed")
	return nil
}

func (s *meiliSearchService) Delete(kind, id string) error {
	if s.client == nil {
		return nil
	}
	uid, err := indexFor(kind)
	if err != nil {
		return err
	}
	_, err = s.client.Index(uid).DeleteDocument(id)
	return err
}

func (s *meiliSearchService) IndexAsync(doc searchDto.ContentDocument) {
	if s.client == nil {
		return
	}
	go func() {
		if err := s.Index(doc); err != nil {
			logger.Log.WithError(err).WithField("id", doc.ID).Warn("failed to index document")
		}
	}()
}

func (s *meiliSearchService) DeleteAsync(kind, id string) {
	if s.client == nil {
		return
	}
	go func() {
		if err := s.Delete(kind, id); err != nil {
			logger.Log.WithError(err).WithField("id", id).Warn("failed to delete indexed document")
		}
	}()
}

type rawSearchResult struct {
	Hits []searchDto.ContentDocument `json:"hits"`
}

func (s *meiliSearchService) Search(ctx context.Context, query, kind string, limit int) (*searchDto.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.BadRequest(`Le paramètre de recherche "q" est obligatoire`)
	}
	if s.client == nil {
		return nil, apperror.Unavailable(MsgSearchUnavailable, nil)
	}

	res := &searchDto.SearchResponse{
		Query:    query,
		Memories: []searchDto.ContentDocument{},
		Reviews:  []searchDto.ContentDocument{},
	}

	if kind == "" || kind == searchDto.KindMemory {
		hits, err := s.search(memoriesIndex, query, limit)
		if err != nil {
			return nil, err
		}
		res.Memories = hits
	}
	if kind == "" || kind == searchDto.KindReview {
		hits, err := s.search(reviewsIndex, query, limit)
		if err != nil {
			return nil, err
		}
		res.Reviews = hits
	}

	return res, nil
}

func (s *meiliSearchService) search(uid, query string, limit int) ([]searchDto.ContentDocument, error) {
	raw, err := s.client.Index(uid).SearchRaw(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		logger.Log.WithError(err).WithField("index", uid).Warn("meilisearch query failed")
		return nil, apperror.Unavailable(MsgSearchUnavailable, nil)
	}

	var result rawSearchResult
	if err := json.Unmarshal(*raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if result.Hits == nil {
		result.Hits = []searchDto.ContentDocument{}
	}
	return result.Hits, nil
}

func strPtr(s string) *string {
	return &s
}
