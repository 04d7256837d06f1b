package service

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"octofit.app/tracker/internal/entity"
	"octofit.app/tracker/pkg/logger"
)

const ChallengesIndex = "challenges"

// ChallengeDocument is the indexed form of a house challenge.
type ChallengeDocument struct {
	ID          string `json:"id"`
	HouseID     string `json:"house_id"`
	Description string `json:"description"`
	XP          int    `json:"xp"`
}

type SearchService interface {
	// Enabled is false when no search host is configured; callers fall back to the database.
	Enabled() bool
	IndexChallenges(challenges []entity.HouseChallenge) error
	DeleteChallenge(id string) error
	SearchChallenges(query string, limit int) ([]ChallengeDocument, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

// NewSearchService wraps client; a nil client yields a disabled service.
func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	if client != nil {
		s.initIndexes()
	}
	return s
}

func (s *meiliSearchService) Enabled() bool {
	return s.client != nil
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"house_id"}
	if _, err := s.client.Index(ChallengesIndex).UpdateFilterableAttributes(&filterable); err != nil {
		logger.L().Warn("update challenges filterable attributes failed", zap.Error(err))
		return
	}
	logger.L().Info("meilisearch indexes initialized")
}

func (s *meiliSearchService) cleanForIndex(content string) string {
	sanitized := s.sanitizer.Sanitize(content)
	return strings.Join(strings.Fields(html.UnescapeString(sanitized)), " ")
}

func (s *meiliSearchService) IndexChallenges(challenges []entity.HouseChallenge) error {
	if !s.Enabled() || len(challenges) == 0 {
		return nil
	}

	docs := make([]ChallengeDocument, 0, len(challenges))
	for _, ch := range challenges {
		docs = append(docs, ChallengeDocument{
			ID:          ch.ID.String(),
			HouseID:     ch.HouseID.String(),
			Description: s.cleanForIndex(ch.Description),
			XP:          ch.XP,
		})
	}

	task, err := s.client.Index(ChallengesIndex).AddDocuments(docs, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index challenges: %w", err)
	}
	logger.L().Debug("indexed challenges", zap.Int("count", len(docs)), zap.Int64("task_uid", task.TaskUID))
	return nil
}

func (s *meiliSearchService) DeleteChallenge(id string) error {
	if !s.Enabled() {
		return nil
	}
	_, err := s.client.Index(ChallengesIndex).DeleteDocument(id)
	return err
}

func (s *meiliSearchService) SearchChallenges(query string, limit int) ([]ChallengeDocument, error) {
	if !s.Enabled() {
		return nil, nil
	}

	raw, err := s.client.Index(ChallengesIndex).SearchRaw(query, &meilisearch.SearchRequest{Limit: int64(limit)})
	if err != nil {
		return nil, fmt.Errorf("search challenges: %w", err)
	}

	var resp struct {
		Hits []ChallengeDocument `json:"hits"`
	}
	if raw != nil {
		if err := json.Unmarshal(*raw, &resp); err != nil {
			return nil, fmt.Errorf("decode search response: %w", err)
		}
	}
	return resp.Hits, nil
}

func strPtr(s string) *string {
	return &s
}
