// Package history provides full-text search over recorded sessions.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"

	"github.com/vinayprograms/swarm/internal/session"
)

// Index stores session transcripts in a Bleve index for BM25 search.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
}

// Document is a single searchable entry derived from a session.
type Document struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Task      string    `json:"task"`
	Agent     string    `json:"agent"`
	EventType string    `json:"event_type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Hit is a scored search result.
type Hit struct {
	SessionID string
	Agent     string
	EventType string
	Content   string
	Score     float32
}

// Open opens or creates the history index under the given directory.
func Open(basePath string) (*Index, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	indexPath := filepath.Join(basePath, "history.bleve")

	var idx bleve.Index
	var err error
	if _, statErr := os.Stat(indexPath); os.IsNotExist(statErr) {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create bleve index: %w", err)
		}
	} else {
		idx, err = bleve.Open(indexPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open bleve index: %w", err)
		}
	}

	return &Index{index: idx}, nil
}

// buildIndexMapping creates the Bleve index mapping.
func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	dateFieldMapping := bleve.NewDateTimeFieldMapping()

	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("task", textFieldMapping)
	docMapping.AddFieldMappingsAt("session_id", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("agent", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("event_type", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("created_at", dateFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// IndexSession adds every text-bearing event of a session to the index.
func (ix *Index) IndexSession(sess *session.Session) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	batch := ix.index.NewBatch()
	for _, ev := range sess.Snapshot() {
		if ev.Content == "" {
			continue
		}
		doc := Document{
			ID:        uuid.New().String(),
			SessionID: sess.ID,
			Task:      sess.Task,
			Agent:     ev.Agent,
			EventType: ev.Type,
			Content:   ev.Content,
			CreatedAt: ev.Timestamp,
		}
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to index event: %w", err)
		}
	}

	if err := ix.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Search runs a full-text query over indexed session events.
func (ix *Index) Search(queryText string, limit int) ([]Hit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	searchReq := bleve.NewSearchRequest(bleve.NewMatchQuery(queryText))
	searchReq.Size = limit
	searchReq.Fields = []string{"session_id", "agent", "event_type", "content"}

	searchResult, err := ix.index.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var hits []Hit
	for _, hit := range searchResult.Hits {
		// BM25 scores can exceed 1; squash high scores into 0-1
		score := float32(hit.Score)
		if score > 1 {
			score = 1 - (1 / (1 + score))
		}

		sessionID, _ := hit.Fields["session_id"].(string)
		agent, _ := hit.Fields["agent"].(string)
		eventType, _ := hit.Fields["event_type"].(string)
		content, _ := hit.Fields["content"].(string)

		hits = append(hits, Hit{
			SessionID: sessionID,
			Agent:     agent,
			EventType: eventType,
			Content:   content,
			Score:     score,
		})
	}

	return hits, nil
}

// DocCount reports how many documents the index holds.
func (ix *Index) DocCount() (uint64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.index.DocCount()
}

// Close closes the underlying index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.index.Close()
}
