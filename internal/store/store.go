// Package store persists embedding run results in a chromem-go vector
// database and answers similarity queries over them.
package store

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"ai-processor/internal/config"
	"ai-processor/internal/helper"
	"ai-processor/internal/models"
)

const compress = false

// VectorStore encapsulates the chromem-go database operations
type VectorStore struct {
	db            *chromem.DB
	collection    *chromem.Collection
	dbPath        string
	compress      bool
	encryptionKey string
	filePath      string
}

// NewVectorStore initializes a vector store, persistent unless cfg.InMemory
// is set.
func NewVectorStore(cfg *config.Store) (*VectorStore, error) {
	var (
		db  *chromem.DB
		err error
	)
	if cfg.InMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	return &VectorStore{
		db:            db,
		dbPath:        cfg.Path,
		compress:      compress,
		encryptionKey: cfg.EncryptionKey,
		filePath:      cfg.Path + "/" + cfg.Collection + ".chromem",
	}, nil
}

// GetOrCreateCollection opens the named collection, creating it on first use.
func (m *VectorStore) GetOrCreateCollection(name string) (*chromem.Collection, error) {
	c, err := m.db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}
	m.collection = c
	return c, nil
}

// AddResults stores the results of one embedding run. Each result becomes a
// document carrying the input text, its vector and the source/chunk metadata.
func (m *VectorStore) AddResults(ctx context.Context, source string, results []models.Result) error {
	docs := make([]chromem.Document, 0, len(results))
	for _, res := range results {
		if len(res.Embedding) == 0 {
			continue
		}
		id, err := helper.GenerateUUID()
		if err != nil {
			return err
		}
		docs = append(docs, chromem.Document{
			ID:      id,
			Content: res.InputText,
			Metadata: map[string]string{
				"source": source,
				"chunk":  strconv.Itoa(res.Index),
			},
			Embedding: res.Embedding,
		})
	}
	if len(docs) == 0 {
		return nil
	}
	err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU())
	if err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

// Search returns the topK nearest stored documents for the query embedding.
func (m *VectorStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]chromem.Result, error) {
	if n := m.collection.Count(); n < topK {
		topK = n
	}
	if topK == 0 {
		return nil, nil
	}
	results, err := m.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       topK,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}
	return results, nil
}

// DeleteCollection drops the current collection.
func (m *VectorStore) DeleteCollection() error {
	err := m.db.DeleteCollection(m.collection.Name)
	if err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	return nil
}

// Export writes an encrypted snapshot of the collection next to the
// database path. Only useful for in-memory stores.
func (m *VectorStore) Export(ctx context.Context) error {
	if m.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	if m.collection == nil {
		return fmt.Errorf("collection is required")
	}

	log.Debug().Msgf("Exporting collection %s to %s", m.collection.Name, m.filePath)
	err := m.db.ExportToFile(m.filePath, m.compress, m.encryptionKey, m.collection.Name)
	if err != nil {
		return fmt.Errorf("failed to export database: %v", err)
	}
	return nil
}

// Import restores a previously exported snapshot.
func (m *VectorStore) Import(ctx context.Context) error {
	err := m.db.ImportFromFile(m.filePath, m.encryptionKey, m.collection.Name)
	if err != nil {
		return fmt.Errorf("failed to import database: %v", err)
	}
	return nil
}
