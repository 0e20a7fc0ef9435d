// Package batch tags many independent documents in parallel.
//
// All workers share one read-only model. Every document gets its own
// pipeline, so context windows never cross document boundaries and tokens
// within a document are tagged strictly in order.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kittclouds/postag/pkg/corpus"
	"github.com/kittclouds/postag/pkg/model"
	"github.com/kittclouds/postag/pkg/pipeline"
	"github.com/kittclouds/postag/pkg/pool"
	"github.com/kittclouds/postag/pkg/tagger"
)

// Document is one unit of input text.
type Document struct {
	ID   string
	Text string
}

// Result is the tagged form of one Document.
type Result struct {
	ID     string
	Tokens []corpus.Token
	Stats  pipeline.Stats
}

// Config holds batch settings.
type Config struct {
	Mode    tagger.Mode
	Workers int
}

// Service tags documents against a shared model.
type Service struct {
	config Config
	model  *model.Model
	logger *slog.Logger
}

// NewService creates a batch service. Workers below 1 are treated as 1.
func NewService(config Config, m *model.Model, logger *slog.Logger) (*Service, error) {
	if _, err := tagger.New(config.Mode, m); err != nil {
		return nil, err
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{config: config, model: m, logger: logger}, nil
}

// GetConfig returns the current configuration.
func (s *Service) GetConfig() Config {
	return s.config
}

// TagDocuments tags docs and returns results in document order. Cancelling
// ctx stops further documents from being started.
func (s *Service) TagDocuments(ctx context.Context, docs []Document) ([]Result, error) {
	if len(docs) == 0 {
		return nil, errors.New("batch: no documents")
	}

	results := make([]Result, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i, doc := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.tagOne(doc)
			if err != nil {
				return fmt.Errorf("batch: document %q: %w", doc.ID, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// gctx is done once Wait returns; check the caller's ctx.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.logger.Debug("batch finished", "documents", len(docs), "workers", s.config.Workers)
	return results, nil
}

func (s *Service) tagOne(doc Document) (Result, error) {
	p, err := pipeline.New(s.config.Mode, s.model, pipeline.WithLogger(s.logger))
	if err != nil {
		return Result{}, err
	}

	words := pool.GetWords()
	defer pool.PutWords(words)
	sc := corpus.NewWordScanner(strings.NewReader(doc.Text), doc.ID)
	for w := range sc.Words() {
		*words = append(*words, w)
	}
	if err := sc.Err(); err != nil {
		return Result{}, err
	}

	buf := pool.GetTokens()
	defer pool.PutTokens(buf)
	*buf = p.AppendTag(*buf, *words)

	return Result{ID: doc.ID, Tokens: slices.Clone(*buf), Stats: p.Stats()}, nil
}
