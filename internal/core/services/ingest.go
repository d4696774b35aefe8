package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/logger"
)

// Ingestor drives one ingestion batch: every candidate file in the dataset
// is loaded, normalised and chunked. A file that fails is tallied in the
// report and the batch carries on.
type Ingestor struct {
	source   driven.DocumentSource
	loaders  driven.LoaderRegistry
	pipeline driven.PostProcessorPipeline
	log      logger.Logger
}

// NewIngestor creates an ingestor.
func NewIngestor(
	source driven.DocumentSource,
	loaders driven.LoaderRegistry,
	pipeline driven.PostProcessorPipeline,
) *Ingestor {
	return &Ingestor{
		source:   source,
		loaders:  loaders,
		pipeline: pipeline,
		log:      logger.For("ingest"),
	}
}

// Ingest returns the chunks of every loadable document, in walk order.
func (i *Ingestor) Ingest(ctx context.Context) ([]domain.Chunk, *domain.IngestReport, error) {
	var chunks []domain.Chunk
	report, err := i.Walk(ctx, func(doc *domain.Document) error {
		out, err := i.pipeline.Process(ctx, doc)
		if err != nil {
			return err
		}
		chunks = append(chunks, out...)
		return nil
	})
	if err != nil {
		return nil, report, err
	}
	report.Chunks = len(chunks)
	i.log.Info("%d documents, %d chunks, %d failed, %d empty",
		report.Documents, report.Chunks, report.TotalFailed(), report.Empty)
	return chunks, report, nil
}

// Walk loads every candidate file and calls fn for each document produced.
// An error from fn counts the file as failed. Only a missing dataset or a
// cancelled context stops the walk.
func (i *Ingestor) Walk(ctx context.Context, fn func(doc *domain.Document) error) (*domain.IngestReport, error) {
	report := domain.NewIngestReport()
	docsCh, errsCh := i.source.FullSync(ctx)

	for docsCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return report, ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if err := i.recordSourceError(report, err); err != nil {
				return report, err
			}

		case raw, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}
			i.ingestOne(ctx, report, &raw, fn)
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (i *Ingestor) ingestOne(ctx context.Context, report *domain.IngestReport, raw *domain.RawDocument, fn func(*domain.Document) error) {
	i.log.Debug("loading %s", raw.Path)
	docs, err := i.loaders.Load(ctx, raw)
	if err != nil {
		i.log.Warn("skipping %s: %v", raw.Path, err)
		report.RecordFailure(raw.Path, raw.Type, err)
		return
	}
	for idx := range docs {
		if err := fn(&docs[idx]); err != nil {
			i.log.Warn("skipping %s: %v", raw.Path, err)
			report.RecordFailure(raw.Path, raw.Type, fmt.Errorf("process %s: %w", docs[idx].Source, err))
			return
		}
	}
	report.RecordLoaded(raw.Type, len(docs))
}

// recordSourceError tallies a per-file read error, or returns the error
// when the dataset itself is unusable.
func (i *Ingestor) recordSourceError(report *domain.IngestReport, err error) error {
	var ingestErr *domain.IngestionError
	if errors.As(err, &ingestErr) {
		i.log.Warn("skipping %s: %v", ingestErr.Path, ingestErr.Err)
		report.RecordFailure(ingestErr.Path, ingestErr.Type, err)
		return nil
	}
	return fmt.Errorf("read dataset %s: %w", i.source.Root(), err)
}
