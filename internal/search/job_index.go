// Package search keeps a local bleve full-text index of job postings and
// answers the boosted relevance query used by the recommendation engine.
package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"jobfinder/internal/domain/recommendation"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"
)

const (
	docType = "job"

	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldLocation    = "location"
	fieldEmployerID  = "employer_id"

	bioBoost      = 2.0
	locationBoost = 2.0
	employerBoost = 3.0

	defaultQueryLimit   = 500
	defaultQueryTimeout = 5 * time.Second
	defaultOpenTimeout  = 2 * time.Second
	maxBioTerms         = 256
)

// BoostedQuery is the per-seeker relevance query.
type BoostedQuery struct {
	Bio         string
	Location    string
	EmployerIDs []uuid.UUID
}

// IsEmpty reports whether the query has no clause to run.
func (q BoostedQuery) IsEmpty() bool {
	return normalizeText(q.Bio) == "" && strings.TrimSpace(q.Location) == "" && len(q.EmployerIDs) == 0
}

type Options struct {
	QueryLimit   int
	QueryTimeout time.Duration
	// OpenTimeout bounds the wait for the index file lock held by another
	// process.
	OpenTimeout time.Duration
}

type jobDocument struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	EmployerID  string `json:"employer_id"`
}

func (jobDocument) Type() string { return docType }

type JobIndex struct {
	index   bleve.Index
	limit   int
	timeout time.Duration
}

// NewJobIndex opens the index at path, creating it when absent. An index
// locked by another process fails with ErrIndexUnavailable once
// opts.OpenTimeout passes. Changing the mapping requires removing the
// directory.
func NewJobIndex(path string, opts Options) (*JobIndex, error) {
	timeout := opts.OpenTimeout
	if timeout <= 0 {
		timeout = defaultOpenTimeout
	}
	storeCfg := map[string]interface{}{"bolt_timeout": timeout.String()}

	if _, err := os.Stat(path); err == nil {
		idx, openErr := bleve.OpenUsing(path, storeCfg)
		if openErr != nil {
			return nil, errors.Join(recommendation.ErrIndexUnavailable, fmt.Errorf("open job index: %w", openErr))
		}
		return newJobIndex(idx, opts), nil
	}

	idx, err := bleve.NewUsing(path, newIndexMapping(), bleve.Config.DefaultIndexType, bleve.Config.DefaultKVStore, storeCfg)
	if err != nil {
		return nil, errors.Join(recommendation.ErrIndexUnavailable, fmt.Errorf("create job index: %w", err))
	}
	return newJobIndex(idx, opts), nil
}

// NewMemJobIndex builds an index that lives only in memory.
func NewMemJobIndex(opts Options) (*JobIndex, error) {
	idx, err := bleve.NewMemOnly(newIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create in-memory job index: %w", err)
	}
	return newJobIndex(idx, opts), nil
}

func newJobIndex(idx bleve.Index, opts Options) *JobIndex {
	if opts.QueryLimit <= 0 {
		opts.QueryLimit = defaultQueryLimit
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = defaultQueryTimeout
	}
	return &JobIndex{index: idx, limit: opts.QueryLimit, timeout: opts.QueryTimeout}
}

func newIndexMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	keyword := bleve.NewKeywordFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(fieldTitle, text)
	doc.AddFieldMappingsAt(fieldDescription, text)
	doc.AddFieldMappingsAt(fieldCategory, text)
	doc.AddFieldMappingsAt(fieldLocation, keyword)
	doc.AddFieldMappingsAt(fieldEmployerID, keyword)

	im.AddDocumentMapping(docType, doc)
	im.DefaultType = docType
	im.DefaultMapping = doc
	return im
}

func toDocument(j recommendation.JobPosting) jobDocument {
	return jobDocument{
		Title:       j.Title,
		Description: j.Description,
		Category:    j.Category,
		Location:    normalizeKeyword(j.Location),
		EmployerID:  j.EmployerID.String(),
	}
}

// Sync makes the index mirror jobs exactly: every posting is upserted and
// documents for postings no longer in jobs are dropped, all in one batch.
// It returns how many stale documents were removed.
func (ix *JobIndex) Sync(ctx context.Context, jobs []recommendation.JobPosting) (int, error) {
	existing, err := ix.docIDs(ctx)
	if err != nil {
		return 0, err
	}

	batch := ix.index.NewBatch()
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		id := j.ID.String()
		delete(existing, id)
		if err := batch.Index(id, toDocument(j)); err != nil {
			return 0, fmt.Errorf("index job %s: %w", j.ID, err)
		}
	}
	for id := range existing {
		batch.Delete(id)
	}
	if batch.Size() == 0 {
		return 0, nil
	}
	if err := ix.index.Batch(batch); err != nil {
		return 0, fmt.Errorf("apply index batch: %w", err)
	}
	return len(existing), nil
}

func (ix *JobIndex) docIDs(ctx context.Context) (map[string]struct{}, error) {
	n, err := ix.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count indexed jobs: %w", err)
	}
	ids := make(map[string]struct{}, n)
	if n == 0 {
		return ids, nil
	}

	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(n)
	res, err := ix.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list indexed jobs: %w", err)
	}
	for _, hit := range res.Hits {
		ids[hit.ID] = struct{}{}
	}
	return ids, nil
}

func (ix *JobIndex) DocCount() (uint64, error) {
	return ix.index.DocCount()
}

func (ix *JobIndex) Close() error {
	return ix.index.Close()
}

// Query returns a relevance score per matching job id. Jobs absent from the
// map did not match any clause.
func (ix *JobIndex) Query(ctx context.Context, q BoostedQuery) (map[uuid.UUID]float64, error) {
	scores := make(map[uuid.UUID]float64)

	clauses := buildClauses(q)
	if len(clauses) == 0 {
		return scores, nil
	}

	ctx, cancel := context.WithTimeout(ctx, ix.timeout)
	defer cancel()

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(clauses...))
	req.Size = ix.limit

	res, err := ix.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, errors.Join(recommendation.ErrIndexUnavailable, err)
	}

	for _, hit := range res.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		scores[id] = hit.Score
	}
	return scores, nil
}

func buildClauses(q BoostedQuery) []blevequery.Query {
	clauses := make([]blevequery.Query, 0, 3+len(q.EmployerIDs))

	if bio := normalizeText(q.Bio); bio != "" {
		for _, field := range []string{fieldCategory, fieldDescription} {
			mq := bleve.NewMatchQuery(bio)
			mq.SetField(field)
			mq.SetBoost(bioBoost)
			clauses = append(clauses, mq)
		}
	}

	if loc := normalizeKeyword(q.Location); loc != "" {
		tq := bleve.NewTermQuery(loc)
		tq.SetField(fieldLocation)
		tq.SetBoost(locationBoost)
		clauses = append(clauses, tq)
	}

	seen := make(map[uuid.UUID]struct{}, len(q.EmployerIDs))
	for _, id := range q.EmployerIDs {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		tq := bleve.NewTermQuery(id.String())
		tq.SetField(fieldEmployerID)
		tq.SetBoost(employerBoost)
		clauses = append(clauses, tq)
	}
	return clauses
}
