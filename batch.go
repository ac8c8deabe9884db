package certmail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/alnah/go-certmail/internal/fileutil"
	"github.com/alnah/go-certmail/internal/metrics"
)

// ErrMissingEmail is the failure reason for records without an address.
var ErrMissingEmail = errors.New("email is required")

// DocumentGenerator renders one certificate. Generator implements it.
type DocumentGenerator interface {
	Generate(ctx context.Context, rec Record) (*GeneratedDocument, error)
}

// Deliverer emails one rendered certificate. DeliveryService implements it.
type Deliverer interface {
	Deliver(ctx context.Context, email, documentPath, recipientName string) error
}

// Compile-time interface checks
var (
	_ DocumentGenerator = (*Generator)(nil)
	_ Deliverer         = (*DeliveryService)(nil)
)

// Summary reports the outcome of a batch.
// Succeeded+Failed always equals Total.
type Summary struct {
	Total     int     `json:"total"`
	Succeeded int     `json:"succeeded"`
	Failed    int     `json:"failed"`
	Results   Results `json:"results"`
}

// Results lists the records by outcome, in input order.
type Results struct {
	Success []Success `json:"success"`
	Failure []Failure `json:"failure"`
}

// Success is a delivered record.
type Success struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Failure is a record that could not be generated or delivered.
type Failure struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func newSummary(total int) *Summary {
	return &Summary{
		Total:   total,
		Results: Results{Success: []Success{}, Failure: []Failure{}},
	}
}

func (s *Summary) succeed(rec Record) {
	s.Succeeded++
	s.Results.Success = append(s.Results.Success, Success{Email: rec.Email, Name: rec.Name})
}

func (s *Summary) fail(rec Record, err error) {
	s.Failed++
	s.Results.Failure = append(s.Results.Failure, Failure{Email: rec.Email, Name: rec.Name, Reason: err.Error()})
}

// Batch runs records through generation, delivery and cleanup.
type Batch struct {
	generator DocumentGenerator
	deliverer Deliverer
	logger    zerolog.Logger

	pending sync.WaitGroup
}

// NewBatch creates a Batch over g and d.
func NewBatch(g DocumentGenerator, d Deliverer, opts ...Option) *Batch {
	s := applyOptions(opts)
	return &Batch{
		generator: g,
		deliverer: d,
		logger:    s.logger,
	}
}

// Run processes records one at a time, in order. A record that fails to
// render or deliver is reported in the summary and the batch continues.
// Configuration and missing-asset errors abort the batch and return a nil
// summary. If ctx is cancelled the remaining records are reported as failed
// and the summary is returned together with the context error.
func (b *Batch) Run(ctx context.Context, records []Record) (*Summary, error) {
	summary := newSummary(len(records))

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			for _, rest := range records[i:] {
				summary.fail(rest, err)
				metrics.IncBatchRecord(false)
			}
			b.logCompleted(summary)
			return summary, fmt.Errorf("batch interrupted after %d of %d records: %w", i, len(records), err)
		}

		err := b.process(ctx, rec)
		if err != nil && isFatal(err) {
			b.logger.Error().Err(err).Str("email", rec.Email).Msg("batch aborted")
			return nil, err
		}

		metrics.IncBatchRecord(err == nil)
		if err != nil {
			summary.fail(rec, err)
			b.logger.Warn().Err(err).Str("email", rec.Email).Msg("bulk certificate failed")
			continue
		}
		summary.succeed(rec)
		b.logger.Info().Str("email", rec.Email).Msg("bulk certificate sent")
	}

	b.logCompleted(summary)
	return summary, nil
}

func (b *Batch) logCompleted(s *Summary) {
	b.logger.Info().
		Int("total", s.Total).
		Int("succeeded", s.Succeeded).
		Int("failed", s.Failed).
		Msg("bulk generate completed")
}

// process runs one record through generate, deliver and cleanup.
func (b *Batch) process(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.Email) == "" {
		return ErrMissingEmail
	}

	doc, err := b.generator.Generate(ctx, rec)
	if err != nil {
		return err
	}
	defer b.cleanup(doc)

	return b.deliverer.Deliver(ctx, rec.Email, doc.Path, rec.DisplayName())
}

// Issue generates the certificate for rec and returns once the document
// exists. Delivery and cleanup continue in the background, detached from
// ctx cancellation; their outcome is logged. Use Wait to drain them.
func (b *Batch) Issue(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.Email) == "" {
		return ErrMissingEmail
	}

	doc, err := b.generator.Generate(ctx, rec)
	if err != nil {
		b.logger.Error().Err(err).Str("email", rec.Email).Str("name", rec.Name).Msg("single certificate failed")
		return err
	}

	detached := context.WithoutCancel(ctx)
	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		defer b.cleanup(doc)

		if err := b.deliverer.Deliver(detached, rec.Email, doc.Path, rec.DisplayName()); err != nil {
			b.logger.Error().Err(err).Str("email", rec.Email).Msg("single certificate email failed")
			return
		}
		b.logger.Info().Str("email", rec.Email).Str("name", rec.Name).Msg("single certificate emailed")
	}()
	return nil
}

// Wait blocks until every delivery started by Issue has finished.
func (b *Batch) Wait() {
	b.pending.Wait()
}

// cleanup deletes the generated document. Failure is logged, never returned.
func (b *Batch) cleanup(doc *GeneratedDocument) {
	if err := fileutil.Remove(doc.Path); err != nil {
		b.logger.Warn().Err(err).Str("path", doc.Path).Msg("failed to delete temp file")
		return
	}
	b.logger.Debug().Str("path", doc.Path).Msg("temp file deleted")
}
