// Package export archives recommendation runs as JSON documents in blob
// storage so rankings can be audited after herd state has moved on.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"herdcore/internal/blob"
	"herdcore/internal/breeding"
	"herdcore/pkg/domain"
)

const runContentType = "application/json"

// RunDocument is the archived form of one recommendation run.
type RunDocument struct {
	RunID       string               `json:"run_id"`
	PropertyID  string               `json:"property_id"`
	Sex         domain.Sex           `json:"sex,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
	Results     []domain.ScoreResult `json:"results"`
}

// Archiver writes recommendation runs to a blob store.
type Archiver struct {
	store blob.Store
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// NewArchiver constructs an archiver over the given blob store.
func NewArchiver(store blob.Store, log *zap.Logger) *Archiver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Archiver{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// WithClock overrides the archiver clock. Intended for tests.
func (a *Archiver) WithClock(now func() time.Time) *Archiver {
	a.now = now
	return a
}

// ArchiveRun stores the run document under a fresh run id and returns the
// blob metadata.
func (a *Archiver) ArchiveRun(ctx context.Context, req breeding.RankRequest, results []domain.ScoreResult) (blob.Info, error) {
	doc := RunDocument{
		RunID:       a.newID(),
		PropertyID:  req.PropertyID,
		Sex:         req.Sex,
		GeneratedAt: a.now(),
		Results:     results,
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return blob.Info{}, errors.Wrap(err, "encode run document")
	}
	key := runKey(doc.PropertyID, doc.RunID)
	info, err := a.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: runContentType,
		Metadata: map[string]string{
			"property_id":  doc.PropertyID,
			"result_count": strconv.Itoa(len(results)),
		},
	})
	if err != nil {
		return blob.Info{}, errors.Wrapf(err, "archive run %s", doc.RunID)
	}
	a.log.Info("recommendation run archived",
		zap.String("run_id", doc.RunID),
		zap.String("property_id", doc.PropertyID),
		zap.Int("results", len(results)),
	)
	return info, nil
}

// ListRuns returns archived run metadata for a property, ordered by key.
func (a *Archiver) ListRuns(ctx context.Context, propertyID string) ([]blob.Info, error) {
	return a.store.List(ctx, fmt.Sprintf("recommendations/%s/", propertyID))
}

// LoadRun fetches and decodes an archived run by blob key.
func (a *Archiver) LoadRun(ctx context.Context, key string) (RunDocument, error) {
	_, body, err := a.store.Get(ctx, key)
	if err != nil {
		return RunDocument{}, errors.Wrapf(err, "load run %s", key)
	}
	defer func() { _ = body.Close() }()
	var doc RunDocument
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return RunDocument{}, errors.Wrapf(err, "decode run %s", key)
	}
	return doc, nil
}

func runKey(propertyID, runID string) string {
	return fmt.Sprintf("recommendations/%s/%s.json", propertyID, runID)
}
