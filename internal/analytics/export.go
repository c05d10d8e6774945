package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-survey/builder/pkg/storage"
)

// ObjectStore is where exported reports are written.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	PresignDownload(ctx context.Context, key string) (string, error)
	PresignExpire() time.Duration
}

// Export describes an uploaded report.
type Export struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Exporter writes reports as JSON objects.
type Exporter struct {
	store  ObjectStore
	logger *zap.Logger
	now    func() time.Time
}

// NewExporter creates an exporter over store.
func NewExporter(store ObjectStore, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{store: store, logger: logger, now: time.Now}
}

// Export uploads report and returns a time-limited download link.
func (e *Exporter) Export(ctx context.Context, report Report) (*Export, error) {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	key := storage.ReportKey(report.SurveyID, uuid.NewString())
	if err := e.store.Upload(ctx, key, "application/json", bytes.NewReader(body)); err != nil {
		e.logger.Error("report upload failed", zap.String("survey_id", report.SurveyID), zap.Error(err))
		return nil, err
	}
	url, err := e.store.PresignDownload(ctx, key)
	if err != nil {
		return nil, err
	}
	e.logger.Info("report exported", zap.String("survey_id", report.SurveyID), zap.String("key", key))
	return &Export{Key: key, URL: url, ExpiresAt: e.now().Add(e.store.PresignExpire())}, nil
}
