package usecase

import (
	"bytes"
	"context"
	"fmt"

	"github.com/kirillkom/order-insights/internal/core/ports"
)

// ReportUseCase renders the prediction report over every persisted document
// and archives the artifact under the run id.
type ReportUseCase struct {
	store    ports.DocumentStore
	renderer ports.ReportRenderer
	archive  ports.ReportArchive
}

func NewReportUseCase(store ports.DocumentStore, renderer ports.ReportRenderer, archive ports.ReportArchive) *ReportUseCase {
	return &ReportUseCase{
		store:    store,
		renderer: renderer,
		archive:  archive,
	}
}

func (uc *ReportUseCase) BuildPredictionReport(ctx context.Context, runID string) ([]byte, error) {
	docs, err := uc.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	artifact, err := uc.renderer.Render(docs)
	if err != nil {
		return nil, fmt.Errorf("render prediction report: %w", err)
	}

	if uc.archive != nil {
		key := fmt.Sprintf("predictions-%s.xlsx", runID)
		if err := uc.archive.Save(ctx, key, bytes.NewReader(artifact)); err != nil {
			return nil, fmt.Errorf("archive prediction report: %w", err)
		}
	}
	return artifact, nil
}
