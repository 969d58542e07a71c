package interfaces

import (
	"context"
	"encoding/json"

	"github.com/ternarybob/creatorlogic/internal/models"
)

// RunClient - the remote job platform (submit, poll, fetch dataset, fetch log)
type RunClient interface {
	SubmitRun(ctx context.Context, actorID string, input interface{}) (*models.RemoteRun, error)
	GetRun(ctx context.Context, actorID, runID string) (*models.RemoteRun, error)
	GetDatasetItems(ctx context.Context, datasetID string) ([]json.RawMessage, error)
	GetLogTail(ctx context.Context, runID string, lines int) ([]string, error)
}

// PartnershipCache - in-process snapshot of the partnerships collection.
// Get reports ok=false when the cache is empty and must be repopulated.
type PartnershipCache interface {
	Get() ([]*models.Partnership, bool)
	Set(partnerships []*models.Partnership)
	Invalidate()
}
