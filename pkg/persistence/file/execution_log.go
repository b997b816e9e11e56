package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/brokerops/dealflow/pkg/models"
)

// ExecutionLogRepository appends execution records to one JSON-lines file per
// deal under executions/. Append-only matches the audit semantics; records
// are never rewritten.
type ExecutionLogRepository struct {
	root string
	mu   sync.Mutex
}

// NewExecutionLogRepository creates a new file-backed execution log.
func NewExecutionLogRepository(root string) *ExecutionLogRepository {
	return &ExecutionLogRepository{root: root}
}

// Append adds one record to the deal's log file.
func (er *ExecutionLogRepository) Append(_ context.Context, record *models.ExecutionRecord) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	dir := path.Join(er.root, "executions")

	err := os.MkdirAll(dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal execution record: %w", err)
	}

	f, err := os.OpenFile(path.Join(dir, record.DealID+".jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open execution log for deal %s: %w", record.DealID, err)
	}

	defer func() {
		_ = f.Close()
	}()

	_, err = f.Write(append(data, '\n'))
	if err != nil {
		return fmt.Errorf("failed to append execution record for deal %s: %w", record.DealID, err)
	}

	return nil
}

// ListByDeal returns the deal's records in append order. A deal with no
// history yields an empty slice.
func (er *ExecutionLogRepository) ListByDeal(_ context.Context, dealID string) ([]*models.ExecutionRecord, error) {
	er.mu.Lock()
	defer er.mu.Unlock()

	f, err := os.Open(path.Join(er.root, "executions", dealID+".jsonl"))
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.ExecutionRecord{}, nil
		}

		return nil, fmt.Errorf("failed to open execution log for deal %s: %w", dealID, err)
	}

	defer func() {
		_ = f.Close()
	}()

	records := make([]*models.ExecutionRecord, 0)
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		var record models.ExecutionRecord

		err = json.Unmarshal(scanner.Bytes(), &record)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution record for deal %s: %w", dealID, err)
		}

		records = append(records, &record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read execution log for deal %s: %w", dealID, err)
	}

	return records, nil
}
