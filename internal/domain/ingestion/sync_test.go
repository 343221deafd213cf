package ingestion

import (
	"context"
	"errors"
	"testing"

	"saledash/internal/domain/transaction"
)

type MockDatasetSource struct {
	FetchFunc func(ctx context.Context) ([]RawRecord, error)
}

func (m *MockDatasetSource) Fetch(ctx context.Context) ([]RawRecord, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	return nil, nil
}

type MockPublisher struct {
	Events []DatasetSynced
	Err    error
}

func (m *MockPublisher) PublishDatasetSynced(ctx context.Context, event DatasetSynced) error {
	m.Events = append(m.Events, event)
	return m.Err
}

// MockTransactionRepo is a minimal transaction.Repository that only records Replace
type MockTransactionRepo struct {
	transaction.Repository

	ReplaceFunc func(ctx context.Context, run transaction.SyncRun, records []transaction.Transaction) (int64, error)
	replaced    []transaction.Transaction
	calls       int
}

func (m *MockTransactionRepo) Replace(ctx context.Context, run transaction.SyncRun, records []transaction.Transaction) (int64, error) {
	m.calls++
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, run, records)
	}
	m.replaced = records
	return int64(len(records)), nil
}

func sampleSource(t *testing.T) *MockDatasetSource {
	raw := decodeRaw(t, `[
		{"title":"A","price":150,"dateOfSale":"2024-03-05","sold":true},
		{"title":"B","price":850,"dateOfSale":"2024-03-10","sold":false}
	]`)
	return &MockDatasetSource{
		FetchFunc: func(ctx context.Context) ([]RawRecord, error) {
			return raw, nil
		},
	}
}

func TestSyncDataset_Success(t *testing.T) {
	repo := &MockTransactionRepo{}
	pub := &MockPublisher{}
	svc := NewSyncService(sampleSource(t), repo, pub)

	result, err := svc.SyncDataset(context.Background())
	if err != nil {
		t.Fatalf("SyncDataset() failed: %v", err)
	}

	if result.Fetched != 2 || result.Stored != 2 {
		t.Errorf("Fetched=%d Stored=%d, want 2/2", result.Fetched, result.Stored)
	}
	if len(result.Records) != 2 || len(repo.replaced) != 2 {
		t.Errorf("records returned=%d replaced=%d, want 2", len(result.Records), len(repo.replaced))
	}
	if len(pub.Events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.Events))
	}
	if pub.Events[0].RunID != result.RunID {
		t.Error("published event run ID does not match result")
	}
}

func TestSyncDataset_FetchError(t *testing.T) {
	repo := &MockTransactionRepo{}
	pub := &MockPublisher{}
	source := &MockDatasetSource{
		FetchFunc: func(ctx context.Context) ([]RawRecord, error) {
			return nil, errors.New("dial tcp: no route to host")
		},
	}
	svc := NewSyncService(source, repo, pub)

	if _, err := svc.SyncDataset(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if repo.calls != 0 {
		t.Errorf("Replace called %d times, want 0", repo.calls)
	}
	if len(pub.Events) != 0 {
		t.Errorf("published %d events, want 0", len(pub.Events))
	}
}

func TestSyncDataset_InvalidRecordLeavesStoreUntouched(t *testing.T) {
	repo := &MockTransactionRepo{}
	source := &MockDatasetSource{
		FetchFunc: func(ctx context.Context) ([]RawRecord, error) {
			return decodeRaw(t, `[{"title":"x","price":1,"dateOfSale":"someday"}]`), nil
		},
	}
	svc := NewSyncService(source, repo, nil)

	_, err := svc.SyncDataset(context.Background())
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("error = %v, want ErrInvalidRecord", err)
	}
	if repo.calls != 0 {
		t.Errorf("Replace called %d times, want 0", repo.calls)
	}
}

func TestSyncDataset_ReplaceErrorSkipsPublish(t *testing.T) {
	repoErr := errors.New("deadlock detected")
	repo := &MockTransactionRepo{
		ReplaceFunc: func(ctx context.Context, run transaction.SyncRun, records []transaction.Transaction) (int64, error) {
			return 0, repoErr
		},
	}
	pub := &MockPublisher{}
	svc := NewSyncService(sampleSource(t), repo, pub)

	_, err := svc.SyncDataset(context.Background())
	if !errors.Is(err, repoErr) {
		t.Errorf("error = %v, want wrapped %v", err, repoErr)
	}
	if len(pub.Events) != 0 {
		t.Errorf("published %d events after failed replace, want 0", len(pub.Events))
	}
}

func TestSyncDataset_PublishErrorIsNotFatal(t *testing.T) {
	pub := &MockPublisher{Err: errors.New("channel closed")}
	svc := NewSyncService(sampleSource(t), &MockTransactionRepo{}, pub)

	if _, err := svc.SyncDataset(context.Background()); err != nil {
		t.Errorf("SyncDataset() error = %v, want nil when only publishing fails", err)
	}
}
