package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
	infra "github.com/megauravmahendra-png/expense-intelligence/internal/infra/bigquery"
)

const sampleStatementText = "01Oct,2025 PaidtoSudamaSupane ₹26 10:01AM UPITransactionID:564069511552 PaidbyCanaraBank7191 " +
	"02Oct,2025 ReceivedfromRameshKumar ₹500 11:15AM UPITransactionID:111222333 " +
	"03Oct,2025 SelftransfertoOwnAccount ₹5,000 09:00AM UPITransactionID:999888777"

type fakeRepo struct {
	documents    []*infra.DocumentRow
	transactions []*infra.TransactionRow

	runStarted    bool
	runFailed     bool
	runFailedErr  error
	runSucceeded  bool
	succeededWith int

	docStatuses map[string]string

	insertTxErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docStatuses: map[string]string{}}
}

func (f *fakeRepo) InsertDocument(ctx context.Context, row *infra.DocumentRow) error {
	f.documents = append(f.documents, row)
	return nil
}

func (f *fakeRepo) MarkDocumentProcessed(ctx context.Context, documentID, status string) error {
	f.docStatuses[documentID] = status
	return nil
}

func (f *fakeRepo) StartParsingRun(ctx context.Context, documentID, extractorType string) (string, error) {
	f.runStarted = true
	return "run-1", nil
}

func (f *fakeRepo) MarkParsingRunFailed(ctx context.Context, parsingRunID string, parseErr error) {
	f.runFailed = true
	f.runFailedErr = parseErr
}

func (f *fakeRepo) MarkParsingRunSucceeded(ctx context.Context, parsingRunID string, transactionCount int) error {
	f.runSucceeded = true
	f.succeededWith = transactionCount
	return nil
}

func (f *fakeRepo) InsertTransactions(ctx context.Context, rows []*infra.TransactionRow) error {
	if f.insertTxErr != nil {
		return f.insertTxErr
	}
	f.transactions = append(f.transactions, rows...)
	return nil
}

type fakeStorage struct {
	data []byte
	err  error
}

func (f *fakeStorage) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	return f.data, f.err
}

type fakeAcquirer struct {
	text string
	err  error
}

func (f *fakeAcquirer) AcquireText(ctx context.Context, name string, data []byte) (string, error) {
	return f.text, f.err
}

type staticRules []extractor.MerchantRule

func (s staticRules) Load(ctx context.Context) ([]extractor.MerchantRule, error) {
	return s, nil
}

func TestPipelineIngestsStatement(t *testing.T) {
	repo := newFakeRepo()
	p := NewStatementIngestionPipeline(Deps{
		Repo:     repo,
		Storage:  &fakeStorage{data: []byte("%PDF-")},
		Acquirer: &fakeAcquirer{text: sampleStatementText},
		Rules:    staticRules(nil),
		UserID:   "user-1",
	})

	state := &PipelineState{GCSURI: "gs://bucket/statements/2025-10.pdf"}
	if err := p.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(repo.documents) != 1 {
		t.Fatalf("documents created = %d, want 1", len(repo.documents))
	}
	doc := repo.documents[0]
	if doc.SourceFilename != "2025-10.pdf" {
		t.Errorf("SourceFilename = %q", doc.SourceFilename)
	}
	if doc.UserID != "user-1" {
		t.Errorf("UserID = %q", doc.UserID)
	}

	if !repo.runStarted {
		t.Error("parsing run was not started")
	}

	// The self transfer is filtered, leaving two transactions.
	if len(repo.transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(repo.transactions))
	}
	first := repo.transactions[0]
	if first.Counterparty != "Sudama Supane" || first.Direction != "SENT" {
		t.Errorf("unexpected first transaction: %+v", first)
	}
	if first.DocumentID != state.DocumentID || first.ParsingRunID != "run-1" {
		t.Errorf("lineage not propagated: %+v", first)
	}
	second := repo.transactions[1]
	if second.Counterparty != "Ramesh Kumar" || !second.CategoryName.Valid || second.CategoryName.StringVal != "Income" {
		t.Errorf("unexpected second transaction: %+v", second)
	}

	if !repo.runSucceeded || repo.succeededWith != 2 {
		t.Errorf("run success: %v with count %d, want 2", repo.runSucceeded, repo.succeededWith)
	}
	if repo.docStatuses[state.DocumentID] != DocumentStatusParsed {
		t.Errorf("document status = %q, want PARSED", repo.docStatuses[state.DocumentID])
	}
}

func TestPipelineSkipsDocumentCreationWhenPreset(t *testing.T) {
	repo := newFakeRepo()
	p := NewStatementIngestionPipeline(Deps{
		Repo:     repo,
		Storage:  &fakeStorage{data: []byte("%PDF-")},
		Acquirer: &fakeAcquirer{text: sampleStatementText},
	})

	state := &PipelineState{
		GCSURI:         "gs://bucket/statements/2025-10.pdf",
		SourceFilename: "2025-10.pdf",
		DocumentID:     "doc-preexisting",
	}
	if err := p.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(repo.documents) != 0 {
		t.Errorf("document should not be re-created, got %d inserts", len(repo.documents))
	}
	if repo.transactions[0].DocumentID != "doc-preexisting" {
		t.Errorf("DocumentID = %q", repo.transactions[0].DocumentID)
	}
}

func TestPipelineMarksRunFailedOnAcquireError(t *testing.T) {
	repo := newFakeRepo()
	acquireErr := errors.New("unreadable text layer")
	p := NewStatementIngestionPipeline(Deps{
		Repo:     repo,
		Storage:  &fakeStorage{data: []byte("%PDF-")},
		Acquirer: &fakeAcquirer{err: acquireErr},
	})

	state := &PipelineState{GCSURI: "gs://bucket/statements/bad.pdf"}
	err := p.Execute(context.Background(), state)
	if err == nil {
		t.Fatal("Execute() should fail")
	}
	if !errors.Is(err, acquireErr) {
		t.Errorf("error chain should include acquire error, got %v", err)
	}

	if !repo.runFailed {
		t.Error("parsing run should be marked failed")
	}
	if repo.runSucceeded {
		t.Error("parsing run must not be marked succeeded")
	}
	if len(repo.transactions) != 0 {
		t.Errorf("no transactions should be inserted, got %d", len(repo.transactions))
	}
	if repo.docStatuses[state.DocumentID] != DocumentStatusFailed {
		t.Errorf("document status = %q, want FAILED", repo.docStatuses[state.DocumentID])
	}
}

func TestPipelineMarksRunFailedOnInsertError(t *testing.T) {
	repo := newFakeRepo()
	repo.insertTxErr = errors.New("bigquery unavailable")
	p := NewStatementIngestionPipeline(Deps{
		Repo:     repo,
		Storage:  &fakeStorage{data: []byte("%PDF-")},
		Acquirer: &fakeAcquirer{text: sampleStatementText},
	})

	state := &PipelineState{GCSURI: "gs://bucket/statements/2025-10.pdf"}
	if err := p.Execute(context.Background(), state); err == nil {
		t.Fatal("Execute() should fail")
	}
	if !repo.runFailed {
		t.Error("parsing run should be marked failed")
	}
}
