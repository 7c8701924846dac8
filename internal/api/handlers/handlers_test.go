package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
	infra "github.com/megauravmahendra-png/expense-intelligence/internal/infra/bigquery"
	"github.com/megauravmahendra-png/expense-intelligence/internal/jobs"
	"github.com/megauravmahendra-png/expense-intelligence/internal/jobs/inmemory"
)

type fakeRepo struct {
	documents []*infra.DocumentRow
	byChksum  map[string]*infra.DocumentRow
	rules     []extractor.MerchantRule

	queried  []civil.Date
	queryErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byChksum: map[string]*infra.DocumentRow{}}
}

func (f *fakeRepo) InsertDocument(ctx context.Context, row *infra.DocumentRow) error {
	f.documents = append(f.documents, row)
	f.byChksum[row.ChecksumSHA256] = row
	return nil
}

func (f *fakeRepo) MarkDocumentProcessed(ctx context.Context, documentID, status string) error {
	return nil
}

func (f *fakeRepo) FindDocumentByChecksum(ctx context.Context, checksum string) (*infra.DocumentRow, error) {
	return f.byChksum[checksum], nil
}

func (f *fakeRepo) ListDocuments(ctx context.Context) ([]*infra.DocumentRow, error) {
	return f.documents, nil
}

func (f *fakeRepo) StartParsingRun(ctx context.Context, documentID, extractorType string) (string, error) {
	return "run-1", nil
}

func (f *fakeRepo) MarkParsingRunFailed(ctx context.Context, parsingRunID string, parseErr error) {}

func (f *fakeRepo) MarkParsingRunSucceeded(ctx context.Context, parsingRunID string, transactionCount int) error {
	return nil
}

func (f *fakeRepo) InsertTransactions(ctx context.Context, rows []*infra.TransactionRow) error {
	return nil
}

func (f *fakeRepo) QueryTransactionsByDateRange(ctx context.Context, start, end civil.Date) ([]*infra.TransactionRow, error) {
	f.queried = append(f.queried, start, end)
	return nil, f.queryErr
}

func (f *fakeRepo) ListMerchantRules(ctx context.Context) ([]extractor.MerchantRule, error) {
	return f.rules, nil
}

func (f *fakeRepo) ReplaceMerchantRules(ctx context.Context, rules []extractor.MerchantRule) error {
	f.rules = rules
	return nil
}

type fakeUploader struct {
	uploads map[string][]byte
	err     error
}

func (f *fakeUploader) UploadStatement(ctx context.Context, objectName string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, _ := io.ReadAll(r)
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[objectName] = data
	return fmt.Sprintf("gs://test-bucket/%s", objectName), nil
}

func newStatementsHandler(repo *fakeRepo) (*StatementsHandler, *inmemory.Store) {
	store := inmemory.NewStore()
	queue := inmemory.NewQueue(10, 1, store)
	return NewStatementsHandler(repo, &fakeUploader{}, queue, "statements/", "user-1", zerolog.Nop()), store
}

func TestUploadStatement(t *testing.T) {
	repo := newFakeRepo()
	h, store := newStatementsHandler(repo)

	req := httptest.NewRequest("POST", "/api/statements?filename=2025-10.pdf", strings.NewReader("%PDF-1.4 fake"))
	rec := httptest.NewRecorder()
	h.UploadStatement(rec, req)

	if rec.Code != 202 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp["status"] != "queued" || resp["document_id"] == "" || resp["job_id"] == "" {
		t.Errorf("unexpected response: %v", resp)
	}

	if len(repo.documents) != 1 {
		t.Fatalf("documents inserted = %d, want 1", len(repo.documents))
	}
	doc := repo.documents[0]
	if doc.SourceFilename != "2025-10.pdf" || doc.ParsingStatus != "PENDING" || doc.ChecksumSHA256 == "" {
		t.Errorf("unexpected document row: %+v", doc)
	}

	job, err := store.GetJob(req.Context(), resp["job_id"])
	if err != nil {
		t.Fatalf("job not stored: %v", err)
	}
	if job.DocumentID != resp["document_id"] || job.GCSURI != resp["gcs_uri"] {
		t.Errorf("job does not reference upload: %+v", job)
	}
}

func TestUploadStatementDetectsDuplicate(t *testing.T) {
	repo := newFakeRepo()
	h, _ := newStatementsHandler(repo)

	body := "%PDF-1.4 same bytes"
	first := httptest.NewRecorder()
	h.UploadStatement(first, httptest.NewRequest("POST", "/api/statements?filename=a.pdf", strings.NewReader(body)))
	if first.Code != 202 {
		t.Fatalf("first upload status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	h.UploadStatement(second, httptest.NewRequest("POST", "/api/statements?filename=b.pdf", strings.NewReader(body)))
	if second.Code != 200 {
		t.Fatalf("duplicate upload status = %d", second.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(second.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp["status"] != "duplicate" {
		t.Errorf("status = %q, want duplicate", resp["status"])
	}
	if len(repo.documents) != 1 {
		t.Errorf("duplicate should not create a second document, got %d", len(repo.documents))
	}
}

func TestUploadStatementValidation(t *testing.T) {
	repo := newFakeRepo()
	h, _ := newStatementsHandler(repo)

	noName := httptest.NewRecorder()
	h.UploadStatement(noName, httptest.NewRequest("POST", "/api/statements", strings.NewReader("data")))
	if noName.Code != 400 {
		t.Errorf("missing filename status = %d, want 400", noName.Code)
	}

	empty := httptest.NewRecorder()
	h.UploadStatement(empty, httptest.NewRequest("POST", "/api/statements?filename=a.pdf", strings.NewReader("")))
	if empty.Code != 400 {
		t.Errorf("empty body status = %d, want 400", empty.Code)
	}
}

func TestListTransactionsDateValidation(t *testing.T) {
	repo := newFakeRepo()
	h := NewTransactionsHandler(repo, zerolog.Nop())

	bad := httptest.NewRecorder()
	h.ListTransactions(bad, httptest.NewRequest("GET", "/api/transactions?start_date=Oct-01", nil))
	if bad.Code != 400 {
		t.Errorf("bad start_date status = %d, want 400", bad.Code)
	}

	inverted := httptest.NewRecorder()
	h.ListTransactions(inverted, httptest.NewRequest("GET", "/api/transactions?start_date=2025-10-31&end_date=2025-10-01", nil))
	if inverted.Code != 400 {
		t.Errorf("inverted range status = %d, want 400", inverted.Code)
	}

	ok := httptest.NewRecorder()
	h.ListTransactions(ok, httptest.NewRequest("GET", "/api/transactions?start_date=2025-10-01&end_date=2025-10-31", nil))
	if ok.Code != 200 {
		t.Fatalf("valid range status = %d, body = %s", ok.Code, ok.Body.String())
	}
	want := civil.Date{Year: 2025, Month: 10, Day: 1}
	if len(repo.queried) != 2 || repo.queried[0] != want {
		t.Errorf("queried range = %v", repo.queried)
	}
	// Empty result serializes as [], not null.
	if strings.TrimSpace(ok.Body.String()) != "[]" {
		t.Errorf("empty result body = %q, want []", ok.Body.String())
	}
}

func TestRulesSync(t *testing.T) {
	repo := newFakeRepo()
	sheet := staticSource{{Merchant: "Swiggy", Category: "Food", Subcategory: "Delivery"}}
	h := NewRulesHandler(repo, sheet, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.SyncRules(rec, httptest.NewRequest("POST", "/api/rules/sync", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(repo.rules) != 1 || repo.rules[0].Merchant != "Swiggy" {
		t.Errorf("rules not stored: %+v", repo.rules)
	}

	noSheet := NewRulesHandler(repo, nil, zerolog.Nop())
	unavailable := httptest.NewRecorder()
	noSheet.SyncRules(unavailable, httptest.NewRequest("POST", "/api/rules/sync", nil))
	if unavailable.Code != 503 {
		t.Errorf("no sheet status = %d, want 503", unavailable.Code)
	}
}

type staticSource []extractor.MerchantRule

func (s staticSource) Load(ctx context.Context) ([]extractor.MerchantRule, error) {
	return s, nil
}

func TestGetJobNotFound(t *testing.T) {
	h := NewJobsHandler(inmemory.NewStore(), zerolog.Nop())
	rec := httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest("GET", "/api/jobs/nope", nil), "nope")
	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetJobFound(t *testing.T) {
	store := inmemory.NewStore()
	_ = store.SaveJob(context.Background(), &jobs.ParseStatementJob{JobID: "job-1", Status: jobs.JobStatusPending})

	h := NewJobsHandler(store, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest("GET", "/api/jobs/job-1", nil), "job-1")
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}

	var job jobs.ParseStatementJob
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if job.JobID != "job-1" {
		t.Errorf("JobID = %q", job.JobID)
	}
}
