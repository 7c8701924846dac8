// Package handlers implements the statement API: uploading statement PDFs,
// enqueueing parses, and querying transactions, rules and job status.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/megauravmahendra-png/expense-intelligence/internal/api/middleware"
	"github.com/megauravmahendra-png/expense-intelligence/internal/extractor"
	infra "github.com/megauravmahendra-png/expense-intelligence/internal/infra/bigquery"
	"github.com/megauravmahendra-png/expense-intelligence/internal/jobs"
	"github.com/megauravmahendra-png/expense-intelligence/internal/pipeline"
)

// maxUploadBytes caps statement upload size. Payment-app statement exports
// are small; anything bigger is not a statement.
const maxUploadBytes = 32 << 20

// Uploader stores statement bytes and returns a gs:// URI.
type Uploader interface {
	UploadStatement(ctx context.Context, objectName string, r io.Reader) (string, error)
}

// StatementsHandler handles statement upload and listing.
type StatementsHandler struct {
	repo      infra.Repository
	uploader  Uploader
	publisher jobs.Publisher
	prefix    string
	userID    string
	log       zerolog.Logger
}

func NewStatementsHandler(repo infra.Repository, uploader Uploader, publisher jobs.Publisher, prefix, userID string, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		repo:      repo,
		uploader:  uploader,
		publisher: publisher,
		prefix:    prefix,
		userID:    userID,
		log:       log,
	}
}

// ListStatements handles GET /api/statements
func (h *StatementsHandler) ListStatements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	documents, err := h.repo.ListDocuments(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list statements")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list statements")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"statements": documents,
		"count":      len(documents),
	})
}

// UploadStatement handles POST /api/statements?filename=oct.pdf with the PDF
// bytes as the request body. The statement is stored in GCS, recorded in the
// documents table and a parse job is enqueued.
func (h *StatementsHandler) UploadStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filename := filepath.Base(r.URL.Query().Get("filename"))
	if filename == "." || filename == "/" || filename == "" {
		middleware.WriteError(w, http.StatusBadRequest, "filename is required")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes+1))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(data) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Empty request body")
		return
	}
	if len(data) > maxUploadBytes {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Statement too large")
		return
	}

	checksum := pipeline.ChecksumSHA256(data)
	if existing, err := h.repo.FindDocumentByChecksum(ctx, checksum); err == nil && existing != nil {
		h.log.Info().
			Str("document_id", existing.DocumentID).
			Str("filename", filename).
			Msg("Statement already uploaded")
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"document_id": existing.DocumentID,
			"gcs_uri":     existing.GCSURI,
			"status":      "duplicate",
		})
		return
	}

	documentID := uuid.NewString()
	objectName := fmt.Sprintf("%s%s/%s-%s", h.prefix, time.Now().Format("2006/01"), documentID, filename)

	gcsURI, err := h.uploader.UploadStatement(ctx, objectName, bytes.NewReader(data))
	if err != nil {
		h.log.Error().Err(err).Str("filename", filename).Msg("Failed to upload statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload statement")
		return
	}

	doc := &infra.DocumentRow{
		DocumentID:     documentID,
		UserID:         h.userID,
		GCSURI:         gcsURI,
		SourceFilename: filename,
		FileMimeType:   "application/pdf",
		UploadTS:       time.Now(),
		ParsingStatus:  pipeline.DocumentStatusPending,
		ChecksumSHA256: checksum,
	}
	if err := h.repo.InsertDocument(ctx, doc); err != nil {
		h.log.Error().Err(err).Str("document_id", documentID).Msg("Failed to insert document metadata")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save statement metadata")
		return
	}

	job := &jobs.ParseStatementJob{
		DocumentID:     documentID,
		GCSURI:         gcsURI,
		SourceFilename: filename,
	}
	if err := h.publisher.PublishParseStatement(ctx, job); err != nil {
		h.log.Error().Err(err).Str("document_id", documentID).Msg("Failed to enqueue parse job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue parse job")
		return
	}

	h.log.Info().
		Str("document_id", documentID).
		Str("job_id", job.JobID).
		Str("gcs_uri", gcsURI).
		Int("bytes", len(data)).
		Msg("Statement uploaded")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"document_id": documentID,
		"gcs_uri":     gcsURI,
		"job_id":      job.JobID,
		"status":      "queued",
	})
}

// EnqueueParsing handles POST /api/statements/parse, re-running the pipeline
// for an already-uploaded statement.
func (h *StatementsHandler) EnqueueParsing(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID string `json:"document_id"`
		GCSURI     string `json:"gcs_uri"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DocumentID == "" || req.GCSURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "document_id and gcs_uri are required")
		return
	}

	job := &jobs.ParseStatementJob{
		DocumentID: req.DocumentID,
		GCSURI:     req.GCSURI,
	}
	if err := h.publisher.PublishParseStatement(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue parse job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue parse job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("document_id", req.DocumentID).Msg("Parse job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":      job.JobID,
		"document_id": req.DocumentID,
		"status":      string(job.Status),
	})
}

// TransactionsHandler handles transaction queries.
type TransactionsHandler struct {
	repo infra.Repository
	log  zerolog.Logger
}

func NewTransactionsHandler(repo infra.Repository, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{repo: repo, log: log}
}

// ListTransactions handles GET /api/transactions?start_date=&end_date=
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	// Default window is the last year.
	start := civil.DateOf(time.Now().AddDate(-1, 0, 0))
	end := civil.DateOf(time.Now())

	var err error
	if s := query.Get("start_date"); s != "" {
		start, err = civil.ParseDate(s)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid start_date format")
			return
		}
	}
	if s := query.Get("end_date"); s != "" {
		end, err = civil.ParseDate(s)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid end_date format")
			return
		}
	}
	if end.Before(start) {
		middleware.WriteError(w, http.StatusBadRequest, "end_date is before start_date")
		return
	}

	transactions, err := h.repo.QueryTransactionsByDateRange(ctx, start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}

	if transactions == nil {
		transactions = []*infra.TransactionRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// RulesHandler serves and syncs the merchant categorization rules.
type RulesHandler struct {
	repo  infra.Repository
	sheet pipeline.RuleSource
	log   zerolog.Logger
}

// NewRulesHandler creates a rules handler. sheet may be nil when no rules
// sheet is configured; SyncRules then returns an error response.
func NewRulesHandler(repo infra.Repository, sheet pipeline.RuleSource, log zerolog.Logger) *RulesHandler {
	return &RulesHandler{repo: repo, sheet: sheet, log: log}
}

// ListRules handles GET /api/rules
func (h *RulesHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rules, err := h.repo.ListMerchantRules(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list rules")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list rules")
		return
	}

	if rules == nil {
		rules = []extractor.MerchantRule{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rules": rules,
		"count": len(rules),
	})
}

// SyncRules handles POST /api/rules/sync, pulling the rules sheet into the
// merchant_rules table.
func (h *RulesHandler) SyncRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.sheet == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "No rules sheet configured")
		return
	}

	rules, err := h.sheet.Load(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load rules sheet")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to load rules sheet")
		return
	}

	if err := h.repo.ReplaceMerchantRules(ctx, rules); err != nil {
		h.log.Error().Err(err).Msg("Failed to replace rules")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store rules")
		return
	}

	h.log.Info().Int("count", len(rules)).Msg("Rules synced")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"synced": len(rules),
	})
}

// JobsHandler exposes parse job status.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		DocumentID: query.Get("document_id"),
		Status:     jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
