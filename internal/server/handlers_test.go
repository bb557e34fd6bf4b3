package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearclaim/eob-analyzer/internal/common"
	"github.com/clearclaim/eob-analyzer/internal/eob"
	"github.com/clearclaim/eob-analyzer/internal/export"
	"github.com/clearclaim/eob-analyzer/internal/llm"
	"github.com/clearclaim/eob-analyzer/internal/pipeline"
	"github.com/clearclaim/eob-analyzer/internal/repository"
)

// memRepo is an in-memory RecordRepository for handler tests.
type memRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*repository.StoredRecord
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[uuid.UUID]*repository.StoredRecord)}
}

func (m *memRepo) SaveRecord(_ context.Context, documentName string, detectConfidence int, rec *eob.Record) (*repository.StoredRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := &repository.StoredRecord{
		ID:               uuid.New(),
		DocumentName:     documentName,
		ClaimNumber:      rec.ClaimNumber,
		DetectConfidence: detectConfidence,
		Record:           rec,
	}
	m.rows[row.ID] = row
	return row, nil
}

func (m *memRepo) GetRecord(_ context.Context, id uuid.UUID) (*repository.StoredRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return row, nil
}

func (m *memRepo) ListRecords(_ context.Context, _ int) ([]*repository.StoredRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*repository.StoredRecord, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	return out, nil
}

// stubExtractor returns a canned record without any model call.
type stubExtractor struct {
	rec *eob.Record
	err error
}

func (s *stubExtractor) Extract(context.Context, string) (*eob.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rec, nil
}

type stubCompletion struct{ response string }

func (s *stubCompletion) Complete(context.Context, string, string, llm.ResponseFormat) (string, error) {
	return s.response, nil
}

func testRecord() *eob.Record {
	items := []eob.LineItem{
		{
			ID:                    "li-1",
			ServiceDate:           "2024-03-01",
			ProcedureCode:         "99213",
			PatientResponsibility: 120,
			NotCovered:            120,
		},
	}
	rec := &eob.Record{
		PayerName:        "Acme Health",
		MemberName:       eob.UnknownMember,
		MemberID:         eob.Unknown,
		ClaimNumber:      "CLM-1",
		LineItems:        items,
		FinancialSummary: eob.Reconcile(items),
		Notes:            []string{},
	}
	rec.Issues = eob.Analyze(rec.LineItems, rec.FinancialSummary)
	rec.PlainLanguageSummary = eob.Narrate(rec.FinancialSummary)
	return rec
}

func newTestHandler(repo repository.RecordRepository, ex *stubExtractor) http.Handler {
	proc := pipeline.NewProcessor(nil, ex, repo)
	letters := export.NewLetterWriter(&stubCompletion{response: "Dear Appeals Department..."}, nil)
	return NewRouter(New(proc, repo, letters, nil, nil))
}

const eobText = "explanation of benefits patient responsibility claim number allowed amount plan paid $30.00 03/05/2024"

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestDetectEndpoint(t *testing.T) {
	h := newTestHandler(newMemRepo(), &stubExtractor{rec: testRecord()})

	rr := postJSON(t, h, "/api/v1/eob/detect", map[string]string{"text": eobText})
	require.Equal(t, http.StatusOK, rr.Code)

	var res struct {
		IsEOB      bool `json:"isEOB"`
		Confidence int  `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.True(t, res.IsEOB)
	assert.GreaterOrEqual(t, res.Confidence, 50)
}

func TestAnalyzeRejectsNonEOB(t *testing.T) {
	repo := newMemRepo()
	h := newTestHandler(repo, &stubExtractor{rec: testRecord()})

	rr := postJSON(t, h, "/api/v1/eob/analyze", map[string]any{
		"text": "meeting notes from tuesday", "documentName": "notes.txt",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "UNSUPPORTED_DOCUMENT")
	assert.Empty(t, repo.rows)
}

func TestAnalyzeForceOverridesDetector(t *testing.T) {
	repo := newMemRepo()
	h := newTestHandler(repo, &stubExtractor{rec: testRecord()})

	rr := postJSON(t, h, "/api/v1/eob/analyze", map[string]any{
		"text": "meeting notes from tuesday", "documentName": "notes.txt", "force": true,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var stored repository.StoredRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stored))
	assert.Equal(t, "CLM-1", stored.ClaimNumber)
	assert.Equal(t, "notes.txt", stored.DocumentName)
	assert.Len(t, repo.rows, 1)
}

func TestAnalyzeStoresRecord(t *testing.T) {
	repo := newMemRepo()
	h := newTestHandler(repo, &stubExtractor{rec: testRecord()})

	rr := postJSON(t, h, "/api/v1/eob/analyze", map[string]any{"text": eobText})
	require.Equal(t, http.StatusCreated, rr.Code)

	var stored repository.StoredRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stored))
	require.NotNil(t, stored.Record)
	assert.NotEmpty(t, stored.Record.Issues)

	// The stored record is retrievable by id.
	rr = get(h, "/api/v1/records/"+stored.ID.String())
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAnalyzeRequiresText(t *testing.T) {
	h := newTestHandler(newMemRepo(), &stubExtractor{rec: testRecord()})

	rr := postJSON(t, h, "/api/v1/eob/analyze", map[string]any{"documentName": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_INPUT")
}

func TestAnalyzeExtractionFailure(t *testing.T) {
	h := newTestHandler(newMemRepo(), &stubExtractor{err: common.ErrExtractionFailed})

	rr := postJSON(t, h, "/api/v1/eob/analyze", map[string]any{"text": eobText})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "EXTRACTION_FAILED")
}

func TestGetRecordBadAndMissingIDs(t *testing.T) {
	h := newTestHandler(newMemRepo(), &stubExtractor{rec: testRecord()})

	rr := get(h, "/api/v1/records/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = get(h, "/api/v1/records/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExportCSVEndpoint(t *testing.T) {
	repo := newMemRepo()
	stored, err := repo.SaveRecord(context.Background(), "doc.txt", 80, testRecord())
	require.NoError(t, err)

	h := newTestHandler(repo, &stubExtractor{rec: testRecord()})
	rr := get(h, "/api/v1/records/"+stored.ID.String()+"/export/csv")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rr.Body.String(), "Service Date,Provider,Procedure Code")
	assert.Contains(t, rr.Body.String(), "Total Patient Responsibility,120.00")
}

func TestAppealLetterEndpoint(t *testing.T) {
	repo := newMemRepo()
	// testRecord carries an out-of-network issue, which is appealable.
	stored, err := repo.SaveRecord(context.Background(), "doc.txt", 80, testRecord())
	require.NoError(t, err)

	h := newTestHandler(repo, &stubExtractor{rec: testRecord()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/records/"+stored.ID.String()+"/appeal-letter", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "Dear Appeals Department")
}

func TestAppealLetterNoAppealableIssues(t *testing.T) {
	repo := newMemRepo()
	rec := testRecord()
	rec.Issues = nil // nothing to appeal
	stored, err := repo.SaveRecord(context.Background(), "doc.txt", 80, rec)
	require.NoError(t, err)

	h := newTestHandler(repo, &stubExtractor{rec: testRecord()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/records/"+stored.ID.String()+"/appeal-letter", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "NO_APPEALABLE_ISSUES")
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(newMemRepo(), &stubExtractor{rec: testRecord()})

	rr := get(h, "/_health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"ok"`)
}
