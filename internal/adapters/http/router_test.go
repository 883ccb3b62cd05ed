package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kito-labs/risiti/internal/core/domain"
)

type ingestorFake struct {
	uploaded  *domain.Bill
	uploadErr error
	manual    *domain.Bill
}

func (f *ingestorFake) Upload(_ context.Context, filename, _ string, _ io.Reader) (*domain.Bill, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if f.uploaded == nil {
		f.uploaded = &domain.Bill{ID: "bill-1", SourceFile: filename, Status: domain.StatusUploading}
	}
	return f.uploaded, nil
}

func (f *ingestorFake) CreateManual(context.Context) (*domain.Bill, error) {
	if f.manual == nil {
		f.manual = &domain.Bill{ID: "bill-m", Status: domain.StatusManual}
	}
	return f.manual, nil
}

type editorFake struct {
	bills     map[string]*domain.Bill
	saveErr   error
	deleteErr error
	saved     *domain.BillEdit
}

func (f *editorFake) Get(_ context.Context, id string) (*domain.Bill, error) {
	bill, ok := f.bills[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrBillNotFound, "get bill", errors.New("no rows"))
	}
	return bill, nil
}

func (f *editorFake) List(context.Context) ([]domain.Bill, error) {
	var out []domain.Bill
	for _, bill := range f.bills {
		out = append(out, *bill)
	}
	return out, nil
}

func (f *editorFake) Save(_ context.Context, id string, edit domain.BillEdit) (*domain.Bill, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = &edit
	bill, ok := f.bills[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrBillNotFound, "save bill", errors.New("no rows"))
	}
	return bill, nil
}

func (f *editorFake) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.bills[id]; !ok {
		return domain.WrapError(domain.ErrBillNotFound, "delete bill", errors.New("no rows"))
	}
	delete(f.bills, id)
	return nil
}

type exportFake struct {
	data     []byte
	filename string
	err      error
}

func (f *exportFake) Export(_ context.Context, _ domain.ExportFormat, _ domain.ExportFileType) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, f.filename, nil
}

func newTestRouter(options Options) (*Router, *ingestorFake, *editorFake, *exportFake) {
	ingestor := &ingestorFake{}
	editor := &editorFake{bills: map[string]*domain.Bill{}}
	exporter := &exportFake{data: []byte("csv"), filename: "receipts.csv"}
	return NewRouter(ingestor, editor, exporter, options), ingestor, editor, exporter
}

func multipartBody(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("fakebytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	router, _, _, _ := newTestRouter(Options{})
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUploadBillAccepted(t *testing.T) {
	router, _, _, _ := newTestRouter(Options{})
	body, contentType := multipartBody(t, "receipt.jpg")

	req := httptest.NewRequest(http.MethodPost, "/v1/bills", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var bill domain.Bill
	if err := json.Unmarshal(rec.Body.Bytes(), &bill); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if bill.Status != domain.StatusUploading {
		t.Fatalf("expected uploading status, got %q", bill.Status)
	}
}

func TestUploadBillRequiresFileField(t *testing.T) {
	router, _, _, _ := newTestRouter(Options{})
	req := httptest.NewRequest(http.MethodPost, "/v1/bills", strings.NewReader("plain"))
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadBillMapsInvalidInput(t *testing.T) {
	router, ingestor, _, _ := newTestRouter(Options{})
	ingestor.uploadErr = domain.WrapError(domain.ErrInvalidInput, "upload bill",
		fmt.Errorf("unsupported file type"))

	body, contentType := multipartBody(t, "notes.txt")
	req := httptest.NewRequest(http.MethodPost, "/v1/bills", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadBillRateLimited(t *testing.T) {
	router, _, _, _ := newTestRouter(Options{UploadLimiter: NewUploadLimiter(1, 1)})
	handler := router.Handler()

	for i := 0; i < 2; i++ {
		body, contentType := multipartBody(t, "receipt.jpg")
		req := httptest.NewRequest(http.MethodPost, "/v1/bills", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i == 0 && rec.Code != http.StatusAccepted {
			t.Fatalf("first upload should pass, got %d", rec.Code)
		}
		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("second upload should be limited, got %d", rec.Code)
		}
	}
}

func TestCreateManualBill(t *testing.T) {
	router, _, _, _ := newTestRouter(Options{})
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/bills/manual", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestGetBillNotFound(t *testing.T) {
	router, _, _, _ := newTestRouter(Options{})
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bills/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListBillsAlwaysReturnsArray(t *testing.T) {
	router, _, _, _ := newTestRouter(Options{})
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bills", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"bills":[]`) {
		t.Fatalf("expected empty bills array, got %s", rec.Body.String())
	}
}

func TestSaveBillRejectsBadCategory(t *testing.T) {
	router, _, editor, _ := newTestRouter(Options{})
	editor.saveErr = domain.WrapError(domain.ErrInvalidInput, "save bill",
		fmt.Errorf("unknown category"))

	payload := `{"vendor":"Shop X","category":"Snacks"}`
	req := httptest.NewRequest(http.MethodPut, "/v1/bills/bill-1", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteBillNoContent(t *testing.T) {
	router, _, editor, _ := newTestRouter(Options{})
	editor.bills["bill-1"] = &domain.Bill{ID: "bill-1"}

	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/bills/bill-1", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestExportBillsSetsDownloadHeaders(t *testing.T) {
	router, _, _, exporter := newTestRouter(Options{})
	exporter.filename = "receipts-xero.csv"

	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/v1/bills/export?format=xero&file=csv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "receipts-xero.csv") {
		t.Fatalf("unexpected disposition: %q", got)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Fatalf("unexpected content type: %q", got)
	}
}

func TestExportBillsMapsInvalidFormat(t *testing.T) {
	router, _, _, exporter := newTestRouter(Options{})
	exporter.err = domain.WrapError(domain.ErrInvalidInput, "export bills",
		fmt.Errorf("unknown format"))

	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/v1/bills/export?format=sage", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCalculatePayrollResidentExample(t *testing.T) {
	router, _, _, _ := newTestRouter(Options{})

	payload := `{"gross":1000000,"residency":"resident","nssf_split":"10-10"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/payroll/calculate", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result domain.TaxResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.PAYE != 105500 {
		t.Fatalf("unexpected PAYE: %v", result.PAYE)
	}
	if result.NetSalary != 794500 {
		t.Fatalf("unexpected net salary: %v", result.NetSalary)
	}
}

func TestCalculatePayrollDefaultsResidencyAndSplit(t *testing.T) {
	router, _, _, _ := newTestRouter(Options{})

	req := httptest.NewRequest(http.MethodPost, "/v1/payroll/calculate",
		strings.NewReader(`{"gross":500000}`))
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result domain.TaxResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.EmployeeNSSFRate != 0.10 {
		t.Fatalf("expected default 10-10 split, got %v", result.EmployeeNSSFRate)
	}
}

func TestCalculatePayrollRejectsBadInput(t *testing.T) {
	router, _, _, _ := newTestRouter(Options{})
	handler := router.Handler()

	cases := []string{
		`{"gross":0}`,
		`{"gross":-5}`,
		`{"gross":100000,"residency":"alien"}`,
		`{"gross":100000,"nssf_split":"50-50"}`,
		`not json`,
	}
	for _, payload := range cases {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec,
			httptest.NewRequest(http.MethodPost, "/v1/payroll/calculate", strings.NewReader(payload)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %q: expected 400, got %d", payload, rec.Code)
		}
	}
}

func TestAuthMiddlewareGatesAPI(t *testing.T) {
	router, _, _, _ := newTestRouter(Options{APIToken: "secret"})
	handler := router.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bills", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/bills", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz must stay open, got %d", rec.Code)
	}
}

func TestRequestIDHeaderEchoed(t *testing.T) {
	router, _, _, _ := newTestRouter(Options{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}
