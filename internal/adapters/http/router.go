package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kito-labs/risiti/internal/core/domain"
	"github.com/kito-labs/risiti/internal/core/ports"
	"github.com/kito-labs/risiti/internal/core/tax"
	"github.com/kito-labs/risiti/internal/observability/metrics"
)

type Router struct {
	ingestor ports.BillIngestor
	editor   ports.BillEditor
	exporter ports.BillExportService

	serverMetrics *metrics.HTTPServerMetrics
	service       string
	apiToken      string
	uploadLimiter *UploadLimiter
}

type Options struct {
	Service       string
	APIToken      string
	ServerMetrics *metrics.HTTPServerMetrics
	UploadLimiter *UploadLimiter
}

func NewRouter(
	ingestor ports.BillIngestor,
	editor ports.BillEditor,
	exporter ports.BillExportService,
	options Options,
) *Router {
	service := options.Service
	if service == "" {
		service = "api"
	}
	return &Router{
		ingestor:      ingestor,
		editor:        editor,
		exporter:      exporter,
		serverMetrics: options.ServerMetrics,
		service:       service,
		apiToken:      options.APIToken,
		uploadLimiter: options.UploadLimiter,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	if rt.serverMetrics != nil {
		mux.Handle("/metrics", rt.serverMetrics.Handler())
	}
	mux.HandleFunc("/v1/bills", rt.billsCollection)
	mux.HandleFunc("/v1/bills/", rt.billsItem)
	mux.HandleFunc("/v1/payroll/calculate", rt.calculatePayroll)

	var handler http.Handler = mux
	handler = authMiddleware(rt.apiToken, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	if rt.serverMetrics != nil {
		handler = rt.serverMetrics.Middleware(rt.service, handler)
	}
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) billsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadBill(w, r)
	case http.MethodGet:
		rt.listBills(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) billsItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/bills/")
	switch rest {
	case "manual":
		rt.createManualBill(w, r)
		return
	case "export":
		rt.exportBills(w, r)
		return
	}

	if rest == "" || strings.Contains(rest, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		rt.getBill(w, r, rest)
	case http.MethodPut:
		rt.saveBill(w, r, rest)
	case http.MethodDelete:
		rt.deleteBill(w, r, rest)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) uploadBill(w http.ResponseWriter, r *http.Request) {
	if rt.uploadLimiter != nil && !rt.uploadLimiter.Allow() {
		if rt.serverMetrics != nil {
			rt.serverMetrics.RecordRateLimited(rt.service, r.URL.Path)
		}
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "upload rate limit exceeded"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	bill, err := rt.ingestor.Upload(r.Context(), fileHeader.Filename, mimeType, file)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordUpload(rt.service, mimeType)
	}
	writeJSON(w, http.StatusAccepted, bill)
}

func (rt *Router) createManualBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	bill, err := rt.ingestor.CreateManual(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bill)
}

func (rt *Router) listBills(w http.ResponseWriter, r *http.Request) {
	bills, err := rt.editor.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if bills == nil {
		bills = []domain.Bill{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bills": bills})
}

func (rt *Router) getBill(w http.ResponseWriter, r *http.Request, id string) {
	bill, err := rt.editor.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (rt *Router) saveBill(w http.ResponseWriter, r *http.Request, id string) {
	var edit domain.BillEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	bill, err := rt.editor.Save(r.Context(), id, edit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (rt *Router) deleteBill(w http.ResponseWriter, r *http.Request, id string) {
	if err := rt.editor.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) exportBills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	format := domain.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = domain.ExportGeneric
	}
	fileType := domain.ExportFileType(r.URL.Query().Get("file"))
	if fileType == "" {
		fileType = domain.ExportCSV
	}

	data, filename, err := rt.exporter.Export(r.Context(), format, fileType)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordExport(rt.service, string(format), string(fileType))
	}

	contentType := "text/csv; charset=utf-8"
	if fileType == domain.ExportXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) calculatePayroll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Gross     float64 `json:"gross"`
		Residency string  `json:"residency"`
		NSSFSplit string  `json:"nssf_split"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Gross <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "gross must be greater than zero"})
		return
	}

	residency := domain.Residency(req.Residency)
	if req.Residency == "" {
		residency = domain.ResidencyResident
	}
	switch residency {
	case domain.ResidencyResident, domain.ResidencyNonResident:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "residency must be 'resident' or 'non-resident'"})
		return
	}

	split := domain.NSSFSplit(req.NSSFSplit)
	if req.NSSFSplit == "" {
		split = domain.NSSFSplitEven
	}
	switch split {
	case domain.NSSFSplitEven, domain.NSSFSplitHeavy:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nssf_split must be '10-10' or '5-15'"})
		return
	}

	result := tax.Calculate(req.Gross, residency, split)
	if rt.serverMetrics != nil {
		rt.serverMetrics.RecordPayrollCalculation(rt.service, string(residency))
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
