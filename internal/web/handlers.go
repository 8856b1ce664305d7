package web

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tmsaudit/freteaudit/internal/export"
	"github.com/tmsaudit/freteaudit/internal/extract"
	"github.com/tmsaudit/freteaudit/internal/logging"
	"github.com/tmsaudit/freteaudit/internal/reconcile"
	"github.com/tmsaudit/freteaudit/internal/refdata"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUploadDocuments ingests one or more XML documents from a multipart
// form ("files" field) and reconciles them against the calculation memory.
func (s *Server) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	files, err := s.formFiles(r, "files")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sources := make([]extract.Source, 0, len(files))
	closers := make([]io.Closer, 0, len(files))
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("opening %s: %v", fh.Filename, err))
			return
		}
		closers = append(closers, f)
		sources = append(sources, extract.Source{Name: fh.Filename, Reader: f})
	}

	records := s.service.IngestDocuments(sources)
	writeJSON(w, r, http.StatusCreated, records)
}

// handleUploadArchive ingests every XML inside a ZIP upload ("archive"
// field). Archives over the configured entry cap are refused outright.
func (s *Server) handleUploadArchive(w http.ResponseWriter, r *http.Request) {
	fh, err := s.formFile(r, "archive")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("opening archive: %v", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("reading archive: %v", err))
		return
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid ZIP archive")
		return
	}
	entries := 0
	for _, entry := range zr.File {
		if strings.HasSuffix(strings.ToLower(entry.Name), ".xml") {
			entries++
		}
	}
	if entries > s.cfg.Upload.MaxArchiveEntries {
		writeError(w, r, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("archive has %d XML entries, limit is %d", entries, s.cfg.Upload.MaxArchiveEntries))
		return
	}

	records, err := s.service.IngestArchive(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusCreated, records)
}

// handleImportMemory replaces the calculation memory from an XLSX upload.
func (s *Server) handleImportMemory(w http.ResponseWriter, r *http.Request) {
	fh, err := s.formFile(r, "file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("opening %s: %v", fh.Filename, err))
		return
	}
	defer f.Close()

	n, err := s.service.ImportMemory(f)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"entries": n})
}

func (s *Server) handleMemoryStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]int{"entries": s.service.MemoryCount()})
}

// handleImportTable validates an XLSX freight-rate upload into a new batch.
func (s *Server) handleImportTable(w http.ResponseWriter, r *http.Request) {
	fh, err := s.formFile(r, "file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("opening %s: %v", fh.Filename, err))
		return
	}
	defer f.Close()

	batch, err := s.service.ImportTable(f, fh.Filename)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, r, http.StatusCreated, batch)
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Batches())
}

// handleDownloadTemplate serves the empty freight-table workbook.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	f, err := refdata.TemplateWorkbook()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "building template")
		return
	}
	defer f.Close()

	serveWorkbook(w, refdata.TemplateFileName)
	if _, err := f.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Error("writing template", "error", err)
	}
}

// handleReconcileTable re-runs every record against a freight-table batch.
func (s *Server) handleReconcileTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BatchID string `json:"batch_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.BatchID == "" {
		writeError(w, r, http.StatusBadRequest, "batch_id is required")
		return
	}

	n, err := s.service.ReconcileWithTable(req.BatchID)
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"records": n})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	divergentOnly := r.URL.Query().Get("status") == "divergent"
	writeJSON(w, r, http.StatusOK, s.service.Records(divergentOnly))
}

func (s *Server) handleClearRecords(w http.ResponseWriter, r *http.Request) {
	s.service.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// handleSelection marks records for export: either one record by ID or all
// of them at once.
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       string `json:"id"`
		All      bool   `json:"all"`
		Selected bool   `json:"selected"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.All {
		s.service.SelectAll(req.Selected)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid record id")
		return
	}
	if err := s.service.SetSelected(id, req.Selected); err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetParties binds a record to a shipper and carrier.
func (s *Server) handleSetParties(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid record id")
		return
	}
	var req struct {
		ShipperID string `json:"shipper_id"`
		CarrierID string `json:"carrier_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.service.SetParties(id, req.ShipperID, req.CarrierID); err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, s.service.Approve)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, s.service.Reject)
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request, decide decisionFunc) {
	id, err := uuid.Parse(chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid record id")
		return
	}
	var req struct {
		Justification string `json:"justification"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := decide(id, req.Justification)
	if err != nil {
		writeError(w, r, statusFor(err), err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// handleExport downloads the selected records as an Auditoria workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	records := s.service.SelectedRecords()
	if len(records) == 0 {
		writeError(w, r, http.StatusBadRequest, "no records selected")
		return
	}

	serveWorkbook(w, "Auditoria.xlsx")
	if err := export.WriteWorkbook(w, records); err != nil {
		logging.FromContext(r.Context()).Error("writing report", "error", err)
	}
}

// handleListParties serves one of the two party registries.
func (s *Server) handleListParties(reg *refdata.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, reg.List())
	}
}

func (s *Server) handleCreateParty(reg *refdata.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p refdata.Party
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(p.Name) == "" {
			writeError(w, r, http.StatusBadRequest, "name is required")
			return
		}
		writeJSON(w, r, http.StatusCreated, reg.Add(p))
	}
}

func (s *Server) handleDeleteParty(reg *refdata.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !reg.Remove(chi.URLParam(r, "partyID")) {
			writeError(w, r, http.StatusNotFound, "party not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type decisionFunc = func(uuid.UUID, string) (reconcile.Record, error)

// formFiles parses the multipart form with the configured size cap and
// returns all files under the given field.
func (s *Server) formFiles(r *http.Request, field string) ([]*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, fmt.Errorf("parsing upload: %w", err)
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, fmt.Errorf("no %q files in upload", field)
	}
	return files, nil
}

func (s *Server) formFile(r *http.Request, field string) (*multipart.FileHeader, error) {
	files, err := s.formFiles(r, field)
	if err != nil {
		return nil, err
	}
	return files[0], nil
}

func serveWorkbook(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
