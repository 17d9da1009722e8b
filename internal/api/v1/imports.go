package v1

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/vmunix/heroimport/internal/importer"
)

// importResponse describes one submitted file.
type importResponse struct {
	ImportID int64           `json:"importId,omitempty"`
	FileName string          `json:"fileName"`
	Status   importer.Status `json:"status"`
	Message  string          `json:"message,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type batchResponse struct {
	Imports []importResponse `json:"imports"`
	Message string           `json:"message"`
}

type historyResponse struct {
	Items []*importer.Job `json:"items"`
	Total int             `json:"total"`
}

type clearHistoryResponse struct {
	Message string `json:"message"`
	Cleared int64  `json:"cleared"`
}

func started(job *importer.Job) importResponse {
	return importResponse{
		ImportID: job.ID,
		FileName: job.FileName,
		Status:   job.Status,
		Message:  "Import started",
	}
}

// parseForm bounds the request body and parses the multipart form. It
// writes the error response itself and reports whether parsing succeeded.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "upload exceeds size limit")
			return false
		}
		writeError(w, http.StatusBadRequest, "INVALID_FORM", err.Error())
		return false
	}
	return true
}

func readUpload(fh *multipart.FileHeader) (importer.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return importer.Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return importer.Upload{}, err
	}
	return importer.Upload{FileName: fh.Filename, Data: data}, nil
}

func (s *Server) submitImport(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "MISSING_FILE", "multipart field \"file\" is required")
		return
	}
	up, err := readUpload(files[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FILE", err.Error())
		return
	}

	job, err := s.deps.Imports.Submit(r.Context(), up, s.owner(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, started(job))
}

func (s *Server) submitBatch(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	uploads := make([]importer.Upload, 0, len(files))
	for _, fh := range files {
		up, err := readUpload(fh)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FILE", err.Error())
			return
		}
		uploads = append(uploads, up)
	}

	results, err := s.deps.Imports.SubmitBatch(r.Context(), uploads, s.owner(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := batchResponse{
		Imports: make([]importResponse, 0, len(results)),
		Message: "Imports started",
	}
	for _, res := range results {
		if res.Err != nil {
			resp.Imports = append(resp.Imports, importResponse{
				FileName: res.FileName,
				Status:   importer.StatusFailed,
				Error:    res.Err.Error(),
			})
			continue
		}
		resp.Imports = append(resp.Imports, started(res.Job))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}

	snap, err := s.deps.Imports.Progress(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.deps.Imports.History(r.Context(), s.owner(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []*importer.Job{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Items: jobs, Total: len(jobs)})
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Imports.ClearHistory(r.Context(), s.owner(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clearHistoryResponse{
		Message: "Import history cleared successfully",
		Cleared: n,
	})
}
