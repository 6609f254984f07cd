package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"salespro-go/internal/charts"
	"salespro-go/internal/dataset"
	"salespro-go/internal/logger"
	"salespro-go/internal/metrics"
	"salespro-go/internal/processor"
	"salespro-go/internal/report"
	"salespro-go/internal/store"
)

var (
	errBadUpload    = errors.New("invalid upload")
	errUnknownChart = errors.New("unknown chart")
)

type uploadResponse struct {
	UploadID string   `json:"upload_id"`
	Filename string   `json:"filename"`
	Branches []string `json:"branches"`
	Sheets   any      `json:"sheets"`
	Skipped  int      `json:"skipped_cells"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, nil); err != nil {
		logger.New().WithRequest(r).WithError(err).Error("index render failed")
	}
}

// readUpload parses the multipart workbook in field "file".
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, string, error) {
	maxBytes := s.cfg.Server.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: %v", errBadUpload, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: multipart field \"file\" is required", errBadUpload)
	}
	defer file.Close()

	name := header.Filename
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xls") && !strings.HasSuffix(lower, ".xlsm") {
		return nil, "", fmt.Errorf("%w: unsupported file %q", errBadUpload, name)
	}

	wb, err := dataset.ReadWorkbook(file, name)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", errBadUpload, err)
	}
	ds, err := dataset.Load(wb, s.cfg.Layout)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", errBadUpload, err)
	}
	return ds, name, nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ds, name, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u := s.uploads.Put(name, ds)
	logger.New().WithRequest(r).
		WithField("upload_id", u.ID).
		WithField("branches", len(u.Branches)).
		Info("workbook uploaded")

	writeJSON(w, http.StatusCreated, uploadResponse{
		UploadID: u.ID,
		Filename: u.Filename,
		Branches: u.Branches,
		Sheets:   ds.Sheets,
		Skipped:  u.Skipped,
	})
}

func (s *Server) upload(r *http.Request) (store.Upload, error) {
	return s.uploads.Get(chi.URLParam(r, "id"))
}

func (s *Server) handleUploadInfo(w http.ResponseWriter, r *http.Request) {
	u, err := s.upload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		store.Upload
		Plans any `json:"plans"`
		Stock any `json:"stock,omitempty"`
	}{u, u.Dataset.Plans, u.Dataset.Stock})
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	u, err := s.upload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"branches": u.Branches})
}

// analyze resolves the upload, branch and plan of the request.
func (s *Server) analyze(r *http.Request, withAdvice bool) (processor.Result, error) {
	u, err := s.upload(r)
	if err != nil {
		return processor.Result{}, err
	}
	plan, err := planParam(r)
	if err != nil {
		return processor.Result{}, err
	}
	return s.proc.Analyze(r.Context(), u.Dataset, branchParam(r), processor.Options{
		PlanOverride: plan,
		WithAdvice:   withAdvice,
	})
}

func (s *Server) handleBranch(w http.ResponseWriter, r *http.Request) {
	res, err := s.analyze(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	res, err := s.analyze(r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	format, err := charts.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", errUnknownChart, err))
		return
	}
	u, err := s.upload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := metrics.BranchKPI(u.Dataset, branchParam(r), 0, s.cfg)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var img []byte
	switch kind := chi.URLParam(r, "kind"); kind {
	case "trend":
		img, err = charts.Trend(rep.Trend, format)
	case "channels":
		img, err = charts.ChannelPie(rep.Channels, format)
	default:
		writeError(w, r, fmt.Errorf("%w %q", errUnknownChart, kind))
		return
	}
	if errors.Is(err, charts.ErrNoData) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Write(img)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res, err := s.analyze(r, r.URL.Query().Get("ai") == "1")
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeReport(w, r, res)
}

// handleOneShotReport takes the upload form, branch and plan and answers with
// the HTML report without keeping the upload.
func (s *Server) handleOneShotReport(w http.ResponseWriter, r *http.Request) {
	ds, _, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := planParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	branch := r.FormValue("branch")
	if branch == "" {
		branches := ds.Branches()
		branch = branches[0] // Load guarantees at least one record
	}

	res, err := s.proc.Analyze(r.Context(), ds, branch, processor.Options{
		PlanOverride: plan,
		WithAdvice:   r.FormValue("ai") != "",
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeReport(w, r, res)
}

func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, res processor.Result) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.HTML(w, res.Page()); err != nil {
		logger.New().WithRequest(r).WithError(err).Error("report render failed")
	}
}
