package server

import (
	"bytes"
	"embed"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/paveg/plotdeck/internal/chart"
	"github.com/paveg/plotdeck/internal/dataframe"
	plerrors "github.com/paveg/plotdeck/internal/errors"
	plio "github.com/paveg/plotdeck/internal/io"
	"github.com/paveg/plotdeck/internal/pipeline"
	"github.com/paveg/plotdeck/internal/session"
)

const (
	contentTypeJSON = "application/json"
	contentTypePNG  = "image/png"
	formField       = "file"
)

//go:embed static/index.html
var static embed.FS

type uploadResponse struct {
	Success bool        `json:"success"`
	Session string      `json:"session,omitempty"`
	Columns []string    `json:"columns,omitempty"`
	Plot    *chart.Spec `json:"plot,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		s.writeError(w, plerrors.NewInternalError("index", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// handleUpload stores the file, decodes it into a new session and answers
// with the column list and the preview scatter
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.store.MaxSize().Bytes())+multipartOverhead)

	file, header, err := r.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			err = plerrors.NewFileTooLargeError(s.store.MaxSize().HumanReadable())
		case hasValue(r, formField):
			// a file input submitted without a file arrives as a plain value
			err = plerrors.NewMissingFileError("No selected file")
		default:
			err = plerrors.NewMissingFileError("No file part")
		}
		s.uploadFailed(w, err)
		return
	}
	defer file.Close()

	stored, err := s.store.Save(header.Filename, file)
	if err != nil {
		s.uploadFailed(w, err)
		return
	}

	f, err := s.store.Open(stored)
	if err != nil {
		s.uploadFailed(w, plerrors.NewInternalError("upload", err))
		return
	}
	df, err := plio.Decode(stored.Name, f, s.mem)
	_ = f.Close()
	if err != nil {
		s.uploadFailed(w, err)
		return
	}

	// df is only read before Replace publishes it
	resp := uploadResponse{Success: true, Columns: df.Columns()}
	if spec, err := s.engine.Preview(df); err != nil {
		resp.Error = plerrors.Message(err)
	} else {
		resp.Plot = spec
	}
	rows := df.Len()

	sess := s.sessions.Replace(stored.Name, df)
	resp.Session = sess.ID
	level.Info(s.logger).Log(
		"msg", "dataset uploaded",
		"file", stored.Name,
		"bytes", stored.Size,
		"rows", rows,
		"columns", len(resp.Columns),
		"session", sess.ID,
	)
	s.metrics.ObserveUpload("ok")

	s.writeJSON(w, http.StatusOK, resp)
}

func hasValue(r *http.Request, field string) bool {
	if r.MultipartForm == nil {
		return false
	}
	_, ok := r.MultipartForm.Value[field]
	return ok
}

func (s *Server) uploadFailed(w http.ResponseWriter, err error) {
	kind := plerrors.KindOf(err)
	s.metrics.ObserveUpload(kind.String())
	level.Warn(s.logger).Log("msg", "upload rejected", "kind", kind, "err", err)
	s.writeJSON(w, statusFor(kind), uploadResponse{Error: plerrors.Message(err)})
}

// handleCurrentSession reports the latest upload so a reloaded page can
// pick it up again
func (s *Server) handleCurrentSession(w http.ResponseWriter, _ *http.Request) {
	sess, ok := s.sessions.Current()
	if !ok {
		s.writeError(w, plerrors.NewSessionNotFoundError(""))
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		Session  string    `json:"session"`
		Filename string    `json:"filename"`
		Created  time.Time `json:"created"`
	}{sess.ID, sess.Filename, sess.Created})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session.Session) error {
		profile := dataframe.Profile(sess.Frame, s.previewColumns)
		s.writeJSON(w, http.StatusOK, struct {
			Filename string `json:"filename"`
			dataframe.DatasetProfile
		}{sess.Filename, profile})
		return nil
	})
}

func (s *Server) handleControls(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	t := chart.Types()[0]
	if raw := query.Get("chart"); raw != "" {
		parsed, err := chart.ParseType(raw)
		if err != nil {
			s.writeError(w, plerrors.NewSelectionError("controls", "", err.Error()))
			return
		}
		t = parsed
	}

	s.withSession(w, r, func(sess *session.Session) error {
		view, err := s.engine.Controls(sess.Frame, t, query.Get("x"), query.Get("y"))
		if err != nil {
			return err
		}
		s.writeJSON(w, http.StatusOK, view)
		return nil
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	s.withSession(w, r, func(sess *session.Session) error {
		spec, err := s.engine.Resolve(sess.Frame, req)
		if err != nil {
			return err
		}
		s.writeJSON(w, http.StatusOK, spec)
		return nil
	})
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	s.withSession(w, r, func(sess *session.Session) error {
		spec, err := s.engine.Resolve(sess.Frame, req)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := s.renderer.PNG(spec, &buf); err != nil {
			return err
		}
		w.Header().Set("Content-Type", contentTypePNG)
		_, _ = w.Write(buf.Bytes())
		return nil
	})
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (pipeline.Request, bool) {
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, plerrors.NewSelectionError("chart", "", "malformed chart request: "+err.Error()))
		return req, false
	}
	return req, true
}

// withSession runs fn against the session named in the path. Errors from
// the lookup or fn are written as JSON.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Session) error) {
	id := mux.Vars(r)["id"]
	if err := s.sessions.Use(id, fn); err != nil {
		s.writeError(w, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := plerrors.KindOf(err)
	if kind == plerrors.Internal {
		level.Error(s.logger).Log("msg", "request failed", "err", err)
	}
	s.writeJSON(w, statusFor(kind), errorResponse{Error: plerrors.Message(err), Kind: kind.String()})
}

// writeJSON encodes v in full before committing status, so an encoding
// failure still reaches the client as a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		level.Error(s.logger).Log("msg", "failed to encode response", "err", err)
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorResponse{
			Error: "failed to encode response",
			Kind:  plerrors.Internal.String(),
		})
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		level.Debug(s.logger).Log("msg", "failed to write response", "err", err)
	}
}

func statusFor(kind plerrors.Kind) int {
	switch kind {
	case plerrors.InvalidFileType, plerrors.MissingFile, plerrors.InvalidSelection:
		return http.StatusBadRequest
	case plerrors.DecodeFailure, plerrors.InsufficientColumns:
		return http.StatusUnprocessableEntity
	case plerrors.FileTooLarge:
		return http.StatusRequestEntityTooLarge
	case plerrors.SessionNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
