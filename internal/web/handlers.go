package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/txnimport/internal/core"
	"github.com/JonMunkholm/txnimport/internal/store"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody bounds the small JSON bodies of the wizard steps.
const maxJSONBody = 1 << 20

// handleHealth reports liveness and import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"imports":  s.limiter.Status(),
		"sessions": s.sessions.len(),
	})
}

// handleOpenImport ingests an uploaded file and starts a session. When the
// layout is already known (or a mapping is sent with the file) the rows are
// transformed right away, so a repeat import needs no further input.
func (s *Server) handleOpenImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondError(w, r, fmt.Errorf("%w: limit %d bytes", errFileTooLarge, maxSize), 0)
			return
		}
		respondError(w, r, fmt.Errorf("%w: multipart form: %v", errBadRequest, err), 0)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, 0)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: read upload: %v", errBadRequest, err), 0)
		return
	}

	var mapping *core.ColumnMapping
	if raw := r.FormValue("mapping"); raw != "" {
		mapping = &core.ColumnMapping{}
		if err := json.Unmarshal([]byte(raw), mapping); err != nil {
			respondError(w, r, fmt.Errorf("%w: mapping: %v", errBadRequest, err), 0)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	var sess *core.Session
	err = s.limiter.Run(ctx, func() error {
		var err error
		sess, err = s.service.Open(ctx, header.Filename, data, r.FormValue("name"))
		if err != nil {
			return err
		}
		if mapping != nil {
			if err := s.service.ApplyMapping(ctx, sess, *mapping); err != nil {
				return err
			}
		}
		if sess.HasMapping() {
			_, err = s.service.Transform(ctx, sess)
		}
		return err
	})
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	s.sessions.put(sess)
	writeJSONStatus(w, http.StatusCreated, newSessionView(sess))
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *core.Session) error {
		writeJSON(w, newSessionView(sess))
		return nil
	})
}

func (s *Server) handleDiscardImport(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.remove(chi.URLParam(r, "id")) {
		respondError(w, r, core.ErrSessionNotFound, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleApplyMapping saves a manual mapping for the session's layout and
// previews the rows with it.
func (s *Server) handleApplyMapping(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, 0)
		return
	}
	if req.Mapping == nil {
		respondError(w, r, fmt.Errorf("%w: mapping is required", errBadRequest), 0)
		return
	}

	s.withSession(w, r, func(sess *core.Session) error {
		prevName := sess.ConfigName
		if name := strings.TrimSpace(req.Name); name != "" {
			sess.ConfigName = name
		}
		if err := s.service.ApplyMapping(r.Context(), sess, *req.Mapping); err != nil {
			// a rejected mapping leaves the session as it was
			sess.ConfigName = prevName
			return err
		}
		if err := s.transform(r.Context(), sess); err != nil {
			return err
		}
		writeJSON(w, newSessionView(sess))
		return nil
	})
}

// handleTransform re-runs the transformation, discarding edits.
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *core.Session) error {
		if err := s.transform(r.Context(), sess); err != nil {
			return err
		}
		writeJSON(w, newSessionView(sess))
		return nil
	})
}

// handlePatchCandidate selects, deselects or edits one candidate.
func (s *Server) handlePatchCandidate(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: candidate index %q", errBadRequest, chi.URLParam(r, "index")), 0)
		return
	}

	var patch candidatePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondError(w, r, err, 0)
		return
	}
	if patch.Selected == nil && !patch.edits() {
		respondError(w, r, fmt.Errorf("%w: nothing to change", errBadRequest), 0)
		return
	}

	s.withSession(w, r, func(sess *core.Session) error {
		if patch.edits() {
			if err := applyPatch(sess, index, patch); err != nil {
				return err
			}
		}
		if patch.Selected != nil {
			if err := sess.Select(index, *patch.Selected); err != nil {
				return err
			}
		}
		writeJSON(w, candidateView{Index: index, Selected: sess.Selected[index], Candidate: sess.Candidates[index]})
		return nil
	})
}

func applyPatch(sess *core.Session, index int, p candidatePatch) error {
	if !sess.Transformed {
		return core.ErrNotTransformed
	}
	if index < 0 || index >= len(sess.Candidates) {
		return fmt.Errorf("%w: %d of %d", core.ErrCandidateIndex, index, len(sess.Candidates))
	}

	c := sess.Candidates[index]
	if p.Date != nil {
		c.Date = *p.Date
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Amount != nil {
		amount, err := core.ParseAmount(*p.Amount)
		if err != nil {
			return fmt.Errorf("%w: amount %q", errBadRequest, *p.Amount)
		}
		c.Amount = amount
	}
	if p.Direction != nil {
		c.Direction = *p.Direction
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Tags != nil {
		c.Tags = p.Tags
	}

	if err := sess.Update(index, c); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// handleCommit stores the selected candidates. The session is dropped after
// a successful commit; on failure it stays so the client can retry, which
// is safe because stored rows are skipped as duplicates.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	committed := false
	s.withSession(w, r, func(sess *core.Session) error {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
		defer cancel()

		var res core.CommitResult
		err := s.limiter.Run(ctx, func() error {
			var err error
			res, err = s.service.Commit(ctx, sess)
			return err
		})
		if err != nil {
			return err
		}

		committed = true
		writeJSON(w, commitView{CommitResult: res, Dropped: sess.Stats.Dropped()})
		return nil
	})
	if committed {
		s.sessions.remove(chi.URLParam(r, "id"))
	}
}

func (s *Server) handleListConfigurations(w http.ResponseWriter, r *http.Request) {
	cfgs, err := s.service.ListConfigurations(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if cfgs == nil {
		cfgs = []core.ImportConfiguration{}
	}
	writeJSON(w, cfgs)
}

// handleDeleteConfiguration forgets the mapping of ?signature=.
func (s *Server) handleDeleteConfiguration(w http.ResponseWriter, r *http.Request) {
	signature := r.URL.Query().Get("signature")
	if signature == "" {
		respondError(w, r, fmt.Errorf("%w: signature is required", errBadRequest), 0)
		return
	}

	if err := s.service.DeleteConfiguration(r.Context(), signature); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = fmt.Errorf("configuration %w", store.ErrNotFound)
		}
		respondError(w, r, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHistory lists recent import runs; ?limit= defaults to 20.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, r, fmt.Errorf("%w: limit %q", errBadRequest, raw), 0)
			return
		}
		limit = n
	}

	runs, err := s.service.History(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if runs == nil {
		runs = []core.ImportRun{}
	}
	writeJSON(w, runs)
}

// transform runs the transformation under an import slot.
func (s *Server) transform(ctx context.Context, sess *core.Session) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Upload.Timeout)
	defer cancel()
	return s.limiter.Run(ctx, func() error {
		_, err := s.service.Transform(ctx, sess)
		return err
	})
}

// withSession runs fn on the session named by the {id} URL parameter and
// reports fn's error.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*core.Session) error) {
	if err := s.sessions.with(chi.URLParam(r, "id"), fn); err != nil {
		respondError(w, r, err, 0)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
