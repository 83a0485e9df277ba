package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/arthur-debert/envmerge/pkg/core"
	"github.com/arthur-debert/envmerge/pkg/environment"
	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/logging"
	"github.com/arthur-debert/envmerge/pkg/serialize"
	"github.com/go-chi/chi/v5"
)

// ApplyRequest is the body of POST /apply
type ApplyRequest struct {
	Env     map[string]string `json:"env"`
	Inherit bool              `json:"inherit"`
}

// ApplyResponse is returned by POST /apply
type ApplyResponse struct {
	Env     map[string]string `json:"env"`
	Changed []string          `json:"changed"`
}

type errorResponse struct {
	Error string           `json:"error"`
	Code  errors.ErrorCode `json:"code"`
}

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	data, err := serialize.MarshalRegistry(s.session.Registry.All())
	if err != nil {
		writeError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, data)
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	id := core.NormalizeID(chi.URLParam(r, "id"))
	collection, ok := s.session.Registry.Get(id)
	if !ok {
		writeError(w, errors.Newf(errors.ErrNotFound, "contributor %s is not registered", id))
		return
	}
	data, err := serialize.MarshalContribution(collection)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, data)
}

func (s *Server) putCollection(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	collection, err := serialize.UnmarshalContribution(body)
	if err != nil {
		writeError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.session.Set(id, collection); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteCollection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existed, err := s.session.Delete(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !existed {
		writeError(w, errors.Newf(errors.ErrNotFound, "contributor %s is not registered", core.NormalizeID(id)))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getMerged(w http.ResponseWriter, r *http.Request) {
	entries := s.session.Merged().Entries()
	if entries == nil {
		writeRaw(w, http.StatusOK, []byte("[]"))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req ApplyRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, errors.Wrap(err, errors.ErrInvalidInput, "invalid apply request"))
			return
		}
	}

	env := make(map[string]string)
	if req.Inherit {
		env = environment.FromEnviron(s.environ())
	}
	for k, v := range req.Env {
		env[k] = v
	}

	merged := s.session.Merged()
	changed := s.session.Applier.Changed(merged, env)
	s.session.Applier.Apply(merged, env)
	s.metrics.applies.Inc()

	if changed == nil {
		changed = []string{}
	}
	writeJSON(w, http.StatusOK, ApplyResponse{Env: env, Changed: changed})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "failed to read request body")
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, errors.Wrap(err, errors.ErrInternal, "failed to encode response"))
		return
	}
	writeRaw(w, status, data)
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetErrorCode(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.ErrInvalidInput, errors.ErrMutatorInvalid:
		status = http.StatusBadRequest
	case errors.ErrNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		logger := logging.GetLogger("server")
		logger.Error().Err(err).Msg("Request failed")
	}

	data, _ := json.Marshal(errorResponse{Error: err.Error(), Code: code})
	writeRaw(w, status, data)
}
