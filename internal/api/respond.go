package api

import (
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/AnyUserName/blurtune/internal/apperr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBody caps request bodies; option payloads are a few hundred bytes.
const maxBody = 64 << 10

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newErrorBody(err error) *errorBody {
	kind := apperr.KindOf(err)
	if kind == "" {
		kind = "internal"
	}
	return &errorBody{Error: string(kind), Message: err.Error()}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, status, newErrorBody(err))
}

// decodeBody reads a JSON request body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return apperr.New(apperr.IOError, "api.read_body", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		if apperr.KindOf(err) != "" {
			return err
		}
		return apperr.New(apperr.InvalidConfiguration, "api.decode_body", err)
	}
	return nil
}
