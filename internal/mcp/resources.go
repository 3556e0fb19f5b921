package mcp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"homefix/internal/protocol"
	"homefix/internal/widgets"
)

type resourcesReadParams struct {
	URI string `json:"uri"`
}

func (s *Server) resourceList() []map[string]interface{} {
	defs := s.widgets.Definitions()
	out := make([]map[string]interface{}, 0, len(defs))
	for _, def := range defs {
		out = append(out, map[string]interface{}{
			"uri":      def.URI,
			"name":     def.Name,
			"mimeType": widgets.MIMEType,
		})
	}
	return out
}

func (s *Server) handleResourcesRead(w http.ResponseWriter, rawParams json.RawMessage, id interface{}) {
	var params resourcesReadParams
	if len(rawParams) == 0 || string(rawParams) == "null" {
		writeError(w, http.StatusBadRequest, id, rpcCodeInvalidRequest, "params is required", protocol.ErrorCodeMissingField, false)
		return
	}
	if err := json.Unmarshal(rawParams, &params); err != nil {
		writeError(w, http.StatusBadRequest, id, rpcCodeInvalidParams, "invalid resources/read params", protocol.ErrorCodeInvalidField, false)
		return
	}
	uri := strings.TrimSpace(params.URI)
	if uri == "" {
		writeError(w, http.StatusBadRequest, id, rpcCodeInvalidParams, "resources/read params.uri is required", protocol.ErrorCodeMissingField, false)
		return
	}

	content, err := s.widgets.Read(uri)
	switch {
	case errors.Is(err, widgets.ErrUnknownResource):
		writeError(w, http.StatusOK, id, rpcCodeInvalidParams, err.Error(), protocol.ErrorCodeInvalidField, false)
		return
	case errors.Is(err, widgets.ErrBundleMissing):
		s.logger.Warn("widget bundle missing", "uri", uri, "error", err)
		writeError(w, http.StatusOK, id, rpcCodeServerError, err.Error(), protocol.ErrorCodeResourceUnavailable, false)
		return
	case err != nil:
		s.logger.Error("read widget resource", "uri", uri, "error", err)
		writeError(w, http.StatusOK, id, rpcCodeServerError, "resource read failed", protocol.ErrorCodeResourceUnavailable, true)
		return
	}

	writeResult(w, http.StatusOK, id, map[string]interface{}{
		"contents": []widgets.Content{content},
	})
}
