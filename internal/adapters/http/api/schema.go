package api

import (
	"net/http"

	"github.com/okian/matchscout/internal/domain/schema"
)

// SchemaProvider exposes the season schema in use.
type SchemaProvider interface {
	Schema() *schema.Schema
}

// SchemaHandler serves the active season definition.
type SchemaHandler struct {
	provider SchemaProvider
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(provider SchemaProvider) *SchemaHandler {
	return &SchemaHandler{provider: provider}
}

// HandleGetSchema handles GET /schema requests.
func (h *SchemaHandler) HandleGetSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Schema().Definition())
}
