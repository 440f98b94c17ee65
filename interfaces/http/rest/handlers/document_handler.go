package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mindgraph/application/commands"
	"mindgraph/application/queries"
	"mindgraph/pkg/common"
)

// DocumentHandler lists, saves, opens and deletes stored maps
type DocumentHandler struct {
	base
}

func NewDocumentHandler(deps Deps) *DocumentHandler {
	return &DocumentHandler{base{deps}}
}

// List handles GET /documents?page=&page_size=
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	p := common.ExtractPageParams(r)
	h.ask(w, r, queries.ListDocumentsQuery{Page: p.Page, PageSize: p.PageSize})
}

// Save handles POST /documents
func (h *DocumentHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.SaveCommand{})
}

// Open handles GET /documents/{fileID} and makes the map current
func (h *DocumentHandler) Open(w http.ResponseWriter, r *http.Request) {
	m, err := h.Documents.Open(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, m)
}

// Delete handles DELETE /documents/{fileID}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Documents.Delete(r.Context(), chi.URLParam(r, "fileID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
