// Package adminapi exposes a small read-only admin surface over the
// router catalog: GET /admin/routers lists every registered router with
// its instructions and descriptor counts.
package adminapi

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/mcpgateway/gateway/internal/router"
)

// routerEntry is the JSON shape of one catalog row.
type routerEntry struct {
	ID           string `json:"id"`
	Instructions string `json:"instructions,omitempty"`
	Tools        int    `json:"tools"`
	Resources    int    `json:"resources"`
	Prompts      int    `json:"prompts"`
}

// Handler serves the admin routes from a router catalog.
type Handler struct {
	catalog router.Catalog
	mux     *http.ServeMux
}

// New builds the admin handler over the given catalog.
func New(catalog router.Catalog) *Handler {
	h := &Handler{catalog: catalog, mux: http.NewServeMux()}
	h.mux.HandleFunc("/admin/routers", h.handleRouters)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleRouters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summaries := h.catalog.ListRouters()
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	entries := make([]routerEntry, 0, len(summaries))
	for _, s := range summaries {
		entries = append(entries, routerEntry{
			ID:           s.ID,
			Instructions: s.Instructions,
			Tools:        s.ToolCount,
			Resources:    s.ResourceCount,
			Prompts:      s.PromptCount,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"routers": entries}); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
