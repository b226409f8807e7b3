package handlers

import (
	"net/http"

	"consoled/pkg/archive"
	"consoled/pkg/utils"

	"github.com/gorilla/mux"
)

func registerPages(r *mux.Router) {
	r.HandleFunc("/pages", listPages).Methods(http.MethodGet)
	r.HandleFunc("/pages/{id}", getPage).Methods(http.MethodGet)
}

// listPages handles GET /pages: every archived export, oldest first.
func listPages(w http.ResponseWriter, r *http.Request) {
	pages, err := archive.List()
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Pages []archive.Page `json:"pages"`
	}{Pages: pages})
}

// getPage handles GET /pages/{id}.
func getPage(w http.ResponseWriter, r *http.Request) {
	p, err := archive.Get(mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, p)
}
