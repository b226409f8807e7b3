package handlers

import (
	"encoding/json"
	"net/http"

	"consoled/pkg/auth"
	"consoled/pkg/models"
	"consoled/pkg/store"
	"consoled/pkg/utils"

	"github.com/gorilla/mux"
)

func registerUsers(r *mux.Router) {
	r.HandleFunc("/users/{id}", upsertUser).Methods(http.MethodPut)
	r.HandleFunc("/users/{id}/unread", getUnread).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/connect", connectUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}/disconnect", disconnectUser).Methods(http.MethodPost)
}

// upsertUser handles PUT /users/{id}: registers or updates the directory
// profile used for name lookups and admin designation.
func upsertUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	u.ID = mux.Vars(r)["id"]
	if u.ID == "" || u.Name == "" {
		utils.JSONError(w, http.StatusBadRequest, "user id and name required")
		return
	}
	if err := store.SaveUser(u); err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, u)
}

// getUnread handles GET /users/{id}/unread. Unread state is private to
// its owner; only the user themselves or an administrator may read it.
func getUnread(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	id := mux.Vars(r)["id"]
	if actor.ID != id && !actor.Admin {
		utils.JSONWarning(w, http.StatusForbidden, "you lack the permissions to read another user's unread state")
		return
	}
	ids, err := svc.Unread(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Unread []string `json:"unread"`
	}{Unread: ids})
}

// connectUser handles POST /users/{id}/connect: marks the user online for
// notification delegation decisions.
func connectUser(w http.ResponseWriter, r *http.Request) {
	rtr.Presence().Connect(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// disconnectUser handles POST /users/{id}/disconnect.
func disconnectUser(w http.ResponseWriter, r *http.Request) {
	rtr.Presence().Disconnect(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}
