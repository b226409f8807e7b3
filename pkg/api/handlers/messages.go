package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"consoled/pkg/auth"
	"consoled/pkg/models"
	"consoled/pkg/utils"

	"github.com/gorilla/mux"
)

// postMessage handles POST /consoles/{id}/messages. The message text is
// truncated per the record's limit policy before it is stored.
func postMessage(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	var msg models.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	c, err := svc.PostMessage(r.Context(), actor, mux.Vars(r)["id"], msg)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, c)
}

// deleteMessage handles DELETE /consoles/{id}/messages/{index} by
// zero-based position in the message body.
func deleteMessage(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid message index")
		return
	}
	c, err := svc.DeleteMessage(r.Context(), actor, vars["id"], index)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, c)
}

// clearMessages handles DELETE /consoles/{id}/messages: empties the body
// and notifies readers that content was removed.
func clearMessages(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	c, err := svc.Clear(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, c)
}
