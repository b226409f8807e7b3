package handlers

import (
	"encoding/json"
	"net/http"

	"consoled/pkg/archive"
	"consoled/pkg/auth"
	"consoled/pkg/commands"
	"consoled/pkg/consoles"
	"consoled/pkg/models"
	"consoled/pkg/notify"
	"consoled/pkg/utils"

	"github.com/gorilla/mux"
)

// Register wires all console routes onto the provided router.
func Register(r *mux.Router, s *consoles.Service, n *notify.Router) {
	svc = s
	rtr = n

	// Collection routes
	r.HandleFunc("/consoles", createConsole).Methods(http.MethodPost)
	r.HandleFunc("/consoles", listConsoles).Methods(http.MethodGet)

	// Single resource routes
	r.HandleFunc("/consoles/{id}", getConsole).Methods(http.MethodGet)
	r.HandleFunc("/consoles/{id}", updateConsole).Methods(http.MethodPut)
	r.HandleFunc("/consoles/{id}", deleteConsole).Methods(http.MethodDelete)
	r.HandleFunc("/consoles/{id}/duplicate", duplicateConsole).Methods(http.MethodPost)
	r.HandleFunc("/consoles/{id}/toggle/{flag}", toggleFlag).Methods(http.MethodPost)
	r.HandleFunc("/consoles/{id}/command", runCommand).Methods(http.MethodPost)
	r.HandleFunc("/consoles/{id}/share", shareConsole).Methods(http.MethodPost)
	r.HandleFunc("/consoles/{id}/archive", archiveConsole).Methods(http.MethodPost)

	// Console-scoped messages
	r.HandleFunc("/consoles/{id}/messages", postMessage).Methods(http.MethodPost)
	r.HandleFunc("/consoles/{id}/messages", clearMessages).Methods(http.MethodDelete)
	r.HandleFunc("/consoles/{id}/messages/{index}", deleteMessage).Methods(http.MethodDelete)

	// Collaborator reactions
	r.HandleFunc("/scenes/{id}/deleted", sceneDeleted).Methods(http.MethodPost)

	registerUsers(r)
	registerPages(r)
}

// createConsole handles POST /consoles. The new record starts from the
// world default template; the body is ignored.
func createConsole(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	c, err := svc.Create(r.Context(), actor)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, c)
}

// listConsoles handles GET /consoles. An optional "name" query parameter
// returns the first readable record with that exact name.
func listConsoles(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	if name := r.URL.Query().Get("name"); name != "" {
		c, err := svc.GetByName(actor, name)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, c)
		return
	}
	out, err := svc.List(actor)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Consoles []models.Console `json:"consoles"`
	}{Consoles: out})
}

// getConsole handles GET /consoles/{id}. Returns 404 if the record does
// not exist and a warning if the actor may not read it.
func getConsole(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	c, err := svc.Get(actor, mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, c)
}

// updateConsole handles PUT /consoles/{id}. The body must be the full
// intended record: array fields replace wholesale under the merge
// protocol, so partial arrays would silently fail to shrink.
func updateConsole(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	var c models.Console
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	out, err := svc.Update(r.Context(), actor, mux.Vars(r)["id"], c)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, out)
}

// deleteConsole handles DELETE /consoles/{id} via the tombstone key.
func deleteConsole(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	if err := svc.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// duplicateConsole handles POST /consoles/{id}/duplicate.
func duplicateConsole(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	c, err := svc.Duplicate(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, c)
}

// toggleFlag handles POST /consoles/{id}/toggle/{flag} with flag one of
// lock, mute, notifications, show, timestamps.
func toggleFlag(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	vars := mux.Vars(r)
	c, err := svc.ToggleFlag(r.Context(), actor, vars["id"], vars["flag"])
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, c)
}

// runCommand handles POST /consoles/{id}/command with body {"input": "/..."}.
// The input is resolved into a tagged command once, here at the boundary.
func runCommand(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	var body struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	cmd, err := commands.Parse(body.Input)
	if err != nil {
		utils.JSONWarning(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := svc.RunCommand(r.Context(), actor, mux.Vars(r)["id"], cmd)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, c)
}

// shareConsole handles POST /consoles/{id}/share with optional body
// {"users": [...]}; with no audience the ownership set is used.
func shareConsole(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	var body struct {
		Users []string `json:"users"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if err := svc.Share(r.Context(), actor, mux.Vars(r)["id"], body.Users); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// archiveConsole handles POST /consoles/{id}/archive: export to the page
// store, then delete the live record.
func archiveConsole(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	p, err := archive.Archive(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, p)
}

// sceneDeleted handles POST /scenes/{id}/deleted: the external scene was
// removed and every record's scenes set must be pruned.
func sceneDeleted(w http.ResponseWriter, r *http.Request) {
	touched, err := svc.SceneDeleted(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]int{"consoles": touched})
}
