package handlers

import (
	"net/http"

	"consoled/pkg/consoles"
	"consoled/pkg/notify"
	"consoled/pkg/store"
	"consoled/pkg/utils"
)

var (
	svc *consoles.Service
	rtr *notify.Router
)

// writeErr maps service errors onto the wire: warnings are user-facing
// refusals, not-found is 404, anything else is a single 500 with no
// automatic retry.
func writeErr(w http.ResponseWriter, err error) {
	if wn, ok := consoles.AsWarning(err); ok {
		status := http.StatusBadRequest
		switch wn.Reason {
		case "permission_denied", "locked":
			status = http.StatusForbidden
		case "unknown_user":
			status = http.StatusNotFound
		}
		utils.JSONWarning(w, status, wn.Msg)
		return
	}
	if err == store.ErrNotFound {
		utils.JSONError(w, http.StatusNotFound, "not found")
		return
	}
	utils.JSONError(w, http.StatusInternalServerError, err.Error())
}
