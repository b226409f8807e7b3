package auth

import (
	"context"
	"net/http"
	"strings"

	"consoled/pkg/logger"
	"consoled/pkg/models"
)

type ctxActorKey struct{}

// ResolveActor reads the acting identity from request headers and injects
// it into the context. X-Role-Name: admin marks the GM; requests without
// an actor id are refused before any handler runs.
func ResolveActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Actor-ID"))
		if id == "" {
			logger.Warn("missing_actor_header", "path", r.URL.Path, "remote", r.RemoteAddr)
			http.Error(w, `{"error":"actor id required"}`, http.StatusUnauthorized)
			return
		}
		actor := models.Actor{
			ID:    id,
			Name:  strings.TrimSpace(r.Header.Get("X-Actor-Name")),
			Admin: r.Header.Get("X-Role-Name") == "admin",
		}
		ctx := context.WithValue(r.Context(), ctxActorKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromContext returns the actor injected by ResolveActor.
func ActorFromContext(ctx context.Context) models.Actor {
	if a, ok := ctx.Value(ctxActorKey{}).(models.Actor); ok {
		return a
	}
	return models.Actor{}
}
