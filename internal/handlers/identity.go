package handlers

import (
	"context"
	"net/http"

	"github.com/tenderhub/procurement-service/internal/models"
	"github.com/tenderhub/procurement-service/internal/services"
)

// Заголовок с идентификатором вызывающего. Заполняется внешним
// провайдером сессий, сам сервис сессии не выпускает.
const callerHeader = "X-User-Id"

// callerFromRequest разрешает вызывающего по заголовку запроса.
func callerFromRequest(ctx context.Context, identity *services.IdentityService, r *http.Request) (models.Caller, error) {
	return identity.ResolveCaller(ctx, r.Header.Get(callerHeader))
}
