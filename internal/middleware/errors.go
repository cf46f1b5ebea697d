package middleware

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "telcoclean/internal/errors"
)

// respond writes err as the JSON error envelope used by every handler.
func respond(w http.ResponseWriter, r *http.Request, err *apierrors.APIError) {
	if rerr := render.Render(w, r, apierrors.NewErrorResponse(err)); rerr != nil {
		apierrors.WriteError(w, err)
	}
}
