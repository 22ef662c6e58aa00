package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/trucogame/internal/api/apierr"
	httpmw "github.com/mcoot/trucogame/internal/middleware"
)

// Recovery answers a panicking API handler with the JSON INTERNAL_ERROR body
// clients already parse for every other failure
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return httpmw.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
