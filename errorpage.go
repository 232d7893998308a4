package arbor

import (
	"errors"
	"net/http"

	"github.com/arbor-web/arbor/pkg/markup"
)

// ErrorHandler turns a request error into response content. The returned
// value goes through the renderer unless it is a *Response, which is
// written as-is.
type ErrorHandler func(r *http.Request, err error) (any, error)

// buildErrorHandlers normalizes the Handlers declaration of the root
// package's error module. Accepted shapes are a status-to-handler map or
// a factory, optionally taking the application renderer.
func buildErrorHandlers(handlers any, renderer *markup.Renderer) (map[int]ErrorHandler, error) {
	switch h := handlers.(type) {
	case nil:
		return nil, nil
	case map[int]ErrorHandler:
		out := make(map[int]ErrorHandler, len(h))
		for code, fn := range h {
			out[code] = fn
		}
		return out, nil
	case func() map[int]ErrorHandler:
		return buildErrorHandlers(h(), renderer)
	case func(*markup.Renderer) map[int]ErrorHandler:
		return buildErrorHandlers(h(renderer), renderer)
	default:
		return nil, configErrorf("bind", "invalid error handlers declaration %T", handlers)
	}
}

// respondError writes an error response. A registered handler for the
// status code gets the first shot; its output is rendered like page
// content. Failures inside the error path must stay visible, so they are
// logged and degrade to a plain-text response rather than recursing.
func (a *App) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var herr *HTTPError
	if errors.As(err, &herr) {
		code = herr.Code
		message = herr.Message
	} else {
		a.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}

	handler, ok := a.errorHandlers[code]
	if !ok {
		http.Error(w, message, code)
		return
	}

	v, hErr := handler(r, err)
	if hErr != nil {
		a.logger.Error("error handler failed", "status", code, "path", r.URL.Path, "error", hErr)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if resp, ok := v.(*Response); ok {
		resp.Write(w)
		return
	}

	body, rErr := a.renderer.Render(r, v, nil)
	if rErr != nil {
		a.logger.Error("error page render failed", "status", code, "path", r.URL.Path, "error", rErr)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", a.renderer.ContentType())
	w.WriteHeader(code)
	w.Write(body)
}
