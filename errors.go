package arbor

import (
	"fmt"
	"net/http"
)

// ConfigError reports a fatal startup misconfiguration: duplicate URLs,
// malformed module shapes, a missing application directory. It is always
// surfaced from New or Build, never at request time.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("arbor: %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(op, format string, args ...any) *ConfigError {
	return &ConfigError{Op: op, Err: fmt.Errorf(format, args...)}
}

// HTTPError carries an HTTP status code from any page, action, layout or
// metadata dependency to the application's error path unchanged.
type HTTPError struct {
	Code    int
	Message string
	Err     error
}

// NewHTTPError creates an HTTPError with the given status code. The
// message defaults to the standard status text.
func NewHTTPError(code int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(code)
	}
	return &HTTPError{Code: code, Message: message}
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code))
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Response is a terminal low-level response. Returning one from a page,
// submit handler or action bypasses metadata resolution and layout
// composition entirely; the binder writes it out as-is.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewResponse creates a Response with the given status code.
func NewResponse(code int) *Response {
	return &Response{StatusCode: code, Header: make(http.Header)}
}

// WithHeader sets a header and returns the response for chaining.
func (r *Response) WithHeader(key, value string) *Response {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
	return r
}

// WithBody sets the body and returns the response for chaining.
func (r *Response) WithBody(body []byte) *Response {
	r.Body = body
	return r
}

// Write sends the response.
func (r *Response) Write(w http.ResponseWriter) {
	for key, values := range r.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	code := r.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	w.WriteHeader(code)
	if len(r.Body) > 0 {
		w.Write(r.Body)
	}
}

// Redirect creates a terminal redirect response. code should be one of
// the 3xx statuses; http.StatusSeeOther is the usual choice after a
// submit handler.
func Redirect(url string, code int) *Response {
	return NewResponse(code).WithHeader("Location", url)
}
