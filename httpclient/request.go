package httpclient

// Request describes an outbound HTTP request.
type Request struct {
	Method string
	// Path is appended to the client's BaseURL.
	Path    string
	Headers map[string]string
	// Body is JSON-encoded when non-nil.
	Body any
}

// Response is the result of an HTTP request.
type Response struct {
	StatusCode int
	Body       []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
