package gateway

import "fmt"

// statusCauses maps the venue status codes that indicate the request (or
// the account) is the problem, not transient server state.
var statusCauses = map[int]string{
	400: "bad request: something in the request is malformed",
	401: "not authorized",
	403: "web application firewall limit has been violated",
	418: "banned from the venue API for a while",
	429: "request limit has been exceeded",
}

// StatusCodeError is a venue response with one of the mapped status codes.
// Any other non-2xx status is passed through unmapped.
type StatusCodeError struct {
	Code  int
	Cause string
}

func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("gateway status %d: %s", e.Code, e.Cause)
}
