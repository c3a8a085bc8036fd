package http

const (
	StatusContinue           = 100
	StatusSwitchingProtocols = 101

	StatusOK                   = 200
	StatusCreated              = 201
	StatusAccepted             = 202
	StatusNonAuthoritativeInfo = 203
	StatusNoContent            = 204
	StatusResetContent         = 205
	StatusPartialContent       = 206

	StatusMultipleChoices   = 300
	StatusMovedPermanently  = 301
	StatusFound             = 302
	StatusSeeOther          = 303
	StatusNotModified       = 304
	StatusUseProxy          = 305
	StatusTemporaryRedirect = 307
	StatusPermanentRedirect = 308

	StatusBadRequest                   = 400
	StatusUnauthorized                 = 401
	StatusPaymentRequired              = 402
	StatusForbidden                    = 403
	StatusNotFound                     = 404
	StatusMethodNotAllowed             = 405
	StatusNotAcceptable                = 406
	StatusProxyAuthRequired            = 407
	StatusRequestTimeout               = 408
	StatusConflict                     = 409
	StatusGone                         = 410
	StatusLengthRequired               = 411
	StatusPreconditionFailed           = 412
	StatusRequestEntityTooLarge        = 413
	StatusRequestURITooLong            = 414
	StatusUnsupportedMediaType         = 415
	StatusRequestedRangeNotSatisfiable = 416
	StatusExpectationFailed            = 417
	StatusTeapot                       = 418
	StatusUnprocessableEntity          = 422
	StatusTooManyRequests              = 429
	StatusRequestHeaderFieldsTooLarge  = 431

	StatusInternalServerError     = 500
	StatusNotImplemented          = 501
	StatusBadGateway              = 502
	StatusServiceUnavailable      = 503
	StatusGatewayTimeout          = 504
	StatusHTTPVersionNotSupported = 505
)

type statusEntry struct {
	short string
	long  string
}

// statusTable is read-only after init and shared by every connection.
var statusTable = map[int]statusEntry{
	StatusContinue:           {"Continue", "Request received, please continue"},
	StatusSwitchingProtocols: {"Switching Protocols", "Switching to new protocol; obey Upgrade header"},

	StatusOK:                   {"OK", "Request fulfilled, document follows"},
	StatusCreated:              {"Created", "Document created, URL follows"},
	StatusAccepted:             {"Accepted", "Request accepted, processing continues off-line"},
	StatusNonAuthoritativeInfo: {"Non-Authoritative Information", "Request fulfilled from cache"},
	StatusNoContent:            {"No Content", "Request fulfilled, nothing follows"},
	StatusResetContent:         {"Reset Content", "Clear input form for further input"},
	StatusPartialContent:       {"Partial Content", "Partial content follows"},

	StatusMultipleChoices:   {"Multiple Choices", "Object has several resources, see URI list"},
	StatusMovedPermanently:  {"Moved Permanently", "Object moved permanently, see URI list"},
	StatusFound:             {"Found", "Object moved temporarily, see URI list"},
	StatusSeeOther:          {"See Other", "Object moved, see Method and URL list"},
	StatusNotModified:       {"Not Modified", "Document has not changed since given time"},
	StatusUseProxy:          {"Use Proxy", "You must use proxy specified in Location to access this resource"},
	StatusTemporaryRedirect: {"Temporary Redirect", "Object moved temporarily, see URI list"},
	StatusPermanentRedirect: {"Permanent Redirect", "Object moved permanently, keep the method"},

	StatusBadRequest:                   {"Bad Request", "Bad request syntax or unsupported method"},
	StatusUnauthorized:                 {"Unauthorized", "No permission, see authorization schemes"},
	StatusPaymentRequired:              {"Payment Required", "No payment, see charging schemes"},
	StatusForbidden:                    {"Forbidden", "Request forbidden, authorization will not help"},
	StatusNotFound:                     {"Not Found", "Nothing matches the given URI"},
	StatusMethodNotAllowed:             {"Method Not Allowed", "Specified method is invalid for this resource"},
	StatusNotAcceptable:                {"Not Acceptable", "URI not available in preferred format"},
	StatusProxyAuthRequired:            {"Proxy Authentication Required", "You must authenticate with this proxy before proceeding"},
	StatusRequestTimeout:               {"Request Timeout", "Request timed out; try again later"},
	StatusConflict:                     {"Conflict", "Request conflict"},
	StatusGone:                         {"Gone", "URI no longer exists and has been permanently removed"},
	StatusLengthRequired:               {"Length Required", "Client must specify Content-Length"},
	StatusPreconditionFailed:           {"Precondition Failed", "Precondition in headers is false"},
	StatusRequestEntityTooLarge:        {"Request Entity Too Large", "Entity is too large"},
	StatusRequestURITooLong:            {"Request-URI Too Long", "URI is too long"},
	StatusUnsupportedMediaType:         {"Unsupported Media Type", "Entity body in unsupported format"},
	StatusRequestedRangeNotSatisfiable: {"Requested Range Not Satisfiable", "Cannot satisfy request range"},
	StatusExpectationFailed:            {"Expectation Failed", "Expect condition could not be satisfied"},
	StatusTeapot:                       {"I'm a teapot", "The server refuses to brew coffee"},
	StatusUnprocessableEntity:          {"Unprocessable Entity", "Entity is well-formed but semantically invalid"},
	StatusTooManyRequests:              {"Too Many Requests", "Client sent too many requests; slow down"},
	StatusRequestHeaderFieldsTooLarge:  {"Request Header Fields Too Large", "Header block exceeds the server limit"},

	StatusInternalServerError:     {"Internal Server Error", "Server got itself in trouble"},
	StatusNotImplemented:          {"Not Implemented", "Server does not support this operation"},
	StatusBadGateway:              {"Bad Gateway", "Invalid responses from another server/proxy"},
	StatusServiceUnavailable:      {"Service Unavailable", "The server cannot process the request due to a high load"},
	StatusGatewayTimeout:          {"Gateway Timeout", "The gateway server did not receive a timely response"},
	StatusHTTPVersionNotSupported: {"HTTP Version Not Supported", "Cannot fulfill request"},
}

// StatusText returns the reason phrase for code, or "" when the code is unknown.
func StatusText(code int) string {
	return statusTable[code].short
}

// StatusDescription returns the long description for code. It is never put on the wire.
func StatusDescription(code int) string {
	return statusTable[code].long
}

// validStatus reports whether code can appear in a status line.
func validStatus(code int) bool {
	return code >= 100 && code <= 599
}
