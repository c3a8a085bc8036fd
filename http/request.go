package http

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultMaxHeaderBytes = 8 << 10
	DefaultMaxBodyBytes   = 1 << 20
)

const (
	MethodGet     = "GET"
	MethodHead    = "HEAD"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodPatch   = "PATCH"
	MethodDelete  = "DELETE"
	MethodOptions = "OPTIONS"
)

type Request struct {
	Method  string
	Target  string
	Proto   string
	Headers Headers

	// ContentLength is the declared body length, 0 when no body is expected.
	ContentLength int64
	// Body is nil when the request carries no payload.
	Body []byte
}

// ExpectsBody reports whether the method is one that may carry a payload.
func (req *Request) ExpectsBody() bool {
	switch strings.ToUpper(req.Method) {
	case MethodPut, MethodPost, MethodPatch:
		return true
	}
	return false
}

// ParseRequestLine splits "METHOD SP target SP protocol". A line without at least a
// method and a target is reported with ok false and an empty method, which no handler
// table can match.
func ParseRequestLine(line string) (method, target, proto string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", "", false
	}
	method, target = fields[0], fields[1]
	if len(fields) > 2 {
		proto = strings.Join(fields[2:], " ")
	}
	return method, target, proto, true
}

// RequestReader reads one request from a buffered connection stream.
type RequestReader struct {
	MaxHeaderBytes int
	MaxBodyBytes   int64

	read int
}

// ReadHeader consumes the request line and the header block. The block ends at a
// blank line or at end of stream. Lines without a colon are skipped.
func (r *RequestReader) ReadHeader(br *bufio.Reader) (*Request, error) {
	r.read = 0

	line, err := r.readLine(br)
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRequest
		}
		return nil, err
	}
	eof := err != nil

	req := &Request{}
	req.Method, req.Target, req.Proto, _ = ParseRequestLine(line)

	var lines []string
	for !eof && strings.TrimSpace(line) != "" {
		line, err = r.readLine(br)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return req, err
			}
			eof = true
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		if strings.Contains(line, ":") {
			lines = append(lines, line)
		}
	}

	req.Headers, err = ParseHeaders(lines)
	if err != nil {
		return req, err
	}

	if !req.ExpectsBody() {
		return req, nil
	}
	cl, ok := req.Headers[headerContentLength]
	if !ok || cl == "" {
		return req, nil
	}
	n, err := strconv.ParseInt(cl, 10, 64)
	if err != nil || n < 0 {
		return req, fmt.Errorf("%w: %q", ErrBadContentLength, cl)
	}
	if r.MaxBodyBytes > 0 && n > r.MaxBodyBytes {
		return req, fmt.Errorf("%w: %d > %d", ErrBodyTooLarge, n, r.MaxBodyBytes)
	}
	req.ContentLength = n
	return req, nil
}

// ReadBody fills req.Body with exactly req.ContentLength bytes. A stream that ends
// early yields ErrIncompleteBody; an expired read deadline yields ErrTimeout.
func (r *RequestReader) ReadBody(br *bufio.Reader, req *Request) error {
	if req.ContentLength <= 0 {
		return nil
	}
	body := make([]byte, req.ContentLength)
	n, err := io.ReadFull(br, body)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrDeadlineExceeded):
			return fmt.Errorf("%w: body read %d of %d bytes", ErrTimeout, n, req.ContentLength)
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return fmt.Errorf("%w: read %d of %d bytes", ErrIncompleteBody, n, req.ContentLength)
		}
		return err
	}
	req.Body = body
	return nil
}

func (r *RequestReader) readLine(br *bufio.Reader) (string, error) {
	var line []byte
	for {
		chunk, err := br.ReadSlice('\n')
		r.read += len(chunk)
		if r.MaxHeaderBytes > 0 && r.read > r.MaxHeaderBytes {
			return "", ErrHeaderTooLarge
		}
		line = append(line, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return string(line), fmt.Errorf("%w: reading header block", ErrTimeout)
		}
		return strings.TrimRight(string(line), "\r\n"), err
	}
}
