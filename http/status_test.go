package http

import (
	"testing"

	"github.com/freekieb7/userver/test"
)

func TestStatusText(t *testing.T) {
	testCases := []struct {
		code     int
		expected string
	}{
		{StatusOK, "OK"},
		{StatusNoContent, "No Content"},
		{StatusNotFound, "Not Found"},
		{StatusMethodNotAllowed, "Method Not Allowed"},
		{StatusRequestTimeout, "Request Timeout"},
		{StatusInternalServerError, "Internal Server Error"},
		{599, ""},
		{299, ""},
	}

	for _, tc := range testCases {
		test.AssertEqual(t, tc.expected, StatusText(tc.code))
	}
}

func TestStatusDescription(t *testing.T) {
	test.AssertEqual(t, "Nothing matches the given URI", StatusDescription(StatusNotFound))
	test.AssertEqual(t, "", StatusDescription(599))
}

func TestStatusTableComplete(t *testing.T) {
	for code, entry := range statusTable {
		if !validStatus(code) {
			t.Errorf("code %d outside the valid range", code)
		}
		if entry.short == "" || entry.long == "" {
			t.Errorf("code %d has an empty phrase", code)
		}
	}
}
