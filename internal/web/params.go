package web

// params.go holds query and path parameter parsing shared by the handlers.
// Malformed values wrap errInvalidParam so they map to 400.

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/JonMunkholm/orderimport/internal/core"
)

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseID parses a required positive identifier.
func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", errInvalidParam, name, raw)
	}
	return id, nil
}

// parseDate parses an ISO date (yyyy-mm-dd).
func parseDate(name, raw string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(raw))
	if err != nil || !d.IsValid() {
		return civil.Date{}, fmt.Errorf("%w: %s=%q, expected yyyy-mm-dd", errInvalidParam, name, raw)
	}
	return d, nil
}

// parseOrderFilter builds an OrderFilter from orderId, startDate and endDate.
// Absent parameters leave the matching filter unset.
func parseOrderFilter(r *http.Request) (core.OrderFilter, error) {
	q := r.URL.Query()
	var f core.OrderFilter

	if raw := q.Get("orderId"); raw != "" {
		id, err := parseID("orderId", raw)
		if err != nil {
			return f, err
		}
		f.OrderID = &id
	}
	if raw := q.Get("startDate"); raw != "" {
		d, err := parseDate("startDate", raw)
		if err != nil {
			return f, err
		}
		f.Start = &d
	}
	if raw := q.Get("endDate"); raw != "" {
		d, err := parseDate("endDate", raw)
		if err != nil {
			return f, err
		}
		f.End = &d
	}
	return f, nil
}

// clientIP returns the host part of RemoteAddr, or RemoteAddr unchanged when
// it carries no port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
