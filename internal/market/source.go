package market

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// HTTPSource implements Source against a calendar service exposing
// per-calendar session endpoints. Every failure (transport, HTTP status,
// missing field) is returned as an error; the Calendar degrades to its
// heuristic, so this client never retries.
type HTTPSource struct {
	client *resty.Client
}

// NewHTTPSource creates a calendar client for baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
	}
}

func (s *HTTPSource) get(path string, query map[string]string) (gjson.Result, error) {
	resp, err := s.client.R().SetQueryParams(query).Get(path)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("calendar source: %w", err)
	}
	if resp.IsError() {
		return gjson.Result{}, fmt.Errorf("calendar source: %s: %s", path, resp.Status())
	}
	return gjson.ParseBytes(resp.Body()), nil
}

// SessionOpenAt reports whether t is inside a trading session of calendar.
func (s *HTTPSource) SessionOpenAt(calendar string, t time.Time) (bool, error) {
	body, err := s.get(fmt.Sprintf("/calendars/%s/open-at", calendar), map[string]string{
		"t": t.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return false, err
	}
	v := body.Get("open")
	if !v.Exists() {
		return false, fmt.Errorf("calendar source: %s: missing open field", calendar)
	}
	return v.Bool(), nil
}

// IsSession reports whether date is a trading session of calendar.
func (s *HTTPSource) IsSession(calendar string, date time.Time) (bool, error) {
	body, err := s.session(calendar, date)
	if err != nil {
		return false, err
	}
	v := body.Get("is_session")
	if !v.Exists() {
		return false, fmt.Errorf("calendar source: %s: missing is_session field", calendar)
	}
	return v.Bool(), nil
}

// SessionOpen returns the open instant of the session on date.
func (s *HTTPSource) SessionOpen(calendar string, date time.Time) (time.Time, error) {
	return s.sessionInstant(calendar, date, "open")
}

// SessionClose returns the close instant of the session on date.
func (s *HTTPSource) SessionClose(calendar string, date time.Time) (time.Time, error) {
	return s.sessionInstant(calendar, date, "close")
}

func (s *HTTPSource) session(calendar string, date time.Time) (gjson.Result, error) {
	return s.get(fmt.Sprintf("/calendars/%s/sessions/%s", calendar, date.Format("2006-01-02")), nil)
}

func (s *HTTPSource) sessionInstant(calendar string, date time.Time, field string) (time.Time, error) {
	body, err := s.session(calendar, date)
	if err != nil {
		return time.Time{}, err
	}
	v := body.Get(field)
	if !v.Exists() {
		return time.Time{}, fmt.Errorf("calendar source: %s: missing %s field", calendar, field)
	}
	ts, err := time.Parse(time.RFC3339, v.String())
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar source: %s: bad %s %q: %w", calendar, field, v.String(), err)
	}
	return ts, nil
}
