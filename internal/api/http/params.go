package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"propdesk-backend/internal/domain"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// Paging holds the page size defaults applied to list endpoints.
type Paging struct {
	DefaultPageSize int32
	MaxPageSize     int32
}

// decodeBody reads a JSON body into dst and runs struct validation.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.WrapError(domain.KindInvalidInput, "malformed JSON body", err)
	}
	return validate.Struct(dst)
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("invalid %s: %q", name, raw))
	}
	return id, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("invalid %s: %q", name, raw))
	}
	return v, nil
}

func parseTime(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewError(domain.KindInvalidInput, fmt.Sprintf("invalid %s: %q (want RFC 3339 or YYYY-MM-DD)", name, raw))
}

// parsePeriod reads the from and to query parameters. Both are optional.
func parsePeriod(r *http.Request) (domain.Period, error) {
	q := r.URL.Query()
	from, err := parseTime("from", q.Get("from"))
	if err != nil {
		return domain.Period{}, err
	}
	to, err := parseTime("to", q.Get("to"))
	if err != nil {
		return domain.Period{}, err
	}
	p := domain.Period{From: from, To: to}
	return p, p.Validate()
}

func (p Paging) parse(r *http.Request) (int32, int32, error) {
	page, err := queryInt64(r, "page")
	if err != nil {
		return 0, 0, err
	}
	size, err := queryInt64(r, "page_size")
	if err != nil {
		return 0, 0, err
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = int64(p.DefaultPageSize)
	}
	if p.MaxPageSize > 0 && size > int64(p.MaxPageSize) {
		size = int64(p.MaxPageSize)
	}
	return int32(page), int32(size), nil
}
