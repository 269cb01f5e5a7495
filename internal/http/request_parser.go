package http

import (
	"net/http"
	"strconv"
	"strings"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/middleware/trace"
)

// parseID reads the {id} path segment. Anything but a positive integer is
// reported as missing so callers answer 404.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseEntryForm extracts the entry form fields, trimmed and stripped of
// control characters.
func parseEntryForm(r *http.Request) core.EntryInput {
	return core.EntryInput{
		Description: sanitizeInput(r.PostFormValue("description")),
		Amount:      sanitizeInput(r.PostFormValue("amount")),
		Category:    sanitizeInput(r.PostFormValue("category")),
		Date:        sanitizeInput(r.PostFormValue("date")),
	}
}

func parseCategoryForm(r *http.Request) core.CategoryInput {
	return core.CategoryInput{
		Name:   sanitizeInput(r.PostFormValue("name")),
		Amount: sanitizeInput(r.PostFormValue("amount")),
	}
}

// parseMonthFilter reads ?month and ?year for the entries list. It returns
// nil when no month was asked for or the value is unusable; the latter is
// logged at warn. The year defaults to defaultYear.
func parseMonthFilter(r *http.Request, defaultYear int, logger *log.Logger) *core.Period {
	q := r.URL.Query()
	raw := strings.TrimSpace(q.Get("month"))
	if raw == "" {
		return nil
	}

	year := defaultYear
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}

	p, err := core.ParseMonth(raw, year)
	if err == nil {
		err = p.Validate()
	}
	if err != nil {
		logger.WarnContext(r.Context(), "Invalid month parameter, listing all entries",
			log.FieldMonth, raw,
			log.FieldYear, year,
			log.FieldError, err)
		return nil
	}
	return &p
}

// sanitizeInput removes control characters except tab and newlines and trims
// whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func requestID(r *http.Request) string {
	return trace.GetRequestID(r.Context())
}
