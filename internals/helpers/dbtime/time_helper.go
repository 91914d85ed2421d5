// file: internals/helpers/dbtime/time_helper.go
package dbtime

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD calendar date as UTC midnight. Date columns
// are always written and compared in that form.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// QueryDate reads ?key=YYYY-MM-DD. ok is false when the parameter is absent.
func QueryDate(c *fiber.Ctx, key string) (t time.Time, ok bool, err error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err = ParseDate(raw)
	return t, true, err
}
