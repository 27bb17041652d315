package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-tracker-api/internal/middleware"
	"github.com/noah-isme/activity-tracker-api/internal/models"
	"github.com/noah-isme/activity-tracker-api/internal/service"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
)

// Clock yields the current calendar date for requests that omit one.
type Clock func() time.Time

// NewClock returns a Clock for the team's timezone.
func NewClock(loc *time.Location) Clock {
	return func() time.Time { return service.Today(loc) }
}

func (c Clock) today() time.Time {
	if c == nil {
		return service.Today(time.UTC)
	}
	return c()
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return claims
}

// dateParam reads an optional YYYY-MM-DD query parameter, defaulting to today.
func dateParam(c *gin.Context, key string, clock Clock) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return clock.today(), nil
	}
	parsed, err := service.ParseDate(raw)
	if err != nil {
		return time.Time{}, appErrors.Validation("invalid "+key, map[string]string{key: "must be YYYY-MM-DD"})
	}
	return parsed, nil
}

func boolQuery(c *gin.Context, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, appErrors.Validation("invalid "+key, map[string]string{key: "must be true or false"})
	}
	return &value, nil
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func invalidPayload(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
