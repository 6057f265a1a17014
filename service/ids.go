package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

const (
	messageIdPrefix = "MSG"
	idSuffixLength  = 9

	timestampLayout = "2006-01-02 15:04:05"
)

// NewMessageId returns an id of the form MSG_<millis>_<suffix>. Uniqueness is
// probabilistic: the wall clock plus a random suffix, not a counter.
func NewMessageId() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	suffix := strings.ReplaceAll(id.String(), "-", "")[:idSuffixLength]
	return fmt.Sprintf("%s_%d_%s", messageIdPrefix, time.Now().UnixMilli(), suffix), nil
}

// CurrentTimestamp returns the current UTC time at second resolution, with no
// timezone suffix.
func CurrentTimestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}
