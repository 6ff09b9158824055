// Package sink adapts external brokers to the event relay.
package sink

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"privid/internal/eventlog/models"
)

// eventNamespace scopes message IDs so redeliveries of the same seq carry the
// same ID and downstream consumers can deduplicate.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("privid:event-log"))

// MessageID returns the stable broker message ID for an event.
func MessageID(e *models.Event) string {
	return uuid.NewSHA1(eventNamespace, []byte(strconv.FormatUint(e.Seq, 10))).String()
}

func encode(e *models.Event) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event %d: %w", e.Seq, err)
	}
	return body, nil
}

func headers(e *models.Event) map[string]string {
	return map[string]string{
		"event_type": string(e.Type),
		"entity_id":  e.EntityID,
		"seq":        strconv.FormatUint(e.Seq, 10),
	}
}
