// Package inboxlog encodes and decodes per-recipient inbox blobs: a sequence
// of newline-terminated JSON message records. Lines that fail to decode are
// carried forward verbatim so a rewrite never drops data it does not
// understand.
package inboxlog

import (
	"encoding/json"
	"strings"

	"github.com/okulov/cipherpost/models"
)

// Line is one entry of an inbox log: either a parsed message record, or the
// original text of a line that failed to decode.
type Line struct {
	Record *models.Message
	Raw    string
}

// Parse splits a blob into lines and decodes each one. Empty trailing lines
// are dropped; interior lines that are blank or not valid records are kept as
// raw lines.
func Parse(blob []byte) []Line {
	parts := strings.Split(string(blob), "\n")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	lines := make([]Line, 0, len(parts))
	for _, part := range parts {
		var msg models.Message
		if err := json.Unmarshal([]byte(part), &msg); err != nil || msg.Id == "" {
			lines = append(lines, Line{Raw: part})
			continue
		}
		m := msg
		lines = append(lines, Line{Record: &m})
	}
	return lines
}

// Append serializes msg as one JSON line and appends it after the last
// existing line. A nil or empty blob yields just the new line.
func Append(blob []byte, msg models.Message) ([]byte, error) {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	out := string(blob)
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return []byte(out + string(encoded) + "\n"), nil
}

// MarkRead flips Decrypted on the first record whose id matches messageId and
// returns it. All other lines, raw ones included, are left untouched. The
// second return is false when no record matches.
func MarkRead(lines []Line, messageId string) (*models.Message, bool) {
	for i := range lines {
		if lines[i].Record != nil && lines[i].Record.Id == messageId {
			lines[i].Record.Decrypted = true
			return lines[i].Record, true
		}
	}
	return nil, false
}

// Serialize writes the full line sequence back to blob form, one line per
// entry with a trailing newline.
func Serialize(lines []Line) ([]byte, error) {
	var b strings.Builder
	for _, line := range lines {
		if line.Record != nil {
			encoded, err := json.Marshal(line.Record)
			if err != nil {
				return nil, err
			}
			b.Write(encoded)
		} else {
			b.WriteString(line.Raw)
		}
		b.WriteString("\n")
	}
	return []byte(b.String()), nil
}

// Records returns only the successfully parsed records, in file order.
func Records(lines []Line) []models.Message {
	msgs := make([]models.Message, 0, len(lines))
	for _, line := range lines {
		if line.Record != nil {
			msgs = append(msgs, *line.Record)
		}
	}
	return msgs
}
