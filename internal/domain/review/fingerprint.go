package review

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Identity holds the trimmed field values that define a comment's dedupe
// identity. Created is the original textual timestamp, not the parsed
// instant, so differently-formatted renderings of the same date stay
// distinguishable.
type Identity struct {
	Sheet    string
	Author   string
	Subject  string
	Created  string
	Comment  string
	MarkupID string
}

func (id Identity) trimmed() map[string]string {
	return map[string]string{
		"sheet":     strings.TrimSpace(id.Sheet),
		"author":    strings.TrimSpace(id.Author),
		"subject":   strings.TrimSpace(id.Subject),
		"created":   strings.TrimSpace(id.Created),
		"comment":   strings.TrimSpace(id.Comment),
		"markup_id": strings.TrimSpace(id.MarkupID),
	}
}

type fingerprintDoc struct {
	ProjectID   uint64 `json:"project_id"`
	MilestoneID uint64 `json:"milestone_id"`
	Fields      any    `json:"fields"`
}

// Fingerprint computes the dedupe key for one row: a sha256 hex digest over
// the identity fields, scoped to project and milestone so the same comment
// imported into two projects never suppresses itself.
//
// When every identity field is blank the whole raw row is hashed instead;
// without that fallback all blank rows would collide into one fingerprint
// and each subsequent one would masquerade as a duplicate. Serialization
// goes through json.Marshal, which orders map keys, so equal logical
// content always produces an equal digest.
func Fingerprint(projectID uint64, milestoneID uint64, row RawRow, id Identity) string {
	fields := id.trimmed()

	allBlank := true
	for _, v := range fields {
		if v != "" {
			allBlank = false
			break
		}
	}

	var payload any = fields
	if allBlank {
		payload = row.Values
	}

	// Both payload shapes are maps of strings; marshaling cannot fail.
	raw, _ := json.Marshal(fingerprintDoc{
		ProjectID:   projectID,
		MilestoneID: milestoneID,
		Fields:      payload,
	})

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
