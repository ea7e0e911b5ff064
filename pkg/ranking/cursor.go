package ranking

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// scoreEpsilon is the tolerance for treating two scores as tied during
// cursor filtering. Changing it moves pagination boundaries for
// near-tied scores.
const scoreEpsilon = 1e-9

const cursorDelimiter = "|"

// cursorKey is the decoded position of the last entry of the previous
// page. Callers only ever see its encoded, opaque form.
type cursorKey struct {
	score        float64
	createdEpoch int64
	itemID       int64
}

func encodeCursor(s ScoredItem) string {
	return fmt.Sprintf("%.6f%s%d%s%d", s.Score, cursorDelimiter, s.CreatedEpoch, cursorDelimiter, s.Item.ID)
}

// parseCursor decodes an opaque page cursor. Anything that does not
// decode to exactly three numeric fields is treated as an absent cursor,
// never as an error.
func parseCursor(raw string) (cursorKey, bool) {
	if strings.TrimSpace(raw) == "" {
		return cursorKey{}, false
	}

	parts := strings.Split(raw, cursorDelimiter)
	if len(parts) != 3 {
		return cursorKey{}, false
	}

	score, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return cursorKey{}, false
	}
	createdEpoch, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return cursorKey{}, false
	}
	itemID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return cursorKey{}, false
	}

	return cursorKey{
		score:        score,
		createdEpoch: createdEpoch,
		itemID:       itemID,
	}, true
}

// isAfter reports whether s sorts strictly after the cursor position in
// the descending total order (score, createdEpoch, itemID).
func (k cursorKey) isAfter(s ScoredItem) bool {
	if s.Score < k.score-scoreEpsilon {
		return true
	}
	if math.Abs(s.Score-k.score) <= scoreEpsilon {
		if s.CreatedEpoch < k.createdEpoch {
			return true
		}
		if s.CreatedEpoch == k.createdEpoch {
			return s.Item.ID < k.itemID
		}
	}
	return false
}
