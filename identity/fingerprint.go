package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"practicescout/models"
)

// ProfileKey fingerprints a curated row by its numeric profile:
// (province, collections, ebitda_or_sde, equipped_ops, sqft, appraised_value).
// Two listings with identical profiles collapse into one archive row, broker
// and URL deliberately excluded. Absent fields hash differently from zero.
func ProfileKey(row models.CuratedRow) string {
	parts := []string{
		strings.ToUpper(strings.TrimSpace(row.Province)),
		formatField(row.Collections),
		formatField(row.EbitdaOrSde),
		formatField(row.EquippedOps),
		formatField(row.SqFt),
		formatField(row.AppraisedValue),
	}
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:16])
}

func formatField(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
