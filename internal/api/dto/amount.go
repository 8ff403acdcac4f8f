package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/localhands/marketplace-api/pkg/util"
)

// Amount is a price sent either as a JSON number or as a numeric string, the way
// HTML form inputs deliver it. null and "" leave Value unset.
type Amount struct {
	Value *float64
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	a.Value = nil
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return invalidAmount()
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return invalidAmount()
	}
	a.Value = &v
	return nil
}

func invalidAmount() error {
	return apperrors.NewValidationError("validation failed", map[string]any{"price": "price must be a number"})
}
