package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number is a float64 that also decodes from numeric strings such as "1,234" or "87.5%".
// The upstream scraper emits season totals as page text, so both forms occur.
type Number float64

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	if data[0] != '"' {
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("invalid number %s: %w", string(data), err)
		}
		*n = Number(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSuffix(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), "%")
	if s == "" {
		*n = 0
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric string %q: %w", s, err)
	}
	*n = Number(f)
	return nil
}

// Int returns the value truncated toward zero
func (n Number) Int() int {
	return int(n)
}

// String formats whole numbers without a decimal part
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}
