package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Grant is a directed funding relationship between two organizations.
type Grant struct {
	ID           string    `json:"id"`
	FunderOrgID  string    `json:"funder_org_id"`
	GranteeOrgID string    `json:"grantee_org_id"`
	Amount       *Decimal  `json:"amount"`
	Year         *int      `json:"year"`
	Source       *string   `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

// Decimal holds a decimal amount as text to avoid float precision loss.
// It decodes from either a JSON string or a JSON number.
type Decimal string

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Decimal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode decimal: %w", err)
	}
	*d = Decimal(n.String())
	return nil
}

// FormatAmount renders an optional amount as "$1,234.5", or "N/A" when absent.
func FormatAmount(d *Decimal) string {
	if d == nil || *d == "" {
		return "N/A"
	}
	s := string(*d)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if _, err := strconv.ParseUint(whole, 10, 64); err != nil && whole != "" {
		return string(*d)
	}
	if whole == "" {
		whole = "0"
	}
	frac = strings.TrimRight(frac, "0")

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString("$")
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatYear renders an optional year, or "N/A" when absent.
func FormatYear(y *int) string {
	if y == nil {
		return "N/A"
	}
	return strconv.Itoa(*y)
}
