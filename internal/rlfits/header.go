// Public domain.

package rlfits

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMissingKey is wrapped by errors for keywords not present in a header.
var ErrMissingKey = errors.New("missing keyword")

// Header is an ordered list of 80 character header cards, not including
// the END card.
type Header struct {
	cards []string
}

// Cards returns the card images in order.
func (h *Header) Cards() []string {
	return h.cards
}

// cardKey returns the keyword in columns 1-8.
func cardKey(c string) string {
	if len(c) > 8 {
		c = c[:8]
	}
	return strings.TrimRight(c, " ")
}

// hasValue reports whether the card has the value indicator in columns 9-10.
func hasValue(c string) bool {
	return len(c) >= 10 && c[8:10] == "= "
}

func isBlank(c string) bool {
	return strings.TrimRight(c, " ") == ""
}

func (h *Header) index(key string) int {
	for i, c := range h.cards {
		if hasValue(c) && cardKey(c) == key {
			return i
		}
	}
	return -1
}

// Has reports whether key is present as a value card.
func (h *Header) Has(key string) bool {
	return h.index(key) >= 0
}

// Get returns the value of key as written, with strings unquoted.
func (h *Header) Get(key string) (string, bool) {
	i := h.index(key)
	if i < 0 {
		return "", false
	}
	v, _ := cardValue(h.cards[i])
	return v, true
}

// cardValue parses the value field of a card.  For string values quotes
// are removed, doubled quotes collapsed and trailing blanks trimmed.
func cardValue(c string) (v string, isString bool) {
	s := strings.TrimLeft(c[10:], " ")
	if !strings.HasPrefix(s, "'") {
		if i := strings.IndexByte(s, '/'); i >= 0 {
			s = s[:i]
		}
		return strings.TrimSpace(s), false
	}
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		if s[i] == '\'' {
			if i+1 < len(s) && s[i+1] == '\'' {
				b.WriteByte('\'')
				i++
				continue
			}
			break
		}
		b.WriteByte(s[i])
	}
	return strings.TrimRight(b.String(), " "), true
}

func (h *Header) value(key string) (string, error) {
	v, ok := h.Get(key)
	if !ok {
		return "", fmt.Errorf("%w %s", ErrMissingKey, key)
	}
	return v, nil
}

// Int returns the integer value of key.
func (h *Header) Int(key string) (int64, error) {
	v, err := h.value(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("keyword %s: %v", key, err)
	}
	return n, nil
}

// IntDefault returns the integer value of key, or def if key is absent.
func (h *Header) IntDefault(key string, def int64) (int64, error) {
	if !h.Has(key) {
		return def, nil
	}
	return h.Int(key)
}

// Float returns the real value of key.  Fortran D exponents are accepted.
func (h *Header) Float(key string) (float64, error) {
	v, err := h.value(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.NewReplacer("D", "E", "d", "e").Replace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("keyword %s: %v", key, err)
	}
	return f, nil
}

// FloatDefault returns the real value of key, or def if key is absent.
func (h *Header) FloatDefault(key string, def float64) (float64, error) {
	if !h.Has(key) {
		return def, nil
	}
	return h.Float(key)
}

// String returns the string value of key.
func (h *Header) String(key string) (string, error) {
	return h.value(key)
}

// Bool returns the logical value of key.
func (h *Header) Bool(key string) (bool, error) {
	v, err := h.value(key)
	if err != nil {
		return false, err
	}
	switch v {
	case "T":
		return true, nil
	case "F":
		return false, nil
	}
	return false, fmt.Errorf("keyword %s: %q is not a logical value", key, v)
}

// AddHistory adds HISTORY cards after the last HISTORY card, or at the end
// of the header if there are none.  Text longer than one card continues on
// following cards.
func (h *Header) AddHistory(text string) {
	var cards []string
	for {
		n := len(text)
		if n > 72 {
			n = 72
		}
		cards = append(cards, pad80("HISTORY "+text[:n]))
		text = text[n:]
		if text == "" {
			break
		}
	}
	last := -1
	for i, c := range h.cards {
		if cardKey(c) == "HISTORY" && !hasValue(c) {
			last = i
		}
	}
	if last < 0 {
		for _, c := range cards {
			h.appendCard(c)
		}
		return
	}
	at := last + 1
	h.cards = append(h.cards[:at], append(cards, h.cards[at:]...)...)
}

// History returns the text of the HISTORY cards.
func (h *Header) History() []string {
	var hist []string
	for _, c := range h.cards {
		if cardKey(c) == "HISTORY" && !hasValue(c) {
			hist = append(hist, strings.TrimRight(c[8:], " "))
		}
	}
	return hist
}

// Set replaces the card for key, or adds it to the end of the header.
// Value may be a bool, int, int64, float64 or string.
func (h *Header) Set(key string, value interface{}, comment string) error {
	c, err := valueCard(key, value, comment)
	if err != nil {
		return err
	}
	if i := h.index(key); i >= 0 {
		h.cards[i] = c
		return nil
	}
	h.appendCard(c)
	return nil
}

// appendCard adds c at the end, taking the place of the first of any
// trailing blank cards.
func (h *Header) appendCard(c string) {
	end := len(h.cards)
	for end > 0 && isBlank(h.cards[end-1]) {
		end--
	}
	if end < len(h.cards) {
		h.cards[end] = c
		return
	}
	h.cards = append(h.cards, c)
}

func validKey(key string) bool {
	if key == "" || len(key) > 8 {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func valueCard(key string, value interface{}, comment string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("invalid keyword %q", key)
	}
	var v string
	switch x := value.(type) {
	case bool:
		v = "F"
		if x {
			v = "T"
		}
		v = fmt.Sprintf("%20s", v)
	case int:
		v = fmt.Sprintf("%20d", x)
	case int64:
		v = fmt.Sprintf("%20d", x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "", fmt.Errorf("keyword %s: %g cannot be written", key, x)
		}
		v = strconv.FormatFloat(x, 'G', -1, 64)
		if !strings.ContainsAny(v, ".E") {
			v += ".0"
		}
		v = fmt.Sprintf("%20s", v)
	case string:
		v = fmt.Sprintf("'%-8s'", strings.ReplaceAll(x, "'", "''"))
		v = fmt.Sprintf("%-20s", v)
	default:
		return "", fmt.Errorf("keyword %s: unsupported value type %T", key, value)
	}
	c := fmt.Sprintf("%-8s= %s", key, v)
	if comment != "" {
		c += " / " + comment
	}
	return pad80(c), nil
}

// pad80 pads or truncates s to one card.
func pad80(s string) string {
	if len(s) >= CardSize {
		return s[:CardSize]
	}
	return s + strings.Repeat(" ", CardSize-len(s))
}
