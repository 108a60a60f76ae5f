package runtime

import (
	"strings"
	"time"
)

// Timestamp is a UNIX time in seconds.
type Timestamp int64

// FromTime converts t to a Timestamp, truncating sub-second precision.
func FromTime(t time.Time) Timestamp { return Timestamp(t.Unix()) }

// Time returns the timestamp as a UTC time.
func (t Timestamp) Time() time.Time { return time.Unix(int64(t), 0).UTC() }

// Currency is a three-letter ISO currency code in lower case.
type Currency string

// NewCurrency normalizes code to the wire form.
func NewCurrency(code string) Currency { return Currency(strings.ToLower(code)) }

func (c Currency) String() string { return string(c) }
