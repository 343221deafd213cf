package transaction

import "strconv"

// Month is a calendar month number, 1 through 12.
type Month int

// ParseMonth accepts one or two ASCII digits ("3" or "03") in the range 1-12.
func ParseMonth(s string) (Month, error) {
	if len(s) == 0 || len(s) > 2 {
		return 0, ErrInvalidMonth
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, ErrInvalidMonth
		}
		n = n*10 + int(s[i]-'0')
	}
	if n < 1 || n > 12 {
		return 0, ErrInvalidMonth
	}
	return Month(n), nil
}

// ParseMonthToken accepts exactly two ASCII digits forming 01-12.
func ParseMonthToken(s string) (Month, error) {
	if len(s) != 2 || !isDigit(s[0]) || !isDigit(s[1]) {
		return 0, ErrInvalidMonthToken
	}
	n := int(s[0]-'0')*10 + int(s[1]-'0')
	if n < 1 || n > 12 {
		return 0, ErrInvalidMonthToken
	}
	return Month(n), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// String returns the zero-padded two digit form.
func (m Month) String() string {
	if m < 10 {
		return "0" + strconv.Itoa(int(m))
	}
	return strconv.Itoa(int(m))
}
