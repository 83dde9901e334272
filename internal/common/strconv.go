package common

import "strconv"

// ParseID parses a positive int64 identifier from a path or query segment.
func ParseID(value string) (int64, bool) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
