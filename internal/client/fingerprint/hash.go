package fingerprint

import "strconv"

// Hash folds s into a short, stable, non-negative base-36 string using a
// 32-bit rolling hash (h = h*31 + c, expressed as shift-and-subtract). It is
// deliberately not collision-resistant: device ids only need to be cheap and
// deterministic, and the admission check built on them is a deterrent, not a
// security boundary.
func Hash(s string) string {
	var h int32
	for i := 0; i < len(s); i++ {
		h = (h << 5) - h + int32(s[i])
	}

	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}
