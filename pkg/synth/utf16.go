package synth

// The remote API addresses the document by UTF-16 code units, so every
// length and offset sent over the wire must be computed in code units.
// Characters outside the Basic Multilingual Plane (surrogate pairs, e.g.
// most emoji) count as two units.

func utf16Len(s string) int64 {
	var n int64
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// utf16Offset converts a code-point offset within s, as produced by the
// normalizer, into a code-unit offset.
func utf16Offset(s string, runeOffset int) int64 {
	var n int64
	i := 0
	for _, r := range s {
		if i >= runeOffset {
			break
		}
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
		i++
	}
	return n
}
