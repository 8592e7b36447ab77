package utils

// UniqueUint removes duplicate values from a slice of uints, keeping first-seen order.
func UniqueUint(slice []uint) []uint {
	keys := make(map[uint]bool)
	list := []uint{}
	for _, entry := range slice {
		if _, value := keys[entry]; !value {
			keys[entry] = true
			list = append(list, entry)
		}
	}
	return list
}

// WithoutUint returns slice with every occurrence of v removed.
func WithoutUint(slice []uint, v uint) []uint {
	out := make([]uint, 0, len(slice))
	for _, entry := range slice {
		if entry != v {
			out = append(out, entry)
		}
	}
	return out
}
