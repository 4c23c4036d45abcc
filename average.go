package mediancut

// averageColor returns the mean of pixels, rounded down, with alpha set to 255.
//
// The mean is accumulated as a whole part and a remainder so that no
// intermediate value exceeds len(pixels) regardless of the pixel count.
func averageColor(pixels []Color) Color {
	result := Color{0, 0, 0, 255}
	n := len(pixels)
	if n == 0 {
		return result
	}

	for ch := Red; ch <= Blue; ch++ {
		// Mean is exactly whole + rem/n with 0 <= rem < n.
		whole, rem := 0, 0
		for _, c := range pixels {
			v := int(c[ch])
			whole += v / n
			b := v % n
			if rem >= n-b {
				whole++
				rem -= n - b
			} else {
				rem += b
			}
		}
		result[ch] = uint8(whole)
	}
	return result
}
