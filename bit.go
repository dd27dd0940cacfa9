package merkleset

import "math/bits"

// keyBit returns the bit of k at index i where i=0 is the MSB of k[0].
func keyBit(k Key, i int) uint8 {
	return (k[i>>3] >> (7 - (i & 7))) & 1
}

// divergingBit returns the first MSB-first bit index at which a and b
// differ. ok=false indicates a==b.
func divergingBit(a, b Key) (idx int, ok bool) {
	for i := 0; i < HashBytes; i++ {
		if x := a[i] ^ b[i]; x != 0 {
			return i*8 + bits.LeadingZeros8(x), true
		}
	}
	return 0, false
}
