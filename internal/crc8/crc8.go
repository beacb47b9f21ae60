// Package crc8 computes the CRC-8 used by Sensirion and Aosong sensors:
// polynomial 0x31, initial value 0xFF, no reflection, no final XOR.
package crc8

// Checksum returns the CRC of b.
func Checksum(b []byte) byte {
	crc := byte(0xFF)
	for _, v := range b {
		crc ^= v
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
