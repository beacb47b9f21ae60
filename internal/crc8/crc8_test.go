package crc8

import "testing"

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want byte
	}{
		{"empty", nil, 0xFF},
		{"datasheet example", []byte{0xBE, 0xEF}, 0x92},
		{"zero word", []byte{0x00, 0x00}, 0x81},
		{"co2 400ppm", []byte{0x01, 0x90}, 0x4C},
		{"aht20 frame", []byte{0x1C, 0x80, 0x00, 0x06, 0x00, 0x00}, 0x4E},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.in); got != tt.want {
				t.Errorf("Checksum(% X) = %#02x, want %#02x", tt.in, got, tt.want)
			}
		})
	}
}
