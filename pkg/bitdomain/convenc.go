package bitdomain

var convParity = [256]uint8{
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 0, 1,
	0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0,
}

// ConvEncode applies the rate-1/4 convolutional code (ETS 300 401
// clause 11.2) to in, flushing the encoder's memory with 3 tail
// bytes. Output is 4*len(in)+3 bytes.
func ConvEncode(in []byte) []byte {
	out := make([]byte, len(in)*4+3)
	var memory uint16
	outOffset := 0

	emit := func(data uint8) {
		for outCount := 0; outCount < 4; outCount++ {
			var o uint8
			for j := 0; j < 2; j++ {
				memory >>= 1
				memory |= uint16(data>>7) << 6
				data <<= 1
				poly := [4]uint8{
					uint8(memory & 0x5b),
					uint8(memory & 0x79),
					uint8(memory & 0x65),
					uint8(memory & 0x5b),
				}
				for k := 0; k < 4; k++ {
					o <<= 1
					o |= convParity[poly[k]]
				}
			}
			out[outOffset] = o
			outOffset++
		}
	}

	for _, b := range in {
		emit(b)
	}

	for pad := 0; pad < 3; pad++ {
		var o uint8
		for j := 0; j < 2; j++ {
			memory >>= 1
			poly := [4]uint8{
				uint8(memory & 0x5b),
				uint8(memory & 0x79),
				uint8(memory & 0x65),
				uint8(memory & 0x5b),
			}
			for k := 0; k < 4; k++ {
				o <<= 1
				o |= convParity[poly[k]]
			}
		}
		out[outOffset] = o
		outOffset++
	}

	return out
}
