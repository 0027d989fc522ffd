package decoder

// Solana addresses are 32-byte ed25519 keys rendered in bitcoin-alphabet
// base58.

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

func base58Encode(input []byte) string {
	zeros := 0
	for zeros < len(input) && input[zeros] == 0 {
		zeros++
	}

	// upper bound: log(256)/log(58) ~ 1.37 digits per byte
	size := (len(input)-zeros)*137/100 + 1
	digits := make([]byte, size)
	length := 0

	for _, b := range input[zeros:] {
		carry := int(b)
		i := 0
		for it := size - 1; (carry != 0 || i < length) && it >= 0; it-- {
			carry += 256 * int(digits[it])
			digits[it] = byte(carry % 58)
			carry /= 58
			i++
		}
		length = i
	}

	out := make([]byte, 0, zeros+length)
	for i := 0; i < zeros; i++ {
		out = append(out, base58Alphabet[0])
	}
	for _, d := range digits[size-length:] {
		out = append(out, base58Alphabet[d])
	}
	return string(out)
}
