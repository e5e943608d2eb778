package libpx

import (
	"crypto/md5"
	"encoding/hex"
)

// md5Challenge computes the PostgreSQL salted MD5 PasswordMessage payload:
// inner = hex(md5(password||username)); outer = "md5" + hex(md5(inner_hex||salt)).
// The result is always 35 ASCII bytes beginning with "md5" — 3 literal bytes
// plus the 32-hex-character digest.
func md5Challenge(password, username string, salt [4]byte) string {
	inner := md5Hex(password + username)

	outerInput := make([]byte, 0, len(inner)+4)
	outerInput = append(outerInput, inner...)
	outerInput = append(outerInput, salt[:]...)

	return "md5" + md5HexBytes(outerInput)
}

func md5Hex(s string) string {
	return md5HexBytes([]byte(s))
}

func md5HexBytes(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
