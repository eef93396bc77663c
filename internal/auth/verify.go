package auth

import (
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var pinShape = regexp.MustCompile(`^[0-9]{4,6}$`)

// HashSecret şifre veya PIN için bcrypt digest üretir.
func HashSecret(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword girilen şifreyi kayıtlı digest ile karşılaştırır.
// Her türlü hata "yanlış şifre" sayılır; çağıran ayırt edemez.
func VerifyPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// VerifyPin girilen PIN'i kayıtlı digest ile karşılaştırır.
func VerifyPin(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// ValidPin 4-6 haneli rakam kontrolü.
func ValidPin(pin string) bool {
	return pinShape.MatchString(pin)
}

// NormalizeEmail küçük harfe çevirip boşluk kırpar.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// ValidEmail kaba şekil kontrolü; detaylı doğrulama kimlik sağlayıcının işi.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
