package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of the password using DefaultCost.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a bcrypt hashed password with its possible plaintext equivalent.
func CheckPassword(hash string, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Operator - учётная запись администратора симуляции из конфигурации
type Operator struct {
	Name         string
	PasswordHash string // bcrypt
}

// Authenticate проверяет имя и пароль; оператор без хэша пароля отключён
func (o Operator) Authenticate(name, password string) bool {
	if o.PasswordHash == "" {
		return false
	}
	nameOK := subtle.ConstantTimeCompare([]byte(o.Name), []byte(name)) == 1
	return CheckPassword(o.PasswordHash, password) && nameOK
}
