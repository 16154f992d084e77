package utils

import (
	"crypto/rand"
	"math/big"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

// HashPassword gera o hash bcrypt da senha em texto.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword compara hash bcrypt com a senha em texto e retorna true se bater.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsStrongPassword: 8+ caracteres, maiúscula, minúscula, dígito,
// caractere não alfanumérico e pelo menos 4 caracteres distintos.
func IsStrongPassword(p string) bool {
	var upper, lower, digit, symbol bool
	unique := map[rune]struct{}{}
	n := 0
	for _, r := range p {
		n++
		unique[r] = struct{}{}
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsNumber(r):
			symbol = true
		}
	}
	return n >= MinPasswordLength && upper && lower && digit && symbol && len(unique) >= 4
}

const (
	lowerChars  = "abcdefghijkmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digitChars  = "23456789"
	symbolChars = "!@#$%&*?"
)

// GenerateTemporaryPassword gera uma senha aleatória de 16 caracteres que
// passa em IsStrongPassword.
func GenerateTemporaryPassword() (string, error) {
	const length = 16
	all := lowerChars + upperChars + digitChars + symbolChars
	sets := []string{lowerChars, upperChars, digitChars, symbolChars}

	result := make([]byte, 0, length)
	for _, set := range sets {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		result = append(result, c)
	}
	for len(result) < length {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		result = append(result, c)
	}

	// embaralha para não deixar as classes sempre no início
	for i := len(result) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}
	if !IsStrongPassword(string(result)) {
		return GenerateTemporaryPassword()
	}
	return string(result), nil
}

func randomChar(set string) (byte, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[num.Int64()], nil
}
