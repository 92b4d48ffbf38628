// Package password реализует хеширование и проверку паролей через bcrypt.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost стоимость bcrypt, если в конфиге не задана другая.
const DefaultCost = 12

// Hasher хеширует пароли с заданной стоимостью bcrypt.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher создает Hasher. Стоимость вне допустимого bcrypt диапазона
// заменяется на DefaultCost.
//
// Заодно вычисляется хеш-заглушка, с которым сравнивается пароль, когда
// пользователь не найден: время ответа не выдает существование email.
func NewHasher(cost int) (*Hasher, error) {
	const op = "password.NewHasher"
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("app-despesas-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Hasher{cost: cost, dummy: dummy}, nil
}

// GetHash возвращает bcrypt-хеш пароля.
func (h *Hasher) GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash возвращает nil, если пароль соответствует хешу.
func (h *Hasher) CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CompareDummy тратит на проверку столько же времени, сколько CompareHash.
// Результат всегда отрицательный.
func (h *Hasher) CompareDummy(externalPassword string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(externalPassword))
}

// Cost возвращает используемую стоимость bcrypt.
func (h *Hasher) Cost() int {
	return h.cost
}
