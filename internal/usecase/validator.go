package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/totegamma/knights/internal/domain"
)

const (
	MsgNicknameTaken    = "This nickname is already being used!"
	MsgMustEquipWeapon  = "You must equip at least one weapon!"
	MsgTooManyEquipped  = "There is more than one weapon equipped!"
	MsgNicknameRequired = "nickname is required"
)

type WeaponInput struct {
	Name     string `json:"name"`
	Mod      int    `json:"mod"`
	Attr     string `json:"attr"`
	Equipped bool   `json:"equipped"`
}

type CreateKnightInput struct {
	Name         string         `json:"name"`
	Nickname     string         `json:"nickname"`
	Birthday     string         `json:"birthday"`
	Weapons      []WeaponInput  `json:"weapons"`
	Attributes   map[string]int `json:"attributes"`
	KeyAttribute string         `json:"keyAttribute"`
}

type UpdateKnightInput struct {
	Nickname string `json:"nickname"`
}

// KnightValidator checks creation input. It does no I/O: whether the
// nickname is taken is looked up by the caller.
type KnightValidator struct{}

// Validate returns the knight to persist, without ids.
func (KnightValidator) Validate(input CreateKnightInput, nicknameTaken bool) (domain.Knight, error) {
	if nicknameTaken {
		return domain.Knight{}, domain.ValidationError{Message: MsgNicknameTaken}
	}

	if strings.TrimSpace(input.Name) == "" {
		return domain.Knight{}, domain.ValidationError{Message: "name is required"}
	}
	if strings.TrimSpace(input.Nickname) == "" {
		return domain.Knight{}, domain.ValidationError{Message: MsgNicknameRequired}
	}

	equipped := 0
	for _, w := range input.Weapons {
		if w.Equipped {
			equipped++
		}
	}
	if equipped > 1 {
		return domain.Knight{}, domain.ValidationError{Message: MsgTooManyEquipped}
	}
	if equipped == 0 {
		return domain.Knight{}, domain.ValidationError{Message: MsgMustEquipWeapon}
	}

	birthday, err := parseBirthday(input.Birthday)
	if err != nil {
		return domain.Knight{}, domain.ValidationError{Message: err.Error()}
	}

	keyAttribute, err := domain.ParseAttribute(input.KeyAttribute)
	if err != nil {
		return domain.Knight{}, domain.ValidationError{Message: fmt.Sprintf("invalid keyAttribute: %v", err)}
	}

	attributes, err := domain.NewAttributes(input.Attributes)
	if err != nil {
		return domain.Knight{}, domain.ValidationError{Message: fmt.Sprintf("invalid attributes: %v", err)}
	}

	weapons := make([]domain.Weapon, 0, len(input.Weapons))
	for i, w := range input.Weapons {
		if strings.TrimSpace(w.Name) == "" {
			return domain.Knight{}, domain.ValidationError{Message: fmt.Sprintf("weapons[%d]: name is required", i)}
		}
		attr, err := domain.ParseAttribute(w.Attr)
		if err != nil {
			return domain.Knight{}, domain.ValidationError{Message: fmt.Sprintf("weapons[%d]: %v", i, err)}
		}
		weapons = append(weapons, domain.Weapon{
			Name:     w.Name,
			Mod:      w.Mod,
			Attr:     attr,
			Equipped: w.Equipped,
		})
	}

	return domain.Knight{
		Name:         input.Name,
		Nickname:     input.Nickname,
		Birthday:     birthday,
		Weapons:      weapons,
		Attributes:   attributes,
		KeyAttribute: keyAttribute,
	}, nil
}

// parseBirthday accepts a plain date or a full RFC 3339 timestamp and keeps
// only the calendar date.
func parseBirthday(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("birthday is required")
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return domain.Date(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid birthday %q: expected YYYY-MM-DD", s)
	}
	return domain.Date(t), nil
}
