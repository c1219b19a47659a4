package domain

import "time"

// Weapon is owned by exactly one Knight. Attr is descriptive only.
type Weapon struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Mod      int       `json:"mod"`
	Attr     Attribute `json:"attr"`
	Equipped bool      `json:"equipped"`
}

// Knight is the persisted roster record. Age, experience and attack are
// never stored; see Summarize and View.
type Knight struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Nickname     string     `json:"nickname"`
	Birthday     time.Time  `json:"birthday"`
	Weapons      []Weapon   `json:"weapons"`
	Attributes   Attributes `json:"attributes"`
	KeyAttribute Attribute  `json:"keyAttribute"`
}

// EquippedWeapon returns the first equipped weapon.
func (k Knight) EquippedWeapon() (Weapon, bool) {
	for _, w := range k.Weapons {
		if w.Equipped {
			return w, true
		}
	}
	return Weapon{}, false
}

// Date truncates t to a UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
