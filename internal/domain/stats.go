package domain

import (
	"errors"
	"math"
	"time"
)

const (
	// knights at or below this age cannot fight
	comingOfAge = 7

	// calendar years past comingOfAge before experience starts to accrue
	experienceGrace = 7

	baseAttack = 10

	yearSeconds = 365 * 24 * 60 * 60
)

var experienceFactor = math.Pow(22, 1.45)

// ErrNoEquippedWeapon means a knight old enough to fight has nothing equipped.
// Creation rejects such knights, so reaching it means the stored data is broken.
var ErrNoEquippedWeapon = errors.New("knight has no equipped weapon")

type attributeBand struct {
	max   int
	value int
}

// inclusive upper bounds, evaluated in ascending order
var attributeBands = []attributeBand{
	{max: 8, value: -2},
	{max: 10, value: -1},
	{max: 12, value: 0},
	{max: 15, value: 1},
	{max: 18, value: 2},
	{max: math.MaxInt, value: 3},
}

// AttributeMod maps a raw attribute score to its modifier.
func AttributeMod(score int) int {
	for _, band := range attributeBands {
		if score <= band.max {
			return band.value
		}
	}
	return 0
}

// Age is the whole number of 365-day years between birthday and now.
// Leap days are ignored, so it can run ahead of CalendarYears around birthdays.
// Computed on unix seconds: a time.Duration cannot span more than ~292 years.
func Age(birthday, now time.Time) int {
	secs := now.Unix() - birthday.Unix()
	years := secs / yearSeconds
	if secs%yearSeconds != 0 && secs < 0 {
		years--
	}
	return int(years)
}

// CalendarYears counts full calendar years from birthday to now, taking month
// and day into account. A future birthday gives a negative count.
func CalendarYears(birthday, now time.Time) int {
	from, to := birthday.UTC(), now.UTC()
	sign := 1
	if to.Before(from) {
		from, to = to, from
		sign = -1
	}

	years := to.Year() - from.Year()
	if to.Month() < from.Month() || (to.Month() == from.Month() && to.Day() < from.Day()) {
		years--
	}
	return sign * years
}

func Experience(birthday, now time.Time) int {
	diff := CalendarYears(birthday, now) - comingOfAge
	if diff > experienceGrace {
		return int(math.Floor(float64(diff) * experienceFactor))
	}
	return 0
}

// Attack is 10 + the key attribute modifier + the equipped weapon bonus, or 0
// for knights that have not come of age. Other weapons never contribute.
func Attack(k Knight, now time.Time) (int, error) {
	if Age(k.Birthday, now) <= comingOfAge {
		return 0, nil
	}

	weapon, ok := k.EquippedWeapon()
	if !ok {
		return 0, ErrNoEquippedWeapon
	}

	mod := 0
	if score, ok := k.Attributes.Score(k.KeyAttribute); ok {
		mod = AttributeMod(score)
	}

	return baseAttack + mod + weapon.Mod, nil
}
