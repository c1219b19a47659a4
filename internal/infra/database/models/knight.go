package models

import "time"

type Knight struct {
	ID           string         `json:"id" gorm:"primaryKey;type:text"`
	Name         string         `json:"name" gorm:"type:text;not null;index"`
	Nickname     string         `json:"nickname" gorm:"type:text;not null;uniqueIndex:uniq_knight_nickname"`
	Birthday     time.Time      `json:"birthday" gorm:"type:date;not null"`
	Attributes   map[string]int `json:"attributes" gorm:"type:jsonb;serializer:json"`
	KeyAttribute string         `json:"keyAttribute" gorm:"type:text;not null"`
	Weapons      []Weapon       `json:"weapons" gorm:"foreignKey:KnightID;references:ID;constraint:OnDelete:CASCADE;"`
	CDate        time.Time      `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate        time.Time      `json:"mdate" gorm:"autoUpdateTime"`
}

// Weapon rows keep the order they were submitted in through Position.
type Weapon struct {
	ID       string `json:"id" gorm:"primaryKey;type:text"`
	KnightID string `json:"knightID" gorm:"type:text;not null;index"`
	Position int    `json:"position" gorm:"not null;default:0"`
	Name     string `json:"name" gorm:"type:text;not null"`
	Mod      int    `json:"mod" gorm:"not null"`
	Attr     string `json:"attr" gorm:"type:text;not null"`
	Equipped bool   `json:"equipped" gorm:"type:boolean;not null;default:false"`
}
