package models

import "time"

type Follow struct {
	FollowerID uint      `json:"follower_id" gorm:"primaryKey;autoIncrement:false"`
	FollowedID uint      `json:"followed_id" gorm:"primaryKey;autoIncrement:false"`
	Follower   *User     `json:"-" gorm:"foreignKey:FollowerID"`
	Followed   *User     `json:"-" gorm:"foreignKey:FollowedID"`
	Timestamp  time.Time `json:"timestamp"`
}
