package models

import (
	"time"

	"gorm.io/gorm"

	"guardian-http-service/pkg/utils"
)

// GuardRank 保安级别
type GuardRank string

const (
	GuardRankRookie  GuardRank = "rookie"
	GuardRankVeteran GuardRank = "veteran"
	GuardRankElite   GuardRank = "elite"
)

// Guard 表示值守保安。LocationID 为空的保安无法通过电子围栏校验，
// 打卡时会收到配置错误提示.
type Guard struct {
	ID         uint      `gorm:"primaryKey;unique" json:"id"`
	Username   string    `gorm:"type:varchar(50);unique;not null" json:"username"`
	Password   string    `gorm:"type:varchar(100);not null" json:"-"` // Password not exposed in JSON
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	Phone      string    `gorm:"type:varchar(20)" json:"phone"`
	Rank       GuardRank `gorm:"type:varchar(20);default:'rookie'" json:"rank"`
	Status     string    `gorm:"type:varchar(20);default:'active'" json:"status"`
	LocationID *uint     `json:"location_id"` // 分配的值守位置，可为空
	Remark     string    `gorm:"type:text" json:"remark"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Shifts   []Shift   `gorm:"foreignKey:GuardID" json:"shifts,omitempty"`
}

// BeforeCreate 是一个GORM钩子，在创建新记录前运行
func (g *Guard) BeforeCreate(tx *gorm.DB) error {
	// 如果提供了密码，对其进行哈希处理
	if g.Password != "" {
		hashedPassword, err := utils.HashPassword(g.Password)
		if err != nil {
			return err
		}
		g.Password = hashedPassword
	}
	return nil
}

// BeforeSave 是一个GORM钩子，在保存记录前运行
func (g *Guard) BeforeSave(tx *gorm.DB) error {
	// 如果提供了密码且不是已哈希的，对其进行哈希处理
	if g.Password != "" && len(g.Password) < 60 {
		hashedPassword, err := utils.HashPassword(g.Password)
		if err != nil {
			return err
		}
		g.Password = hashedPassword
	}
	return nil
}
