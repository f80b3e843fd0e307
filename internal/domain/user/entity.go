package user

import (
	"time"
)

// User 用户实体（聚合根）
// 说明：
// 1. 用户来自Telegram，TelegramID是业务唯一标识（数据库UNIQUE索引）
// 2. 没有密码，身份由机器人侧（持有bot secret）担保
// 3. 领域实体不依赖GORM tag（infrastructure层负责映射）
type User struct {
	ID           uint
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	Phone        string
	LanguageCode string
	IsActive     bool
	IsBlocked    bool
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile 机器人侧上报的Telegram资料
type Profile struct {
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
}

// NewUser 创建新用户（工厂方法）
func NewUser(p Profile) *User {
	now := time.Now()
	return &User{
		TelegramID:   p.TelegramID,
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		LanguageCode: p.LanguageCode,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ApplyProfile 同步Telegram资料，返回是否有变化
func (u *User) ApplyProfile(p Profile) bool {
	changed := u.Username != p.Username ||
		u.FirstName != p.FirstName ||
		u.LastName != p.LastName ||
		u.LanguageCode != p.LanguageCode
	if !changed {
		return false
	}
	u.Username = p.Username
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.LanguageCode = p.LanguageCode
	u.UpdatedAt = time.Now()
	return true
}

// CanOrder 是否允许下单
func (u *User) CanOrder() bool {
	return u.IsActive && !u.IsBlocked
}

// DisplayName 用于日志和通知
func (u *User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}
