// Package model 定义数据库实体模型
// 本文件定义客服账号模型
package model

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// StaffUser 客服账号
// 对应数据库 staff_user 表，客服登录后拿到 JWT，以 admin 身份接入聊天
type StaffUser struct {
	gorm.Model

	// Uuid 格式：A + 雪花 ID
	Uuid string `gorm:"column:uuid;uniqueIndex;type:varchar(24);not null;comment:客服uuid"`

	Username    string `gorm:"column:username;uniqueIndex;type:varchar(64);not null;comment:登录名"`
	DisplayName string `gorm:"column:display_name;type:varchar(64);not null;comment:展示名称"`

	// Password bcrypt 哈希，不存明文
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	// Status 0=正常, 1=禁用
	Status int8 `gorm:"column:status;not null;default:0;comment:状态，0.正常，1.禁用"`

	// RawPassword 明文密码，只在 BeforeSave 中使用
	RawPassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (StaffUser) TableName() string {
	return "staff_user"
}

// BeforeSave 设置了 RawPassword 时写入其 bcrypt 哈希
func (s *StaffUser) BeforeSave(tx *gorm.DB) error {
	if s.RawPassword == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.RawPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.Password = string(hash)
	s.RawPassword = ""
	return nil
}

// CheckPassword 校验明文密码
func (s *StaffUser) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(s.Password), []byte(plaintext)) == nil
}

// Disabled 账号是否被禁用
func (s *StaffUser) Disabled() bool {
	return s.Status == 1
}
