package db

import "time"

type UserModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Account   string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	Password  string    `gorm:"not null"`
	Status    string    `gorm:"not null"`
	Role      string    `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type RolePermissionModel struct {
	ID         int64  `gorm:"primaryKey"`
	Role       string `gorm:"index;not null"`
	Permission string `gorm:"not null"`
}

type DeviceBindingModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	UserID    string    `gorm:"type:uuid;index;not null"`
	OpenID    string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type SubjectModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Address   string
	Remark    string
	CreatedAt time.Time `gorm:"not null"`
}

type DepartModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	SubjectID string `gorm:"type:uuid;index;not null"`
	Name      string `gorm:"not null"`
	Code      string `gorm:"index"`
	Remark    string
	CreatedAt time.Time `gorm:"not null"`
}

type ActivityModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	SubjectID string `gorm:"type:uuid;index;not null"`
	Title     string `gorm:"not null"`
	Content   string
	Status    string    `gorm:"not null"`
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time `gorm:"not null"`
}
