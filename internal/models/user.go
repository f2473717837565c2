package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coursehub/internal/errors"
	"coursehub/internal/logger"
)

// User 用户数据模型
// 偏好难度和偏好标签不落库，由推荐引擎按请求实时推导
type User struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name"`
	EnrolledCourses string    `json:"-" gorm:"column:enrolled_courses"` // 已报名课程ID列表JSON字符串
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// 内存中的字段，不存储到数据库
	enrolledList []string       `gorm:"-"`
	logger       *logger.Logger `json:"-" gorm:"-"`
}

// NewUser 创建新的用户
func NewUser(name string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
		enrolledList: make([]string, 0),
		logger:       logger.NewLogger("user-model"),
	}
}

// GetEnrolledCourses 获取已报名课程ID列表
func (u *User) GetEnrolledCourses() []string {
	if u.enrolledList == nil {
		u.enrolledList = make([]string, 0)
	}
	return u.enrolledList
}

// SetEnrolledCourses 设置已报名课程ID列表
func (u *User) SetEnrolledCourses(courseIDs []string) {
	clean := make([]string, 0, len(courseIDs))
	for _, id := range courseIDs {
		if strings.TrimSpace(id) == "" {
			continue
		}
		clean = append(clean, id)
	}
	u.enrolledList = clean
	u.UpdatedAt = time.Now()
}

// IsEnrolledIn 检查用户是否已报名某课程
func (u *User) IsEnrolledIn(courseID string) bool {
	for _, id := range u.GetEnrolledCourses() {
		if id == courseID {
			return true
		}
	}
	return false
}

// Enroll 报名课程（重复报名忽略）
func (u *User) Enroll(courseID string) {
	if courseID == "" || u.IsEnrolledIn(courseID) {
		return
	}
	u.enrolledList = append(u.GetEnrolledCourses(), courseID)
	u.UpdatedAt = time.Now()
}

// BeforeCreate GORM钩子：创建前执行
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.logger == nil {
		u.logger = logger.NewLogger("user-model")
	}
	return u.serializeEnrolled()
}

// BeforeUpdate GORM钩子：更新前执行
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	if u.logger == nil {
		u.logger = logger.NewLogger("user-model")
	}
	return u.serializeEnrolled()
}

// AfterFind GORM钩子：查询后执行
func (u *User) AfterFind(tx *gorm.DB) error {
	if u.logger == nil {
		u.logger = logger.NewLogger("user-model")
	}
	return u.deserializeEnrolled()
}

// serializeEnrolled 序列化已报名课程列表
func (u *User) serializeEnrolled() error {
	if len(u.enrolledList) > 0 {
		jsonData, err := json.Marshal(u.enrolledList)
		if err != nil {
			chErr := errors.NewCoursehubError(errors.ErrorTypeSystem, errors.ErrCodeSystemGeneric, "Failed to marshal enrolled courses").
				WithCause(err).
				WithContext(map[string]interface{}{
					"user_id": u.ID,
				})
			u.logger.LogCoursehubError(chErr, "Enrolled courses marshaling failed")
			return chErr
		}
		u.EnrolledCourses = string(jsonData)
	}
	return nil
}

// deserializeEnrolled 反序列化已报名课程列表
func (u *User) deserializeEnrolled() error {
	if u.EnrolledCourses != "" {
		var list []string
		if err := json.Unmarshal([]byte(u.EnrolledCourses), &list); err != nil {
			chErr := errors.NewCoursehubError(errors.ErrorTypeSystem, errors.ErrCodeSystemGeneric, "Failed to unmarshal enrolled courses").
				WithCause(err).
				WithContext(map[string]interface{}{
					"user_id": u.ID,
				})
			u.logger.LogCoursehubError(chErr, "Enrolled courses unmarshaling failed")
			return chErr
		}
		u.enrolledList = list
	} else {
		u.enrolledList = make([]string, 0)
	}
	return nil
}

// Progress 学习进度记录
// 只用于推导隐式评分；记录缺失时使用默认评分
type Progress struct {
	ID                   string    `json:"id" gorm:"primaryKey"`
	UserID               string    `json:"user_id" gorm:"index:idx_progress_user_course"`
	CourseID             string    `json:"course_id" gorm:"index:idx_progress_user_course"`
	CompletionPercentage float64   `json:"completion_percentage"` // 0-100
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewProgress 创建新的进度记录
func NewProgress(userID, courseID string, completion float64) *Progress {
	now := time.Now()
	return &Progress{
		ID:                   uuid.New().String(),
		UserID:               userID,
		CourseID:             courseID,
		CompletionPercentage: completion,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Validate 验证进度记录
func (p *Progress) Validate() error {
	if p.UserID == "" {
		return errors.ErrValidationFailed("user_id", "cannot be empty")
	}
	if p.CourseID == "" {
		return errors.ErrValidationFailed("course_id", "cannot be empty")
	}
	if p.CompletionPercentage < 0 || p.CompletionPercentage > 100 {
		return errors.ErrValidationFailed("completion_percentage", "must be between 0 and 100")
	}
	return nil
}

// BeforeCreate GORM钩子：创建前执行
func (p *Progress) BeforeCreate(tx *gorm.DB) error {
	return p.Validate()
}

// BeforeUpdate GORM钩子：更新前执行
func (p *Progress) BeforeUpdate(tx *gorm.DB) error {
	return p.Validate()
}
