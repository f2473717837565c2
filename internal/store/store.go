package store

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"coursehub/internal/config"
	"coursehub/internal/errors"
	"coursehub/internal/logger"
	"coursehub/internal/models"
)

// Store 基于GORM/SQLite的数据访问层
// 推荐引擎只读消费；写操作仅用于种子数据和测试
type Store struct {
	db     *gorm.DB
	logger *logger.Logger
}

// Open 打开数据库连接并按需迁移
func Open(cfg config.DatabaseConfig) (*Store, error) {
	log := logger.NewLogger("store")

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		chErr := errors.ErrDatabaseConnection(cfg.Path, err)
		log.LogCoursehubError(chErr, "Failed to open database")
		return nil, chErr
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&models.Course{}, &models.User{}, &models.Progress{}); err != nil {
			chErr := errors.ErrDatabaseConnection("auto migrate failed", err)
			log.LogCoursehubError(chErr, "Failed to migrate database schema")
			return nil, chErr
		}
	}

	log.Info("Database opened", logger.Fields{
		"path":         cfg.Path,
		"auto_migrate": cfg.AutoMigrate,
	})

	return &Store{db: db, logger: log}, nil
}

// FindPublishedCourses 查询已发布课程
func (s *Store) FindPublishedCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error) {
	query := s.db.WithContext(ctx).Where("status = ?", models.CourseStatusPublished)

	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Tag != "" {
		// 标签以JSON字符串存储，用包含匹配过滤
		query = query.Where("tags LIKE ?", fmt.Sprintf("%%%q%%", filter.Tag))
	}
	if filter.MaxPrice > 0 {
		query = query.Where("price <= ?", filter.MaxPrice)
	}
	if filter.ApprovedOnly {
		query = query.Where("is_approved = ?", true)
	}

	var courses []*models.Course
	if err := query.Find(&courses).Error; err != nil {
		chErr := errors.ErrDatabaseQuery("find published courses", err)
		s.logger.LogCoursehubError(chErr, "Course query failed")
		return nil, chErr
	}

	return courses, nil
}

// FindUserByID 按ID查询用户
func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, errors.ErrResourceNotFound("User", id)
	}
	if err != nil {
		chErr := errors.ErrDatabaseQuery("find user by id", err)
		s.logger.LogCoursehubError(chErr, "User query failed")
		return nil, chErr
	}
	return &user, nil
}

// FindUsersWithEnrollments 查询有报名记录的其他用户（协同过滤用户采样）
// cap限制采样规模，避免矩阵构建成本随用户总量膨胀
func (s *Store) FindUsersWithEnrollments(ctx context.Context, excludeID string, cap int) ([]*models.User, error) {
	var users []*models.User
	err := s.db.WithContext(ctx).
		Where("id != ?", excludeID).
		Where("enrolled_courses != ''").
		Limit(cap).
		Find(&users).Error
	if err != nil {
		chErr := errors.ErrDatabaseQuery("find users with enrollments", err)
		s.logger.LogCoursehubError(chErr, "User sample query failed")
		return nil, chErr
	}
	return users, nil
}

// FindProgress 查询进度记录；无记录时返回(nil, nil)
func (s *Store) FindProgress(ctx context.Context, userID, courseID string) (*models.Progress, error) {
	var progress models.Progress
	err := s.db.WithContext(ctx).
		First(&progress, "user_id = ? AND course_id = ?", userID, courseID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		chErr := errors.ErrDatabaseQuery("find progress", err)
		s.logger.LogCoursehubError(chErr, "Progress query failed")
		return nil, chErr
	}
	return &progress, nil
}

// CreateCourse 写入课程（种子数据/测试用）
func (s *Store) CreateCourse(ctx context.Context, course *models.Course) error {
	if err := s.db.WithContext(ctx).Create(course).Error; err != nil {
		return errors.ErrDatabaseQuery("create course", err)
	}
	return nil
}

// CreateUser 写入用户（种子数据/测试用）
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return errors.ErrDatabaseQuery("create user", err)
	}
	return nil
}

// CreateProgress 写入进度记录（种子数据/测试用）
func (s *Store) CreateProgress(ctx context.Context, progress *models.Progress) error {
	if err := s.db.WithContext(ctx).Create(progress).Error; err != nil {
		return errors.ErrDatabaseQuery("create progress", err)
	}
	return nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
