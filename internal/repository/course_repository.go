package repository

import (
	"context"
	"errors"

	"learno_backend/internal/model"
	"learno_backend/internal/util"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// Create inserts a course. The composite unique index turns a second save of
// the same (username, courseName, skillLevel) into util.ErrDuplicateCourse.
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	err := r.DB.WithContext(ctx).Create(course).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrDuplicateCourse
	}
	return err
}

func (r *CourseRepository) FindByUsername(ctx context.Context, username string) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at ASC").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Exists(ctx context.Context, username, courseName, skillLevel string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Course{}).
		Where("username = ? AND course_name = ? AND skill_level = ?", username, courseName, skillLevel).
		Count(&count).Error
	return count > 0, err
}

// DeleteOne removes the oldest course with an exact name match and returns it.
func (r *CourseRepository) DeleteOne(ctx context.Context, username, courseName string) (*model.Course, error) {
	var deleted model.Course
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ? AND course_name = ?", username, courseName).
			Order("created_at ASC").
			First(&deleted).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrCourseNotFound
			}
			return err
		}
		return tx.Delete(&model.Course{}, "id = ?", deleted.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}
