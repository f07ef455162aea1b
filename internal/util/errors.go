package util

import "errors"

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrDuplicateCourse  = errors.New("a course with this name and skill level is already saved")
	ErrSessionNotFound  = errors.New("learn session not found")
	ErrInvalidAnswer    = errors.New("invalid answer")
	ErrStepOutOfOrder   = errors.New("action not allowed at the current step")
	ErrInvalidSkill     = errors.New("skill level must be beginner, intermediate or advanced")
	ErrInvalidCourse    = errors.New("username and courseName are required")
	ErrStaleSession     = errors.New("session was reset while the request was in flight")
	ErrPermissionDenied = errors.New("permission denied")
	ErrStorageNotReady  = errors.New("object storage is not configured")
	ErrSignInRequired   = errors.New("sign in required")
	ErrInvalidTopic     = errors.New("topic name is required")
)
