package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeText = "text/plain; charset=utf-8"
	MimeJSON = "application/json"
)

// 响应消息，与前端约定一致
const (
	MsgCourseSaved      = "Course saved successfully"
	MsgCourseDeleted    = "Course deleted successfully"
	MsgCourseNotFound   = "Course not found"
	MsgNoCoursesForUser = "No courses found for this username"
	MsgServerError      = "Server error"
	MsgCourseExported   = "Course exported successfully"
)
