package model

import (
	"time"

	"gorm.io/gorm"
)

// swagger:model Course
//
// Course is a saved learning path. Roadmap holds the JSON-serialized milestone array.
// Rows are never updated in place; (username, course_name, skill_level) is unique.
type Course struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username   string    `gorm:"size:191;not null;uniqueIndex:idx_course_owner_name_level,priority:1;index:idx_course_username" json:"username"`
	CourseName string    `gorm:"size:191;not null;uniqueIndex:idx_course_owner_name_level,priority:2" json:"courseName"`
	SkillLevel string    `gorm:"size:32;not null;uniqueIndex:idx_course_owner_name_level,priority:3" json:"skillLevel"`
	Roadmap    string    `gorm:"type:text;not null" json:"roadmap"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = GenerateUUID()
	}
	return
}

// Key is the composite identifier used for client-side progress records.
func (c *Course) Key() string {
	return CourseKey(c.Username, c.CourseName, c.SkillLevel)
}

func CourseKey(username, courseName, skillLevel string) string {
	return username + ":" + courseName + ":" + skillLevel
}
