package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"learno_backend/internal/model"
	"learno_backend/internal/repository"
	"learno_backend/internal/util"
	"learno_backend/pkg/logger"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type SaveCourseInput struct {
	Username   string `json:"username" binding:"required"`
	CourseName string `json:"courseName" binding:"required"`
	SkillLevel string `json:"skillLevel" binding:"required"`
	Roadmap    string `json:"roadmap"`
}

// ExportFile is a rendered course ready for download or upload.
type ExportFile struct {
	// Key is where StoreExport puts the file. It is stable per course and format.
	Key         string
	Filename    string
	ContentType string
	Data        []byte
}

const (
	ExportText = "txt"
	ExportXLSX = "xlsx"

	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type CourseService struct {
	repo    *repository.CourseRepository
	storage *StorageService
}

func NewCourseService(repo *repository.CourseRepository, storage *StorageService) *CourseService {
	return &CourseService{repo: repo, storage: storage}
}

func (s *CourseService) Save(ctx context.Context, in SaveCourseInput) (*model.Course, error) {
	username := strings.TrimSpace(in.Username)
	courseName := strings.TrimSpace(in.CourseName)
	if username == "" || courseName == "" {
		return nil, util.ErrInvalidCourse
	}
	level, err := model.ParseSkillLevel(in.SkillLevel)
	if err != nil {
		return nil, util.ErrInvalidSkill
	}

	course := &model.Course{
		Username:   username,
		CourseName: courseName,
		SkillLevel: string(level),
		Roadmap:    in.Roadmap,
	}
	if course.Roadmap == "" {
		course.Roadmap = "[]"
	}

	exists, err := s.repo.Exists(ctx, course.Username, course.CourseName, course.SkillLevel)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrDuplicateCourse
	}
	// 并发保存由唯一索引兜底
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) List(ctx context.Context, username string) ([]model.Course, error) {
	return s.repo.FindByUsername(ctx, username)
}

// Get matches courseName ignoring case, with hyphens read as spaces. An exact
// folded match wins over a partial one.
func (s *CourseService) Get(ctx context.Context, username, courseName string) (*model.Course, error) {
	courses, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	want := util.CourseNameKey(courseName)
	if want == "" {
		return nil, util.ErrCourseNotFound
	}
	var partial *model.Course
	for i := range courses {
		have := util.CourseNameKey(courses[i].CourseName)
		if have == want {
			return &courses[i], nil
		}
		if partial == nil && strings.Contains(have, want) {
			partial = &courses[i]
		}
	}
	if partial != nil {
		return partial, nil
	}
	return nil, util.ErrCourseNotFound
}

// Delete removes the course and any exports stored for it. Export cleanup
// failures are logged and do not fail the delete.
func (s *CourseService) Delete(ctx context.Context, username, courseName string) (*model.Course, error) {
	course, err := s.repo.DeleteOne(ctx, username, courseName)
	if err != nil {
		return nil, err
	}
	if s.storage == nil {
		return course, nil
	}
	for _, format := range []string{ExportText, ExportXLSX} {
		key := exportKey(course, format)
		if err := s.storage.Delete(ctx, key); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Log.Warn("Failed to remove stored export",
				zap.String("key", key),
				zap.Error(err))
		}
	}
	return course, nil
}

// Milestones decodes a saved roadmap. A corrupt roadmap reads as empty.
func Milestones(course *model.Course) []model.Milestone {
	var milestones []model.Milestone
	if err := json.Unmarshal([]byte(course.Roadmap), &milestones); err != nil {
		return nil
	}
	return milestones
}

// RenderText produces the plain-text course download.
func RenderText(course *model.Course) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nDescription: %s\nRoadmap:\n", course.CourseName, course.SkillLevel)
	lines := make([]string, 0)
	for i, m := range Milestones(course) {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, m.Title, m.Description))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// RenderXLSX produces a one-sheet workbook with a row per milestone.
func RenderXLSX(course *model.Course) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Roadmap"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	rows := [][]interface{}{
		{"Title", course.CourseName},
		{"Skill level", course.SkillLevel},
		{},
		{"#", "Milestone", "Description", "Duration", "Prerequisites"},
	}
	for i, m := range Milestones(course) {
		rows = append(rows, []interface{}{i + 1, m.Title, m.Description, m.Duration, strings.Join(m.Prerequisites, ", ")})
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *CourseService) Export(ctx context.Context, username, courseName, format string) (*ExportFile, error) {
	course, err := s.Get(ctx, username, courseName)
	if err != nil {
		return nil, err
	}

	switch format {
	case "", ExportText:
		return &ExportFile{
			Key:         exportKey(course, ExportText),
			Filename:    course.CourseName + ".txt",
			ContentType: util.MimeText,
			Data:        []byte(RenderText(course)),
		}, nil
	case ExportXLSX:
		data, err := RenderXLSX(course)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Key:         exportKey(course, ExportXLSX),
			Filename:    course.CourseName + ".xlsx",
			ContentType: mimeXLSX,
			Data:        data,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// StoreExport uploads an export to file.Key and returns its URL. Storing the
// same course and format again overwrites the earlier upload.
func (s *CourseService) StoreExport(ctx context.Context, file *ExportFile) (string, error) {
	if file.Key == "" {
		return "", fmt.Errorf("export %q has no storage key", file.Filename)
	}
	return s.storage.Upload(ctx, file.Key, bytes.NewReader(file.Data), int64(len(file.Data)), file.ContentType)
}

// exportKey is exports/<user>/<course>-<level>.<format>.
func exportKey(course *model.Course, format string) string {
	name := util.Slugify(course.CourseName)
	if name == "" {
		name = "course"
	}
	return fmt.Sprintf("exports/%s/%s-%s.%s", util.Slugify(course.Username), name, util.Slugify(course.SkillLevel), format)
}
