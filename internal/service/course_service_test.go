package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"learno_backend/internal/config"
	"learno_backend/internal/model"
	"learno_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const savedRoadmap = `[
  {"id": "syntax", "title": "Syntax", "description": "Basics", "duration": "1 week", "prerequisites": []},
  {"id": "types", "title": "Types", "description": "Structs and interfaces", "duration": "2 weeks", "prerequisites": ["syntax"]}
]`

func TestCourseService_SaveListDelete(t *testing.T) {
	svc := newCourseService(t)
	ctx := context.Background()

	course, err := svc.Save(ctx, SaveCourseInput{Username: "alice", CourseName: "Go Basics", SkillLevel: "Beginner", Roadmap: savedRoadmap})
	require.NoError(t, err)
	assert.Equal(t, "beginner", course.SkillLevel)

	courses, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, courses, 1)

	deleted, err := svc.Delete(ctx, "alice", "Go Basics")
	require.NoError(t, err)
	assert.Equal(t, course.ID, deleted.ID)

	courses, err = svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, courses)

	_, err = svc.Delete(ctx, "alice", "Go Basics")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestCourseService_SaveValidation(t *testing.T) {
	svc := newCourseService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, SaveCourseInput{Username: " ", CourseName: "Go", SkillLevel: "beginner"})
	assert.ErrorIs(t, err, util.ErrInvalidCourse)

	_, err = svc.Save(ctx, SaveCourseInput{Username: "alice", CourseName: "Go", SkillLevel: "expert"})
	assert.ErrorIs(t, err, util.ErrInvalidSkill)

	course, err := svc.Save(ctx, SaveCourseInput{Username: "alice", CourseName: "Go", SkillLevel: "advanced"})
	require.NoError(t, err)
	assert.Equal(t, "[]", course.Roadmap)

	_, err = svc.Save(ctx, SaveCourseInput{Username: "alice", CourseName: "Go", SkillLevel: "advanced"})
	assert.ErrorIs(t, err, util.ErrDuplicateCourse)

	_, err = svc.Save(ctx, SaveCourseInput{Username: "alice", CourseName: "Go", SkillLevel: "beginner"})
	assert.NoError(t, err)
}

func TestCourseService_GetMatchesLoosely(t *testing.T) {
	svc := newCourseService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, SaveCourseInput{Username: "alice", CourseName: "Machine Learning Advanced", SkillLevel: "advanced"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, SaveCourseInput{Username: "alice", CourseName: "Machine Learning", SkillLevel: "beginner"})
	require.NoError(t, err)

	course, err := svc.Get(ctx, "alice", "machine-learning")
	require.NoError(t, err)
	assert.Equal(t, "Machine Learning", course.CourseName)

	course, err = svc.Get(ctx, "alice", "LEARNING-ADV")
	require.NoError(t, err)
	assert.Equal(t, "Machine Learning Advanced", course.CourseName)

	_, err = svc.Get(ctx, "alice", "cooking")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	_, err = svc.Get(ctx, "bob", "machine-learning")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestRenderText(t *testing.T) {
	course := &model.Course{CourseName: "Go", SkillLevel: "beginner", Roadmap: savedRoadmap}

	assert.Equal(t, "Title: Go\nDescription: beginner\nRoadmap:\n1. Syntax: Basics\n2. Types: Structs and interfaces", RenderText(course))

	course.Roadmap = "not json"
	assert.Equal(t, "Title: Go\nDescription: beginner\nRoadmap:\n", RenderText(course))
}

func TestRenderXLSX(t *testing.T) {
	course := &model.Course{CourseName: "Go", SkillLevel: "beginner", Roadmap: savedRoadmap}

	data, err := RenderXLSX(course)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Roadmap")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Title", "Go"}, rows[0])
	assert.Equal(t, []string{"1", "Syntax", "Basics", "1 week"}, rows[4])
	assert.Equal(t, []string{"2", "Types", "Structs and interfaces", "2 weeks", "syntax"}, rows[5])
}

func TestCourseService_Export(t *testing.T) {
	svc := newCourseService(t)
	ctx := context.Background()
	_, err := svc.Save(ctx, SaveCourseInput{Username: "alice", CourseName: "Go Basics", SkillLevel: "beginner", Roadmap: savedRoadmap})
	require.NoError(t, err)

	file, err := svc.Export(ctx, "alice", "go-basics", "")
	require.NoError(t, err)
	assert.Equal(t, "Go Basics.txt", file.Filename)
	assert.Equal(t, util.MimeText, file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "Title: Go Basics"))

	file, err = svc.Export(ctx, "alice", "go-basics", ExportXLSX)
	require.NoError(t, err)
	assert.Equal(t, "Go Basics.xlsx", file.Filename)

	_, err = svc.Export(ctx, "alice", "go-basics", "pdf")
	assert.Error(t, err)

	_, err = svc.Export(ctx, "alice", "rust", "")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestCourseService_StoreExport(t *testing.T) {
	dir := t.TempDir()
	svc := newCourseService(t)
	svc.storage = NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: dir})
	ctx := context.Background()

	_, err := svc.Save(ctx, SaveCourseInput{Username: "Alice Smith", CourseName: "Go Basics", SkillLevel: "beginner", Roadmap: savedRoadmap})
	require.NoError(t, err)
	file, err := svc.Export(ctx, "Alice Smith", "Go Basics", ExportText)
	require.NoError(t, err)

	url, err := svc.StoreExport(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/exports/alice-smith/go-basics-beginner.txt", url)

	data, err := os.ReadFile(filepath.Join(dir, "exports", "alice-smith", "go-basics-beginner.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Title: Go Basics"))

	_, err = svc.StoreExport(ctx, &ExportFile{Filename: "loose.txt"})
	assert.Error(t, err)
}

func TestCourseService_DeleteRemovesStoredExports(t *testing.T) {
	dir := t.TempDir()
	svc := newCourseService(t)
	svc.storage = NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: dir})
	ctx := context.Background()

	for _, level := range []string{"beginner", "advanced"} {
		_, err := svc.Save(ctx, SaveCourseInput{Username: "alice", CourseName: "Go", SkillLevel: level, Roadmap: savedRoadmap})
		require.NoError(t, err)
	}

	file, err := svc.Export(ctx, "alice", "Go", ExportXLSX)
	require.NoError(t, err)
	_, err = svc.StoreExport(ctx, file)
	require.NoError(t, err)
	exported := filepath.Join(dir, "exports", "alice", "go-beginner.xlsx")
	require.FileExists(t, exported)

	// 另一难度的导出不受影响
	other := filepath.Join(dir, "exports", "alice", "go-advanced.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(other), 0o755))
	require.NoError(t, os.WriteFile(other, []byte("keep"), 0o644))

	deleted, err := svc.Delete(ctx, "alice", "Go")
	require.NoError(t, err)
	assert.Equal(t, "beginner", deleted.SkillLevel)
	assert.NoFileExists(t, exported)
	assert.FileExists(t, other)

	deleted, err = svc.Delete(ctx, "alice", "Go")
	require.NoError(t, err)
	assert.Equal(t, "advanced", deleted.SkillLevel)
	assert.NoFileExists(t, other)
}

func TestCourseService_SaveChecksExisting(t *testing.T) {
	svc := newCourseService(t)
	ctx := context.Background()
	in := SaveCourseInput{Username: "alice", CourseName: "Go", SkillLevel: "Beginner", Roadmap: savedRoadmap}

	_, err := svc.Save(ctx, in)
	require.NoError(t, err)
	exists, err := svc.repo.Exists(ctx, "alice", "Go", "beginner")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = svc.Save(ctx, in)
	assert.ErrorIs(t, err, util.ErrDuplicateCourse)
}

func TestLocalStorageProvider_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	storage := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: dir})

	_, err := storage.Upload(context.Background(), "../escape.txt", strings.NewReader("x"), 1, util.MimeText)
	assert.Error(t, err)

	url, err := storage.Upload(context.Background(), "a/b.txt", strings.NewReader("x"), 1, util.MimeText)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a/b.txt", url)
	require.NoError(t, storage.Delete(context.Background(), "a/b.txt"))
}

func TestStorageService_FallsBackToLocal(t *testing.T) {
	storage := NewStorageService(&config.StorageConfig{Type: util.StorageMinio, LocalPath: t.TempDir()})
	_, ok := storage.Provider.(*LocalStorageProvider)
	assert.True(t, ok)

	var nilStorage *StorageService
	_, err := nilStorage.Upload(context.Background(), "k", strings.NewReader(""), 0, util.MimeText)
	assert.ErrorIs(t, err, util.ErrStorageNotReady)
}
