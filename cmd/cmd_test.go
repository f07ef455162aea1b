package cmd

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"learno_backend/internal/config"
	"learno_backend/internal/controller"
	"learno_backend/internal/repository"
	"learno_backend/internal/service"
	"learno_backend/internal/util"
	"learno_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func courseServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenInMemory(uuid.NewString())
	require.NoError(t, err)
	storage := service.NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()})
	ctl := controller.NewCourseController(service.NewCourseService(repository.NewCourseRepository(db), storage))

	router := gin.New()
	g := router.Group("/api/courses")
	g.POST("/save-course", ctl.SaveCourse)
	g.GET("/get-courses/:username", ctl.GetCourses)
	g.GET("/get-course/:username/:courseName", ctl.GetCourse)
	g.DELETE("/delete-course/:username/:courseName", ctl.DeleteCourse)
	g.GET("/export/:username/:courseName", ctl.ExportCourse)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCoursesCommands(t *testing.T) {
	srv := courseServer(t)
	dir := t.TempDir()
	roadmap := filepath.Join(dir, "roadmap.json")
	require.NoError(t, os.WriteFile(roadmap, []byte(`[
  {"id":"syntax","title":"Syntax","description":"Basics","duration":"1 week","prerequisites":[]},
  {"id":"types","title":"Types","description":"Structs","duration":"2 weeks","prerequisites":["syntax"]}
]`), 0o644))

	out, err := run(t, "courses", "list", "alice", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "No courses saved.")

	out, err = run(t, "courses", "save", "alice", "Go Basics", "beginner", "-r", roadmap, "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Course saved successfully")

	_, err = run(t, "courses", "save", "alice", "Go Basics", "beginner", "--server", srv.URL)
	assert.Error(t, err)

	out, err = run(t, "courses", "list", "alice", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Go Basics")
	assert.Contains(t, out, "beginner")

	out, err = run(t, "courses", "show", "alice", "go-basics", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "1. Syntax: Basics")

	target := filepath.Join(dir, "course.txt")
	_, err = run(t, "courses", "export", "alice", "Go Basics", "-o", target, "--server", srv.URL)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Title: Go Basics")

	out, err = run(t, "courses", "delete", "alice", "Go Basics", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted Go Basics (beginner)")
}

func TestProgressCommands(t *testing.T) {
	srv := courseServer(t)
	file := filepath.Join(t.TempDir(), "progress.yaml")
	roadmap := filepath.Join(t.TempDir(), "roadmap.json")
	require.NoError(t, os.WriteFile(roadmap, []byte(`[{"id":"syntax","title":"Syntax","duration":"1 week"},{"id":"types","title":"Types","duration":"2 weeks"}]`), 0o644))
	_, err := run(t, "courses", "save", "alice", "Go", "beginner", "-r", roadmap, "--server", srv.URL)
	require.NoError(t, err)

	out, err := run(t, "progress", "complete", "alice", "Go", "beginner", "syntax", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "alice:Go:beginner: 1 completed")

	_, err = run(t, "progress", "current", "alice", "Go", "beginner", "types", "--file", file)
	require.NoError(t, err)

	out, err = run(t, "progress", "show", "alice", "Go", "beginner", "--file", file, "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Go (beginner) 50% complete")
	assert.Contains(t, out, "[x] 1. Syntax (1 week)")
	assert.Contains(t, out, "[ ] 2. Types (2 weeks)  <- current")

	_, err = run(t, "progress", "show", "alice", "Go", "advanced", "--file", file, "--server", srv.URL)
	assert.Error(t, err)

	out, err = run(t, "progress", "list", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "alice:Go:beginner")

	_, err = run(t, "progress", "forget", "alice", "Go", "beginner", "--file", file)
	require.NoError(t, err)
	out, err = run(t, "progress", "list", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "No progress recorded.")
}
