package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("alice", "alice@example.com", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)

	_, err = ParseJWT(token, "other")
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT("alice", "", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestCourseNameKey(t *testing.T) {
	assert.Equal(t, CourseNameKey("Machine Learning"), CourseNameKey("machine-learning"))
	assert.NotEqual(t, CourseNameKey("Go"), CourseNameKey("Golang"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "machine-learning", Slugify("Machine Learning"))
	assert.Equal(t, "c-basics", Slugify("C++ Basics!"))
}

func TestMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Message(c, http.StatusNotFound, MsgCourseNotFound)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Course not found"}`, w.Body.String())
}
