package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-approvals-api/internal/middleware"
	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequestWithContext(context.Background(), method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func withActor(c *gin.Context, actor workflow.Actor) {
	c.Set(middleware.ContextActorKey, &actor)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func studentActor() workflow.Actor {
	division := &models.Division{ID: "div-a", Course: models.CourseMCA, Semester: 1, Letter: models.DivisionA}
	return workflow.Actor{
		UserID:   "stu-user",
		Username: "asha",
		Role:     models.RoleStudent,
		Student:  &models.Student{ID: "stu-1", UserID: "stu-user", RollNumber: "MCA101", Course: models.CourseMCA, Semester: 1, DivisionID: "div-a"},
		Division: division,
	}
}

func teacherActor(coordinator *models.Cohort, hod *models.Course) workflow.Actor {
	return workflow.Actor{
		UserID:   "tch-user",
		Username: "meera",
		Role:     models.RoleTeacher,
		Teacher:  &models.Teacher{ID: "tch-1", UserID: "tch-user", Authority: models.NewAuthority(coordinator, hod)},
	}
}

func ginParam(key, value string) gin.Param {
	return gin.Param{Key: key, Value: value}
}
