package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/myancal/backend/config"
	"github.com/myancal/backend/internal/service"
	"github.com/myancal/backend/internal/testhelpers"
	"github.com/myancal/backend/internal/testhelpers/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router *gin.Engine
	db     *gorm.DB
	ai     *mocks.MockAIService
	enrich *mocks.MockEnrichmentService
	usage  *mocks.MockUsageTracker
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testhelpers.NewTestDB(t)
	logger := zap.NewNop()

	ai := &mocks.MockAIService{}
	enrich := &mocks.MockEnrichmentService{}
	usage := &mocks.MockUsageTracker{}

	awsCfg := aws.Config{
		Region:      "ap-southeast-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	}
	s3Client := config.NewS3ClientFromConfig(awsCfg, config.StorageConfig{Endpoint: "http://localhost:9000"})

	router := gin.New()
	RegisterRoutes(router, Dependencies{
		DB:          db,
		Sessions:    service.NewSessionService(testhelpers.TestJWTSecret),
		Usage:       usage,
		AI:          ai,
		Enrichment:  enrich,
		Ingredients: service.NewIngredientService(db, logger),
		Meals:       service.NewMealService(db, logger),
		Templates:   service.NewTemplateService(db, ai, logger),
		Admins:      service.NewAdminService(db, logger),
		Photos:      service.NewPhotoStorage(s3.NewPresignClient(s3Client), "meal-photos", 5*time.Minute),
		Logger:      logger,
	})

	return &testAPI{router: router, db: db, ai: ai, enrich: enrich, usage: usage}
}

// do sends a request with an optional JSON body and session.
func (a *testAPI) do(t *testing.T, method, path string, body interface{}, session uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	auth := ""
	if session != uuid.Nil {
		auth = "Bearer " + testhelpers.SessionToken(t, session)
	}
	return a.doAuth(t, method, path, body, auth)
}

func (a *testAPI) doAuth(t *testing.T, method, path string, body interface{}, auth string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, http.MethodGet, "/health", nil, uuid.Nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
