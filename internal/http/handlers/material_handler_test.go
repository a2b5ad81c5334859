package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/domain/faults"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
	"github.com/trainforge/trainforge-backend/internal/services"
)

type stubMaterialService struct {
	services.MaterialService

	getByID      func(ctx context.Context, id uint) (*types.Material, error)
	createCalls  int
	childCalls   int
	deleteResult bool
	deleteErr    error
}

func (s *stubMaterialService) Create(ctx context.Context, m *types.Material) (*types.Material, error) {
	s.createCalls++
	m.ID = 1
	return m, nil
}

func (s *stubMaterialService) CreateWithChildren(ctx context.Context, m *types.Material) (*types.Material, error) {
	s.childCalls++
	m.ID = 1
	return m, nil
}

func (s *stubMaterialService) GetByID(ctx context.Context, id uint) (*types.Material, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, nil
}

func (s *stubMaterialService) Delete(ctx context.Context, id uint) (bool, error) {
	return s.deleteResult, s.deleteErr
}

func handlerTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func materialTestRouter(t *testing.T, svc *stubMaterialService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewMaterialHandler(handlerTestLogger(t), svc, nil)
	r := gin.New()
	r.POST("/materials", h.Create)
	r.GET("/materials/:id", h.Get)
	r.DELETE("/materials/:id", h.Delete)
	return r
}

func TestGetMaterialResponses(t *testing.T) {
	svc := &stubMaterialService{
		getByID: func(ctx context.Context, id uint) (*types.Material, error) {
			if id == 7 {
				return &types.Material{ID: 7, Name: "Welding basics", Type: types.MaterialTypePDF}, nil
			}
			return nil, nil
		},
	}
	r := materialTestRouter(t, svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/materials/7", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Material types.Material `json:"material"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Material.ID != 7 || body.Material.Name != "Welding basics" {
		t.Fatalf("unexpected material: %+v", body.Material)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/materials/99", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing material should 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/materials/banana", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id should 400, got %d", rec.Code)
	}
}

func TestCreateDispatchesOnChildPayload(t *testing.T) {
	svc := &stubMaterialService{}
	r := materialTestRouter(t, svc)

	plain, _ := json.Marshal(gin.H{"name": "Plain doc", "type": "PDF"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/materials", bytes.NewReader(plain)))
	if rec.Code != http.StatusOK {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}

	withChildren, _ := json.Marshal(gin.H{
		"name": "Safety quiz",
		"quiz_questions": []gin.H{
			{"text": "Hard hat required?"},
		},
	})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/materials", bytes.NewReader(withChildren)))
	if rec.Code != http.StatusOK {
		t.Fatalf("create with children failed: %d %s", rec.Code, rec.Body.String())
	}

	if svc.createCalls != 1 || svc.childCalls != 1 {
		t.Fatalf("dispatch wrong: create=%d withChildren=%d", svc.createCalls, svc.childCalls)
	}
}

func TestDeleteMaterialStatus(t *testing.T) {
	svc := &stubMaterialService{deleteResult: false}
	r := materialTestRouter(t, svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/materials/3", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("absent delete should 404, got %d", rec.Code)
	}

	svc.deleteResult = true
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/materials/3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete should 200, got %d", rec.Code)
	}
}

func TestServiceFaultsReachClient(t *testing.T) {
	svc := &stubMaterialService{
		deleteErr: faults.Newf(faults.CodeConflict, "material.delete", "material 3 is referenced"),
	}
	r := materialTestRouter(t, svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/materials/3", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("conflict fault should 409, got %d", rec.Code)
	}
}
