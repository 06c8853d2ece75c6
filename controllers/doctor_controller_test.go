package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/controllers"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/services"
)

// ---- concrete mocks implementing services.DoctorService and services.ReviewService ----

type mockDoctorSvc struct {
	doctor    *models.Doctor
	rated     *models.DoctorWithRating
	doctors   []models.DoctorWithRating
	total     int64
	slots     []models.Slot
	createErr *services.ServiceError
	getErr    *services.ServiceError
	listErr   *services.ServiceError
	updateErr *services.ServiceError
	slotsErr  *services.ServiceError
}

func (m *mockDoctorSvc) Create(ctx context.Context, req *models.CreateDoctorRequest) (*models.Doctor, *services.ServiceError) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.doctor, nil
}
func (m *mockDoctorSvc) List(ctx context.Context, filter models.DoctorFilter) ([]models.DoctorWithRating, int64, *services.ServiceError) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.doctors, m.total, nil
}
func (m *mockDoctorSvc) Get(ctx context.Context, id uuid.UUID) (*models.DoctorWithRating, *services.ServiceError) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.rated, nil
}
func (m *mockDoctorSvc) Update(ctx context.Context, id, actorID uuid.UUID, actorRole string, req *models.UpdateDoctorRequest) (*models.Doctor, *services.ServiceError) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.doctor, nil
}
func (m *mockDoctorSvc) Slots(ctx context.Context, doctorID uuid.UUID, date string) ([]models.Slot, *services.ServiceError) {
	if m.slotsErr != nil {
		return nil, m.slotsErr
	}
	return m.slots, nil
}
func (m *mockDoctorSvc) InvalidateSlots(ctx context.Context, doctorID uuid.UUID, date string) {}

type mockReviewSvc struct {
	review    *models.Review
	reviews   []models.Review
	total     int64
	createErr *services.ServiceError
	listErr   *services.ServiceError
	updateErr *services.ServiceError
	deleteErr *services.ServiceError
}

func (m *mockReviewSvc) Create(ctx context.Context, patientID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, *services.ServiceError) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.review, nil
}
func (m *mockReviewSvc) ListForDoctor(ctx context.Context, doctorID uuid.UUID, page, pageSize int) ([]models.Review, int64, *services.ServiceError) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.reviews, m.total, nil
}
func (m *mockReviewSvc) Update(ctx context.Context, id, actorID uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, *services.ServiceError) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.review, nil
}
func (m *mockReviewSvc) Delete(ctx context.Context, id, actorID uuid.UUID, actorRole string) *services.ServiceError {
	return m.deleteErr
}

// ---- helpers ----

func setupDoctorRouter(doctors services.DoctorService, reviews services.ReviewService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	c := controllers.NewDoctorController(doctors, reviews)

	r.GET("/doctors", c.List)
	r.GET("/doctors/:id", c.Get)
	r.GET("/doctors/:id/slots", c.Slots)
	r.GET("/doctors/:id/reviews", c.Reviews)
	r.POST("/doctors", authAs(uuid.New(), models.RoleAdmin), c.Create)
	return r
}

// ---- tests ----

func TestSlots_ReturnsDateAndSlots(t *testing.T) {
	svc := &mockDoctorSvc{
		slots: []models.Slot{
			{Time: "09:00", Available: true},
			{Time: "10:00", Available: false},
		},
	}
	r := setupDoctorRouter(svc, &mockReviewSvc{})

	req := httptest.NewRequest(http.MethodGet, "/doctors/"+uuid.New().String()+"/slots?date=2030-01-02", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Date  string        `json:"date"`
		Slots []models.Slot `json:"slots"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2030-01-02", resp.Date)
	assert.Len(t, resp.Slots, 2)
	assert.True(t, resp.Slots[0].Available)
	assert.False(t, resp.Slots[1].Available)
}

func TestSlots_InvalidDoctorID(t *testing.T) {
	r := setupDoctorRouter(&mockDoctorSvc{}, &mockReviewSvc{})

	req := httptest.NewRequest(http.MethodGet, "/doctors/abc/slots?date=2030-01-02", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid doctor ID")
}

func TestGetDoctor_NotFound(t *testing.T) {
	svc := &mockDoctorSvc{
		getErr: &services.ServiceError{StatusCode: http.StatusNotFound, Message: "Doctor not found"},
	}
	r := setupDoctorRouter(svc, &mockReviewSvc{})

	req := httptest.NewRequest(http.MethodGet, "/doctors/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListDoctors_Envelope(t *testing.T) {
	svc := &mockDoctorSvc{
		doctors: []models.DoctorWithRating{
			{DoctorName: "Asha Verma", AverageRating: 4.5, ReviewCount: 12},
		},
		total: 1,
	}
	r := setupDoctorRouter(svc, &mockReviewSvc{})

	req := httptest.NewRequest(http.MethodGet, "/doctors?specialty=cardiology", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, float64(1), resp["count"])
	results, ok := resp["results"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, results, 1)
}

func TestCreateDoctor_Created(t *testing.T) {
	svc := &mockDoctorSvc{
		doctor: &models.Doctor{ID: uuid.New(), Specialty: "cardiology"},
	}
	r := setupDoctorRouter(svc, &mockReviewSvc{})

	body := models.CreateDoctorRequest{
		Email:           "doc@example.com",
		Password:        "Str0ngPass",
		FirstName:       "Asha",
		Specialty:       "cardiology",
		ConsultationFee: 20000,
	}
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/doctors", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "cardiology")
}

func TestDoctorReviews_Envelope(t *testing.T) {
	reviews := &mockReviewSvc{
		reviews: []models.Review{{ID: uuid.New(), Rating: 5, Comment: "Very thorough"}},
		total:   1,
	}
	r := setupDoctorRouter(&mockDoctorSvc{}, reviews)

	req := httptest.NewRequest(http.MethodGet, "/doctors/"+uuid.New().String()+"/reviews", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Very thorough")
	assert.Contains(t, w.Body.String(), `"count":1`)
}
