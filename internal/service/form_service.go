package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/juhi-kothari/Pranam-app/internal/logging"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"go.uber.org/zap"
)

const maxFormTextLen = 2000

type HealingRequestInput struct {
	Name        string `json:"name"`
	SeekingFor  string `json:"seekingFor"`
	Description string `json:"description"`
	Photo       string `json:"photo"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

type HealingStatusInput struct {
	Status     model.HealingStatus `json:"status"`
	AdminNotes *string             `json:"adminNotes"`
}

type QuestionInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Category string `json:"category"`
	Question string `json:"question"`
}

type AnswerInput struct {
	AdminResponse string               `json:"adminResponse"`
	Status        model.QuestionStatus `json:"status"`
	IsPublic      bool                 `json:"isPublic"`
}

type FormService interface {
	SubmitHealingRequest(ctx context.Context, viewer *Actor, in HealingRequestInput) (*model.HealingRequest, error)
	ListHealingRequests(ctx context.Context, status model.HealingStatus, page, limit int) (*Page[model.HealingRequest], error)
	UpdateHealingStatus(ctx context.Context, id uint64, in HealingStatusInput) (*model.HealingRequest, error)
	SubmitQuestion(ctx context.Context, viewer *Actor, in QuestionInput) (*model.Question, error)
	ListQuestions(ctx context.Context, status model.QuestionStatus, page, limit int) (*Page[model.Question], error)
	AnswerQuestion(ctx context.Context, id uint64, in AnswerInput) (*model.Question, error)
}

type formService struct {
	forms repository.FormRepository
	log   *zap.Logger
}

func NewFormService(forms repository.FormRepository, log *zap.Logger) FormService {
	if log == nil {
		log = zap.NewNop()
	}
	return &formService{forms: forms, log: log}
}

// requiredText trims v and checks it is present and at most max runes.
func requiredText(field, v string, max int) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", validationf("%s is required", field)
	}
	if utf8.RuneCountInString(v) > max {
		return "", validationf("%s must be at most %d characters", field, max)
	}
	return v, nil
}

func optionalEmail(email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", nil
	}
	return normalizeEmail(email)
}

func viewerID(viewer *Actor) *uint64 {
	if viewer == nil {
		return nil
	}
	id := viewer.UserID
	return &id
}

func (s *formService) SubmitHealingRequest(ctx context.Context, viewer *Actor, in HealingRequestInput) (*model.HealingRequest, error) {
	name, err := requiredText("name", in.Name, 100)
	if err != nil {
		return nil, err
	}
	seeking, err := requiredText("seekingFor", in.SeekingFor, 200)
	if err != nil {
		return nil, err
	}
	desc, err := requiredText("description", in.Description, maxFormTextLen)
	if err != nil {
		return nil, err
	}
	email, err := optionalEmail(in.Email)
	if err != nil {
		return nil, err
	}
	h := &model.HealingRequest{
		Name:           name,
		SeekingFor:     seeking,
		Description:    desc,
		Photo:          strings.TrimSpace(in.Photo),
		UserID:         viewerID(viewer),
		Email:          email,
		Phone:          strings.TrimSpace(in.Phone),
		Status:         model.HealingPending,
		IsConfidential: true,
	}
	if err := s.forms.CreateHealingRequest(ctx, h); err != nil {
		return nil, err
	}
	logging.FromContext(ctx, s.log).Info("healing request submitted", zap.Uint64("healing_request_id", h.ID))
	return h, nil
}

func (s *formService) ListHealingRequests(ctx context.Context, status model.HealingStatus, page, limit int) (*Page[model.HealingRequest], error) {
	if status != "" && !status.Valid() {
		return nil, validationf("unknown status %q", status)
	}
	page, limit, offset := normalizePage(page, limit, 20, 100)
	list, total, err := s.forms.ListHealingRequests(ctx, status, offset, limit)
	if err != nil {
		return nil, err
	}
	return newPage(list, page, limit, total), nil
}

func (s *formService) UpdateHealingStatus(ctx context.Context, id uint64, in HealingStatusInput) (*model.HealingRequest, error) {
	if !in.Status.Valid() {
		return nil, validationf("status must be one of pending, in_progress, completed, cancelled")
	}
	if _, err := s.forms.FindHealingRequest(ctx, id); err != nil {
		return nil, mapRepoErr(err, "healing request")
	}
	fields := map[string]interface{}{"status": in.Status}
	if in.AdminNotes != nil {
		fields["admin_notes"] = strings.TrimSpace(*in.AdminNotes)
	}
	if err := s.forms.UpdateHealingRequest(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.forms.FindHealingRequest(ctx, id)
}

func (s *formService) SubmitQuestion(ctx context.Context, viewer *Actor, in QuestionInput) (*model.Question, error) {
	name, err := requiredText("name", in.Name, 100)
	if err != nil {
		return nil, err
	}
	category, err := requiredText("category", in.Category, 64)
	if err != nil {
		return nil, err
	}
	text, err := requiredText("question", in.Question, maxFormTextLen)
	if err != nil {
		return nil, err
	}
	email, err := optionalEmail(in.Email)
	if err != nil {
		return nil, err
	}
	q := &model.Question{
		Name:     name,
		Email:    email,
		Category: category,
		Question: text,
		UserID:   viewerID(viewer),
		Status:   model.QuestionPending,
	}
	if err := s.forms.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	logging.FromContext(ctx, s.log).Info("question submitted", zap.Uint64("question_id", q.ID))
	return q, nil
}

func (s *formService) ListQuestions(ctx context.Context, status model.QuestionStatus, page, limit int) (*Page[model.Question], error) {
	if status != "" && !status.Valid() {
		return nil, validationf("unknown status %q", status)
	}
	page, limit, offset := normalizePage(page, limit, 20, 100)
	list, total, err := s.forms.ListQuestions(ctx, status, offset, limit)
	if err != nil {
		return nil, err
	}
	return newPage(list, page, limit, total), nil
}

// AnswerQuestion records the admin's response. Status defaults to answered;
// a public answer is published.
func (s *formService) AnswerQuestion(ctx context.Context, id uint64, in AnswerInput) (*model.Question, error) {
	response, err := requiredText("adminResponse", in.AdminResponse, maxFormTextLen)
	if err != nil {
		return nil, err
	}
	status := in.Status
	switch {
	case status == "" && in.IsPublic:
		status = model.QuestionPublished
	case status == "":
		status = model.QuestionAnswered
	case !status.Valid():
		return nil, validationf("status must be one of pending, answered, published")
	}
	if _, err := s.forms.FindQuestion(ctx, id); err != nil {
		return nil, mapRepoErr(err, "question")
	}
	if err := s.forms.UpdateQuestion(ctx, id, map[string]interface{}{
		"admin_response": response,
		"status":         status,
		"is_public":      in.IsPublic,
	}); err != nil {
		return nil, err
	}
	return s.forms.FindQuestion(ctx, id)
}
