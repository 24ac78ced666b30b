package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gizaedu/exam-service/internal/events"
	"github.com/gizaedu/exam-service/internal/models"
	"github.com/gizaedu/exam-service/internal/repositories"
	"github.com/gizaedu/exam-service/internal/validator"
)

type curationService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewCurationService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CurationService {
	return &curationService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== FOLDERS =====

func (s *curationService) ListFolders(ctx context.Context) ([]*models.Folder, error) {
	folders, err := s.repo.Folder().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

func (s *curationService) CreateFolder(ctx context.Context, req *models.FolderCreateRequest) (*models.Folder, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	name, errs := s.validator.GetBusinessValidator().ValidateFolderName(req.Name)
	if len(errs) > 0 {
		return nil, errs
	}

	folder := &models.Folder{ID: newID(FolderIDPrefix, 6), Name: name}
	if parentID := normalizeParent(req.ParentID); parentID != nil {
		parent, err := s.repo.Folder().GetByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load parent folder: %w", err)
		}
		if parent == nil {
			return nil, ErrParentFolderNotFound
		}
		folder.ParentID = parentID
	}

	if err := s.repo.Folder().AddOne(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}
	s.logger.InfoContext(ctx, "Folder created", "folder_id", folder.ID)
	return folder, nil
}

func (s *curationService) UpdateFolder(ctx context.Context, id string, req *models.FolderUpdateRequest) (*models.Folder, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	folders, err := s.repo.Folder().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load folders: %w", err)
	}
	byID := make(map[string]*models.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}
	if _, ok := byID[id]; !ok {
		return nil, ErrFolderNotFound
	}

	update := models.FolderUpdate{MoveToRoot: req.MoveToRoot}
	if req.Name != nil {
		name, errs := s.validator.GetBusinessValidator().ValidateFolderName(*req.Name)
		if len(errs) > 0 {
			return nil, errs
		}
		update.Name = &name
	}

	if !req.MoveToRoot && req.ParentID != nil {
		parentID := normalizeParent(req.ParentID)
		if parentID == nil {
			update.MoveToRoot = true
		} else {
			if _, ok := byID[*parentID]; !ok {
				return nil, ErrParentFolderNotFound
			}
			if createsCycle(byID, id, *parentID) {
				return nil, ErrFolderCycle
			}
			update.ParentID = parentID
		}
	}

	folder, err := s.repo.Folder().Update(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update folder: %w", err)
	}
	if folder == nil {
		return nil, ErrFolderNotFound
	}
	return folder, nil
}

// DeleteFolder removes only the folder. Child folders and exams keep their
// parent reference.
func (s *curationService) DeleteFolder(ctx context.Context, id, actorID string) error {
	folder, err := s.repo.Folder().GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load folder: %w", err)
	}
	if folder == nil {
		return ErrFolderNotFound
	}

	if err := s.repo.Folder().DeleteOne(ctx, id); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	s.logger.InfoContext(ctx, "Folder deleted", "folder_id", id, "actor_id", actorID)
	publishEvent(ctx, s.publisher, s.logger, events.FolderDeleted, events.EntityDeletedData{ID: id, ActorID: actorID})
	return nil
}

// normalizeParent maps an empty or root parent to nil
func normalizeParent(parentID *string) *string {
	if parentID == nil || *parentID == "" || *parentID == models.RootFolderID {
		return nil
	}
	p := *parentID
	return &p
}

// createsCycle reports whether making parentID the parent of id would place
// id among its own ancestors
func createsCycle(byID map[string]*models.Folder, id, parentID string) bool {
	seen := make(map[string]bool)
	for cur := parentID; cur != ""; {
		if cur == id {
			return true
		}
		if seen[cur] {
			return true
		}
		seen[cur] = true

		f, ok := byID[cur]
		if !ok || f.ParentID == nil {
			return false
		}
		cur = *f.ParentID
	}
	return false
}

// ===== EXAMS =====

func (s *curationService) ListExams(ctx context.Context, withAnswerKeys bool) ([]*models.Exam, error) {
	exams, err := s.repo.Exam().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	if withAnswerKeys {
		return exams, nil
	}

	out := make([]*models.Exam, 0, len(exams))
	for _, e := range exams {
		if e.IsPublishable() {
			out = append(out, e.ForStudent())
		}
	}
	return out, nil
}

func (s *curationService) GetExam(ctx context.Context, id string, withAnswerKeys bool) (*models.Exam, error) {
	exam, err := s.loadExam(ctx, id)
	if err != nil {
		return nil, err
	}
	if !withAnswerKeys {
		return exam.ForStudent(), nil
	}
	return exam, nil
}

func (s *curationService) CreateExam(ctx context.Context, req *models.ExamCreateRequest) (*models.Exam, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	folderID, err := s.resolveFolder(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}

	exam := &models.Exam{
		ID:              newID(ExamIDPrefix, 8),
		FolderID:        folderID,
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Questions:       buildQuestions(req.Questions, nil),
		CreatedAt:       time.Now().UTC(),
	}
	if exam.DurationMinutes == 0 {
		exam.DurationMinutes = models.DefaultExamDurationMinutes
	}
	if errs := s.validator.GetBusinessValidator().ValidateExam(exam); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.Exam().AddOne(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}
	s.logger.InfoContext(ctx, "Exam created", "exam_id", exam.ID, "questions", len(exam.Questions))
	return exam, nil
}

func (s *curationService) UpdateExam(ctx context.Context, id string, req *models.ExamUpdateRequest) (*models.Exam, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.loadExam(ctx, id)
	if err != nil {
		return nil, err
	}

	update := models.ExamUpdate{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
	}
	if req.FolderID != nil {
		folderID, err := s.resolveFolder(ctx, *req.FolderID)
		if err != nil {
			return nil, err
		}
		update.FolderID = &folderID
	}
	if req.Questions != nil {
		questions := buildQuestions(*req.Questions, existing.Questions)
		update.Questions = &questions
	}

	return s.applyExamUpdate(ctx, existing, update)
}

func (s *curationService) DeleteExam(ctx context.Context, id, actorID string) error {
	if _, err := s.loadExam(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Exam().DeleteOne(ctx, id); err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}

	s.logger.InfoContext(ctx, "Exam deleted", "exam_id", id, "actor_id", actorID)
	publishEvent(ctx, s.publisher, s.logger, events.ExamDeleted, events.EntityDeletedData{ID: id, ActorID: actorID})
	return nil
}

// ===== QUESTIONS =====

func (s *curationService) AddQuestion(ctx context.Context, examID string, input *models.QuestionInput) (*models.Exam, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}
	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	questions := append(append([]models.Question(nil), exam.Questions...), buildQuestion(*input))
	return s.applyExamUpdate(ctx, exam, models.ExamUpdate{Questions: &questions})
}

func (s *curationService) UpdateQuestion(ctx context.Context, examID, questionID string, patch *models.QuestionPatch) (*models.Exam, error) {
	if err := s.validator.Validate(patch); err != nil {
		return nil, err
	}
	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	idx := exam.QuestionIndex(questionID)
	if idx < 0 {
		return nil, ErrQuestionNotFound
	}
	questions := append([]models.Question(nil), exam.Questions...)
	patch.Apply(&questions[idx])
	return s.applyExamUpdate(ctx, exam, models.ExamUpdate{Questions: &questions})
}

func (s *curationService) RemoveQuestion(ctx context.Context, examID, questionID string) (*models.Exam, error) {
	exam, err := s.loadExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	idx := exam.QuestionIndex(questionID)
	if idx < 0 {
		return nil, ErrQuestionNotFound
	}
	if len(exam.Questions) == 1 {
		return nil, ErrLastQuestion
	}
	questions := make([]models.Question, 0, len(exam.Questions)-1)
	questions = append(questions, exam.Questions[:idx]...)
	questions = append(questions, exam.Questions[idx+1:]...)
	return s.applyExamUpdate(ctx, exam, models.ExamUpdate{Questions: &questions})
}

// ===== HELPERS =====

func (s *curationService) loadExam(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}
	return exam, nil
}

// applyExamUpdate validates the merged exam before anything is written
func (s *curationService) applyExamUpdate(ctx context.Context, existing *models.Exam, update models.ExamUpdate) (*models.Exam, error) {
	merged := *existing
	update.Apply(&merged)
	if errs := s.validator.GetBusinessValidator().ValidateExam(&merged); len(errs) > 0 {
		return nil, errs
	}

	exam, err := s.repo.Exam().Update(ctx, existing.ID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update exam: %w", err)
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}
	return exam, nil
}

func (s *curationService) resolveFolder(ctx context.Context, folderID string) (string, error) {
	if folderID == "" || folderID == models.RootFolderID {
		return models.RootFolderID, nil
	}
	folder, err := s.repo.Folder().GetByID(ctx, folderID)
	if err != nil {
		return "", fmt.Errorf("failed to load folder: %w", err)
	}
	if folder == nil {
		return "", ErrFolderNotFound
	}
	return folderID, nil
}

// buildQuestions builds fresh questions. An input whose id names one of
// existing keeps that id, so stored answers still point at it.
func buildQuestions(inputs []models.QuestionInput, existing []models.Question) []models.Question {
	known := make(map[string]struct{}, len(existing))
	for _, q := range existing {
		known[q.ID] = struct{}{}
	}

	questions := make([]models.Question, 0, len(inputs))
	for _, in := range inputs {
		q := buildQuestion(in)
		if _, ok := known[in.ID]; ok && in.ID != "" {
			q.ID = in.ID
			delete(known, in.ID)
		}
		questions = append(questions, q)
	}
	return questions
}

// buildQuestion starts from the editor defaults of the type and overlays the
// supplied fields
func buildQuestion(in models.QuestionInput) models.Question {
	q := models.NewQuestion(newID(QuestionIDPrefix, 8), in.Type)
	models.QuestionPatch{
		Prompt:        in.Prompt,
		Points:        in.Points,
		Options:       in.Options,
		CorrectAnswer: in.CorrectAnswer,
		ExternalURL:   in.ExternalURL,
	}.Apply(&q)
	return q
}
