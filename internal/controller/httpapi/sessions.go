package httpapi

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/repository"
	"github.com/Freeeeeet/tutoring_ledger/internal/service"
)

const dateLayout = "2006-01-02"

type scheduleSessionRequest struct {
	StudentID   int64  `json:"student_id" validate:"required,gt=0"`
	TeacherID   int64  `json:"teacher_id" validate:"required,gt=0"`
	LanguageID  int64  `json:"language_id" validate:"required,gt=0"`
	Date        string `json:"date" validate:"required"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	Notes       string `json:"notes" validate:"max=2000"`
	MeetingLink string `json:"meeting_link" validate:"omitempty,url"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
}

type feedbackRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

type balanceResponse struct {
	StudentID           int64   `json:"student_id"`
	TotalHoursPurchased int     `json:"total_hours_purchased"`
	TotalHoursUsed      float64 `json:"total_hours_used"`
	HoursRemaining      float64 `json:"hours_remaining"`
}

func newBalanceResponse(b model.Balance) balanceResponse {
	return balanceResponse{
		StudentID:           b.StudentID,
		TotalHoursPurchased: b.HoursPurchased,
		TotalHoursUsed:      b.HoursUsed(),
		HoursRemaining:      b.HoursRemaining(),
	}
}

func (s *Server) handleScheduleSession(w http.ResponseWriter, r *http.Request) {
	var req scheduleSessionRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
		return
	}
	start, err := model.ParseClock(req.StartTime)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	end, err := model.ParseClock(req.EndTime)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	session, err := s.sessions.ScheduleSession(r.Context(), service.ScheduleInput{
		StudentID:   req.StudentID,
		TeacherID:   req.TeacherID,
		LanguageID:  req.LanguageID,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Notes:       req.Notes,
		MeetingLink: req.MeetingLink,
	}, actorFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repository.SessionFilter{
		Status:       model.SessionStatus(query.Get("status")),
		LanguageCode: query.Get("language"),
	}
	if raw := query.Get("date"); raw != "" {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid_request", "date must be YYYY-MM-DD")
			return
		}
		filter.Date = &date
	}

	sessions, err := s.sessions.ListSessions(r.Context(), actorFromContext(r.Context()), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []*model.Session{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (s *Server) handleSessionDuration(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id")
		return
	}

	hours, err := s.ledger.DurationHours(r.Context(), sessionID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":     sessionID,
		"duration_hours": hours,
	})
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id")
		return
	}

	var req transitionRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := s.ledger.Transition(r.Context(), sessionID, model.SessionStatus(req.Status), actorFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"session": result.Session,
		"balance": newBalanceResponse(result.Balance),
		"billed":  result.Billed,
	})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id")
		return
	}

	balance, err := s.ledger.CompleteSession(r.Context(), sessionID, actorFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"balance": newBalanceResponse(balance),
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "sessionId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_session_id")
		return
	}

	var req feedbackRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.ledger.AttachFeedback(r.Context(), sessionID, req.Feedback, actorFromContext(r.Context())); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
