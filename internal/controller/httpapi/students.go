package httpapi

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
	"github.com/Freeeeeet/tutoring_ledger/internal/service"
)

type registerStudentRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type createPaymentRequest struct {
	StudentID      int64  `json:"student_id" validate:"required,gt=0"`
	Amount         int64  `json:"amount" validate:"gte=0"`
	HoursPurchased int    `json:"hours_purchased" validate:"required,gt=0"`
	PaymentType    string `json:"payment_type" validate:"required,oneof=hourly package subscription"`
	ExpiryDate     string `json:"expiry_date" validate:"omitempty"`
}

func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req registerStudentRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	student, err := s.students.RegisterStudent(r.Context(), req.UserID, actorFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, student)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathID(r, "studentId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_student_id")
		return
	}

	balance, err := s.ledger.BalanceFor(r.Context(), studentID, actorFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newBalanceResponse(balance))
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathID(r, "studentId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_student_id")
		return
	}

	payments, err := s.payments.ListPayments(r.Context(), studentID, actorFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if payments == nil {
		payments = []*model.Payment{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"payments": payments})
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	in := service.CreatePaymentInput{
		StudentID:      req.StudentID,
		Amount:         req.Amount,
		HoursPurchased: req.HoursPurchased,
		PaymentType:    model.PaymentType(req.PaymentType),
	}
	if req.ExpiryDate != "" {
		expiry, err := time.Parse(dateLayout, req.ExpiryDate)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid_request", "expiry_date must be YYYY-MM-DD")
			return
		}
		in.ExpiryDate = &expiry
	}

	payment, err := s.payments.CreatePayment(r.Context(), in, actorFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, payment)
}

func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, "paymentId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payment_id")
		return
	}

	payment, balance, err := s.payments.ConfirmPayment(r.Context(), paymentID, actorFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"payment": payment,
		"balance": newBalanceResponse(balance),
	})
}

func (s *Server) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, "paymentId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payment_id")
		return
	}

	if err := s.payments.CancelPayment(r.Context(), paymentID, actorFromContext(r.Context())); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
