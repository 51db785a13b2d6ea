package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/prontuario/internal/common"
	"github.com/dmitrijs2005/prontuario/internal/server/models"
	"github.com/dmitrijs2005/prontuario/internal/server/observability"
	"github.com/dmitrijs2005/prontuario/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const attachmentField = "anexo_receita"

type registerRequest struct {
	Name      string `json:"nome" binding:"required,notblank"`
	CPF       string `json:"cpf" binding:"required,notblank"`
	Password  string `json:"senha" binding:"required"`
	BirthDate string `json:"dataNascimento" binding:"required,datetime=2006-01-02"`
	Gender    string `json:"genero" binding:"required,notblank"`
	Email     string `json:"email" binding:"required,notblank"`
	Phone     string `json:"telefone" binding:"required,notblank"`
	Address   string `json:"endereco" binding:"required,notblank"`
}

type loginRequest struct {
	CPF      string `json:"cpf"`
	Password string `json:"senha"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type prescriptionForm struct {
	MedicationName string `form:"nome_medicamento" binding:"required,notblank"`
	ExpiresOn      string `form:"validade" binding:"required,datetime=2006-01-02"`
	UserID         string `form:"id_usuario" binding:"required,number"`
}

type historyRequest struct {
	Condition *string     `json:"condicao"`
	Allergy   *string     `json:"alergia"`
	UserID    json.Number `json:"id_usuario"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) register(c *gin.Context) {
	ctx := c.Request.Context()

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Info(ctx, "registration rejected", "error", err)
		observability.RegistrationsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
		c.String(http.StatusBadRequest, msgMissingFields)
		return
	}

	birth, err := models.ParseDate(req.BirthDate)
	if err != nil {
		observability.RegistrationsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
		c.String(http.StatusBadRequest, msgInvalidRequest)
		return
	}

	u, err := s.deps.Users.Register(ctx, services.RegisterInput{
		Name:      req.Name,
		CPF:       req.CPF,
		Password:  req.Password,
		BirthDate: birth,
		Gender:    req.Gender,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			observability.RegistrationsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
			c.String(http.StatusConflict, msgCPFTaken)
		case errors.Is(err, common.ErrorValidation):
			observability.RegistrationsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
			c.String(http.StatusBadRequest, msgInvalidRequest)
		default:
			s.logger.Error(ctx, "registration failed", "error", err)
			observability.RegistrationsTotal.WithLabelValues(observability.OutcomeError).Inc()
			c.String(http.StatusInternalServerError, msgRegisterFailed)
		}
		return
	}

	s.logger.Info(ctx, "Registered", "id_usuario", u.ID)
	observability.RegistrationsTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
	c.Status(http.StatusCreated)
}

func (s *Server) login(c *gin.Context) {
	ctx := c.Request.Context()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		observability.LoginsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
		c.JSON(http.StatusBadRequest, loginResponse{Message: msgBadCredentials})
		return
	}

	token, err := s.deps.Users.Login(ctx, req.CPF, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			observability.LoginsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
			c.JSON(http.StatusBadRequest, loginResponse{Message: msgBadCredentials})
			return
		}
		s.logger.Error(ctx, "login failed", "error", err)
		observability.LoginsTotal.WithLabelValues(observability.OutcomeError).Inc()
		c.JSON(http.StatusInternalServerError, loginResponse{Message: msgServerError})
		return
	}

	observability.LoginsTotal.WithLabelValues(observability.OutcomeSuccess).Inc()
	c.JSON(http.StatusOK, loginResponse{Success: true, Message: msgLoginOK, Token: token})
}

func (s *Server) createPrescription(c *gin.Context) {
	ctx := c.Request.Context()
	claims := callerClaims(c)

	if c.Request.ContentLength > s.maxUploadSize {
		c.String(http.StatusRequestEntityTooLarge, msgFileTooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize)
	if err := c.Request.ParseMultipartForm(s.maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, msgFileTooLarge)
			return
		}
		s.logger.Error(ctx, "parse upload form", "error", err)
		c.String(http.StatusInternalServerError, msgFormParseFailed)
		return
	}

	var form prescriptionForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		observability.PrescriptionUploadsTotal.WithLabelValues(observability.OutcomeRejected, "unknown").Inc()
		c.String(http.StatusBadRequest, msgMissingFields)
		return
	}

	userID, err := strconv.ParseInt(form.UserID, 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, msgMissingFields)
		return
	}
	expires, err := models.ParseDate(form.ExpiresOn)
	if err != nil {
		c.String(http.StatusBadRequest, msgMissingFields)
		return
	}

	in := services.PrescriptionInput{
		UserID:         userID,
		MedicationName: form.MedicationName,
		ExpiresOn:      expires,
	}

	if c.Request.MultipartForm != nil {
		fh, err := c.FormFile(attachmentField)
		switch {
		case err == nil:
			f, err := fh.Open()
			if err != nil {
				s.logger.Error(ctx, "open uploaded file", "error", err)
				c.String(http.StatusInternalServerError, msgFormParseFailed)
				return
			}
			defer f.Close()
			in.File = &services.Attachment{Name: fh.Filename, Body: f}
		case errors.Is(err, http.ErrMissingFile):
		default:
			s.logger.Error(ctx, "read uploaded file", "error", err)
			c.String(http.StatusInternalServerError, msgFormParseFailed)
			return
		}
	}
	attached := strconv.FormatBool(in.File != nil)

	p, err := s.deps.Prescriptions.Upload(ctx, claims.UserID, in)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			observability.PrescriptionUploadsTotal.WithLabelValues(observability.OutcomeRejected, attached).Inc()
			c.String(http.StatusBadRequest, msgMissingFields)
		case errors.Is(err, common.ErrorForbidden):
			observability.PrescriptionUploadsTotal.WithLabelValues(observability.OutcomeRejected, attached).Inc()
			c.String(http.StatusForbidden, msgForbiddenOwner)
		default:
			s.logger.Error(ctx, "save prescription", "error", err)
			observability.PrescriptionUploadsTotal.WithLabelValues(observability.OutcomeError, attached).Inc()
			c.String(http.StatusInternalServerError, msgPrescriptionFail)
		}
		return
	}

	s.logger.Info(ctx, "prescription saved", "id_receita", p.ID, "anexo_receita", p.Attachment)
	observability.PrescriptionUploadsTotal.WithLabelValues(observability.OutcomeSuccess, attached).Inc()
	c.JSON(http.StatusOK, messageResponse{Message: msgPrescriptionOK})
}

func (s *Server) listPrescriptions(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := s.deps.Prescriptions.List(ctx, callerClaims(c).UserID)
	if err != nil {
		s.logger.Error(ctx, "list prescriptions", "error", err)
		c.String(http.StatusInternalServerError, msgPrescriptionList)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) createHistory(c *gin.Context) {
	ctx := c.Request.Context()

	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, msgInvalidRequest)
		return
	}

	var userID int64
	if req.UserID != "" {
		id, err := req.UserID.Int64()
		if err != nil {
			c.String(http.StatusBadRequest, msgInvalidRequest)
			return
		}
		userID = id
	}

	_, err := s.deps.History.Submit(ctx, callerClaims(c).UserID, services.HistoryInput{
		UserID:    userID,
		Condition: req.Condition,
		Allergy:   req.Allergy,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrHistoryContentRequired):
			c.String(http.StatusBadRequest, msgHistoryRequired)
		case errors.Is(err, common.ErrorValidation):
			c.String(http.StatusBadRequest, msgMissingFields)
		case errors.Is(err, common.ErrorForbidden):
			c.String(http.StatusForbidden, msgForbiddenOwner)
		default:
			s.logger.Error(ctx, "save history", "error", err)
			c.String(http.StatusInternalServerError, msgHistoryFail)
		}
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: msgHistoryOK})
}

func (s *Server) listHistory(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := s.deps.History.List(ctx, callerClaims(c).UserID)
	if err != nil {
		s.logger.Error(ctx, "list history", "error", err)
		c.String(http.StatusInternalServerError, msgHistoryList)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) health(c *gin.Context) {
	if err := s.deps.DB.PingContext(c.Request.Context()); err != nil {
		s.logger.Warn(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
