package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/legalnest/backend/internal/metrics"
	"github.com/legalnest/backend/internal/model"
	"github.com/legalnest/backend/internal/service/submission"
	"github.com/legalnest/backend/internal/validation"
)

type contactReq struct {
	Name    string `json:"name"    form:"name"    validate:"required,min=2,max=100"`
	Email   string `json:"email"   form:"email"   validate:"required,email"`
	Phone   string `json:"phone"   form:"phone"   validate:"omitempty,phone"`
	Message string `json:"message" form:"message" validate:"required,min=10,max=1000"`
}

func (r *contactReq) Trim() { validation.TrimAll(&r.Name, &r.Email, &r.Phone, &r.Message) }

func (r *contactReq) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required":    "Name is required",
		"name":             "Name must be between 2 and 100 characters",
		"email.required":   "Email is required",
		"email":            "Please provide a valid email",
		"phone":            "Please provide a valid phone number",
		"message.required": "Message is required",
		"message":          "Message must be between 10 and 1000 characters",
	}
}

type enquiryReq struct {
	Name    string `json:"name"    form:"name"    validate:"required,min=2,max=100"`
	Email   string `json:"email"   form:"email"   validate:"required,email"`
	Phone   string `json:"phone"   form:"phone"   validate:"required,phone"`
	Service string `json:"service" form:"service" validate:"max=200"`
	City    string `json:"city"    form:"city"    validate:"max=100"`
	Details string `json:"details" form:"details" validate:"max=1000"`
	Message string `json:"message" form:"message" validate:"max=1000"`
}

func (r *enquiryReq) Trim() {
	validation.TrimAll(&r.Name, &r.Email, &r.Phone, &r.Service, &r.City, &r.Details, &r.Message)
}

func (r *enquiryReq) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required":  "Name is required",
		"name":           "Name must be between 2 and 100 characters",
		"email.required": "Email is required",
		"email":          "Please provide a valid email",
		"phone.required": "Phone number is required",
		"phone":          "Please provide a valid phone number",
		"service":        "Service must be less than 200 characters",
		"city":           "City must be less than 100 characters",
		"details":        "Details must be less than 1000 characters",
		"message":        "Message must be less than 1000 characters",
	}
}

// bindAndValidate writes the 400 response itself and reports whether the
// handler should continue.
func bindAndValidate(c echo.Context, kind model.Kind, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		metrics.SubmissionsTotal.WithLabelValues(kind.String(), "invalid").Inc()
		return false, c.JSON(http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		var verrs validation.Errors
		if !errors.As(err, &verrs) {
			return false, err
		}
		metrics.SubmissionsTotal.WithLabelValues(kind.String(), "invalid").Inc()
		return false, c.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Validation failed",
			"errors":  verrs,
		})
	}
	return true, nil
}

func submitContactHandler(svc *submission.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req contactReq
		if ok, err := bindAndValidate(c, model.KindContact, &req); !ok {
			return err
		}

		stored, err := svc.SubmitContact(c.Request().Context(), model.Submission{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Message: req.Message,
		})
		if err != nil {
			return err
		}

		return c.JSON(http.StatusCreated, map[string]any{
			"success": true,
			"message": "Thank you for contacting us. We will get back to you soon.",
			"id":      stored.ID,
			"data": map[string]any{
				"id":    stored.ID,
				"name":  stored.Name,
				"email": stored.Email,
			},
		})
	}
}

func submitEnquiryHandler(svc *submission.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req enquiryReq
		if ok, err := bindAndValidate(c, model.KindEnquiry, &req); !ok {
			return err
		}

		stored, err := svc.SubmitEnquiry(c.Request().Context(), model.Submission{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Service: req.Service,
			City:    req.City,
			Details: req.Details,
			Message: req.Message,
		})
		if err != nil {
			return err
		}

		data := map[string]any{
			"id":    stored.ID,
			"name":  stored.Name,
			"email": stored.Email,
		}
		if stored.Service != "" {
			data["service"] = stored.Service
		}
		return c.JSON(http.StatusCreated, map[string]any{
			"success": true,
			"message": "Thank you for your enquiry. Our team will contact you shortly.",
			"id":      stored.ID,
			"data":    data,
		})
	}
}

type submissionLister interface {
	List(ctx context.Context, kind model.Kind) ([]model.Submission, error)
}

func listSubmissionsHandler(svc submissionLister, kind model.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := svc.List(c.Request().Context(), kind)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"count":   len(items),
			"data":    items,
		})
	}
}
