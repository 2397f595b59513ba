package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/freebook/backend/internal/domain"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type authenticateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type postRequest struct {
	Caption  string   `json:"caption" validate:"max=2200"`
	Tags     []string `json:"tags" validate:"max=30,dive,max=50"`
	ImgURL   string   `json:"imgUrl" validate:"omitempty,url"`
	ImgID    string   `json:"imgId" validate:"max=200"`
	Location string   `json:"location" validate:"max=200"`
}

func (r postRequest) content() domain.PostContent {
	return domain.PostContent{
		Caption:  r.Caption,
		Tags:     r.Tags,
		ImgURL:   r.ImgURL,
		ImgID:    r.ImgID,
		Location: r.Location,
	}
}

type userUpdateRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Email  string `json:"email" validate:"required,email"`
	Bio    string `json:"bio" validate:"max=500"`
	ImgURL string `json:"imgUrl" validate:"omitempty,url"`
	ImgID  string `json:"imgId" validate:"max=200"`
}

func (r userUpdateRequest) update() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Name:   r.Name,
		Email:  r.Email,
		Bio:    r.Bio,
		ImgURL: r.ImgURL,
		ImgID:  r.ImgID,
	}
}

// decode reads a JSON body into dst and validates it. Failures wrap
// domain.ErrInvalidInput.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", domain.ErrInvalidInput)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("field %s failed %s validation: %w", fe.Field(), fe.Tag(), domain.ErrInvalidInput)
		}
		return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	return nil
}
