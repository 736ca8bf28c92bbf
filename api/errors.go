package api

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"issue-tracker/accounts"
	"issue-tracker/auth"
	"issue-tracker/orm"
	"issue-tracker/tracker"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// respondError maps domain errors onto the HTTP error taxonomy. Validation
// failures are field-keyed; everything unexpected is a 500 and therefore a
// bug, not a modeled outcome.
func respondError(c *gin.Context, err error) {
	var accountsValidationErr *accounts.ValidationError
	if errors.As(err, &accountsValidationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			accountsValidationErr.Field: accountsValidationErr.Message,
		})

		return
	}

	var trackerValidationErr *tracker.ValidationError
	if errors.As(err, &trackerValidationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			trackerValidationErr.Field: trackerValidationErr.Message,
		})

		return
	}

	var duplicateErr *tracker.DuplicateMembershipError
	if errors.As(err, &duplicateErr) {
		c.JSON(http.StatusBadRequest, gin.H{"user_id": duplicateErr.Error()})

		return
	}

	var lastAuthorErr *tracker.LastAuthorProtectedError
	if errors.As(err, &lastAuthorErr) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": lastAuthorErr.Error()})

		return
	}

	var forbiddenErr *tracker.ForbiddenError
	if errors.As(err, &forbiddenErr) {
		c.JSON(http.StatusForbidden, gin.H{"detail": forbiddenErr.Error()})

		return
	}

	var notFoundErr *tracker.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})

		return
	}

	var ormNotFoundErr *orm.NotFoundError
	if errors.As(err, &ormNotFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})

		return
	}

	var badInputErr *orm.BadInputError
	if errors.As(err, &badInputErr) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": badInputErr.Error()})

		return
	}

	switch {
	case errors.Is(err, accounts.ErrBadCredentials), errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials."})
	case errors.Is(err, accounts.ErrNotProfileOwner):
		c.JSON(http.StatusForbidden, gin.H{"detail": err.Error()})
	default:
		log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("Unhandled error in request")
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": "Internal server error.",
		})
	}
}

// respondBindingError turns gin binding failures into field-keyed 400
// payloads mirroring the domain validation errors.
func respondBindingError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := gin.H{}
		for _, fieldErr := range validationErrs {
			fields[snakeCase(fieldErr.Field())] = bindingMessage(fieldErr)
		}
		c.JSON(http.StatusBadRequest, fields)

		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"detail": "Malformed request body."})
}

func bindingMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	default:
		return "This field is invalid."
	}
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))

			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
