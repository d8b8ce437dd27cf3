package echoapi

import (
	"net/http"
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/announcement"
	"github.com/trezcool/classroom/core/assignment"
	"github.com/trezcool/classroom/core/course"
	"github.com/trezcool/classroom/core/selection"
	"github.com/trezcool/classroom/core/submission"
	"github.com/trezcool/classroom/core/user"
)

var (
	errUnauthorized        = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errInvalidCredentials  = errors.New("invalid credentials")
	errRefreshExpired      = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpNotFound        = echo.NewHTTPError(http.StatusNotFound, "not found")
	errInvalidSubmissionID = echo.NewHTTPError(http.StatusBadRequest, "invalid submission_id")

	// sentinel errors of the core packages and their HTTP status
	errorCodes = map[error]int{
		core.ErrPermissionDenied:        http.StatusForbidden,
		user.ErrNotFound:                http.StatusNotFound,
		course.ErrNotFound:              http.StatusNotFound,
		assignment.ErrNotFound:          http.StatusNotFound,
		assignment.ErrCriterionNotFound: http.StatusNotFound,
		submission.ErrNotFound:          http.StatusNotFound,
		announcement.ErrNotFound:        http.StatusNotFound,
		selection.ErrNotFound:           http.StatusNotFound,
	}
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case submission.InvalidScoreError:
			code = http.StatusBadRequest
			message = echo.Map{"error": origErr.Error(), "criterion_id": origErr.CriterionID}
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			// unhashable causes (slice or map errors) cannot be map keys
			if c, ok := sentinelCode(cause); ok {
				code = c
				message = cause.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.UserID()
				usr.Username = claims.Username
				usr.Email = claims.Email
				usr.Role = claims.Role
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			if ctx.Echo().Debug {
				message = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func sentinelCode(cause error) (int, bool) {
	if !reflect.TypeOf(cause).Comparable() {
		return 0, false
	}
	code, ok := errorCodes[cause]
	return code, ok
}
