package echoapi

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/classroom/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// pathID parses the positive integer path parameter name; anything else is a 404.
func pathID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// queryInt parses an optional integer query parameter; missing or malformed values yield 0.
func queryInt(ctx echo.Context, name string) int {
	n, _ := strconv.Atoi(ctx.QueryParam(name))
	return n
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	// ClassesRequest replaces the class selection of the requesting user.
	ClassesRequest struct {
		Courses []int `json:"courses"`
	}

	// GradeRequest is the JSON form of a grading request.
	// Form submissions use `submission_id` and `criterion_<id>` fields instead.
	GradeRequest struct {
		SubmissionID int         `json:"submission_id"`
		Scores       map[int]int `json:"scores"`
	}

	StudyPlanRequest struct {
		Topics string `json:"topics" form:"topics"`
	}

	StudyPlanResponse struct {
		Advice  *string `json:"advice"`
		Message string  `json:"message,omitempty"`
		Prefill string  `json:"prefill"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
