package mapping

import (
	"errors"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/eslsoft/studyplan/internal/entity"
)

// ToStatus converts a usecase error into a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codeOf(err), err.Error())
}

func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, entity.ErrInvalidHours),
		errors.Is(err, entity.ErrInvalidPriority),
		errors.Is(err, entity.ErrInvalidLevel),
		errors.Is(err, entity.ErrInvalidRecommendedDays),
		errors.Is(err, entity.ErrInvalidWeekday),
		errors.Is(err, entity.ErrInvalidExamDate),
		errors.Is(err, entity.ErrInvalidStudyItemName),
		errors.Is(err, entity.ErrInvalidQuery),
		errors.Is(err, entity.ErrInvalidBackup):
		return codes.InvalidArgument
	case errors.Is(err, entity.ErrScheduledDateOutOfRange):
		return codes.OutOfRange
	case errors.Is(err, entity.ErrCategoryNotFound), errors.Is(err, entity.ErrStudyItemNotFound):
		return codes.NotFound
	case errors.Is(err, entity.ErrDuplicateStudyItem):
		return codes.AlreadyExists
	case errors.Is(err, entity.ErrCurriculumNotInitialized):
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// HTTPStatus maps an error onto the HTTP status the gateway would use for
// the equivalent gRPC code.
func HTTPStatus(err error) int {
	return runtime.HTTPStatusFromCode(status.Code(ToStatus(err)))
}
