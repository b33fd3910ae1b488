package mapping

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/eslsoft/studyplan/internal/entity"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
		http int
	}{
		{entity.ErrInvalidHours, codes.InvalidArgument, http.StatusBadRequest},
		{fmt.Errorf("item %q: %w", "x", entity.ErrInvalidLevel), codes.InvalidArgument, http.StatusBadRequest},
		{fmt.Errorf("%w: bad", entity.ErrInvalidQuery), codes.InvalidArgument, http.StatusBadRequest},
		{fmt.Errorf("%w: version 9", entity.ErrInvalidBackup), codes.InvalidArgument, http.StatusBadRequest},
		{entity.ErrScheduledDateOutOfRange, codes.OutOfRange, http.StatusBadRequest},
		{entity.ErrStudyItemNotFound, codes.NotFound, http.StatusNotFound},
		{fmt.Errorf("category 9: %w", entity.ErrCategoryNotFound), codes.NotFound, http.StatusNotFound},
		{entity.ErrDuplicateStudyItem, codes.AlreadyExists, http.StatusConflict},
		{entity.ErrCurriculumNotInitialized, codes.FailedPrecondition, http.StatusBadRequest},
		{errors.New("disk on fire"), codes.Internal, http.StatusInternalServerError},
		{status.Error(codes.Unavailable, "down"), codes.Unavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		got := ToStatus(tc.err)
		if status.Code(got) != tc.code {
			t.Fatalf("%v: expected code %v, got %v", tc.err, tc.code, status.Code(got))
		}
		if HTTPStatus(tc.err) != tc.http {
			t.Fatalf("%v: expected http %d, got %d", tc.err, tc.http, HTTPStatus(tc.err))
		}
	}
	if ToStatus(nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
}
