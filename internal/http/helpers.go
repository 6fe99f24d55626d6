package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"gagyebu/internal/core"
)

// storeTimeout bounds every handler call that reaches the store.
const storeTimeout = 7 * time.Second

const (
	msgInvalidDate        = "날짜가 선택되지 않았습니다."
	msgEmptyDescription   = "내용을 입력해주세요."
	msgInvalidAmount      = "유효한 금액을 입력해주세요. 금액은 0보다 커야 합니다."
	msgInvalidType        = "수입/지출 구분이 올바르지 않습니다."
	msgDescriptionTooLong = "내용은 200자 이하로 입력해주세요."
	msgInvalidID          = "삭제할 내역을 찾을 수 없습니다."
	msgBadRequest         = "요청 형식이 올바르지 않습니다."
	msgStoreFailure       = "저장소 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
)

// validationMessage maps core validation errors to what the editor shows.
// The second result is false for errors that are not validation failures.
func validationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, core.ErrInvalidDate):
		return msgInvalidDate, true
	case errors.Is(err, core.ErrEmptyDescription):
		return msgEmptyDescription, true
	case errors.Is(err, core.ErrInvalidAmount):
		return msgInvalidAmount, true
	case errors.Is(err, core.ErrInvalidType):
		return msgInvalidType, true
	case errors.Is(err, core.ErrDescriptionTooLong):
		return msgDescriptionTooLong, true
	default:
		return "", false
	}
}

// sanitizeInput drops control characters other than tab and newlines and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}
