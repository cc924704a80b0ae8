package handler

import (
	"net/http"

	"github.com/hirehub-dev/hirehub/backend/internal/auth"
	"github.com/hirehub-dev/hirehub/backend/internal/domain"
)

type ContextKey string

var (
	RequestInfoCtx ContextKey = "requestInfo"
	ClaimsCtx      ContextKey = "claims"
	MyInfoCtx      ContextKey = "myInfo"
	TargetUserCtx  ContextKey = "targetUser"
	JobCtx         ContextKey = "job"
	ApplicationCtx ContextKey = "application"
)

// requestInfo is shared by pointer so that inner middlewares can report the
// authenticated user to the request logger.
type requestInfo struct {
	ID     string
	UserID string
}

func myInfoFrom(r *http.Request) *domain.User {
	return r.Context().Value(MyInfoCtx).(*domain.User)
}

func claimsFrom(r *http.Request) *auth.Claims {
	return r.Context().Value(ClaimsCtx).(*auth.Claims)
}

func jobFrom(r *http.Request) *domain.Job {
	return r.Context().Value(JobCtx).(*domain.Job)
}

func requestInfoFrom(r *http.Request) *requestInfo {
	info, _ := r.Context().Value(RequestInfoCtx).(*requestInfo)
	return info
}
