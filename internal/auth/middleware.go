package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/KromaEnergia/api-crm/internal/policy"
	"github.com/KromaEnergia/api-crm/internal/utils"
)

type ctxKey string

const ctxCaller ctxKey = "caller"

func WithCaller(ctx context.Context, c policy.Caller) context.Context {
	return context.WithValue(ctx, ctxCaller, c)
}

// CallerFrom devolve o chamador autenticado. Sem middleware, devolve o valor zero (nega tudo).
func CallerFrom(ctx context.Context) policy.Caller {
	c, _ := ctx.Value(ctxCaller).(policy.Caller)
	return c
}

// Authenticate valida o bearer token e guarda o policy.Caller no contexto.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			utils.WriteError(w, r, policy.ErrUnauthenticated)
			return
		}
		claims, err := ParseAndValidate(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			logger.FromContext(logger.Get("auth"), r.Context()).WithError(err).Debug("token rejeitado")
			utils.WriteError(w, r, policy.ErrUnauthenticated)
			return
		}
		ctx := WithCaller(r.Context(), policy.Caller{UserID: claims.UserID, Role: claims.Role})
		ctx = logger.ContextWithUserID(ctx, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireManager deixa passar apenas gerentes.
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := CallerFrom(r.Context())
		if !c.Authenticated() {
			utils.WriteError(w, r, policy.ErrUnauthenticated)
			return
		}
		if !policy.IsManager(c) {
			utils.WriteError(w, r, policy.Deny("Managers only."))
			return
		}
		next.ServeHTTP(w, r)
	})
}
