// Package moneylock собирает HTTP-приложение money-lock и его маршруты.
package moneylock

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	agreementcreate "github.com/monyorojoseph/money-lock/internal/http/handlers/agreement/create"
	agreementlist "github.com/monyorojoseph/money-lock/internal/http/handlers/agreement/list"
	agreementread "github.com/monyorojoseph/money-lock/internal/http/handlers/agreement/read"
	"github.com/monyorojoseph/money-lock/internal/http/handlers/agreement/updatestatus"
	"github.com/monyorojoseph/money-lock/internal/http/handlers/auth/login"
	"github.com/monyorojoseph/money-lock/internal/http/handlers/auth/register"
	disputecreate "github.com/monyorojoseph/money-lock/internal/http/handlers/dispute/create"
	disputelist "github.com/monyorojoseph/money-lock/internal/http/handlers/dispute/list"
	"github.com/monyorojoseph/money-lock/internal/http/handlers/dispute/resolve"
	"github.com/monyorojoseph/money-lock/internal/http/handlers/health"
	"github.com/monyorojoseph/money-lock/internal/http/handlers/user/sendverification"
	"github.com/monyorojoseph/money-lock/internal/http/handlers/user/verifyemail"
	"github.com/monyorojoseph/money-lock/internal/http/middlewarectx"
	"github.com/monyorojoseph/money-lock/internal/lib/jwt"
	agreementservice "github.com/monyorojoseph/money-lock/internal/services/agreement"
	disputeservice "github.com/monyorojoseph/money-lock/internal/services/dispute"
	userservice "github.com/monyorojoseph/money-lock/internal/services/user"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker,
	userService *userservice.Service,
	agreementService *agreementservice.Service,
	disputeService *disputeservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, userService).ServeHTTP)
		r.Post("/login", login.New(logger, userService).ServeHTTP)
		r.Post("/verification/verify_email/{userUID}/{token}", verifyemail.New(logger, userService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/users/verification", sendverification.New(logger, userService).ServeHTTP)
			r.Post("/agreements", agreementcreate.New(logger, agreementService).ServeHTTP)
			r.Get("/agreements/list", agreementlist.New(logger, agreementService).ServeHTTP)
			r.Get("/agreements/{uid}", agreementread.New(logger, agreementService).ServeHTTP)
			r.Patch("/agreements/{uid}/status", updatestatus.New(logger, agreementService).ServeHTTP)
			r.Get("/agreements/{uid}/disputes", disputelist.New(logger, disputeService).ServeHTTP)
			r.Post("/disputes", disputecreate.New(logger, disputeService).ServeHTTP)
			r.Patch("/disputes/{uid}/resolve", resolve.New(logger, disputeService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
