// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	groupsfeature "github.com/stackmentor/stackmentor/internal/app/features/groups"
	healthfeature "github.com/stackmentor/stackmentor/internal/app/features/health"
	mentorsfeature "github.com/stackmentor/stackmentor/internal/app/features/mentors"
	messagesfeature "github.com/stackmentor/stackmentor/internal/app/features/messages"
	registerfeature "github.com/stackmentor/stackmentor/internal/app/features/register"
	emailverifystore "github.com/stackmentor/stackmentor/internal/app/store/emailverify"
	groupstore "github.com/stackmentor/stackmentor/internal/app/store/groups"
	membershipstore "github.com/stackmentor/stackmentor/internal/app/store/memberships"
	messagestore "github.com/stackmentor/stackmentor/internal/app/store/messages"
	userstore "github.com/stackmentor/stackmentor/internal/app/store/users"
	"github.com/stackmentor/stackmentor/internal/app/system/mailer"
	"github.com/stackmentor/stackmentor/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It creates the stores, wires them into
// the feature handlers, and mounts the feature routers under /api.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	users := userstore.New(db)
	groups := groupstore.New(db)
	memberships := membershipstore.New(db)
	messages := messagestore.New(db)
	verifications := emailverifystore.New(db, appCfg.EmailVerifyExpiry)

	mail := mailer.New(mailer.Config{
		SMTPHost: appCfg.MailSMTPHost,
		SMTPPort: appCfg.MailSMTPPort,
		SMTPUser: appCfg.MailSMTPUser,
		SMTPPass: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	})

	runTxn := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return txn.WithTransaction(ctx, deps.MongoClient, fn)
	}

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Registration and email verification
	registerHandler := registerfeature.NewHandler(users, verifications, mail, appCfg.BaseURL, logger)
	r.Mount("/api", registerfeature.Routes(registerHandler))

	// Directory search
	mentorsHandler := mentorsfeature.NewHandler(users, logger)
	r.Mount("/api/users/search", mentorsfeature.Routes(mentorsHandler))

	// Groups and memberships
	groupsMgr := groupsfeature.NewManager(groups, users, memberships, runTxn, logger)
	groupsHandler := groupsfeature.NewHandler(groupsMgr, logger)
	r.Mount("/api/groups", groupsfeature.Routes(groupsHandler))

	// Conversations and messages
	messagesHandler := messagesfeature.NewHandler(messages, groupsMgr, logger)
	r.Mount("/api/conversations", messagesfeature.Routes(messagesHandler))

	return r, nil
}
