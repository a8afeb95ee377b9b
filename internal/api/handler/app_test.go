package handler

import (
	"testing"

	"github.com/qs3c/mini_tweeter_server/internal/pkg/metrics"
	"github.com/qs3c/mini_tweeter_server/internal/repository"
	"github.com/qs3c/mini_tweeter_server/internal/service"
	"github.com/qs3c/mini_tweeter_server/internal/testutil"
)

type testHandlers struct {
	testContext

	User        *UserHandler
	Quota       *QuotaHandler
	Tweet       *TweetHandler
	Comment     *CommentHandler
	Interaction *InteractionHandler
	Payment     *PaymentHandler
	Health      *HealthHandler
}

func setupHandlers(t *testing.T) (*testHandlers, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testConfig()
	m := metrics.New()

	userRepo := repository.NewUserRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	quotaRepo := repository.NewQuotaRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	quotaService := service.NewQuotaService(quotaRepo, cfg)
	commentService := service.NewCommentService(commentRepo, tweetRepo, interactionRepo)

	h := &testHandlers{
		testContext: testContext{DB: db},
		User:        NewUserHandler(service.NewUserService(userRepo, tweetRepo, commentRepo, interactionRepo, quotaRepo, paymentRepo)),
		Quota:       NewQuotaHandler(quotaService),
		Tweet:       NewTweetHandler(service.NewTweetService(tweetRepo, commentRepo, interactionRepo, quotaService, m), commentService),
		Comment:     NewCommentHandler(commentService),
		Interaction: NewInteractionHandler(service.NewInteractionService(interactionRepo, m)),
		Payment:     NewPaymentHandler(service.NewPaymentService(paymentRepo, quotaService, cfg)),
		Health:      NewHealthHandler(db),
	}

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return h, cleanup
}
