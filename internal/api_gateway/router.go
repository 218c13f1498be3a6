package api_gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vendor-ops-ledger/internal/api_gateway/handler"
	"github.com/vendor-ops-ledger/internal/api_gateway/middleware"
)

type handlers struct {
	finance       *handler.FinanceHandler
	projects      *handler.ProjectHandler
	team          *handler.TeamHandler
	notifications *handler.NotificationHandler

	// queued mounts the Kafka-backed intent routes
	queued bool
}

// setupRouter mounts the engine's operations under /api/v1
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	h handlers,
	ready func(ctx context.Context) error,
	metricsPath string,
	metricsHandler http.Handler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Actor())
	r.Use(middleware.Logger(logger))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/cards", h.finance.CreateCard)
		v1.GET("/cards", h.finance.ListCards)

		v1.POST("/pockets", h.finance.CreatePocket)
		v1.GET("/pockets", h.finance.ListPockets)
		v1.POST("/pockets/transfers", h.finance.Transfer)

		v1.POST("/transactions", h.finance.ApplyTransaction)
		v1.GET("/transactions", h.finance.ListTransactions)
		v1.POST("/transactions/:id/signature", h.finance.SignTransaction)

		promos := v1.Group("/promo-codes")
		{
			promos.POST("", h.finance.CreatePromoCode)
			promos.GET("", h.finance.ListPromoCodes)
			promos.PUT("/:id/active", h.finance.SetPromoActive)
			promos.POST("/quote", h.finance.QuotePromo)
			promos.POST("/redeem", h.finance.RedeemPromo)
		}

		v1.POST("/bookings", h.projects.SubmitBooking)
		v1.GET("/clients", h.projects.ListClients)

		projects := v1.Group("/projects")
		{
			projects.GET("", h.projects.ListProjects)
			projects.GET("/:id", h.projects.GetProject)
			projects.GET("/:id/payment-summary", h.projects.PaymentSummary)
			projects.POST("/:id/payments", h.projects.RecordClientPayment)
			projects.PUT("/:id/status", h.projects.AdvanceStatus)
			projects.PUT("/:id/sub-status", h.projects.SetActiveSubStatus)
			projects.POST("/:id/sub-status/confirmations", h.projects.ConfirmSubStatus)
			projects.POST("/:id/stages/confirmations", h.projects.ConfirmStage)
			projects.POST("/:id/revisions", h.projects.AddRevision)
			projects.PUT("/:id/revisions/:revisionId/completion", h.projects.CompleteRevision)
			projects.POST("/:id/contracts", h.projects.CreateContract)
			projects.GET("/:id/contracts", h.projects.ListContracts)
			projects.POST("/:id/invoice/signature", h.projects.SignInvoice)
		}
		v1.POST("/contracts/:id/signatures", h.projects.SignContract)

		v1.POST("/team-payments", h.team.AssignPayment)
		v1.POST("/team-payments/records", h.team.RecordPayment)
		v1.POST("/payment-records/:id/signature", h.team.SignPaymentRecord)
		v1.POST("/payouts", h.team.PayFreelancer)
		v1.POST("/rewards", h.team.GrantReward)

		team := v1.Group("/team/:memberId")
		{
			team.GET("/payments", h.team.ListPayments)
			team.GET("/payment-records", h.team.ListPaymentRecords)
			team.GET("/rewards", h.team.ListRewards)
			team.GET("/reward-balance", h.team.RewardBalance)
		}

		if h.queued {
			v1.POST("/bookings/queue", h.projects.QueueBooking)
			v1.POST("/payouts/queue", h.team.QueuePayout)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.GET("", h.notifications.List)
			notifications.GET("/unread-count", h.notifications.UnreadCount)
			notifications.PUT("/:id/read", h.notifications.MarkRead)
			notifications.POST("/read-all", h.notifications.MarkAllRead)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	// Ready fails until the store has loaded, so orchestrators hold traffic back
	r.GET("/ready", func(c *gin.Context) {
		if err := ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if metricsHandler != nil {
		r.GET(metricsPath, gin.WrapH(metricsHandler))
	}
}
