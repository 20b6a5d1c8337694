package httpgin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/antrian-go/internal/events"
	redisrepo "github.com/kirinyoku/antrian-go/internal/repository/redis"
	"github.com/kirinyoku/antrian-go/internal/service"
	"github.com/kirinyoku/antrian-go/internal/service/query"
	"github.com/kirinyoku/antrian-go/internal/service/queue"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// HealthCheck reports whether one backing service answers.
type HealthCheck func(ctx context.Context) error

type Options struct {
	// AdminToken guards staff routes; empty leaves them open.
	AdminToken string
	// TrustedProxies lists proxies whose X-Forwarded-For is believed when
	// keying the take cooldown. Empty trusts none.
	TrustedProxies []string
	Health         map[string]HealthCheck
	Events         *events.Hub
	StreamPing     time.Duration
}

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	opts Options,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()

	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logger.Warn("invalid trusted proxies, trusting none", slog.Any("err", err))
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", handleHealth(opts.Health))

	q := r.Group("/queue")
	{
		// kiosk, display, patient
		q.POST("/take", handleTake(svcs, idem))
		q.POST("/cancel", handleCancel(svcs))
		q.GET("/status", handleStatus(svcs))
		q.GET("/check", handleCheck(svcs))
		q.GET("/stream", handleStream(opts.Events, opts.StreamPing))

		staff := q.Group("", AdminAuth(opts.AdminToken))
		staff.POST("/next", handleNext(svcs))
		staff.POST("/recall", handleRecall(svcs))
		staff.POST("/skip", handleSkip(svcs))
		staff.POST("/change-clinic", handleChangeClinic(svcs))
		staff.POST("/reset", handleReset(svcs))
		staff.GET("/all", handleAll(svcs))
		staff.GET("/export", handleExport(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Take a queue number (idempotent with Idempotency-Key)
// @Tags     queue
// @Param    req body  TakeRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} domain.Ticket
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "idempotency key in progress"
// @Failure  429 {object} ErrorResponse "cooldown running"
// @Router   /queue/take [post]
func handleTake(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TakeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, bindMessage(err))
			return
		}

		ctx := c.Request.Context()

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemTake(svcs.Query.Today(), idemKey)

			if payload, ok, _ := idem.GetResult(ctx, idemStorageKey); ok {
				replay(c, idemKey, payload)
				return
			}

			locked, err := idem.AcquireLock(ctx, idemStorageKey, 30*time.Second)
			if err != nil {
				// idempotency is best effort; issue the ticket without it
				_ = c.Error(err)
				idemStorageKey = ""
			} else if !locked {
				if payload, ok, _ := idem.GetResult(ctx, idemStorageKey); ok {
					replay(c, idemKey, payload)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		ticket, err := svcs.Queue.Take(ctx, req.Clinic, c.ClientIP())
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(ctx, idemStorageKey)
			}
			respondErr(c, err, "Failed to create queue")
			return
		}

		if idemStorageKey != "" {
			b, _ := json.Marshal(ticket)
			_ = idem.SaveResult(ctx, idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, ticket)
	}
}

// @Summary  Call the next waiting number
// @Tags     staff
// @Security BearerAuth
// @Param    req body  NextRequest false "payload"
// @Success  200 {object} SuccessResponse
// @Failure  401 {object} ErrorResponse
// @Router   /queue/next [post]
func handleNext(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NextRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, bindMessage(err))
			return
		}

		if _, err := svcs.Queue.CallNext(c.Request.Context(), req.Counter); err != nil {
			respondErr(c, err, "Failed to call next")
			return
		}

		c.JSON(http.StatusOK, SuccessResponse{Success: true})
	}
}

// @Summary  Call a ticket again
// @Tags     staff
// @Security BearerAuth
// @Param    req body  RecallRequest true "payload"
// @Success  200 {object} SuccessResponse
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /queue/recall [post]
func handleRecall(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecallRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, bindMessage(err))
			return
		}

		if _, err := svcs.Queue.Recall(c.Request.Context(), req.ID, req.Counter); err != nil {
			respondErr(c, err, "Failed to recall queue")
			return
		}

		c.JSON(http.StatusOK, SuccessResponse{Success: true})
	}
}

// @Summary  Skip a ticket
// @Tags     staff
// @Security BearerAuth
// @Param    req body  TicketIDRequest true "payload"
// @Success  200 {object} SuccessResponse
// @Failure  404 {object} ErrorResponse
// @Router   /queue/skip [post]
func handleSkip(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TicketIDRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, bindMessage(err))
			return
		}

		if _, err := svcs.Queue.Skip(c.Request.Context(), req.ID); err != nil {
			respondErr(c, err, "Failed to skip")
			return
		}

		c.JSON(http.StatusOK, SuccessResponse{Success: true})
	}
}

// @Summary  Cancel a waiting ticket
// @Tags     queue
// @Param    req body  TicketIDRequest true "payload"
// @Success  200 {object} SuccessResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "ticket is no longer waiting"
// @Router   /queue/cancel [post]
func handleCancel(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TicketIDRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, bindMessage(err))
			return
		}

		if _, err := svcs.Queue.Cancel(c.Request.Context(), req.ID); err != nil {
			respondErr(c, err, "Failed to cancel queue")
			return
		}

		c.JSON(http.StatusOK, SuccessResponse{Success: true})
	}
}

// @Summary  Move a ticket to another clinic
// @Tags     staff
// @Security BearerAuth
// @Param    req body  ChangeClinicRequest true "payload"
// @Success  200 {object} SuccessResponse
// @Failure  404 {object} ErrorResponse
// @Router   /queue/change-clinic [post]
func handleChangeClinic(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangeClinicRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, bindMessage(err))
			return
		}

		if _, err := svcs.Queue.ChangeClinic(c.Request.Context(), req.ID, req.Clinic); err != nil {
			respondErr(c, err, "Failed to change clinic")
			return
		}

		c.JSON(http.StatusOK, SuccessResponse{Success: true})
	}
}

// @Summary  Delete every ticket of today
// @Tags     staff
// @Security BearerAuth
// @Success  200 {object} ResetResponse
// @Router   /queue/reset [post]
func handleReset(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svcs.Queue.ResetDay(c.Request.Context())
		if err != nil {
			respondErr(c, err, "Failed to reset")
			return
		}

		c.JSON(http.StatusOK, ResetResponse{Success: true, Deleted: n})
	}
}

// @Summary  Current number and waiting list
// @Tags     queue
// @Param    clinic query string false "only list waiting tickets of this clinic"
// @Success  200 {object} query.Board
// @Router   /queue/status [get]
func handleStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		board, err := svcs.Query.Status(c.Request.Context(), c.Query("clinic"))
		if err != nil {
			respondErr(c, err, "Failed to fetch status")
			return
		}
		writeJSONWithCache(c, http.StatusOK, board, cacheRevalidate)
	}
}

// @Summary  Position of one ticket
// @Tags     queue
// @Param    id query int true "Ticket ID"
// @Success  200 {object} query.Position
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /queue/check [get]
func handleCheck(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.Query("id"))
		if raw == "" {
			badRequest(c, "ID required")
			return
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			badRequest(c, "invalid id")
			return
		}

		pos, err := svcs.Query.Check(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err, "Failed to check queue")
			return
		}
		writeJSONWithCache(c, http.StatusOK, pos, cacheRevalidate)
	}
}

// @Summary  All tickets of today with stats and hourly histogram
// @Tags     staff
// @Security BearerAuth
// @Param    clinic query string false "only list tickets of this clinic"
// @Success  200 {object} query.Overview
// @Router   /queue/all [get]
func handleAll(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ov, err := svcs.Query.Overview(c.Request.Context(), c.Query("clinic"))
		if err != nil {
			respondErr(c, err, "Failed to fetch queues")
			return
		}
		writeJSONWithCache(c, http.StatusOK, ov, cacheRevalidate)
	}
}

// @Summary  Liveness of Postgres and Redis
// @Tags     ops
// @Success  200 {object} HealthResponse
// @Failure  503 {object} HealthResponse
// @Router   /healthz [get]
func handleHealth(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		code := http.StatusOK

		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		c.JSON(code, resp)
	}
}

// --- Helpers ---

func replay(c *gin.Context, idemKey, payload string) {
	c.Header("Idempotency-Key", idemKey)
	c.Data(
		http.StatusCreated,
		"application/json; charset=utf-8",
		[]byte(payload),
	)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error, fallback string) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var rl *queue.RateLimitedError

	switch {
	case errors.As(err, &rl):
		c.Header("Retry-After", strconv.Itoa(ceilSeconds(rl.RetryAfter)))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: fmt.Sprintf("Harap tunggu %d menit sebelum mengambil nomor lagi", ceilMinutes(rl.Cooldown)),
		})
	case errors.Is(err, queue.ErrClinicRequired):
		badRequest(c, "clinic is required")
	case errors.Is(err, queue.ErrTicketIDRequired),
		errors.Is(err, query.ErrTicketIDRequired):
		badRequest(c, "ID required")
	case errors.Is(err, queue.ErrTicketNotFound),
		errors.Is(err, query.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Queue not found"})
	case errors.Is(err, queue.ErrNotCancellable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Queue is no longer waiting"})
	case errors.Is(err, queue.ErrNumberConflict),
		errors.Is(err, queue.ErrCalledConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "queue changed concurrently, retry"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}

func ceilSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

func ceilMinutes(d time.Duration) int {
	m := int(math.Ceil(d.Minutes()))
	if m < 1 {
		return 1
	}
	return m
}
