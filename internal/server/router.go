package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pulsefit/coach-backend/internal/actor"
	"github.com/pulsefit/coach-backend/internal/facade"
	"github.com/pulsefit/coach-backend/internal/middleware"
	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
	"github.com/pulsefit/coach-backend/internal/realtime"
)

const rpcTimeout = 30 * time.Second
const maxRPCBody = 1 << 20

type RouterConfig struct {
	Log            *logger.Logger
	Registry       *actor.Registry
	Gateway        *realtime.Gateway
	AuthMiddleware *middleware.AuthMiddleware
	AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("coach-backend"))
	router.Use(middleware.AttachTraceContext())

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "active_actors": cfg.Registry.ActiveCount()})
	})

	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/rpc/:facade/:method", rpcHandler(cfg))
	protected.GET("/ws", func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		cfg.Gateway.HandleConnection(c.Writer, c.Request, userID)
	})

	return router
}

// rpcHandler routes one RPC into the caller's actor. The facade call runs
// inside the actor loop via Invoke, so RPCs observe the same single-writer
// ordering as realtime frames.
func rpcHandler(cfg RouterConfig) gin.HandlerFunc {
	log := cfg.Log.With("component", "rpc")
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		facadeName := c.Param("facade")
		method := c.Param("method")

		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRPCBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, facade.Fail(err))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), rpcTimeout)
		defer cancel()

		a, err := cfg.Registry.Actor(ctx, userID)
		if err != nil {
			traceID, requestID := middleware.TraceIDs(c)
			log.Error("actor activation failed",
				"user_id", userID, "trace_id", traceID, "request_id", requestID, "error", err)
			c.JSON(http.StatusServiceUnavailable, facade.Fail(err))
			return
		}

		var result facade.Result
		err = a.Invoke(ctx, func(deps *actor.Deps) {
			f, ferr := deps.Facade(facadeName)
			if ferr != nil {
				result = facade.Fail(ferr)
				return
			}
			result = f.Call(ctx, method, payload)
		})
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, facade.Fail(err))
			return
		}
		c.JSON(statusFor(result), result)
	}
}

func statusFor(res facade.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch apperr.Kind(res.Error.Kind) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
