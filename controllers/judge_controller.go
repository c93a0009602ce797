package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/voidswing/ff-l/models"
	"github.com/voidswing/ff-l/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	storyMinChars = 3
	storyMaxChars = 5000
)

type JudgeController struct {
	identity *services.IdentityService
	requests *services.RequestLogService
	engine   *services.JudgmentEngine
	notifier *services.SlackNotifier
	log      *zap.Logger
}

func NewJudgeController(
	identity *services.IdentityService,
	requests *services.RequestLogService,
	engine *services.JudgmentEngine,
	notifier *services.SlackNotifier,
	log *zap.Logger,
) *JudgeController {
	return &JudgeController{
		identity: identity,
		requests: requests,
		engine:   engine,
		notifier: notifier,
		log:      log,
	}
}

// Judge handles POST /api/judge: validate, resolve identity, create the log
// row in processing, call the model, flip the row to its terminal state,
// respond. Notifications are fired at each lifecycle point and never awaited.
func (ct *JudgeController) Judge(c *gin.Context) {
	var input struct {
		Story    string   `json:"story"`
		Evidence []string `json:"evidence"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		validationError(c, "request body must be a JSON object with a story field")
		return
	}

	story := strings.TrimSpace(input.Story)
	if msg := validateStory(story); msg != "" {
		validationError(c, msg)
		return
	}

	userID, err := ct.identity.Resolve(c.GetHeader("X-USER-UDID"))
	if err != nil {
		ct.log.Error("user resolution failed", zap.Error(err))
		internalError(c)
		return
	}

	row, err := ct.requests.Create(story, userID, input.Evidence)
	if err != nil {
		ct.log.Error("request log creation failed", zap.Error(err))
		internalError(c)
		return
	}
	ct.notifier.Notify(services.EventReceived, row.RequestUUID,
		fmt.Sprintf("story %d chars", utf8.RuneCountInString(story)))

	// Deliberately not the request context: the model call runs to its own
	// deadline even if the client disconnects, so the row always reaches a
	// terminal state.
	result, err := ct.engine.Judge(context.Background(), story)
	if err != nil {
		reason := failureReason(err)
		if markErr := ct.requests.MarkFailed(row.ID, reason); markErr != nil {
			ct.log.Error("failed to mark request log failed",
				zap.Uint("id", row.ID), zap.Error(markErr))
		}
		ct.notifier.Notify(services.EventFailed, row.RequestUUID, reason)

		status, detail := failureResponse(err)
		c.JSON(status, gin.H{"detail": detail})
		return
	}

	if err := ct.requests.MarkCompleted(row.ID, *result); err != nil {
		ct.log.Error("failed to mark request log completed",
			zap.Uint("id", row.ID), zap.Error(err))
		internalError(c)
		return
	}
	ct.notifier.Notify(services.EventCompleted, row.RequestUUID,
		fmt.Sprintf("%d possible crimes", len(result.PossibleCrimes)))

	c.JSON(http.StatusOK, result)
}

// GetRequest handles GET /api/judge/requests/:uuid, the audit read of one
// request's lifecycle.
func (ct *JudgeController) GetRequest(c *gin.Context) {
	row, err := ct.requests.FindByUUID(c.Param("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "request not found"})
			return
		}
		ct.log.Error("request log lookup failed", zap.Error(err))
		internalError(c)
		return
	}

	var result interface{}
	if len(row.Result) > 0 {
		result = json.RawMessage(row.Result)
	}
	c.JSON(http.StatusOK, gin.H{
		"request_uuid":   row.RequestUUID,
		"status":         row.Status,
		"result":         result,
		"failure_reason": row.FailureReason,
		"created_at":     row.CreatedAt,
		"completed_at":   row.CompletedAt,
	})
}

func validateStory(story string) string {
	switch n := utf8.RuneCountInString(story); {
	case n == 0:
		return "story is required"
	case n < storyMinChars:
		return fmt.Sprintf("story must be at least %d characters", storyMinChars)
	case n > storyMaxChars:
		return fmt.Sprintf("story must be at most %d characters", storyMaxChars)
	}
	return ""
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, services.ErrUpstreamTimeout):
		return models.ReasonUpstreamTimeout
	case errors.Is(err, services.ErrUpstreamMalformed):
		return models.ReasonUpstreamMalformed
	default:
		return models.ReasonUpstreamUnavailable
	}
}

// failureResponse maps an engine failure to a presentable message. Provider
// detail stays in the server log, never on the wire.
func failureResponse(err error) (int, string) {
	if errors.Is(err, services.ErrUpstreamTimeout) {
		return http.StatusGatewayTimeout, "judgment timed out, please try again"
	}
	return http.StatusBadGateway, "judgment failed, please try again later"
}

func validationError(c *gin.Context, msg string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": msg}}})
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error, please try again later"})
}
