package push

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lalternative/push-relay/domain"
)

const (
	msgMethodNotAllowed = "Method Not Allowed"
	msgInvalidBody      = "Invalid request body"
	msgTokenNotFound    = "User FCM token not found"
	msgSendFailed       = "Failed to send notification"
	msgScheduleFailed   = "Failed to schedule notification"
)

type notificationRequest struct {
	UserId       string            `json:"userId"`
	Topic        string            `json:"topic"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	Data         map[string]string `json:"data"`
	DelaySeconds seconds           `json:"delaySeconds"`
}

// seconds accepts a JSON number or a numeric string, an empty string is zero.
type seconds float64

func (s *seconds) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || data[0] != '"' {
		return json.Unmarshal(data, (*float64)(s))
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str = strings.TrimSpace(str); str == "" {
		*s = 0
		return nil
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return fmt.Errorf("delaySeconds: %w", err)
	}
	*s = seconds(v)
	return nil
}

func (r notificationRequest) notification() Notification {
	return Notification{
		Title: r.Title,
		Body:  r.Body,
		Data:  r.Data,
	}
}

// ValidationError is answered with 400 and its message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == domain.ErrValidation
}

type handler struct {
	p       *push
	metrics *httpMetrics
}

func newHandler(p *push, m *httpMetrics) *handler {
	return &handler{p: p, metrics: m}
}

func (h *handler) routes(allowedOrigins []string, metricsHandler http.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), h.requestLog(), cors(allowedOrigins))
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": msgMethodNotAllowed})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	r.POST("/sendNotification", h.sendNotification)
	r.POST("/sendNotificationToTopic", h.sendNotificationToTopic)
	r.POST("/scheduleNotification", h.scheduleNotification)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsHandler))
	return r
}

func (h *handler) sendNotification(c *gin.Context) {
	req, ok := bind(c)
	if !ok {
		return
	}
	if req.UserId == "" || req.Title == "" || req.Body == "" {
		h.fail(c, &ValidationError{"Missing required fields: userId, title, body"}, msgSendFailed)
		return
	}
	if !domain.ValidUserId(req.UserId) {
		h.fail(c, &ValidationError{"Invalid userId"}, msgSendFailed)
		return
	}
	deliveryId, err := h.p.SendToUser(c.Request.Context(), req.UserId, req.notification())
	if err != nil {
		h.fail(c, err, msgSendFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messageId": deliveryId})
}

func (h *handler) sendNotificationToTopic(c *gin.Context) {
	req, ok := bind(c)
	if !ok {
		return
	}
	if req.Topic == "" || req.Title == "" || req.Body == "" {
		h.fail(c, &ValidationError{"Missing required fields: topic, title, body"}, msgSendFailed)
		return
	}
	topic := domain.NewTopic(req.Topic)
	if !topic.Valid() {
		h.fail(c, &ValidationError{"Invalid topic"}, msgSendFailed)
		return
	}
	deliveryId, err := h.p.SendToTopic(c.Request.Context(), topic, req.notification())
	if err != nil {
		h.fail(c, err, msgSendFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messageId": deliveryId})
}

func (h *handler) scheduleNotification(c *gin.Context) {
	req, ok := bind(c)
	if !ok {
		return
	}
	if req.UserId == "" || req.Title == "" || req.Body == "" || req.DelaySeconds == 0 {
		h.fail(c, &ValidationError{"Missing required fields: userId, title, body, delaySeconds"}, msgScheduleFailed)
		return
	}
	if !domain.ValidUserId(req.UserId) {
		h.fail(c, &ValidationError{"Invalid userId"}, msgScheduleFailed)
		return
	}
	delay, ok := h.delay(float64(req.DelaySeconds))
	if !ok {
		h.fail(c, &ValidationError{"Invalid delaySeconds"}, msgScheduleFailed)
		return
	}
	scheduleId, err := h.p.ScheduleToUser(c.Request.Context(), req.UserId, req.notification(), delay)
	if err != nil {
		h.fail(c, err, msgScheduleFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    fmt.Sprintf("Notification scheduled in %s seconds", strconv.FormatFloat(float64(req.DelaySeconds), 'f', -1, 64)),
		"scheduleId": scheduleId,
	})
}

func (h *handler) delay(seconds float64) (time.Duration, bool) {
	if seconds <= 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return 0, false
	}
	if seconds > h.p.maxDelay.Seconds() {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

// bind decodes the JSON body, an empty body is an empty request.
func bind(c *gin.Context) (req notificationRequest, ok bool) {
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return req, false
	}
	return req, true
}

func (h *handler) fail(c *gin.Context, err error, failMsg string) {
	_ = c.Error(err)
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message})
	case errors.Is(err, domain.ErrTokenNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgTokenNotFound})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": failMsg, "details": err.Error()})
	}
}
