package schedule

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medtrack/scheduler-api/internal/handler"
	"github.com/medtrack/scheduler-api/internal/model"
	"github.com/medtrack/scheduler-api/internal/scheduler"
	"github.com/medtrack/scheduler-api/internal/service/scheduling"
	"github.com/medtrack/scheduler-api/pkg/validator"
)

const dayFormat = "2006-01-02"

type Handler struct {
	svc      *scheduling.Service
	validate validator.Validator
}

func NewHandler(svc *scheduling.Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sched := r.Group("/schedule")
	{
		sched.GET("/week", h.GetWeek)
		sched.GET("/grid", h.GetGrid)
		sched.GET("/slots/menu", h.GetSlotMenu)
		sched.POST("/slots/book", h.BookSlot)
		sched.POST("/slots/select", h.SelectSlot)
		sched.POST("/slots/cancel", h.CancelAppointment)
		sched.POST("/slots/cancel-booking", h.CancelBooking)
		sched.POST("/slots/block", h.BlockSlot)
		sched.POST("/slots/unblock", h.UnblockSlot)
		sched.POST("/suggestions/:id/accept", h.AcceptSuggestion)
		sched.DELETE("/suggestions/:id", h.RejectSuggestion)
		sched.DELETE("/session", h.CloseSession)
	}
	r.GET("/appointments", h.ListAppointments)
}

type slotRequest struct {
	Patient string `json:"patient" validate:"required"`
	Day     string `json:"day" validate:"required"`
	Hour    int    `json:"hour" validate:"gte=0,lte=23"`
}

// GetWeek returns the Monday-start week window for the anchor date.
func (h *Handler) GetWeek(c *gin.Context) {
	anchor := time.Now()
	if raw := c.Query("anchor"); raw != "" {
		parsed, err := time.Parse(dayFormat, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid anchor date"))
			return
		}
		anchor = parsed
	}

	week := scheduler.NewWeekWindow(anchor)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"anchor": week.Anchor.Format(dayFormat),
		"start":  week.Start().Format(dayFormat),
		"end":    week.End().Format(dayFormat),
		"days":   formatDays(week.Days),
		"hours":  scheduler.Hours(),
	}))
}

// GetGrid returns the classified 7x24 grid for the week containing the
// anchor, scoped to the authenticated doctor and the selected patient.
func (h *Handler) GetGrid(c *gin.Context) {
	sess, ok := h.session(c, c.Query("patient"))
	if !ok {
		return
	}

	anchor := time.Now()
	if raw := c.Query("anchor"); raw != "" {
		parsed, err := time.Parse(dayFormat, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid anchor date"))
			return
		}
		anchor = parsed
	}

	week := scheduler.NewWeekWindow(anchor)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"days":   formatDays(week.Days),
		"grid":   sess.Grid(week),
		"events": sess.Events(),
	}))
}

// GetSlotMenu computes the action menu for a clicked slot.
func (h *Handler) GetSlotMenu(c *gin.Context) {
	day, err := time.Parse(dayFormat, c.Query("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid day"))
		return
	}
	var hour int
	if err := bindHour(c.Query("hour"), &hour); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid hour"))
		return
	}

	sess, ok := h.session(c, c.Query("patient"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sess.Menu(day, hour)))
}

func (h *Handler) BookSlot(c *gin.Context) {
	h.slotAction(c, func(sess *scheduling.Session, day time.Time, hour int) scheduling.MutationResult {
		return sess.Book(c.Request.Context(), day, hour)
	}, http.StatusConflict)
}

func (h *Handler) SelectSlot(c *gin.Context) {
	h.slotAction(c, func(sess *scheduling.Session, day time.Time, hour int) scheduling.MutationResult {
		return sess.SelectBooking(day, hour)
	}, http.StatusConflict)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	h.slotAction(c, func(sess *scheduling.Session, day time.Time, hour int) scheduling.MutationResult {
		return sess.Cancel(c.Request.Context(), day, hour)
	}, http.StatusNotFound)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	h.slotAction(c, func(sess *scheduling.Session, day time.Time, hour int) scheduling.MutationResult {
		return sess.CancelBooking(day, hour)
	}, http.StatusConflict)
}

func (h *Handler) BlockSlot(c *gin.Context) {
	h.slotAction(c, func(sess *scheduling.Session, day time.Time, hour int) scheduling.MutationResult {
		return sess.Block(day, hour)
	}, http.StatusConflict)
}

func (h *Handler) UnblockSlot(c *gin.Context) {
	h.slotAction(c, func(sess *scheduling.Session, day time.Time, hour int) scheduling.MutationResult {
		return sess.Unblock(day, hour)
	}, http.StatusConflict)
}

func (h *Handler) AcceptSuggestion(c *gin.Context) {
	sess, ok := h.session(c, c.Query("patient"))
	if !ok {
		return
	}
	h.respondMutation(c, sess.AcceptSuggestion(c.Param("id")), http.StatusNotFound)
}

func (h *Handler) RejectSuggestion(c *gin.Context) {
	sess, ok := h.session(c, c.Query("patient"))
	if !ok {
		return
	}
	h.respondMutation(c, sess.RejectSuggestion(c.Param("id")), http.StatusNotFound)
}

// CloseSession discards the scoped session, the unmount analog.
func (h *Handler) CloseSession(c *gin.Context) {
	scope := model.SchedulingContext{
		DoctorID:    c.GetString("doctor_id"),
		PatientName: c.Query("patient"),
	}
	h.svc.Close(scope)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

// ListAppointments returns the doctor-wide reminder-status list. An empty
// list is a valid steady state, never an error.
func (h *Handler) ListAppointments(c *gin.Context) {
	doctorID := c.GetString("doctor_id")
	summaries := h.svc.Summaries(c.Request.Context(), doctorID)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(summaries))
}

func (h *Handler) slotAction(c *gin.Context, fn func(*scheduling.Session, time.Time, int) scheduling.MutationResult, rejectStatus int) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	day, err := time.Parse(dayFormat, req.Day)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid day"))
		return
	}

	sess, ok := h.session(c, req.Patient)
	if !ok {
		return
	}
	h.respondMutation(c, fn(sess, day, req.Hour), rejectStatus)
}

func (h *Handler) respondMutation(c *gin.Context, res scheduling.MutationResult, rejectStatus int) {
	switch res.Outcome {
	case scheduling.OutcomeCommitted:
		c.JSON(http.StatusOK, handler.NewSuccessResponse(res))
	case scheduling.OutcomeRejected:
		c.JSON(rejectStatus, &handler.Response{Status: "error", Message: res.Message, Data: res})
	default:
		c.JSON(http.StatusBadGateway, &handler.Response{Status: "error", Message: res.Message, Data: res})
	}
}

// session resolves the scoped scheduling session. The doctor identity
// comes from the verified token, never from the request payload.
func (h *Handler) session(c *gin.Context, patient string) (*scheduling.Session, bool) {
	scope := model.SchedulingContext{
		DoctorID:    c.GetString("doctor_id"),
		PatientName: patient,
	}
	sess, err := h.svc.Session(c.Request.Context(), scope)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(err.Error()))
		return nil, false
	}
	return sess, true
}

func formatDays(days []time.Time) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Format(dayFormat)
	}
	return out
}

func bindHour(raw string, hour *int) error {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	if n < 0 || n > 23 {
		return fmt.Errorf("hour out of range: %d", n)
	}
	*hour = n
	return nil
}
