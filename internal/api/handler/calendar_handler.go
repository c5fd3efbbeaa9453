package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/service"
	"github.com/anatoli9010/volleyball-club-management/pkg/response"
)

// CalendarHandler 日历读模型 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// Events 日历事件（查询前先物化该范围）
// GET /api/v1/calendar/events?start=&end=&team_id=
func (h *CalendarHandler) Events(c *gin.Context) {
	var q dto.CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	events, err := h.calendarSvc.Events(c.Request.Context(), &q)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, events)
}

// ICS 导出 iCalendar 订阅
// GET /api/v1/calendar.ics
func (h *CalendarHandler) ICS(c *gin.Context) {
	var q dto.CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	body, err := h.calendarSvc.ICS(c.Request.Context(), &q)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", `inline; filename="trainings.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
