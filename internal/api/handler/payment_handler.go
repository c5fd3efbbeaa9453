package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anatoli9010/volleyball-club-management/internal/dto"
	"github.com/anatoli9010/volleyball-club-management/internal/service"
	"github.com/anatoli9010/volleyball-club-management/pkg/response"
)

// PaymentHandler 会费 HTTP 处理器
type PaymentHandler struct {
	paymentSvc service.PaymentService
}

// NewPaymentHandler 创建 PaymentHandler
func NewPaymentHandler(paymentSvc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// ListPayments 月度缴费列表，缺失记录按待缴补齐
// GET /api/v1/payments?year=&month=&team_id=
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var req dto.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	payments, err := h.paymentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OKList(c, payments, len(payments))
}

// CreatePayment 登记某月应缴金额
// POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	payment, err := h.paymentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.Created(c, payment)
}

// PlayerPayments 队员缴费历史
// GET /api/v1/players/:id/payments
func (h *PaymentHandler) PlayerPayments(c *gin.Context) {
	playerID, ok := pathID(c, "队员")
	if !ok {
		return
	}

	payments, err := h.paymentSvc.PlayerHistory(c.Request.Context(), playerID)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OKList(c, payments, len(payments))
}

// MarkPaid 确认已缴
// POST /api/v1/payments/:id/mark-paid
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	id, ok := pathID(c, "缴费记录")
	if !ok {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	payment, err := h.paymentSvc.MarkPaid(c.Request.Context(), id, callerID)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OK(c, payment)
}

// Remind 给单条待缴记录的家长发提醒
// POST /api/v1/payments/:id/remind
func (h *PaymentHandler) Remind(c *gin.Context) {
	id, ok := pathID(c, "缴费记录")
	if !ok {
		return
	}

	resp, err := h.paymentSvc.Remind(c.Request.Context(), id)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OK(c, resp)
}

// RemindAll 给某月全部待缴记录的家长发提醒
// POST /api/v1/payments/remind-all
func (h *PaymentHandler) RemindAll(c *gin.Context) {
	var req dto.RemindAllRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
	}

	resp, err := h.paymentSvc.RemindAll(c.Request.Context(), &req)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OK(c, resp)
}

// Summary 按月汇总缴费情况
// GET /api/v1/payments/summary
func (h *PaymentHandler) Summary(c *gin.Context) {
	rows, err := h.paymentSvc.Summary(c.Request.Context())
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OKList(c, rows, len(rows))
}

func (h *PaymentHandler) handlePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaymentNotFound):
		response.NotFound(c, 18001, "缴费记录不存在")
	case errors.Is(err, service.ErrPaymentAlreadyPaid):
		response.Conflict(c, 18002, "该月会费已缴")
	case errors.Is(err, service.ErrPlayerNotFound):
		response.NotFound(c, 16001, "队员不存在")
	case errors.Is(err, service.ErrNotifierDisabled):
		response.Error(c, http.StatusServiceUnavailable, 17003, "未配置消息通道")
	default:
		response.InternalError(c)
	}
}
