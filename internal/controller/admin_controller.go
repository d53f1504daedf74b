package controller

import (
	"errors"
	"strings"

	"mini-shop-be/internal/dto"
	"mini-shop-be/internal/pkg/serverutils"
	"mini-shop-be/internal/repository/paymentstore"
	"mini-shop-be/internal/service"
	"mini-shop-be/pkg/admin/mapper"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	GetPayments(ctx *fiber.Ctx) error
	GetDailySummary(ctx *fiber.Ctx) error
	Approve(ctx *fiber.Ctx) error
	Reject(ctx *fiber.Ctx) error
	Notify(ctx *fiber.Ctx) error
}

type adminController struct {
	adminService   service.IAdminService
	paymentService service.IPaymentService
}

func NewAdminController(adminService service.IAdminService, paymentService service.IPaymentService) IAdminController {
	return &adminController{
		adminService:   adminService,
		paymentService: paymentService,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Post("/login", c.Login)

	// Everything below the guard mutates or reads privileged state.
	h.Use(c.authMiddleware)
	h.Post("/logout", c.Logout)
	h.Get("/payments", c.GetPayments)
	h.Get("/daily-summary", c.GetDailySummary)
	h.Post("/approve/:id", c.Approve)
	h.Post("/reject/:id", c.Reject)
	h.Post("/notify/:id", c.Notify)
}

// authMiddleware extracts the admin credential from the Authorization
// header, the X-Access-Token header or a body token field, in that
// precedence order, then defers to the session guard.
func (c *adminController) authMiddleware(ctx *fiber.Ctx) error {
	token := extractToken(ctx)
	if token == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if err := c.adminService.Authorize(token); err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	ctx.Locals("admin_token", token)
	return ctx.Next()
}

func extractToken(ctx *fiber.Ctx) string {
	raw := ctx.Get("Authorization")
	if raw == "" {
		raw = ctx.Get("X-Access-Token")
	}
	if raw == "" {
		var body struct {
			Token string `json:"token"`
		}
		_ = ctx.BodyParser(&body)
		raw = body.Token
	}

	if strings.HasPrefix(raw, "Bearer ") {
		return strings.TrimPrefix(raw, "Bearer ")
	}
	return raw
}

func (c *adminController) Login(ctx *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.adminService.Login(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "message": "Invalid credentials"})
		}
		return err
	}

	return ctx.JSON(res)
}

func (c *adminController) Logout(ctx *fiber.Ctx) error {
	token, _ := ctx.Locals("admin_token").(string)
	if err := c.adminService.Logout(token); err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return ctx.JSON(fiber.Map{"ok": true})
}

// GetPayments serves the legacy dashboard shape, not the raw records.
func (c *adminController) GetPayments(ctx *fiber.Ctx) error {
	return ctx.JSON(mapper.PaymentsToAdminResponse(c.paymentService.ListPayments()))
}

func (c *adminController) GetDailySummary(ctx *fiber.Ctx) error {
	return ctx.JSON(c.adminService.DailySummary(c.paymentService.ListPayments()))
}

func (c *adminController) Approve(ctx *fiber.Ctx) error {
	return c.transition(ctx, true)
}

func (c *adminController) Reject(ctx *fiber.Ctx) error {
	return c.transition(ctx, false)
}

func (c *adminController) transition(ctx *fiber.Ctx, approve bool) error {
	id, err := parsePaymentId(ctx)
	if err != nil {
		return err
	}

	var req dto.TransitionRequest
	_ = ctx.BodyParser(&req)

	var res *paymentstore.TransitionResult
	responseMsg := "rejected"
	if approve {
		res, err = c.paymentService.Approve(ctx.Context(), id, req.Message)
		responseMsg = "approved"
	} else {
		res, err = c.paymentService.Reject(ctx.Context(), id, req.Message)
	}
	if err != nil {
		if errors.Is(err, paymentstore.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "not found")
		}
		return err
	}

	return ctx.JSON(dto.TransitionResponse{
		Message:        responseMsg,
		Data:           res.Payment,
		Retransitioned: res.Retransitioned,
	})
}

func (c *adminController) Notify(ctx *fiber.Ctx) error {
	id, err := parsePaymentId(ctx)
	if err != nil {
		return err
	}

	var req dto.NotifyRequest
	_ = ctx.BodyParser(&req)

	p, err := c.paymentService.Notify(ctx.Context(), id, req.Message)
	if err != nil {
		if errors.Is(err, paymentstore.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "not found")
		}
		return err
	}

	return ctx.JSON(dto.NotifyResponse{
		Message: "notified",
		Data:    dto.NotifyResultData{Id: p.Id, Message: req.Message},
	})
}
