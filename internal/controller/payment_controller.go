package controller

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"mini-shop-be/internal/dto"
	"mini-shop-be/internal/pkg/serverutils"
	"mini-shop-be/internal/repository/paymentstore"
	"mini-shop-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	Topup(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Approve(ctx *fiber.Ctx) error
	Reject(ctx *fiber.Ctx) error
	GetNotifications(ctx *fiber.Ctx) error
}

type paymentController struct {
	service   service.IPaymentService
	uploadDir string
}

func NewPaymentController(service service.IPaymentService, uploadDir string) IPaymentController {
	return &paymentController{service: service, uploadDir: uploadDir}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment")
	h.Post("/topup", c.Topup)
	h.Get("/list", c.List)
	h.Post("/approve/:id", c.Approve)
	h.Post("/reject/:id", c.Reject)
	h.Get("/:id/notifications", c.GetNotifications)
}

// Topup accepts a multipart top-up submission: playerId, coin,
// amountLAK and an optional slip image saved under the uploads dir.
func (c *paymentController) Topup(ctx *fiber.Ctx) error {
	coin, _ := strconv.ParseFloat(ctx.FormValue("coin"), 64)
	amountLAK, _ := strconv.ParseFloat(ctx.FormValue("amountLAK"), 64)

	req := dto.TopupRequest{
		PlayerId:  ctx.FormValue("playerId"),
		Coin:      coin,
		AmountLAK: amountLAK,
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	slipURL := ""
	if file, err := ctx.FormFile("slip"); err == nil && file != nil {
		filename := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), filepath.Base(file.Filename))
		if err := ctx.SaveFile(file, filepath.Join(c.uploadDir, filename)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store slip")
		}
		slipURL = "/uploads/" + filename
	}

	p := c.service.CreateTopup(ctx.Context(), paymentstore.CreateInput{
		PlayerId:   req.PlayerId,
		CoinAmount: req.Coin,
		AmountLAK:  req.AmountLAK,
		SlipURL:    slipURL,
	})

	return ctx.JSON(dto.TopupResponse{Message: "Upload success", Data: p})
}

func (c *paymentController) List(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.ListPayments())
}

func (c *paymentController) Approve(ctx *fiber.Ctx) error {
	return c.transition(ctx, true)
}

func (c *paymentController) Reject(ctx *fiber.Ctx) error {
	return c.transition(ctx, false)
}

func (c *paymentController) transition(ctx *fiber.Ctx, approve bool) error {
	id, err := parsePaymentId(ctx)
	if err != nil {
		return err
	}

	// Body is optional; an empty one falls back to the default message.
	var req dto.TransitionRequest
	_ = ctx.BodyParser(&req)

	var res *paymentstore.TransitionResult
	responseMsg := "rejected"
	if approve {
		res, err = c.service.Approve(ctx.Context(), id, req.Message)
		responseMsg = "approved"
	} else {
		res, err = c.service.Reject(ctx.Context(), id, req.Message)
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

func (c *paymentController) GetNotifications(ctx *fiber.Ctx) error {
	id, err := parsePaymentId(ctx)
	if err != nil {
		return err
	}

	p, err := c.service.GetPayment(id)
	if err != nil {
		if errors.Is(err, paymentstore.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "not found")
		}
		return err
	}

	return ctx.JSON(dto.PaymentNotificationsResponse{
		Id:            p.Id,
		PlayerId:      p.PlayerId,
		Notifications: p.Notifications,
	})
}

func parsePaymentId(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid payment id")
	}
	return id, nil
}
