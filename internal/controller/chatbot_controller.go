package controller

import (
	_ "embed"
	"errors"
	"strings"

	"ecomm-product-bot/internal/dto"
	"ecomm-product-bot/internal/pkg/serverutils"
	"ecomm-product-bot/internal/service"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/chat.html
var chatPage []byte

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	Index(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
}

type chatbotController struct {
	service service.IChatbotService
}

func NewChatbotController(service service.IChatbotService) IChatbotController {
	return &chatbotController{service: service}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Index)
	r.Post("/get", c.Chat)
	r.All("/get", func(ctx *fiber.Ctx) error {
		return fiber.ErrMethodNotAllowed
	})
}

func (c *chatbotController) Index(ctx *fiber.Ctx) error {
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return ctx.Send(chatPage)
}

func (c *chatbotController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return &serverutils.RequestError{Message: "Invalid request body"}
	}
	req.Msg = strings.TrimSpace(req.Msg)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	answer, err := c.service.Ask(ctx.UserContext(), serverutils.SessionID(ctx), req.Msg)
	if err != nil {
		if errors.Is(err, service.ErrChainNotInitialized) {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return err
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return ctx.SendString(answer)
}
