package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"campuschat/internal/domain/entity"
	"campuschat/internal/usecase"
	"campuschat/pkg/response"
	"campuschat/pkg/utils"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 200
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type participantRequest struct {
	ID     string `json:"id" validate:"required,email"`
	UserID string `json:"userId"`
	Name   string `json:"name" validate:"max=100"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

func (p participantRequest) info() entity.ParticipantInfo {
	return entity.ParticipantInfo{ID: p.ID, UserID: p.UserID, Name: p.Name, Avatar: p.Avatar}
}

type listingRequest struct {
	Title    string  `json:"title" validate:"max=200"`
	Price    float64 `json:"price" validate:"min=0"`
	ImageURL string  `json:"imageUrl" validate:"omitempty,url"`
}

type resolveRoomRequest struct {
	ListingID string             `json:"listingId" validate:"required"`
	Buyer     participantRequest `json:"buyer"`
	Seller    participantRequest `json:"seller"`
	Listing   *listingRequest    `json:"listing"`
}

type sendMessageRequest struct {
	Text        string `json:"text" validate:"max=4000"`
	MessageType string `json:"messageType" validate:"omitempty,oneof=text image"`
	MediaURL    string `json:"mediaUrl" validate:"omitempty,url"`
}

// ResolveRoom returns the room for a listing between buyer and seller,
// creating it the first time either of them opens the chat.
func (h *ChatHandler) ResolveRoom(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req resolveRoomRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	input := usecase.ResolveRoomInput{
		ListingID: req.ListingID,
		Buyer:     req.Buyer.info(),
		Seller:    req.Seller.info(),
	}
	if req.Listing != nil {
		input.Listing = &entity.ListingSnapshot{
			Title:    req.Listing.Title,
			Price:    req.Listing.Price,
			ImageURL: req.Listing.ImageURL,
		}
	}

	room, err := h.chatUseCase.ResolveRoom(c.Request().Context(), caller, input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, room)
}

// ListRooms returns the caller's visible rooms, most recently active first.
func (h *ChatHandler) ListRooms(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	rooms, err := h.chatUseCase.ListRooms(c.Request().Context(), caller)
	if err != nil {
		return response.Error(c, err)
	}

	return response.List(c, rooms, len(rooms))
}

func (h *ChatHandler) GetRoom(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	room, err := h.chatUseCase.GetRoom(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, room)
}

// DeleteRoom hides the room for the caller only.
func (h *ChatHandler) DeleteRoom(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.chatUseCase.SoftDelete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Chat deleted"})
}

func (h *ChatHandler) MarkAsRead(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.chatUseCase.MarkAsRead(c.Request().Context(), caller, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	limit := utils.GetLimit(c, defaultMessageLimit, maxMessageLimit)
	messages, err := h.chatUseCase.ListMessages(c.Request().Context(), caller, c.Param("id"), limit)
	if err != nil {
		return response.Error(c, err)
	}

	return response.List(c, messages, len(messages))
}

// SendMessage answers 204 when the text was blank and nothing was written.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), caller, usecase.SendMessageInput{
		RoomID:      c.Param("id"),
		Text:        req.Text,
		MessageType: entity.MessageType(req.MessageType),
		MediaURL:    req.MediaURL,
	})
	if err != nil {
		return response.Error(c, err)
	}
	if message == nil {
		return c.NoContent(http.StatusNoContent)
	}

	return response.Created(c, message)
}
