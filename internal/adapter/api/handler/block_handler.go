package handler

import (
	"github.com/labstack/echo/v4"

	"campuschat/internal/usecase"
	"campuschat/pkg/response"
)

type BlockHandler struct {
	blockUseCase *usecase.BlockUseCase
}

func NewBlockHandler(blockUseCase *usecase.BlockUseCase) *BlockHandler {
	return &BlockHandler{
		blockUseCase: blockUseCase,
	}
}

// ListBlocked returns the caller's blocked users. The list is marked stale
// when the marketplace API could not be reached.
func (h *BlockHandler) ListBlocked(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, h.blockUseCase.Blocked(c.Request().Context(), caller))
}

func (h *BlockHandler) Block(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	list, err := h.blockUseCase.Block(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, list)
}

func (h *BlockHandler) Unblock(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return response.Error(c, err)
	}

	list, err := h.blockUseCase.Unblock(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, list)
}
