package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	items *Catalog
}

func NewHandler(items *Catalog) *Handler {
	return &Handler{items: items}
}

// ListItems godoc
// @Summary      Item catalog
// @Description  Returns the full catalog; the shop screen renders straight from this.
// @Tags         catalog
// @Produce      json
// @Success      200  {array}  Item
// @Router       /api/catalog [get]
func (h *Handler) ListItems(c *gin.Context) {
	c.JSON(http.StatusOK, h.items.Items())
}
