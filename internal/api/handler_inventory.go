package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/model"
)

// inventoryRequest is the schema shared by the grow and shrink
// operations. Enum and range checks happen here at the boundary; the
// store assumes its preconditions hold.
type inventoryRequest struct {
	Hostel  string        `json:"hostel" binding:"required,oneof=block1 block2 block3 block4 block5 block6 block7 block8"`
	Count   int           `json:"count" binding:"required,min=1"`
	BedType model.BedType `json:"bedType" binding:"required,oneof='1 bedded' '2 bedded' '3 bedded' '4 bedded'"`
}

// IncreaseRooms handles POST /api/admin/rooms/increase.
func (h *Handler) IncreaseRooms(c *gin.Context) {
	var req inventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	block, err := h.store.GrowRooms(c.Request.Context(), req.Hostel, req.Count, req.BedType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Rooms increased",
		"hostel":  toBlockResponse(block),
	})
}

// DecreaseRooms handles POST /api/admin/rooms/decrease.
func (h *Handler) DecreaseRooms(c *gin.Context) {
	var req inventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	block, err := h.store.ShrinkRooms(c.Request.Context(), req.Hostel, req.Count, req.BedType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d %s room(s) removed from %s", req.Count, req.BedType, req.Hostel),
		"hostel":  toBlockResponse(block),
	})
}

// GetBlocks handles GET /api/blocks.
func (h *Handler) GetBlocks(c *gin.Context) {
	blocks, err := h.store.ListBlocks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]blockResponse, 0, len(blocks))
	for i := range blocks {
		responses = append(responses, toBlockResponse(&blocks[i]))
	}
	c.JSON(http.StatusOK, responses)
}
